package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetMissingKey(t *testing.T) {
	m := NewMemory()

	_, err := m.Get(context.Background(), "cart:1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "cart:1", `[{"product_id":1}]`))

	value, err := m.Get(ctx, "cart:1")
	require.NoError(t, err)
	assert.Equal(t, `[{"product_id":1}]`, value)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "cart:1", "x"))
	require.NoError(t, m.Delete(ctx, "cart:1"))

	_, err := m.Get(ctx, "cart:1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySubscribe(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var seen []string
	unsubscribe := m.Subscribe("cart:1", func(value string) {
		seen = append(seen, value)
	})

	require.NoError(t, m.Set(ctx, "cart:1", "a"))
	require.NoError(t, m.Set(ctx, "cart:2", "other key"))
	require.NoError(t, m.Delete(ctx, "cart:1"))

	assert.Equal(t, []string{"a", ""}, seen)

	unsubscribe()
	require.NoError(t, m.Set(ctx, "cart:1", "b"))
	assert.Len(t, seen, 2)
}
