package services

import (
	"context"
	"testing"

	"storefront/models"
	"storefront/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id int, price string) models.Product {
	return models.Product{
		ID:    id,
		Name:  "Product",
		Price: decimal.RequireFromString(price),
	}
}

func TestCartItemsEmptyWhenMissing(t *testing.T) {
	cart := NewCartService(store.NewMemory())

	items, err := cart.Items(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartItemsEmptyWhenUnparsable(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, "cart:1", "not json at all"))

	cart := NewCartService(mem)

	items, err := cart.Items(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	subtotal, err := cart.Subtotal(ctx, 1)
	require.NoError(t, err)
	assert.True(t, subtotal.IsZero())
}

func TestCartAddTwiceIncrementsQuantity(t *testing.T) {
	cart := NewCartService(store.NewMemory())
	ctx := context.Background()
	p := testProduct(1, "10")

	_, err := cart.Add(ctx, 1, p)
	require.NoError(t, err)
	items, err := cart.Add(ctx, 1, p)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	subtotal, err := cart.Subtotal(ctx, 1)
	require.NoError(t, err)
	assert.True(t, subtotal.Equal(decimal.RequireFromString("20")), "subtotal = %s", subtotal)
}

func TestCartRemoveIsIdempotent(t *testing.T) {
	cart := NewCartService(store.NewMemory())
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)

	items, err := cart.Remove(ctx, 1, 99)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = cart.Remove(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = cart.Remove(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartDecrementAtOneRemovesItem(t *testing.T) {
	cart := NewCartService(store.NewMemory())
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)

	items, err := cart.Decrement(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = cart.Items(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartIncrementDecrementSequence(t *testing.T) {
	cart := NewCartService(store.NewMemory())
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)

	items, err := cart.Increment(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	subtotal, err := cart.Subtotal(ctx, 1)
	require.NoError(t, err)
	assert.True(t, subtotal.Equal(decimal.RequireFromString("20")))

	_, err = cart.Decrement(ctx, 1, 1)
	require.NoError(t, err)
	items, err = cart.Decrement(ctx, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	subtotal, err = cart.Subtotal(ctx, 1)
	require.NoError(t, err)
	assert.True(t, subtotal.IsZero())
}

func TestCartNeverStoresNonPositiveQuantity(t *testing.T) {
	cart := NewCartService(store.NewMemory())
	ctx := context.Background()

	ops := []func() ([]models.CartLineItem, error){
		func() ([]models.CartLineItem, error) { return cart.Add(ctx, 1, testProduct(1, "5")) },
		func() ([]models.CartLineItem, error) { return cart.Add(ctx, 1, testProduct(2, "7.50")) },
		func() ([]models.CartLineItem, error) { return cart.Decrement(ctx, 1, 1) },
		func() ([]models.CartLineItem, error) { return cart.Decrement(ctx, 1, 1) },
		func() ([]models.CartLineItem, error) { return cart.Decrement(ctx, 1, 2) },
		func() ([]models.CartLineItem, error) { return cart.Increment(ctx, 1, 2) },
		func() ([]models.CartLineItem, error) { return cart.Remove(ctx, 1, 2) },
		func() ([]models.CartLineItem, error) { return cart.Decrement(ctx, 1, 99) },
	}

	for _, op := range ops {
		_, err := op()
		require.NoError(t, err)

		items, err := cart.Items(ctx, 1)
		require.NoError(t, err)
		for _, item := range items {
			assert.GreaterOrEqual(t, item.Quantity, 1)
		}
	}
}

func TestCartClear(t *testing.T) {
	cart := NewCartService(store.NewMemory())
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)
	require.NoError(t, cart.Clear(ctx, 1))

	items, err := cart.Items(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	subtotal, err := cart.Subtotal(ctx, 1)
	require.NoError(t, err)
	assert.True(t, subtotal.IsZero())
}

func TestCartItemCount(t *testing.T) {
	cart := NewCartService(store.NewMemory())
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)
	_, err = cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)
	_, err = cart.Add(ctx, 1, testProduct(2, "3"))
	require.NoError(t, err)

	count, err := cart.ItemCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	cart := NewCartService(store.NewMemory())
	ctx := context.Background()

	_, err := cart.Add(ctx, 1, testProduct(1, "10"))
	require.NoError(t, err)

	items, err := cart.Items(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, items)
}
