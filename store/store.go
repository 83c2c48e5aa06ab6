package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("store: key not found")

// Store is a flat key-value store holding serialized text. The cart is kept
// under a single key per user; callers read the whole value, mutate, and
// write it back, last write wins.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Subscribe registers fn to run after every successful Set or Delete of
	// key in this process. The returned func removes the subscription.
	Subscribe(key string, fn func(value string)) func()
}

// Memory is an in-process Store. Tests use it directly; the server falls
// back to it when Redis is not configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
	subs map[string][]*subscriber
}

type subscriber struct {
	fn func(value string)
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]string),
		subs: make(map[string][]*subscriber),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	subs := append([]*subscriber(nil), m.subs[key]...)
	m.mu.Unlock()

	for _, s := range subs {
		s.fn(value)
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	subs := append([]*subscriber(nil), m.subs[key]...)
	m.mu.Unlock()

	for _, s := range subs {
		s.fn("")
	}
	return nil
}

func (m *Memory) Subscribe(key string, fn func(value string)) func() {
	s := &subscriber{fn: fn}

	m.mu.Lock()
	m.subs[key] = append(m.subs[key], s)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.subs[key]
		for i, cur := range subs {
			if cur == s {
				m.subs[key] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}
