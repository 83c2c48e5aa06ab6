package store

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Redis is the production Store. Subscriptions are local to this process;
// concurrent writers from other processes race with last write winning, the
// same way two browser tabs would.
type Redis struct {
	client *redis.Client

	mu   sync.RWMutex
	subs map[string][]*subscriber
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client: client,
		subs:   make(map[string][]*subscriber),
	}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return err
	}
	r.notify(key, value)
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	r.notify(key, "")
	return nil
}

func (r *Redis) Subscribe(key string, fn func(value string)) func() {
	s := &subscriber{fn: fn}

	r.mu.Lock()
	r.subs[key] = append(r.subs[key], s)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		subs := r.subs[key]
		for i, cur := range subs {
			if cur == s {
				r.subs[key] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

func (r *Redis) notify(key, value string) {
	r.mu.RLock()
	subs := append([]*subscriber(nil), r.subs[key]...)
	r.mu.RUnlock()

	for _, s := range subs {
		s.fn(value)
	}
}
