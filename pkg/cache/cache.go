// Package cache is a thin read-through cache over the shared redis store.
// Values are opaque serialized payloads; callers own key naming and TTLs.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss distinguishes a true miss from a store failure; callers use
// errors.Is.
var ErrCacheMiss = errors.New("cache miss")

type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Purge removes every key matching pattern. Paginated listings cannot be
// invalidated by a single key, so writes scan the whole family out.
func (c *Cache) Purge(ctx context.Context, pattern string) error {
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache purge scan %s: %w", pattern, err)
	}
	return c.Delete(ctx, keys...)
}
