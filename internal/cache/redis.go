// Package cache provides a Redis-backed translation cache shared between
// machines, as an alternative to the per-database SQLite cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mgpai22/subdesk/internal/translate"
)

const keyPrefix = "subdesk:tr:"

// RedisCache implements translate.Cache
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ translate.Cache = (*RedisCache)(nil)

// NewRedisCache connects to addr and verifies the connection. A zero ttl
// keeps entries forever.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func Key(key translate.CacheKey) string {
	return keyPrefix + key.Hash()
}

func (c *RedisCache) Get(ctx context.Context, key translate.CacheKey) (string, bool, error) {
	text, err := c.client.Get(ctx, Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error reading cache: %w", err)
	}
	return text, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key translate.CacheKey, text string) error {
	if err := c.client.Set(ctx, Key(key), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("error writing cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
