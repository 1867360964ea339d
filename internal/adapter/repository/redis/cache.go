package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache implements usecase.Cache using Redis. Keys are namespaced per
// tenant so one tenant's reads can be invalidated without touching the
// others.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache creates a new Cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		prefix: "cache:",
	}
}

func (c *Cache) key(tenantID, key string) string {
	return c.prefix + tenantID + ":" + key
}

// Get retrieves a cached value. A miss returns (nil, nil).
func (c *Cache) Get(ctx context.Context, tenantID, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.key(tenantID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores a value with TTL.
func (c *Cache) Set(ctx context.Context, tenantID, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(tenantID, key), value, ttl).Err()
}

// InvalidateTenant removes every cached value for one tenant.
func (c *Cache) InvalidateTenant(ctx context.Context, tenantID string) error {
	pattern := c.prefix + tenantID + ":*"

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}

	return iter.Err()
}
