// Package cache is a small JSON cache over Redis. A nil *Cache is valid and
// behaves as an always-empty cache, which is how the API runs without Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func UserKey(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}

func StatsKey(userID int) string {
	return fmt.Sprintf("stats:user:%d", userID)
}

func RefreshKey(jti string) string {
	return "refresh:" + jti
}

// GetJSON decodes the cached value at key into dst. It reports false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key with the default TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

// Remember stores a marker under key for ttl.
func (c *Cache) Remember(ctx context.Context, key string, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	if err := c.rdb.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("cache remember %s: %w", key, err)
	}
	return nil
}

// Consume deletes key and reports whether it existed. Two concurrent callers
// cannot both consume the same key.
func (c *Cache) Consume(ctx context.Context, key string) (bool, error) {
	if c == nil {
		return false, nil
	}
	n, err := c.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cache consume %s: %w", key, err)
	}
	return n == 1, nil
}

func (c *Cache) Enabled() bool {
	return c != nil
}
