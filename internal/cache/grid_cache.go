package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// GridCache keeps rendered schedule responses in redis for a short TTL.
// Freshness comes from expiry alone, so mutations never have to chase keys.
// A nil client disables caching entirely.
type GridCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGridCache(rdb *redis.Client, ttl time.Duration) *GridCache {
	return &GridCache{rdb: rdb, ttl: ttl}
}

func (c *GridCache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get unmarshals the cached value into dest and reports whether it was a hit.
func (c *GridCache) Get(ctx context.Context, key string, dest any) bool {
	if !c.Enabled() {
		return false
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[Cache] get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("[Cache] corrupt entry %s dropped: %v", key, err)
		c.rdb.Del(ctx, key)
		return false
	}
	return true
}

// Set stores the value best effort. Cache failures are logged, never surfaced.
func (c *GridCache) Set(ctx context.Context, key string, value any) {
	if !c.Enabled() {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("[Cache] marshal %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Printf("[Cache] set %s: %v", key, err)
	}
}
