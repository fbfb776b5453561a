package utils

import (
	"context"       // Matches the Redis cache signature
	"encoding/json" // JSON encoding/decoding
	"time"          // Time durations

	"github.com/patrickmn/go-cache" // In-process cache
)

// MemoryCache keeps JSON encoded values in process memory.
// It stands in for Redis when no Redis server is reachable.
type MemoryCache struct {
	items *cache.Cache
}

// NewMemoryCache creates a cache whose expired keys are swept every cleanup interval
func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	return &MemoryCache{items: cache.New(cache.NoExpiration, cleanup)}
}

// Get retrieves a value and unmarshals it into dest, reporting whether the key existed
func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	val, ok := c.items.Get(key)
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(val.([]byte), dest)
}

// Set stores value as JSON with the given TTL
func (c *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items.Set(key, b, ttl)
	return nil
}
