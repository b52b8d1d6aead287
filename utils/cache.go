package utils

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Default cache ttl when callers pass zero
	defaultCacheTTL = time.Hour
)

type localEntry struct {
	value     []byte
	expiresAt time.Time
}

// Cache stores JSON blobs in Redis when a client is configured and in process memory
// otherwise. Misses and backend errors are never fatal to callers.
type Cache struct {
	rc  *redis.Client
	ttl time.Duration

	mu    sync.RWMutex
	local map[string]localEntry
}

// NewCache creates a cache; rc may be nil.
func NewCache(rc *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{rc: rc, ttl: ttl, local: map[string]localEntry{}}
}

// GetBytes returns cached bytes for key.
func (c *Cache) GetBytes(ctx context.Context, key string) ([]byte, bool) {
	if c.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		b, err := c.rc.Get(ctx, key).Bytes()
		if err != nil {
			Sugar.Debugf("cache get miss key=%s err=%v", key, err)
			return nil, false
		}
		return b, true
	}

	c.mu.RLock()
	entry, ok := c.local[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// SetBytes stores bytes with the cache TTL.
func (c *Cache) SetBytes(ctx context.Context, key string, b []byte) {
	if c.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := c.rc.Set(ctx, key, b, c.ttl).Err(); err != nil {
			Sugar.Warnf("cache set failed key=%s err=%v", key, err)
		}
		return
	}

	c.mu.Lock()
	c.local[key] = localEntry{value: b, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// GetJSON unmarshals a cached value into v.
func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) bool {
	b, ok := c.GetBytes(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(b, v) == nil
}

// SetJSON marshals v and stores JSON bytes.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.SetBytes(ctx, key, b)
}

// Invalidate removes key.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c.rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_ = c.rc.Del(ctx, key).Err()
		return
	}
	c.mu.Lock()
	delete(c.local, key)
	c.mu.Unlock()
}
