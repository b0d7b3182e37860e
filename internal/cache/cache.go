// Package cache wraps an LRU cache with per-entry expiry. It backs the
// duplicate candidate cache so detection results can be served without
// re-scanning the report pool on every request.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item[V any] struct {
	data      V
	expiresAt time.Time
}

// TTLCache is a fixed-capacity LRU cache whose entries expire after a TTL.
type TTLCache[V any] struct {
	lruCache *lru.Cache[string, item[V]]
}

// New creates a TTLCache holding at most size entries.
func New[V any](size int) (*TTLCache[V], error) {
	l, err := lru.New[string, item[V]](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache[V]{lruCache: l}, nil
}

// Set stores data under key for the given TTL.
func (c *TTLCache[V]) Set(key string, data V, ttl time.Duration) {
	c.lruCache.Add(key, item[V]{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	})
}

// Get returns the entry for key, or false when absent or expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		var zero V
		return zero, false
	}
	return val.data, true
}

// Delete removes the entry for key.
func (c *TTLCache[V]) Delete(key string) {
	c.lruCache.Remove(key)
}
