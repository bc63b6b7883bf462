package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process cache with per-entry expiry
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		if b, ok := val.([]byte); ok {
			return b, true
		}
	}
	return nil, false
}

// Set stores a value. A zero ttl uses the cache default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}

// Len counts entries, expired ones included until cleanup
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
