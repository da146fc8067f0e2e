package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local TTL cache backed by go-cache.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a memory cache. A ttl of 0 passed to Set uses defaultTTL
// (gocache.DefaultExpiration).
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		items: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.items.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	return data, ok
}

func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.items.Set(key, stored, ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len returns the number of live entries whose key starts with prefix.
func (c *MemoryCache) Len(prefix string) int {
	n := 0
	for key := range c.items.Items() {
		if strings.HasPrefix(key, prefix) {
			n++
		}
	}
	return n
}
