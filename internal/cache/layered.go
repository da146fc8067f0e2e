package cache

import "time"

// LayeredCache answers from memory when it can and falls back to the disk
// layer, which survives restarts. Writes go to both layers.
type LayeredCache struct {
	memory    *MemoryCache
	memoryTTL time.Duration
	disk      *DiskCache
}

func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory:    NewMemoryCache(memoryTTL, 10*time.Minute),
		memoryTTL: memoryTTL,
		disk:      NewDiskCache(diskDir, diskTTL),
	}
}

// Get promotes disk hits into memory, never past the disk entry's own expiry.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if v, ok := c.memory.Get(key); ok {
		return v, true
	}
	e, ok := c.disk.lookup(key)
	if !ok {
		return nil, false
	}

	ttl := c.memoryTTL
	if !e.ExpiresAt.IsZero() {
		if left := e.ExpiresAt.Sub(c.disk.now()); ttl <= 0 || left < ttl {
			ttl = left
		}
	}
	if ttl > 0 {
		_ = c.memory.Set(key, e.bytes(), ttl)
	}
	return e.bytes(), true
}

func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.disk.Set(key, value, ttl); err != nil {
		return err
	}
	return c.memory.Set(key, value, ttl)
}

func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}

// Sweep drops expired entries from the disk layer.
func (c *LayeredCache) Sweep() (int64, error) {
	return c.disk.Sweep()
}
