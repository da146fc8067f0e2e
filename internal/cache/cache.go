// Package cache stores classification results and session snapshots as
// opaque byte blobs with a TTL.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/dii/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyPrefix = "dii:v1:"

// Key builds a namespaced cache key. Parts are hashed so keys are safe as
// file names regardless of their content.
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + namespace + ":" + hex.EncodeToString(hash[:])
}

// RawKey builds a namespaced key that keeps id readable, e.g. a session UUID.
func RawKey(namespace, id string) string {
	return keyPrefix + namespace + ":" + id
}

// GetJSON decodes a cached JSON value into v. A decode failure counts as a miss.
func GetJSON(c Cache, key string, v interface{}) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON encodes v as JSON and stores it.
func SetJSON(c Cache, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	return c.Set(key, data, ttl)
}

// New builds the cache described by cfg: memory only, memory over disk, or a
// no-op cache when caching is disabled.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Noop{}
	}
	if cfg.DiskDir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.DiskDir, cfg.DiskTTL)
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(string) ([]byte, bool) { return nil, false }
func (Noop) Set(string, []byte, time.Duration) error { return nil }
func (Noop) Delete(string) error { return nil }
func (Noop) Clear() error { return nil }
