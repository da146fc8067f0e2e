// Package cachestore keeps session snapshots in the TTL cache: in memory, or
// in memory over a JSON directory when a disk layer is configured.
package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/dii/internal/cache"
	"github.com/ppiankov/dii/internal/ports"
	"github.com/ppiankov/dii/internal/session"
)

const namespace = "session"

// Store implements ports.SessionStore on a cache.Cache.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

var _ ports.SessionStore = (*Store)(nil)

// New creates a store whose snapshots expire ttl after their last save.
func New(c cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// Save stores snap under id, replacing any earlier snapshot.
func (s *Store) Save(ctx context.Context, id string, snap session.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cache.SetJSON(s.cache, cache.RawKey(namespace, id), snap, s.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// Load returns the snapshot for id or ports.ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) (session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return session.Snapshot{}, err
	}
	data, ok := s.cache.Get(cache.RawKey(namespace, id))
	if !ok {
		return session.Snapshot{}, fmt.Errorf("session %s: %w", id, ports.ErrNotFound)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return session.Snapshot{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return snap, nil
}

// Delete removes the snapshot for id. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.cache.Delete(cache.RawKey(namespace, id))
}
