package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskCache keeps one JSON document per key under dir/<namespace>/, so
// session snapshots and classifications can be inspected and removed
// separately.
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache roots a cache at dir. A zero ttl passed to Set means ttl here;
// a non-positive ttl here keeps entries until deleted.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl, now: time.Now}
}

type diskEntry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value,omitempty"`
	Raw       []byte          `json:"raw,omitempty"`
	StoredAt  time.Time       `json:"stored_at"`
	ExpiresAt time.Time       `json:"expires_at,omitzero"`
}

func (e diskEntry) bytes() []byte {
	if e.Value != nil {
		return e.Value
	}
	return e.Raw
}

func (e diskEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

func (c *DiskCache) Get(key string) ([]byte, bool) {
	e, ok := c.lookup(key)
	if !ok {
		return nil, false
	}
	return e.bytes(), true
}

// lookup returns the live entry for key, removing it when it has expired.
func (c *DiskCache) lookup(key string) (diskEntry, bool) {
	path := c.path(key)
	e, err := readEntry(path)
	if err != nil || e.Key != key {
		return diskEntry{}, false
	}
	if e.expired(c.now()) {
		_ = os.Remove(path)
		return diskEntry{}, false
	}
	return e, true
}

func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	now := c.now()
	e := diskEntry{Key: key, StoredAt: now}
	// JSON values stay readable in the file; anything else is base64.
	if json.Valid(value) {
		e.Value = json.RawMessage(value)
	} else {
		e.Raw = value
	}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}

	doc, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	return writeAtomic(path, doc)
}

func (c *DiskCache) Delete(key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// Sweep removes every expired or unreadable entry and reports how many files
// it deleted.
func (c *DiskCache) Sweep() (int64, error) {
	now := c.now()
	var removed int64
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if e, err := readEntry(path); err == nil && !e.expired(now) {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	return removed, err
}

// path maps "dii:v1:<namespace>:<id>" to dir/<namespace>/<id>.json. Ids that
// are not plain file names are hashed.
func (c *DiskCache) path(key string) string {
	ns, id := "misc", key
	if rest, ok := strings.CutPrefix(key, keyPrefix); ok {
		if i := strings.LastIndexByte(rest, ':'); i > 0 {
			ns, id = rest[:i], rest[i+1:]
		}
	}
	if !plainName(ns) {
		ns = "misc"
	}
	if !plainName(id) {
		sum := sha256.Sum256([]byte(id))
		id = hex.EncodeToString(sum[:16])
	}
	return filepath.Join(c.dir, ns, id+".json")
}

func plainName(s string) bool {
	if s == "" || len(s) > 128 || s[0] == '.' {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

func readEntry(path string) (diskEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return diskEntry{}, err
	}
	var e diskEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return diskEntry{}, err
	}
	return e, nil
}

// writeAtomic replaces path through a temp file in the same directory.
func writeAtomic(path string, doc []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(doc)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
