// Package cache stores compiled output keyed by source content so
// unchanged files skip the compiler on incremental builds and hot
// reloads.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache is an on-disk compile cache with a JSON index and LRU eviction.
type Cache struct {
	mu      sync.RWMutex
	dir     string
	index   *Index
	maxSize int64
	maxAge  time.Duration
	stats   Stats
}

// Index tracks every cached entry.
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is one cached compile result.
type Entry struct {
	Key        string    `json:"key"`
	Hash       string    `json:"hash"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	Created    time.Time `json:"created"`
	LastAccess time.Time `json:"last_access"`
	// Source is the input file the entry was compiled from, used for
	// invalidation when that file changes.
	Source string `json:"source,omitempty"`
}

// Stats tracks hit rates for the build report.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	TotalSize int64 `json:"total_size"`
}

// Config holds cache settings.
type Config struct {
	Dir     string        // default $HOME/.cache/psr
	MaxSize int64         // default 256 MB
	MaxAge  time.Duration // default 7 days
}

// DefaultConfig returns the default cache location and limits.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Dir:     filepath.Join(home, ".cache", "psr"),
		MaxSize: 256 << 20,
		MaxAge:  7 * 24 * time.Hour,
	}
}

// New opens or creates a cache at config.Dir.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		config = DefaultConfig()
	}
	if config.MaxSize == 0 {
		config.MaxSize = DefaultConfig().MaxSize
	}
	if config.MaxAge == 0 {
		config.MaxAge = DefaultConfig().MaxAge
	}
	if err := os.MkdirAll(filepath.Join(config.Dir, "out"), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	c := &Cache{
		dir:     config.Dir,
		maxSize: config.MaxSize,
		maxAge:  config.MaxAge,
		index:   emptyIndex(),
	}
	if err := c.loadIndex(); err != nil {
		// corrupt or missing index, start fresh
		c.index = emptyIndex()
	}
	return c, nil
}

func emptyIndex() *Index {
	return &Index{Version: "1", Entries: map[string]*Entry{}, Updated: time.Now()}
}

// Key derives a cache key from the source path and content plus the
// compiler settings that influence output.
func Key(source string, content []byte, settings ...string) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write(content)
	for _, s := range settings {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// Get returns the cached output for key, if present and fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.index.Entries[key]
	c.mu.RUnlock()
	if !ok {
		c.miss()
		return nil, false
	}
	if c.maxAge > 0 && time.Since(entry.Created) > c.maxAge {
		c.Delete(key)
		c.miss()
		return nil, false
	}
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		c.Delete(key)
		c.miss()
		return nil, false
	}
	c.mu.Lock()
	entry.LastAccess = time.Now()
	c.stats.Hits++
	c.mu.Unlock()
	return data, true
}

// Put stores compiled output under key. Storing identical content twice
// is a no-op.
func (c *Cache) Put(key, source string, data []byte) error {
	hash := contentHash(data)
	c.mu.RLock()
	if existing, ok := c.index.Entries[key]; ok && existing.Hash == hash {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	if err := c.ensureSpace(int64(len(data))); err != nil {
		return err
	}
	path := filepath.Join(c.dir, "out", sanitizeKey(key)+"_"+hash[:8])
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	now := time.Now()
	c.mu.Lock()
	if old, ok := c.index.Entries[key]; ok {
		os.Remove(old.Path)
		c.stats.TotalSize -= old.Size
	}
	c.index.Entries[key] = &Entry{
		Key:        key,
		Hash:       hash,
		Path:       path,
		Size:       int64(len(data)),
		Created:    now,
		LastAccess: now,
		Source:     source,
	}
	c.index.Updated = now
	c.stats.TotalSize += int64(len(data))
	c.mu.Unlock()
	return c.saveIndex()
}

// Delete removes one entry.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	entry, ok := c.index.Entries[key]
	if ok {
		os.Remove(entry.Path)
		c.stats.TotalSize -= entry.Size
		delete(c.index.Entries, key)
		c.index.Updated = time.Now()
	}
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.saveIndex()
}

// InvalidateSource drops every entry compiled from the given file and
// returns how many were removed.
func (c *Cache) InvalidateSource(source string) int {
	c.mu.Lock()
	var keys []string
	for key, entry := range c.index.Entries {
		if entry.Source == source {
			keys = append(keys, key)
		}
	}
	c.mu.Unlock()
	for _, key := range keys {
		c.Delete(key)
	}
	return len(keys)
}

// Clear removes everything.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(c.dir, "out")); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(c.dir, "out"), 0755); err != nil {
		return err
	}
	c.index = emptyIndex()
	c.stats = Stats{}
	return c.saveIndexLocked()
}

// GetStats returns a snapshot of hit counters.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *Cache) miss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}

// ensureSpace evicts least recently used entries until the new payload
// fits.
func (c *Cache) ensureSpace(needed int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats.TotalSize+needed <= c.maxSize {
		return nil
	}
	entries := make([]*Entry, 0, len(c.index.Entries))
	for _, e := range c.index.Entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastAccess.Before(entries[j].LastAccess)
	})
	for _, e := range entries {
		if c.stats.TotalSize+needed <= c.maxSize {
			break
		}
		os.Remove(e.Path)
		c.stats.TotalSize -= e.Size
		c.stats.Evictions++
		delete(c.index.Entries, e.Key)
	}
	return nil
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return err
	}
	if idx.Entries == nil {
		idx.Entries = map[string]*Entry{}
	}
	c.index = &idx
	for _, e := range idx.Entries {
		c.stats.TotalSize += e.Size
	}
	return nil
}

func (c *Cache) saveIndex() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.saveIndexLocked()
}

func (c *Cache) saveIndexLocked() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0644)
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, key)
}
