// Package cache persists parsed skills between runs so repeated library
// loads skip re-parsing unchanged files.
package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/devskills/skillkit/internal/model"
	"github.com/devskills/skillkit/internal/util"
)

// Entry represents a cached skill entry with metadata
type Entry struct {
	Skill      model.Skill `json:"skill"`
	CachedAt   time.Time   `json:"cached_at"`
	SourcePath string      `json:"source_path"`
	SourceMod  time.Time   `json:"source_mod"`
}

// Cache manages cached skills for a named scope, keyed by source path
type Cache struct {
	Version string           `json:"version"`
	Entries map[string]Entry `json:"entries"`
	path    string
}

const (
	cacheVersion = "1.0"
	// DefaultTTL is the default time-to-live for cache entries
	DefaultTTL = 1 * time.Hour
)

// New creates or loads a cache for the given scope name (e.g. "library").
// If cacheDir is empty, defaults to ~/.cache/skillkit
func New(name string, cacheDir string) (*Cache, error) {
	if cacheDir == "" {
		cacheDir = util.SkillkitCachePath()
	}
	if err := os.MkdirAll(cacheDir, 0o750); err != nil {
		return nil, err
	}

	cachePath := filepath.Join(cacheDir, name+".json")
	cache := &Cache{
		Version: cacheVersion,
		Entries: make(map[string]Entry),
		path:    cachePath,
	}

	// Load the existing cache if one is present. Corrupted or
	// version-mismatched caches are discarded silently.
	// #nosec G304 - cachePath is constructed from trusted configuration path
	if data, err := os.ReadFile(cachePath); err == nil {
		if err := json.Unmarshal(data, cache); err != nil {
			cache.Entries = make(map[string]Entry)
		}
		if cache.Version != cacheVersion {
			cache.Entries = make(map[string]Entry)
			cache.Version = cacheVersion
		}
	}

	cache.path = cachePath
	return cache, nil
}

// Get retrieves a cached skill if its source file still exists and has
// not been modified since it was cached.
func (c *Cache) Get(key string) (model.Skill, bool) {
	entry, exists := c.Entries[key]
	if !exists {
		return model.Skill{}, false
	}

	info, err := os.Stat(entry.SourcePath)
	if err != nil || info.ModTime().After(entry.SourceMod) {
		// Source removed or modified, entry is stale
		delete(c.Entries, key)
		return model.Skill{}, false
	}

	return entry.Skill, true
}

// Set stores a skill in the cache keyed by its source path.
func (c *Cache) Set(key string, skill model.Skill) {
	sourceMod := time.Now()
	if info, err := os.Stat(skill.Path); err == nil {
		sourceMod = info.ModTime()
	}

	c.Entries[key] = Entry{
		Skill:      skill,
		CachedAt:   time.Now(),
		SourcePath: skill.Path,
		SourceMod:  sourceMod,
	}
}

// Save persists the cache to disk
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// #nosec G306 - cache files should be readable by user
	return os.WriteFile(c.path, data, 0o644)
}

// Clear removes all entries and deletes the cache file. A cache file
// that was never saved is not an error.
func (c *Cache) Clear() error {
	c.Entries = make(map[string]Entry)
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the location of the cache file on disk.
func (c *Cache) Path() string {
	return c.path
}

// Size returns the number of entries in the cache
func (c *Cache) Size() int {
	return len(c.Entries)
}

// IsStale checks if any cache entry has expired based on TTL
func (c *Cache) IsStale(ttl time.Duration) bool {
	for _, entry := range c.Entries {
		if time.Since(entry.CachedAt) > ttl {
			return true
		}
	}
	return false
}

// Prune removes stale entries based on TTL
func (c *Cache) Prune(ttl time.Duration) int {
	pruned := 0
	for key, entry := range c.Entries {
		if time.Since(entry.CachedAt) > ttl {
			delete(c.Entries, key)
			pruned++
		}
	}
	return pruned
}
