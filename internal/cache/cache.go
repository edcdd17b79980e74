// Package cache provides a thread-safe in-memory cache keyed by string.
// Entries never expire on their own: the cache lives for the process
// lifetime and is emptied only by explicit Clear calls, so the same key
// always yields the same value until a caller resets it.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Entry wraps a cached value with its creation time.
type Entry[V any] struct {
	Key       string
	Value     V
	CreatedAt time.Time
}

// Cache is a generic keyed in-memory cache.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]Entry[V])}
}

// Get returns the cached value for key, if present.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return entry.Value, ok
}

// GetEntry returns the full entry for key, including metadata.
func (c *Cache[V]) GetEntry(key string) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return entry, ok
}

// Set stores a value under key, replacing any previous entry.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry[V]{Key: key, Value: value, CreatedAt: time.Now()}
}

// Delete removes a single entry.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry[V])
}

// ClearPrefix removes every entry whose key starts with prefix and returns
// the number removed.
func (c *Cache[V]) ClearPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Keys returns all cache keys in unspecified order.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// Stats describes cache usage for observability and tests.
type Stats struct {
	Size        int
	Keys        []string
	OldestEntry time.Time
	NewestEntry time.Time
}

// Stats returns a snapshot of cache usage.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{Size: len(c.entries)}
	for key, entry := range c.entries {
		stats.Keys = append(stats.Keys, key)
		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		if entry.CreatedAt.After(stats.NewestEntry) {
			stats.NewestEntry = entry.CreatedAt
		}
	}
	return stats
}
