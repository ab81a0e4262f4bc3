// Package cache provides the in-process entity cache used by the storage
// layer for read-mostly lookups.
//
// The coherence rule is read-write: reads populate entries, and every
// write to an entity invalidates its entry before the transaction's
// result becomes observable. There is no other eviction policy, no TTL,
// and no size bound; the cache is owned by the store, not ambient global
// state.
package cache

import "sync"

// Cache is a concurrency-safe map from entity id to entity value.
// Values are stored and returned by value; callers are responsible for
// not sharing interior pointers between cached and live entities.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for key, if present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores value under key, replacing any previous entry.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Invalidate removes the entry for key, if present.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]V)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
