package metadata

import (
	"sync"
	"sync/atomic"
)

// Cache memoizes merged descriptors by ident.
//
// Entries are never invalidated: descriptors are static files read once
// per process. A Cache is safe for concurrent use and may be shared by
// several loaders over the same search paths.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Metadata

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Metadata)}
}

// Get returns the cached descriptor for ident.
func (c *Cache) Get(ident string) (*Metadata, bool) {
	c.mu.RLock()
	m, ok := c.entries[ident]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return m, ok
}

// Put stores a descriptor. An existing entry is kept.
func (c *Cache) Put(ident string, m *Metadata) *Metadata {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[ident]; ok {
		return existing
	}
	c.entries[ident] = m
	return m
}

// Len returns the number of cached descriptors.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the number of hits and misses so far.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
