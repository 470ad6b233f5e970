// Package cachemem caches per-document page dimensions. Object-store refs
// are never rewritten in place (a new artifact gets a new ref), so entries
// can live until TTL without an invalidation path.
package cachemem

import (
	"context"
	"sync"
	"time"
)

// PageDim is one page's size in points.
type PageDim struct {
	Width  float64
	Height float64
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	dims      []PageDim
	expiresAt time.Time
	hasExpiry bool
}

func New() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

func (c *Cache) Get(_ context.Context, ref string) ([]PageDim, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[ref]
	if !ok {
		return nil, false
	}
	if entry.hasExpiry && time.Now().After(entry.expiresAt) {
		delete(c.entries, ref)
		return nil, false
	}
	dims := make([]PageDim, len(entry.dims))
	copy(dims, entry.dims)
	return dims, true
}

func (c *Cache) Put(_ context.Context, ref string, dims []PageDim, ttl time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]PageDim, len(dims))
	copy(stored, dims)
	entry := cacheEntry{dims: stored}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.entries[ref] = entry
}
