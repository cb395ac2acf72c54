package tmdb

import (
	"context"
	"sync"
	"time"
)

// LookupCache stores raw TMDB response bodies. Implementations must be
// safe for concurrent use.
type LookupCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// memoryCache is the process-local LookupCache used when no persistent
// cache is configured.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		body:    value,
		expires: c.now().Add(ttl),
	}
	return nil
}
