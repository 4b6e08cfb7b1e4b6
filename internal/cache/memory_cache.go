package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	url       string
	expiresAt time.Time // zero for permanent entries
}

// MemoryGenerationCache keeps entries in process. Expired entries are
// evicted lazily on read or by Sweep.
type MemoryGenerationCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryGenerationCache creates an in-process generation cache
func NewMemoryGenerationCache(ttl time.Duration) *MemoryGenerationCache {
	return &MemoryGenerationCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryGenerationCache) key(kind MediaKind, fp string) string {
	return string(kind) + ":" + fp
}

func (c *MemoryGenerationCache) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}

func (c *MemoryGenerationCache) Get(ctx context.Context, kind MediaKind, fp string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.key(kind, fp)
	e, ok := c.entries[k]
	if !ok {
		return "", false, nil
	}
	if c.expired(e) {
		delete(c.entries, k)
		return "", false, nil
	}
	return e.url, true, nil
}

func (c *MemoryGenerationCache) Set(ctx context.Context, kind MediaKind, fp, url string, permanent bool) error {
	e := memoryEntry{url: url}
	if !permanent {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[c.key(kind, fp)] = e
	c.mu.Unlock()
	return nil
}

// Sweep removes expired entries and reports how many were dropped
func (c *MemoryGenerationCache) Sweep(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

func (c *MemoryGenerationCache) Stats(ctx context.Context) (CacheStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var stats CacheStats
	for _, e := range c.entries {
		if c.expired(e) {
			continue
		}
		stats.Total++
		if e.expiresAt.IsZero() {
			stats.Permanent++
		} else {
			stats.Temporary++
		}
	}
	return stats, nil
}
