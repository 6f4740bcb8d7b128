package memory

import (
	"context"
	"sync"
	"time"

	"github.com/digitschool/academic-core/internal/domain/grade"
)

// SnapshotCache is an in-memory aggregate cache with TTL expiry checked
// on read. Error fields let tests inject failures on individual paths.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry

	GetErr        error
	PutErr        error
	InvalidateErr error

	// Hits and Misses count Get outcomes, for cache-behavior assertions.
	Hits   int
	Misses int
}

type cacheEntry struct {
	snap      *grade.Snapshot
	expiresAt time.Time
}

// NewSnapshotCache creates an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached snapshot or grade.ErrCacheMiss.
func (c *SnapshotCache) Get(_ context.Context, key string) (*grade.Snapshot, error) {
	if c.GetErr != nil {
		return nil, c.GetErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		c.Misses++
		return nil, grade.ErrCacheMiss
	}

	c.Hits++
	clone := *entry.snap
	return &clone, nil
}

// Put replaces the entry wholesale.
func (c *SnapshotCache) Put(_ context.Context, key string, snap *grade.Snapshot, ttl time.Duration) error {
	if c.PutErr != nil {
		return c.PutErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	clone := *snap
	c.entries[key] = cacheEntry{snap: &clone, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Invalidate removes the entry; absent keys are a no-op.
func (c *SnapshotCache) Invalidate(_ context.Context, key string) error {
	if c.InvalidateErr != nil {
		return c.InvalidateErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// InvalidateAll drops every entry.
func (c *SnapshotCache) InvalidateAll(_ context.Context) error {
	if c.InvalidateErr != nil {
		return c.InvalidateErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	return nil
}

// Contains reports whether a live entry exists for the key.
func (c *SnapshotCache) Contains(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	return ok && time.Now().Before(entry.expiresAt)
}
