package redis

import (
	"context"
	"errors"
	"time"

	"github.com/digitschool/academic-core/internal/domain/grade"
)

// SnapshotCache implements grade.SnapshotCache using the generic Redis
// Cache. Keys arrive fully formed from grade.CacheKey, already carrying
// the "grades:" prefix.
type SnapshotCache struct {
	cache *Cache
}

// NewSnapshotCache creates a new SnapshotCache.
func NewSnapshotCache(cache *Cache) *SnapshotCache {
	return &SnapshotCache{cache: cache}
}

// Get returns the cached snapshot or grade.ErrCacheMiss.
func (s *SnapshotCache) Get(ctx context.Context, key string) (*grade.Snapshot, error) {
	var snap grade.Snapshot
	if err := s.cache.Get(ctx, key, &snap); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, grade.ErrCacheMiss
		}
		return nil, err
	}
	return &snap, nil
}

// Put replaces any existing entry for the key.
func (s *SnapshotCache) Put(ctx context.Context, key string, snap *grade.Snapshot, ttl time.Duration) error {
	if snap == nil {
		return nil
	}
	return s.cache.Set(ctx, key, snap, ttl)
}

// Invalidate removes the entry; an absent key is a no-op.
func (s *SnapshotCache) Invalidate(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}

// InvalidateAll clears every cached aggregate snapshot.
func (s *SnapshotCache) InvalidateAll(ctx context.Context) error {
	return s.cache.DeleteByPattern(ctx, PrefixGrades+"*")
}
