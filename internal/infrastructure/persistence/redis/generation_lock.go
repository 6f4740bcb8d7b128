package redis

import (
	"context"
	"time"
)

// GenerationLock implements report.GenerationLock on Redis SETNX. The
// full key shape is "lock:report:<kind>:<subject_id>:<term>", so the
// lock is shared by every instance of the service.
type GenerationLock struct {
	cache *Cache
}

// NewGenerationLock creates a new GenerationLock.
func NewGenerationLock(cache *Cache) *GenerationLock {
	return &GenerationLock{cache: cache}
}

// Acquire takes the lock, or reports false when another holder has it.
// The TTL frees the key if the holder crashes before Release.
func (l *GenerationLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return l.cache.SetNX(ctx, l.key(name), time.Now().UTC(), ttl)
}

// Release frees the lock; an absent key is a no-op.
func (l *GenerationLock) Release(ctx context.Context, name string) error {
	return l.cache.Delete(ctx, l.key(name))
}

func (l *GenerationLock) key(name string) string {
	return LockKey(PrefixReport + name)
}
