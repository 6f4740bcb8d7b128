package memory

import (
	"context"
	"sync"
	"time"
)

// GenerationLock is an in-memory report generation lock with expiry
// checked on acquire. It backs tests and the database-less dev mode.
type GenerationLock struct {
	mu    sync.Mutex
	holds map[string]time.Time

	AcquireErr error
}

// NewGenerationLock creates an empty lock table.
func NewGenerationLock() *GenerationLock {
	return &GenerationLock{holds: make(map[string]time.Time)}
}

// Acquire takes the lock unless a live hold exists for the name.
func (l *GenerationLock) Acquire(_ context.Context, name string, ttl time.Duration) (bool, error) {
	if l.AcquireErr != nil {
		return false, l.AcquireErr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if expiresAt, ok := l.holds[name]; ok && time.Now().Before(expiresAt) {
		return false, nil
	}
	l.holds[name] = time.Now().Add(ttl)
	return true, nil
}

// Release frees the lock; unheld names are a no-op.
func (l *GenerationLock) Release(_ context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.holds, name)
	return nil
}

// Held reports whether a live hold exists, for test assertions.
func (l *GenerationLock) Held(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiresAt, ok := l.holds[name]
	return ok && time.Now().Before(expiresAt)
}
