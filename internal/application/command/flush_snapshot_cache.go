package command

import (
	"context"
	"time"

	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/shared"
	"github.com/digitschool/academic-core/pkg/logger"
)

// FlushSnapshotCacheCommand clears every cached aggregate snapshot.
// Operators run it after bulk grade imports that bypass the append
// path, where per-key invalidation never fired.
type FlushSnapshotCacheCommand struct{}

// FlushSnapshotCacheResult reports when the flush completed.
type FlushSnapshotCacheResult struct {
	FlushedAt time.Time `json:"flushed_at"`
}

// FlushSnapshotCacheHandler empties the aggregate snapshot cache.
// Reads after a flush recompute from the ledger, so the operation is
// safe at any time; it only costs cache warmth.
type FlushSnapshotCacheHandler struct {
	cache grade.SnapshotCache
	log   *logger.Logger
}

// NewFlushSnapshotCacheHandler creates the handler.
func NewFlushSnapshotCacheHandler(cache grade.SnapshotCache, log *logger.Logger) *FlushSnapshotCacheHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &FlushSnapshotCacheHandler{cache: cache, log: log}
}

// Handle drops all cached snapshots.
func (h *FlushSnapshotCacheHandler) Handle(ctx context.Context, _ FlushSnapshotCacheCommand) (*FlushSnapshotCacheResult, error) {
	if err := h.cache.InvalidateAll(ctx); err != nil {
		return nil, shared.WrapError("grade", "FlushCache", shared.ErrDependencyUnavailable, "cache flush failed", err)
	}

	h.log.Info("aggregate snapshot cache flushed")
	return &FlushSnapshotCacheResult{FlushedAt: time.Now().UTC()}, nil
}
