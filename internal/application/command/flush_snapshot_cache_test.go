package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/shared"
	"github.com/digitschool/academic-core/internal/infrastructure/persistence/memory"
)

func TestFlushSnapshotCache_DropsEveryEntry(t *testing.T) {
	cache := memory.NewSnapshotCache()
	ctx := context.Background()

	for _, key := range []string{
		grade.CacheKey(studentAlice, "T1"),
		grade.CacheKey(studentBob, "T1"),
	} {
		require.NoError(t, cache.Put(ctx, key, &grade.Snapshot{TotalGrades: 1}, grade.SnapshotTTL))
	}

	result, err := NewFlushSnapshotCacheHandler(cache, nil).Handle(ctx, FlushSnapshotCacheCommand{})

	require.NoError(t, err)
	assert.False(t, result.FlushedAt.IsZero())
	assert.False(t, cache.Contains(grade.CacheKey(studentAlice, "T1")))
	assert.False(t, cache.Contains(grade.CacheKey(studentBob, "T1")))
}

func TestFlushSnapshotCache_CacheDownIsDependencyError(t *testing.T) {
	cache := memory.NewSnapshotCache()
	cache.InvalidateErr = assert.AnError

	_, err := NewFlushSnapshotCacheHandler(cache, nil).Handle(context.Background(), FlushSnapshotCacheCommand{})

	require.Error(t, err)
	assert.True(t, shared.IsDependencyUnavailable(err))
}
