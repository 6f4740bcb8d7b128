package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitschool/academic-core/internal/domain/shared"
	"github.com/digitschool/academic-core/internal/infrastructure/persistence/memory"
)

const teacherDiallo = "c0ffee00-1234-4abc-9def-556677889900"

func TestRecordProgress_Upserts(t *testing.T) {
	repo := memory.NewProgressRepository()
	handler := NewRecordProgressHandler(repo)
	ctx := context.Background()

	result, err := handler.Handle(ctx, RecordProgressCommand{
		TeacherID:       teacherDiallo,
		ClassID:         classTerminaleC,
		CoveragePercent: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, 40.0, result.Progress.CoveragePercent)

	// Same teacher/class again replaces, it does not accumulate rows.
	_, err = handler.Handle(ctx, RecordProgressCommand{
		TeacherID:       teacherDiallo,
		ClassID:         classTerminaleC,
		CoveragePercent: 65,
	})
	require.NoError(t, err)

	entries, err := repo.ListByTeacher(ctx, teacherDiallo)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 65.0, entries[0].CoveragePercent)
}

func TestRecordProgress_UnknownClassSurfacesAsNotFound(t *testing.T) {
	// The SQL store rejects coverage for an unknown class; the handler
	// must pass that through instead of reporting the store as down.
	repo := memory.NewProgressRepository()
	repo.UpsertErr = shared.ErrClassNotFound
	handler := NewRecordProgressHandler(repo)

	_, err := handler.Handle(context.Background(), RecordProgressCommand{
		TeacherID:       teacherDiallo,
		ClassID:         classTerminaleC,
		CoveragePercent: 50,
	})

	require.ErrorIs(t, err, shared.ErrClassNotFound)
	assert.True(t, shared.IsNotFound(err))
	assert.False(t, shared.IsDependencyUnavailable(err))
}

func TestRecordProgress_Validation(t *testing.T) {
	handler := NewRecordProgressHandler(memory.NewProgressRepository())
	ctx := context.Background()

	_, err := handler.Handle(ctx, RecordProgressCommand{
		TeacherID:       "not-a-uuid",
		ClassID:         classTerminaleC,
		CoveragePercent: 50,
	})
	assert.True(t, shared.IsValidation(err))

	_, err = handler.Handle(ctx, RecordProgressCommand{
		TeacherID:       teacherDiallo,
		ClassID:         classTerminaleC,
		CoveragePercent: 101,
	})
	assert.True(t, shared.IsValidation(err))
}
