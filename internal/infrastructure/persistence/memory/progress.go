package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/digitschool/academic-core/internal/domain/progress"
)

// ProgressRepository is an in-memory teacher coverage store keyed by
// teacher/class pair.
type ProgressRepository struct {
	mu   sync.RWMutex
	rows map[string]*progress.TeacherProgress

	UpsertErr error
}

// NewProgressRepository creates an empty store.
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{rows: make(map[string]*progress.TeacherProgress)}
}

// Upsert creates or replaces the row for the teacher/class pair.
func (r *ProgressRepository) Upsert(_ context.Context, p *progress.TeacherProgress) error {
	if r.UpsertErr != nil {
		return r.UpsertErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *p
	r.rows[p.TeacherID+"/"+p.ClassID] = &clone
	return nil
}

// ListByTeacher returns the teacher's rows, most recently updated first.
func (r *ProgressRepository) ListByTeacher(_ context.Context, teacherID string) ([]*progress.TeacherProgress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*progress.TeacherProgress
	for _, row := range r.rows {
		if row.TeacherID != teacherID {
			continue
		}
		clone := *row
		out = append(out, &clone)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
