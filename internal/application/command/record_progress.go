package command

import (
	"context"

	"github.com/digitschool/academic-core/internal/domain/progress"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// RecordProgressCommand updates a teacher's curriculum coverage for a class.
type RecordProgressCommand struct {
	TeacherID       string
	ClassID         string
	CoveragePercent float64
}

// RecordProgressResult returns the stored row.
type RecordProgressResult struct {
	Progress *progress.TeacherProgress `json:"progress"`
}

// RecordProgressHandler upserts teacher coverage.
type RecordProgressHandler struct {
	repo progress.Repository
}

// NewRecordProgressHandler creates the handler.
func NewRecordProgressHandler(repo progress.Repository) *RecordProgressHandler {
	return &RecordProgressHandler{repo: repo}
}

// Handle validates and upserts.
func (h *RecordProgressHandler) Handle(ctx context.Context, cmd RecordProgressCommand) (*RecordProgressResult, error) {
	p, err := progress.New(cmd.TeacherID, cmd.ClassID, cmd.CoveragePercent)
	if err != nil {
		return nil, err
	}

	if err := h.repo.Upsert(ctx, p); err != nil {
		// The store rejects coverage for a class it does not know.
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.WrapError("progress", "Record", shared.ErrDependencyUnavailable, "progress upsert failed", err)
	}

	return &RecordProgressResult{Progress: p}, nil
}
