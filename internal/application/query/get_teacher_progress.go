package query

import (
	"context"

	"github.com/digitschool/academic-core/internal/domain/progress"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// GetTeacherProgressQuery lists a teacher's coverage rows.
type GetTeacherProgressQuery struct {
	TeacherID string
}

// GetTeacherProgressResult carries the rows, most recently updated first.
type GetTeacherProgressResult struct {
	Progress []*progress.TeacherProgress `json:"progress"`
	Count    int                         `json:"count"`
}

// GetTeacherProgressHandler reads the progress repository.
type GetTeacherProgressHandler struct {
	repo progress.Repository
}

// NewGetTeacherProgressHandler creates the handler.
func NewGetTeacherProgressHandler(repo progress.Repository) *GetTeacherProgressHandler {
	return &GetTeacherProgressHandler{repo: repo}
}

// Handle validates and lists.
func (h *GetTeacherProgressHandler) Handle(ctx context.Context, q GetTeacherProgressQuery) (*GetTeacherProgressResult, error) {
	teacherID, err := shared.ParseEntityID(q.TeacherID)
	if err != nil {
		return nil, shared.WrapError("progress", "List", shared.ErrInvalidID, "invalid teacher ID", err)
	}

	rows, err := h.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, shared.WrapError("progress", "List", shared.ErrDependencyUnavailable, "progress list failed", err)
	}
	if rows == nil {
		rows = []*progress.TeacherProgress{}
	}

	return &GetTeacherProgressResult{Progress: rows, Count: len(rows)}, nil
}
