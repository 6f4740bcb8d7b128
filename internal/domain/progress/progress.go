// Package progress tracks how much of the curriculum a teacher has
// covered in a class. One row per teacher/class pair, updated in place.
package progress

import (
	"context"
	"time"

	"github.com/digitschool/academic-core/internal/domain/shared"
)

// TeacherProgress is the coverage record for one teacher/class pair.
type TeacherProgress struct {
	TeacherID       string    `json:"teacher_id"`
	ClassID         string    `json:"class_id"`
	CoveragePercent float64   `json:"coverage_percent"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// New validates identifiers and the coverage range [0, 100].
func New(teacherID, classID string, coveragePercent float64) (*TeacherProgress, error) {
	tid, err := shared.ParseEntityID(teacherID)
	if err != nil {
		return nil, shared.WrapError("progress", "Validate", shared.ErrInvalidID, "invalid teacher ID", err)
	}
	cid, err := shared.ParseEntityID(classID)
	if err != nil {
		return nil, shared.WrapError("progress", "Validate", shared.ErrInvalidID, "invalid class ID", err)
	}
	if coveragePercent < 0 || coveragePercent > 100 {
		return nil, shared.NewDomainError("progress", "Validate", shared.ErrValueOutOfRange, "coverage must be between 0 and 100")
	}

	return &TeacherProgress{
		TeacherID:       tid,
		ClassID:         cid,
		CoveragePercent: coveragePercent,
		UpdatedAt:       time.Now().UTC(),
	}, nil
}

// Repository stores coverage records.
type Repository interface {
	// Upsert creates or replaces the row for the teacher/class pair.
	Upsert(ctx context.Context, p *TeacherProgress) error

	// ListByTeacher returns a teacher's coverage rows, most recently
	// updated first.
	ListByTeacher(ctx context.Context, teacherID string) ([]*TeacherProgress, error)
}
