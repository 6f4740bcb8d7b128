package postgres

import (
	"context"
	"fmt"

	"github.com/digitschool/academic-core/internal/domain/progress"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER PROGRESS IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TeacherProgressRepository implements progress.Repository for PostgreSQL.
type TeacherProgressRepository struct {
	conn *Connection
}

// NewTeacherProgressRepository creates a new TeacherProgressRepository.
func NewTeacherProgressRepository(conn *Connection) *TeacherProgressRepository {
	return &TeacherProgressRepository{conn: conn}
}

// Upsert creates or replaces the row for the teacher/class pair.
func (r *TeacherProgressRepository) Upsert(ctx context.Context, p *progress.TeacherProgress) error {
	query := `
		INSERT INTO teacher_progress (teacher_id, class_id, coverage_percent, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT(teacher_id, class_id) DO UPDATE SET
			coverage_percent = EXCLUDED.coverage_percent,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		p.TeacherID,
		p.ClassID,
		p.CoveragePercent,
		p.UpdatedAt,
	)
	if IsForeignKeyViolation(err) {
		return shared.ErrClassNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to upsert teacher progress: %w", err)
	}

	return nil
}

// ListByTeacher returns the teacher's rows, most recently updated first.
func (r *TeacherProgressRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*progress.TeacherProgress, error) {
	query := `
		SELECT teacher_id, class_id, coverage_percent, updated_at
		FROM teacher_progress
		WHERE teacher_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.conn.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher progress: %w", err)
	}
	defer rows.Close()

	var out []*progress.TeacherProgress
	for rows.Next() {
		var p progress.TeacherProgress
		if err := rows.Scan(&p.TeacherID, &p.ClassID, &p.CoveragePercent, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan teacher progress: %w", err)
		}
		out = append(out, &p)
	}

	return out, rows.Err()
}
