package postgres

import (
	"context"
	"fmt"

	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RosterRepository implements roster.Repository for PostgreSQL.
type RosterRepository struct {
	conn *Connection
}

// NewRosterRepository creates a new RosterRepository.
func NewRosterRepository(conn *Connection) *RosterRepository {
	return &RosterRepository{conn: conn}
}

// GetClass returns a class by ID.
func (r *RosterRepository) GetClass(ctx context.Context, classID string) (*roster.Class, error) {
	query := `
		SELECT id, name, level, created_at
		FROM classes
		WHERE id = $1
	`

	var class roster.Class
	err := r.conn.QueryRow(ctx, query, classID).Scan(
		&class.ID,
		&class.Name,
		&class.Level,
		&class.CreatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrClassNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}

	return &class, nil
}

// EnrolledStudents returns the roster in enrollment order. That order is
// the stable tie-break for class statistics.
func (r *RosterRepository) EnrolledStudents(ctx context.Context, classID string) ([]roster.Enrollment, error) {
	exists, err := r.classExists(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrClassNotFound
	}

	query := `
		SELECT cm.student_id, s.email, cm.enrolled_at
		FROM class_members cm
		JOIN students s ON s.id = cm.student_id
		WHERE cm.class_id = $1
		ORDER BY cm.enrolled_at ASC, cm.student_id ASC
	`

	rows, err := r.conn.Query(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []roster.Enrollment
	for rows.Next() {
		var e roster.Enrollment
		if err := rows.Scan(&e.StudentID, &e.StudentEmail, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}

// StudentEmail returns the student's email.
func (r *RosterRepository) StudentEmail(ctx context.Context, studentID string) (string, error) {
	var email string
	err := r.conn.QueryRow(ctx,
		"SELECT email FROM students WHERE id = $1",
		studentID,
	).Scan(&email)
	if IsNoRows(err) {
		return "", shared.ErrStudentNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get student email: %w", err)
	}
	return email, nil
}

func (r *RosterRepository) classExists(ctx context.Context, classID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM classes WHERE id = $1)",
		classID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check class existence: %w", err)
	}
	return exists, nil
}
