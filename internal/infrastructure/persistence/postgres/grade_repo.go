package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE LEDGER IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GradeRepository implements grade.Ledger for PostgreSQL.
type GradeRepository struct {
	conn *Connection
}

// NewGradeRepository creates a new GradeRepository.
func NewGradeRepository(conn *Connection) *GradeRepository {
	return &GradeRepository{conn: conn}
}

// Append inserts a new ledger row. The table carries the same score
// check as the domain, so a row that bypassed validation is rejected
// here too.
func (r *GradeRepository) Append(ctx context.Context, record *grade.Record) error {
	query := `
		INSERT INTO grades (id, student_id, subject, term, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		record.ID,
		record.StudentID,
		record.Subject,
		string(record.Term),
		float64(record.Score),
		record.CreatedAt,
	)
	if err != nil {
		if IsCheckViolation(err) {
			return shared.ErrScoreOutOfRange
		}
		return fmt.Errorf("failed to append grade: %w", err)
	}

	return nil
}

// Query returns a student's records, most recent first. A zero term
// matches all terms.
func (r *GradeRepository) Query(ctx context.Context, studentID string, term shared.Term) ([]*grade.Record, error) {
	query := `
		SELECT id, student_id, subject, term, score, created_at
		FROM grades
		WHERE student_id = $1
	`
	args := []interface{}{studentID}

	if !term.IsZero() {
		query += " AND term = $2"
		args = append(args, string(term))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grades: %w", err)
	}
	defer rows.Close()

	return r.scanRecords(rows)
}

// QueryByClass returns records for every enrolled student of a class,
// joined through the roster.
func (r *GradeRepository) QueryByClass(ctx context.Context, classID string, term shared.Term) ([]grade.StudentRecord, error) {
	query := `
		SELECT g.id, g.student_id, g.subject, g.term, g.score, g.created_at
		FROM grades g
		JOIN class_members cm ON cm.student_id = g.student_id
		WHERE cm.class_id = $1
	`
	args := []interface{}{classID}

	if !term.IsZero() {
		query += " AND g.term = $2"
		args = append(args, string(term))
	}
	query += " ORDER BY g.created_at ASC"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grades by class: %w", err)
	}
	defer rows.Close()

	return r.scanStudentRecords(rows)
}

// QueryTerm returns all records for a term across students.
func (r *GradeRepository) QueryTerm(ctx context.Context, term shared.Term) ([]grade.StudentRecord, error) {
	query := `
		SELECT id, student_id, subject, term, score, created_at
		FROM grades
		WHERE term = $1
		ORDER BY created_at ASC
	`

	rows, err := r.conn.Query(ctx, query, string(term))
	if err != nil {
		return nil, fmt.Errorf("failed to query grades by term: %w", err)
	}
	defer rows.Close()

	return r.scanStudentRecords(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *GradeRepository) scanRecords(rows pgx.Rows) ([]*grade.Record, error) {
	var records []*grade.Record
	for rows.Next() {
		record, err := scanGradeRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *GradeRepository) scanStudentRecords(rows pgx.Rows) ([]grade.StudentRecord, error) {
	var pairs []grade.StudentRecord
	for rows.Next() {
		record, err := scanGradeRow(rows)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, grade.StudentRecord{StudentID: record.StudentID, Record: record})
	}
	return pairs, rows.Err()
}

func scanGradeRow(rows pgx.Rows) (*grade.Record, error) {
	var record grade.Record
	var term string
	var score float64

	err := rows.Scan(
		&record.ID,
		&record.StudentID,
		&record.Subject,
		&term,
		&score,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan grade: %w", err)
	}

	record.Term = shared.Term(term)
	record.Score = shared.Score(score)
	return &record, nil
}
