package postgres

import (
	"context"
	"fmt"

	"github.com/digitschool/academic-core/internal/domain/report"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPORT CATALOG IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ReportRepository implements report.Catalog for PostgreSQL.
type ReportRepository struct {
	conn *Connection
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(conn *Connection) *ReportRepository {
	return &ReportRepository{conn: conn}
}

// Record inserts a catalog entry. Locators embed a millisecond timestamp,
// so the unique constraint only fires on a genuine double insert.
func (r *ReportRepository) Record(ctx context.Context, artifact *report.Artifact) error {
	query := `
		INSERT INTO generated_reports (id, kind, subject_id, term, locator, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		artifact.ID,
		string(artifact.Kind),
		artifact.SubjectID,
		string(artifact.Term),
		artifact.Locator,
		artifact.GeneratedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("report", "Record", shared.ErrAlreadyExists, "report already cataloged")
		}
		return fmt.Errorf("failed to record report: %w", err)
	}

	return nil
}

// List returns matching entries, newest first.
func (r *ReportRepository) List(ctx context.Context, filter report.ListFilter) ([]*report.Artifact, error) {
	query := `
		SELECT id, kind, subject_id, term, locator, generated_at
		FROM generated_reports
	`

	var args []interface{}
	var conditions []string
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)))
	}
	if !filter.Term.IsZero() {
		args = append(args, string(filter.Term))
		conditions = append(conditions, fmt.Sprintf("term = $%d", len(args)))
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY generated_at DESC"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var artifacts []*report.Artifact
	for rows.Next() {
		var a report.Artifact
		var kind, term string

		if err := rows.Scan(&a.ID, &kind, &a.SubjectID, &term, &a.Locator, &a.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		a.Kind = report.Kind(kind)
		a.Term = shared.Term(term)
		artifacts = append(artifacts, &a)
	}

	return artifacts, rows.Err()
}

// FindByLocator returns the entry for a locator.
func (r *ReportRepository) FindByLocator(ctx context.Context, locator string) (*report.Artifact, error) {
	query := `
		SELECT id, kind, subject_id, term, locator, generated_at
		FROM generated_reports
		WHERE locator = $1
	`

	var a report.Artifact
	var kind, term string

	err := r.conn.QueryRow(ctx, query, locator).Scan(
		&a.ID,
		&kind,
		&a.SubjectID,
		&term,
		&a.Locator,
		&a.GeneratedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	a.Kind = report.Kind(kind)
	a.Term = shared.Term(term)
	return &a, nil
}
