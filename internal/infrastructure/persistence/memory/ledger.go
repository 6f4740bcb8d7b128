// Package memory provides in-memory implementations of the persistence
// ports. They back the test suites and local development; production
// wiring uses the postgres and redis packages instead.
package memory

import (
	"context"
	"sync"

	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// Ledger is an append-only in-memory grade store. The class join runs
// through the attached roster, mirroring the SQL join in production.
type Ledger struct {
	mu      sync.RWMutex
	records []*grade.Record
	roster  *Roster

	// AppendErr, when set, makes Append fail. Tests use this to exercise
	// the write path's failure handling.
	AppendErr error
}

// NewLedger creates a ledger joined to the given roster.
func NewLedger(roster *Roster) *Ledger {
	return &Ledger{roster: roster}
}

// Append stores a copy of the record.
func (l *Ledger) Append(_ context.Context, record *grade.Record) error {
	if l.AppendErr != nil {
		return l.AppendErr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	clone := *record
	l.records = append(l.records, &clone)
	return nil
}

// Query returns a student's records, most recent first. A zero term
// matches all terms.
func (l *Ledger) Query(_ context.Context, studentID string, term shared.Term) ([]*grade.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*grade.Record
	for i := len(l.records) - 1; i >= 0; i-- {
		r := l.records[i]
		if r.StudentID != studentID {
			continue
		}
		if !term.IsZero() && r.Term != term {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

// QueryByClass joins records against the roster's enrollments.
func (l *Ledger) QueryByClass(ctx context.Context, classID string, term shared.Term) ([]grade.StudentRecord, error) {
	enrollments, err := l.roster.EnrolledStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]bool, len(enrollments))
	for _, e := range enrollments {
		enrolled[e.StudentID] = true
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []grade.StudentRecord
	for _, r := range l.records {
		if !enrolled[r.StudentID] {
			continue
		}
		if !term.IsZero() && r.Term != term {
			continue
		}
		clone := *r
		out = append(out, grade.StudentRecord{StudentID: r.StudentID, Record: &clone})
	}
	return out, nil
}

// QueryTerm returns every record for the term across students.
func (l *Ledger) QueryTerm(_ context.Context, term shared.Term) ([]grade.StudentRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []grade.StudentRecord
	for _, r := range l.records {
		if r.Term != term {
			continue
		}
		clone := *r
		out = append(out, grade.StudentRecord{StudentID: r.StudentID, Record: &clone})
	}
	return out, nil
}

// Len reports the number of stored records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
