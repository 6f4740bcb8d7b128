// Package aggregate implements the aggregation engine: it orchestrates
// ledger scans, classification and the read-through snapshot cache, and
// serves both single-student and class-wide aggregate views.
package aggregate

import (
	"context"
	"errors"
	"sort"

	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/domain/shared"
	"github.com/digitschool/academic-core/pkg/logger"
)

// Engine computes aggregate snapshots on cache miss and repopulates the
// cache. All dependencies are injected; the engine holds no global state.
type Engine struct {
	ledger grade.Ledger
	cache  grade.SnapshotCache
	roster roster.Repository
	log    *logger.Logger
}

// NewEngine creates an aggregation engine.
func NewEngine(ledger grade.Ledger, cache grade.SnapshotCache, rosterRepo roster.Repository, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		ledger: ledger,
		cache:  cache,
		roster: rosterRepo,
		log:    log,
	}
}

// StudentSnapshot returns the aggregate for one student/term, serving
// from cache when possible. On a miss it scans the ledger, computes the
// snapshot, populates the cache with the fixed TTL and returns it.
//
// Concurrent readers may race to recompute after an invalidation; both
// compute the same value from the same ledger state, so the race is
// wasteful but never incorrect.
func (e *Engine) StudentSnapshot(ctx context.Context, studentID string, term shared.Term) (*grade.Snapshot, error) {
	if term.IsZero() {
		return nil, shared.ErrEmptyTerm
	}
	studentID, err := shared.ParseEntityID(studentID)
	if err != nil {
		return nil, shared.ErrInvalidStudent
	}

	key := grade.CacheKey(studentID, term)

	cached, err := e.cache.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, grade.ErrCacheMiss) {
		// A degraded cache must not take reads down with it; fall
		// through to the ledger scan.
		e.log.Warn("snapshot cache read failed, recomputing", logger.String("key", key), logger.Err(err))
	}

	return e.computeAndCache(ctx, studentID, term, key)
}

// FreshStudentSnapshot bypasses the cached value and recomputes from the
// ledger, then repopulates the cache. Report generation uses this so an
// artifact always reflects ledger state at generation time.
func (e *Engine) FreshStudentSnapshot(ctx context.Context, studentID string, term shared.Term) (*grade.Snapshot, error) {
	if term.IsZero() {
		return nil, shared.ErrEmptyTerm
	}
	studentID, err := shared.ParseEntityID(studentID)
	if err != nil {
		return nil, shared.ErrInvalidStudent
	}

	return e.computeAndCache(ctx, studentID, term, grade.CacheKey(studentID, term))
}

func (e *Engine) computeAndCache(ctx context.Context, studentID string, term shared.Term, key string) (*grade.Snapshot, error) {
	records, err := e.ledger.Query(ctx, studentID, term)
	if err != nil {
		return nil, shared.WrapError("aggregate", "StudentSnapshot", shared.ErrDependencyUnavailable, "ledger scan failed", err)
	}

	snap := grade.NewSnapshot(studentID, term, records)

	if err := e.cache.Put(ctx, key, snap, grade.SnapshotTTL); err != nil {
		// The snapshot is already correct; a failed repopulation only
		// costs the next reader a recompute.
		e.log.Warn("snapshot cache put failed", logger.String("key", key), logger.Err(err))
	}

	return snap, nil
}

// StudentStatistics is one row of a class-wide aggregate view.
type StudentStatistics struct {
	StudentID    string   `json:"student_id"`
	StudentEmail string   `json:"student_email"`
	Average      *float64 `json:"average"`
	TotalGrades  int      `json:"total_grades"`
	Orientation  string   `json:"orientation,omitempty"`
}

// ClassStatistics computes per-student statistics for every enrolled
// student in one grouped scan. Students with no grades appear with a nil
// average. Ordering: descending by average, nil averages last, ties kept
// in enrollment order (stable sort).
//
// This is a batch path and deliberately does not touch the single-student
// cache: one grouped scan beats N cache round-trips for a whole class.
func (e *Engine) ClassStatistics(ctx context.Context, classID string, term shared.Term) ([]StudentStatistics, error) {
	if term.IsZero() {
		return nil, shared.ErrEmptyTerm
	}
	classID, err := shared.ParseEntityID(classID)
	if err != nil {
		return nil, shared.WrapError("aggregate", "ClassStatistics", shared.ErrInvalidID, "invalid class ID", err)
	}

	enrollments, err := e.roster.EnrolledStudents(ctx, classID)
	if err != nil {
		return nil, err
	}

	pairs, err := e.ledger.QueryByClass(ctx, classID, term)
	if err != nil {
		return nil, shared.WrapError("aggregate", "ClassStatistics", shared.ErrDependencyUnavailable, "ledger scan failed", err)
	}

	byStudent := make(map[string][]*grade.Record, len(enrollments))
	for _, p := range pairs {
		byStudent[p.StudentID] = append(byStudent[p.StudentID], p.Record)
	}

	rows := make([]StudentStatistics, 0, len(enrollments))
	for _, enr := range enrollments {
		summary := grade.Summarize(byStudent[enr.StudentID])

		row := StudentStatistics{
			StudentID:    enr.StudentID,
			StudentEmail: enr.StudentEmail,
			Average:      summary.OverallAverage,
			TotalGrades:  summary.TotalGrades,
		}
		if band, ok := summary.Orientation(); ok {
			row.Orientation = band.String()
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Average, rows[j].Average
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})

	return rows, nil
}
