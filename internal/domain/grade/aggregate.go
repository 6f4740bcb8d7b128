package grade

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/digitschool/academic-core/internal/domain/orientation"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// Summary is the result of the grouping/averaging primitive. It is shared
// by the single-student path, the class statistics path and the report
// renderer so the three can never drift apart.
type Summary struct {
	// TotalGrades is the number of contributing ledger records.
	TotalGrades int

	// OverallAverage is the record-weighted mean of all scores, rounded
	// half-up to two decimals. Nil when TotalGrades is zero: an empty
	// grade set is valid data, not a zero average.
	OverallAverage *float64

	// Subjects maps each subject to its mean, rounded to two decimals.
	Subjects map[string]float64
}

// Orientation returns the band for the overall average, or ok=false when
// no average is defined.
func (s Summary) Orientation() (orientation.Band, bool) {
	if s.OverallAverage == nil {
		return 0, false
	}
	return orientation.Classify(*s.OverallAverage), true
}

// SubjectNames returns the subjects in lexical order, for deterministic
// rendering and iteration.
func (s Summary) SubjectNames() []string {
	names := make([]string, 0, len(s.Subjects))
	for name := range s.Subjects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summarize computes per-subject means and the record-weighted overall
// mean of a ledger slice. The overall average is the mean across all
// records, not a mean of subject means. Computing twice from the same
// slice yields identical results: decimal arithmetic with a fixed
// two-decimal rounding leaves no room for float drift.
func Summarize(records []*Record) Summary {
	if len(records) == 0 {
		return Summary{TotalGrades: 0, Subjects: map[string]float64{}}
	}

	total := decimal.Zero
	subjectSums := make(map[string]decimal.Decimal)
	subjectCounts := make(map[string]int)

	for _, r := range records {
		score := decimal.NewFromFloat(r.Score.Float64())
		total = total.Add(score)
		subjectSums[r.Subject] = subjectSums[r.Subject].Add(score)
		subjectCounts[r.Subject]++
	}

	subjects := make(map[string]float64, len(subjectSums))
	for subject, sum := range subjectSums {
		avg := sum.Div(decimal.NewFromInt(int64(subjectCounts[subject]))).Round(2)
		subjects[subject] = avg.InexactFloat64()
	}

	overall := total.Div(decimal.NewFromInt(int64(len(records)))).Round(2).InexactFloat64()

	return Summary{
		TotalGrades:    len(records),
		OverallAverage: &overall,
		Subjects:       subjects,
	}
}

// Snapshot is a derived, point-in-time aggregate for one student and
// term, computed from a full scan of the matching ledger slice. It is
// the value held by the aggregation cache, never persisted as a
// first-class record.
type Snapshot struct {
	StudentID      string             `json:"student_id"`
	Term           shared.Term        `json:"term"`
	OverallAverage *float64           `json:"overall_average"`
	TotalGrades    int                `json:"total_grades"`
	Subjects       map[string]float64 `json:"subjects"`
	Orientation    string             `json:"orientation,omitempty"`
	ComputedAt     time.Time          `json:"computed_at"`
}

// SubjectNames returns the subjects in lexical order, for deterministic
// rendering and iteration.
func (s *Snapshot) SubjectNames() []string {
	names := make([]string, 0, len(s.Subjects))
	for name := range s.Subjects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSnapshot builds a snapshot from a ledger slice for the given key.
func NewSnapshot(studentID string, term shared.Term, records []*Record) *Snapshot {
	summary := Summarize(records)

	snap := &Snapshot{
		StudentID:      studentID,
		Term:           term,
		OverallAverage: summary.OverallAverage,
		TotalGrades:    summary.TotalGrades,
		Subjects:       summary.Subjects,
		ComputedAt:     time.Now().UTC(),
	}

	if band, ok := summary.Orientation(); ok {
		snap.Orientation = band.String()
	}

	return snap
}

// CacheKey returns the aggregation cache key for a student/term pair.
// Format per the platform's cache key convention: "grades:<student_id>:<term>".
func CacheKey(studentID string, term shared.Term) string {
	return fmt.Sprintf("grades:%s:%s", studentID, term)
}
