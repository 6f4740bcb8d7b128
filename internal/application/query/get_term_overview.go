package query

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/digitschool/academic-core/internal/application/aggregate"
	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/orientation"
	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// topPerformerLimit caps the leaderboard slice of the overview.
const topPerformerLimit = 5

// GetTermOverviewQuery asks for school-wide statistics for one term.
type GetTermOverviewQuery struct {
	Term string
}

// GetTermOverviewResult is the term-wide roll-up: how many students have
// grades, the grade volume, the mean of per-student averages, the band
// distribution and the top performers.
type GetTermOverviewResult struct {
	Term             string                        `json:"term"`
	GradedStudents   int                           `json:"graded_students"`
	TotalGrades      int                           `json:"total_grades"`
	DistinctSubjects int                           `json:"distinct_subjects"`
	TermAverage      *float64                      `json:"term_average"`
	BandCounts       map[string]int                `json:"orientation_distribution"`
	TopPerformers    []aggregate.StudentStatistics `json:"top_performers"`
}

// GetTermOverviewHandler computes the overview from one term-wide scan.
type GetTermOverviewHandler struct {
	ledger grade.Ledger
	roster roster.Repository
}

// NewGetTermOverviewHandler creates the handler.
func NewGetTermOverviewHandler(ledger grade.Ledger, rosterRepo roster.Repository) *GetTermOverviewHandler {
	return &GetTermOverviewHandler{ledger: ledger, roster: rosterRepo}
}

// Handle scans the term, aggregates per student, then rolls up. Emails
// are resolved only for the top performers; a student missing from the
// roster keeps an empty email rather than failing the overview.
func (h *GetTermOverviewHandler) Handle(ctx context.Context, q GetTermOverviewQuery) (*GetTermOverviewResult, error) {
	term, err := shared.NewTerm(q.Term)
	if err != nil {
		return nil, err
	}

	pairs, err := h.ledger.QueryTerm(ctx, term)
	if err != nil {
		return nil, shared.WrapError("aggregate", "TermOverview", shared.ErrDependencyUnavailable, "ledger scan failed", err)
	}

	byStudent := make(map[string][]*grade.Record)
	order := make([]string, 0)
	subjects := make(map[string]struct{})
	for _, p := range pairs {
		if _, seen := byStudent[p.StudentID]; !seen {
			order = append(order, p.StudentID)
		}
		byStudent[p.StudentID] = append(byStudent[p.StudentID], p.Record)
		subjects[p.Record.Subject] = struct{}{}
	}

	result := &GetTermOverviewResult{
		Term:             term.String(),
		DistinctSubjects: len(subjects),
		BandCounts:       make(map[string]int, len(orientation.All())),
	}
	for _, band := range orientation.All() {
		result.BandCounts[band.String()] = 0
	}

	rows := make([]aggregate.StudentStatistics, 0, len(order))
	sum := decimal.Zero
	for _, studentID := range order {
		summary := grade.Summarize(byStudent[studentID])
		result.TotalGrades += summary.TotalGrades
		if summary.OverallAverage == nil {
			continue
		}

		result.GradedStudents++
		sum = sum.Add(decimal.NewFromFloat(*summary.OverallAverage))
		result.BandCounts[orientation.Classify(*summary.OverallAverage).String()]++

		row := aggregate.StudentStatistics{
			StudentID:   studentID,
			Average:     summary.OverallAverage,
			TotalGrades: summary.TotalGrades,
		}
		if band, ok := summary.Orientation(); ok {
			row.Orientation = band.String()
		}
		rows = append(rows, row)
	}

	if result.GradedStudents > 0 {
		avg := sum.Div(decimal.NewFromInt(int64(result.GradedStudents))).Round(2).InexactFloat64()
		result.TermAverage = &avg
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return *rows[i].Average > *rows[j].Average
	})
	if len(rows) > topPerformerLimit {
		rows = rows[:topPerformerLimit]
	}
	for i := range rows {
		if email, err := h.roster.StudentEmail(ctx, rows[i].StudentID); err == nil {
			rows[i].StudentEmail = email
		}
	}
	result.TopPerformers = rows

	return result, nil
}
