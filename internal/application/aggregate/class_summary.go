package aggregate

import "github.com/shopspring/decimal"

// ClassSummary is the class-level roll-up shown on class reports.
type ClassSummary struct {
	// EnrolledCount is the number of students on the roster.
	EnrolledCount int `json:"enrolled_count"`

	// GradedCount is the number of students with at least one grade.
	GradedCount int `json:"graded_count"`

	// ClassAverage is the mean of the per-student averages of graded
	// students, rounded to two decimals. Nil when nobody has grades.
	ClassAverage *float64 `json:"class_average"`
}

// NewClassSummary rolls class statistics rows up into a summary.
func NewClassSummary(stats []StudentStatistics) ClassSummary {
	summary := ClassSummary{EnrolledCount: len(stats)}

	sum := decimal.Zero
	for _, row := range stats {
		if row.Average == nil {
			continue
		}
		summary.GradedCount++
		sum = sum.Add(decimal.NewFromFloat(*row.Average))
	}

	if summary.GradedCount > 0 {
		avg := sum.Div(decimal.NewFromInt(int64(summary.GradedCount))).Round(2).InexactFloat64()
		summary.ClassAverage = &avg
	}

	return summary
}
