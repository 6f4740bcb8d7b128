package query

import (
	"context"

	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// GetStudentGradesQuery lists a student's raw ledger records. Term is
// optional; empty matches all terms.
type GetStudentGradesQuery struct {
	StudentID string
	Term      string
}

// GetStudentGradesResult carries the records, most recent first.
type GetStudentGradesResult struct {
	Grades []*grade.Record `json:"grades"`
	Count  int             `json:"count"`
}

// GetStudentGradesHandler reads the ledger directly; raw records are not
// cached, only aggregates are.
type GetStudentGradesHandler struct {
	ledger grade.Ledger
}

// NewGetStudentGradesHandler creates the handler.
func NewGetStudentGradesHandler(ledger grade.Ledger) *GetStudentGradesHandler {
	return &GetStudentGradesHandler{ledger: ledger}
}

// Handle validates and scans the ledger.
func (h *GetStudentGradesHandler) Handle(ctx context.Context, q GetStudentGradesQuery) (*GetStudentGradesResult, error) {
	studentID, err := shared.ParseEntityID(q.StudentID)
	if err != nil {
		return nil, shared.ErrInvalidStudent
	}

	var term shared.Term
	if q.Term != "" {
		term, err = shared.NewTerm(q.Term)
		if err != nil {
			return nil, err
		}
	}

	records, err := h.ledger.Query(ctx, studentID, term)
	if err != nil {
		return nil, shared.WrapError("grade", "List", shared.ErrDependencyUnavailable, "ledger scan failed", err)
	}
	if records == nil {
		records = []*grade.Record{}
	}

	return &GetStudentGradesResult{Grades: records, Count: len(records)}, nil
}
