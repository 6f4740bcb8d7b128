// Package query implements the read side: thin handlers that validate
// input, delegate to the aggregation engine or a repository, and shape
// the result for the transport layer.
package query

import (
	"context"

	"github.com/digitschool/academic-core/internal/application/aggregate"
	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// GetStudentAverageQuery asks for one student's aggregate for a term.
type GetStudentAverageQuery struct {
	StudentID string
	Term      string
}

// GetStudentAverageResult is the cached-or-computed snapshot.
type GetStudentAverageResult struct {
	Snapshot *grade.Snapshot `json:"snapshot"`
}

// GetStudentAverageHandler serves the read-through aggregate view.
type GetStudentAverageHandler struct {
	engine *aggregate.Engine
}

// NewGetStudentAverageHandler creates the handler.
func NewGetStudentAverageHandler(engine *aggregate.Engine) *GetStudentAverageHandler {
	return &GetStudentAverageHandler{engine: engine}
}

// Handle validates and delegates to the engine. A student with no grades
// for the term is a valid result with a nil average, not an error.
func (h *GetStudentAverageHandler) Handle(ctx context.Context, q GetStudentAverageQuery) (*GetStudentAverageResult, error) {
	term, err := shared.NewTerm(q.Term)
	if err != nil {
		return nil, err
	}

	snap, err := h.engine.StudentSnapshot(ctx, q.StudentID, term)
	if err != nil {
		return nil, err
	}

	return &GetStudentAverageResult{Snapshot: snap}, nil
}
