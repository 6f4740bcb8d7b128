package query

import (
	"context"

	"github.com/digitschool/academic-core/internal/application/aggregate"
	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// GetClassStatisticsQuery asks for the class-wide aggregate view.
type GetClassStatisticsQuery struct {
	ClassID string
	Term    string
}

// GetClassStatisticsResult carries the class, the ordered per-student
// rows and the class-level roll-up.
type GetClassStatisticsResult struct {
	Class    *roster.Class                 `json:"class"`
	Students []aggregate.StudentStatistics `json:"students"`
	Summary  aggregate.ClassSummary        `json:"summary"`
}

// GetClassStatisticsHandler serves class statistics.
type GetClassStatisticsHandler struct {
	engine *aggregate.Engine
	roster roster.Repository
}

// NewGetClassStatisticsHandler creates the handler.
func NewGetClassStatisticsHandler(engine *aggregate.Engine, rosterRepo roster.Repository) *GetClassStatisticsHandler {
	return &GetClassStatisticsHandler{engine: engine, roster: rosterRepo}
}

// Handle resolves the class, then computes statistics for every enrolled
// student. An empty roster yields an empty row set, not an error; a
// missing class is shared.ErrClassNotFound.
func (h *GetClassStatisticsHandler) Handle(ctx context.Context, q GetClassStatisticsQuery) (*GetClassStatisticsResult, error) {
	classID, err := shared.ParseEntityID(q.ClassID)
	if err != nil {
		return nil, shared.WrapError("roster", "GetClass", shared.ErrInvalidID, "invalid class ID", err)
	}
	term, err := shared.NewTerm(q.Term)
	if err != nil {
		return nil, err
	}

	class, err := h.roster.GetClass(ctx, classID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrClassNotFound
		}
		return nil, err
	}

	stats, err := h.engine.ClassStatistics(ctx, classID, term)
	if err != nil {
		return nil, err
	}

	return &GetClassStatisticsResult{
		Class:    class,
		Students: stats,
		Summary:  aggregate.NewClassSummary(stats),
	}, nil
}
