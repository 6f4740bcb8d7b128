// Package command contains write operations following CQRS pattern.
// Each command is a self-contained use case with its own request/response
// types and explicitly injected dependencies.
package command

import (
	"context"

	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/shared"
	"github.com/digitschool/academic-core/pkg/logger"
)

// AppendGradeCommand carries a new grade event for the ledger.
type AppendGradeCommand struct {
	StudentID string
	Subject   string
	Term      string
	Score     float64
}

// AppendGradeResult returns the durably stored record.
type AppendGradeResult struct {
	Record *grade.Record `json:"grade"`
}

// AppendGradeHandler appends to the grade ledger and synchronously
// invalidates the matching aggregate cache entry. The two steps form one
// logical write: a caller that sees success is guaranteed the next
// average read includes the new record.
type AppendGradeHandler struct {
	ledger grade.Ledger
	cache  grade.SnapshotCache
	log    *logger.Logger
}

// NewAppendGradeHandler creates the handler.
func NewAppendGradeHandler(ledger grade.Ledger, cache grade.SnapshotCache, log *logger.Logger) *AppendGradeHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AppendGradeHandler{ledger: ledger, cache: cache, log: log}
}

// Handle validates, appends and invalidates. Ordering is load-bearing:
// append happens-before invalidate happens-before acknowledgment. If
// invalidation fails the whole write is reported as failed rather than
// risking a stale cache serving the old average until TTL expiry.
func (h *AppendGradeHandler) Handle(ctx context.Context, cmd AppendGradeCommand) (*AppendGradeResult, error) {
	record, err := grade.NewRecord(cmd.StudentID, cmd.Subject, cmd.Term, cmd.Score)
	if err != nil {
		return nil, err
	}

	if err := h.ledger.Append(ctx, record); err != nil {
		return nil, shared.WrapError("grade", "Append", shared.ErrDependencyUnavailable, "ledger append failed", err)
	}

	key := grade.CacheKey(record.StudentID, record.Term)
	if err := h.cache.Invalidate(ctx, key); err != nil {
		h.log.Error("cache invalidation failed after append",
			logger.String("key", key),
			logger.String("grade_id", record.ID),
			logger.Err(err),
		)
		return nil, shared.WrapError("grade", "Append", shared.ErrDependencyUnavailable, "cache invalidation failed", err)
	}

	h.log.Debug("grade appended",
		logger.String("student_id", record.StudentID),
		logger.String("subject", record.Subject),
		logger.String("term", record.Term.String()),
	)

	return &AppendGradeResult{Record: record}, nil
}
