package command

import (
	"context"
	"time"

	"github.com/digitschool/academic-core/internal/application/aggregate"
	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/report"
	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/domain/shared"
	"github.com/digitschool/academic-core/pkg/logger"
)

// BulletinRenderer turns aggregates into document bytes with a
// deterministic layout.
type BulletinRenderer interface {
	RenderStudentBulletin(studentEmail string, snap *grade.Snapshot, generatedAt time.Time) []byte
	RenderClassReport(class *roster.Class, term shared.Term, stats []aggregate.StudentStatistics, summary aggregate.ClassSummary, generatedAt time.Time) []byte
}

// GenerateStudentReportCommand requests a bulletin for one student/term.
type GenerateStudentReportCommand struct {
	StudentID string
	Term      string
}

// GenerateStudentReportResult carries the terminal state and, on
// completion, the catalog entry whose locator retrieves the document.
type GenerateStudentReportResult struct {
	State    report.State     `json:"state"`
	Artifact *report.Artifact `json:"report,omitempty"`
}

// GenerateStudentReportHandler runs the report generation state machine
// for the student variant:
//
//	REQUESTED -> RESOLVING -> AGGREGATING -> FAILED_NOT_FOUND
//	                                       | RENDERING -> CATALOGED -> COMPLETED
//
// Generation is read-only with respect to the ledger and forces a fresh
// aggregate, so the artifact reflects ledger state at generation time.
// Failures before RENDERING leave no artifact and no catalog entry.
type GenerateStudentReportHandler struct {
	engine          *aggregate.Engine
	roster          roster.Repository
	renderer        BulletinRenderer
	store           report.ArtifactStore
	catalog         report.Catalog
	locks           report.GenerationLock
	allowDuplicates bool
	log             *logger.Logger
}

// NewGenerateStudentReportHandler creates the handler. When
// allowDuplicates is false, a repeated request for a student/term that
// already has a bulletin returns the existing artifact instead of
// generating a new one.
func NewGenerateStudentReportHandler(
	engine *aggregate.Engine,
	rosterRepo roster.Repository,
	renderer BulletinRenderer,
	store report.ArtifactStore,
	catalog report.Catalog,
	locks report.GenerationLock,
	allowDuplicates bool,
	log *logger.Logger,
) *GenerateStudentReportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GenerateStudentReportHandler{
		engine:          engine,
		roster:          rosterRepo,
		renderer:        renderer,
		store:           store,
		catalog:         catalog,
		locks:           locks,
		allowDuplicates: allowDuplicates,
		log:             log,
	}
}

// Handle executes the state machine.
func (h *GenerateStudentReportHandler) Handle(ctx context.Context, cmd GenerateStudentReportCommand) (*GenerateStudentReportResult, error) {
	studentID, err := shared.ParseEntityID(cmd.StudentID)
	if err != nil {
		return nil, shared.ErrInvalidStudent
	}
	term, err := shared.NewTerm(cmd.Term)
	if err != nil {
		return nil, err
	}

	// RESOLVING: the target entity must exist.
	email, err := h.roster.StudentEmail(ctx, studentID)
	if err != nil {
		if shared.IsNotFound(err) {
			return &GenerateStudentReportResult{State: report.StateFailedNotFound}, shared.ErrStudentNotFound
		}
		return nil, err
	}

	// Only one generation per student/term may run at a time; the
	// loser sees the conflict instead of recomputing the same report.
	release, err := acquireGenerationLock(ctx, h.locks, report.KindStudent, studentID, term, h.log)
	if err != nil {
		return nil, err
	}
	defer release()

	if !h.allowDuplicates {
		existing, err := h.findExisting(ctx, studentID, term)
		if err != nil {
			return nil, shared.WrapError("report", "Generate", shared.ErrDependencyUnavailable, "catalog lookup failed", err)
		}
		if existing != nil {
			h.log.Debug("duplicate bulletin suppressed", logger.String("locator", existing.Locator))
			return &GenerateStudentReportResult{State: report.StateCompleted, Artifact: existing}, nil
		}
	}

	// AGGREGATING: force a cache-coherent snapshot.
	snap, err := h.engine.FreshStudentSnapshot(ctx, studentID, term)
	if err != nil {
		return nil, err
	}
	if snap.TotalGrades == 0 {
		return &GenerateStudentReportResult{State: report.StateFailedNotFound}, shared.ErrNoGradesForTerm
	}

	// RENDERING: deterministic layout from the snapshot.
	generatedAt := time.Now().UTC()
	content := h.renderer.RenderStudentBulletin(email, snap, generatedAt)
	artifact := report.NewArtifact(report.KindStudent, studentID, term, generatedAt)

	if err := h.store.Save(ctx, artifact.Locator, content); err != nil {
		return nil, shared.WrapError("report", "Generate", shared.ErrDependencyUnavailable, "artifact storage failed", err)
	}

	// CATALOGED: the artifact becomes retrievable.
	if err := h.catalog.Record(ctx, artifact); err != nil {
		return nil, shared.WrapError("report", "Generate", shared.ErrDependencyUnavailable, "catalog record failed", err)
	}

	h.log.Info("student bulletin generated",
		logger.String("student_id", studentID),
		logger.String("term", term.String()),
		logger.String("locator", artifact.Locator),
	)

	return &GenerateStudentReportResult{State: report.StateCompleted, Artifact: artifact}, nil
}

// findExisting returns the newest student bulletin for the key, if any.
func (h *GenerateStudentReportHandler) findExisting(ctx context.Context, studentID string, term shared.Term) (*report.Artifact, error) {
	existing, err := h.catalog.List(ctx, report.ListFilter{SubjectID: studentID, Term: term})
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		if a.Kind == report.KindStudent {
			return a, nil
		}
	}
	return nil, nil
}

// acquireGenerationLock serializes generation for one report identity.
// A lock store failure degrades to unlocked generation with a warning;
// generation is idempotent in content, so a rare double compute beats
// refusing the request. A held lock is a conflict.
func acquireGenerationLock(ctx context.Context, locks report.GenerationLock, kind report.Kind, subjectID string, term shared.Term, log *logger.Logger) (func(), error) {
	if locks == nil {
		return func() {}, nil
	}

	name := report.LockName(kind, subjectID, term)
	acquired, err := locks.Acquire(ctx, name, report.GenerationLockTTL)
	if err != nil {
		log.Warn("generation lock unavailable, proceeding unlocked",
			logger.String("lock", name), logger.Err(err))
		return func() {}, nil
	}
	if !acquired {
		return nil, shared.ErrGenerationInProgress
	}

	return func() {
		if err := locks.Release(ctx, name); err != nil {
			log.Warn("generation lock release failed", logger.String("lock", name), logger.Err(err))
		}
	}, nil
}
