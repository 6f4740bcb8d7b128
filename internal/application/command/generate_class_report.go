package command

import (
	"context"
	"time"

	"github.com/digitschool/academic-core/internal/application/aggregate"
	"github.com/digitschool/academic-core/internal/domain/report"
	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/domain/shared"
	"github.com/digitschool/academic-core/pkg/logger"
)

// GenerateClassReportCommand requests a roster-wide report for one
// class/term.
type GenerateClassReportCommand struct {
	ClassID string
	Term    string
}

// GenerateClassReportResult carries the terminal state and catalog entry.
type GenerateClassReportResult struct {
	State    report.State            `json:"state"`
	Artifact *report.Artifact        `json:"report,omitempty"`
	Summary  *aggregate.ClassSummary `json:"summary,omitempty"`
}

// GenerateClassReportHandler runs the generation state machine for the
// class variant. The aggregate here is the full class statistics view;
// an empty roster maps to FAILED_NOT_FOUND, a roster whose students have
// no grades still yields a report with null averages, matching the
// statistics view.
type GenerateClassReportHandler struct {
	engine          *aggregate.Engine
	roster          roster.Repository
	renderer        BulletinRenderer
	store           report.ArtifactStore
	catalog         report.Catalog
	locks           report.GenerationLock
	allowDuplicates bool
	log             *logger.Logger
}

// NewGenerateClassReportHandler creates the handler.
func NewGenerateClassReportHandler(
	engine *aggregate.Engine,
	rosterRepo roster.Repository,
	renderer BulletinRenderer,
	store report.ArtifactStore,
	catalog report.Catalog,
	locks report.GenerationLock,
	allowDuplicates bool,
	log *logger.Logger,
) *GenerateClassReportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GenerateClassReportHandler{
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
func (h *GenerateClassReportHandler) Handle(ctx context.Context, cmd GenerateClassReportCommand) (*GenerateClassReportResult, error) {
	classID, err := shared.ParseEntityID(cmd.ClassID)
	if err != nil {
		return nil, shared.WrapError("report", "GenerateClass", shared.ErrInvalidID, "invalid class ID", err)
	}
	term, err := shared.NewTerm(cmd.Term)
	if err != nil {
		return nil, err
	}

	// RESOLVING: the class must exist.
	class, err := h.roster.GetClass(ctx, classID)
	if err != nil {
		if shared.IsNotFound(err) {
			return &GenerateClassReportResult{State: report.StateFailedNotFound}, shared.ErrClassNotFound
		}
		return nil, err
	}

	release, err := acquireGenerationLock(ctx, h.locks, report.KindClass, classID, term, h.log)
	if err != nil {
		return nil, err
	}
	defer release()

	if !h.allowDuplicates {
		existing, err := h.findExisting(ctx, classID, term)
		if err != nil {
			return nil, shared.WrapError("report", "GenerateClass", shared.ErrDependencyUnavailable, "catalog lookup failed", err)
		}
		if existing != nil {
			h.log.Debug("duplicate class report suppressed", logger.String("locator", existing.Locator))
			return &GenerateClassReportResult{State: report.StateCompleted, Artifact: existing}, nil
		}
	}

	// AGGREGATING: one grouped scan over the whole roster.
	stats, err := h.engine.ClassStatistics(ctx, classID, term)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return &GenerateClassReportResult{State: report.StateFailedNotFound},
			shared.NewDomainError("report", "GenerateClass", shared.ErrNotFound, "no students enrolled in this class")
	}
	summary := aggregate.NewClassSummary(stats)

	// RENDERING -> CATALOGED -> COMPLETED.
	generatedAt := time.Now().UTC()
	content := h.renderer.RenderClassReport(class, term, stats, summary, generatedAt)
	artifact := report.NewArtifact(report.KindClass, classID, term, generatedAt)

	if err := h.store.Save(ctx, artifact.Locator, content); err != nil {
		return nil, shared.WrapError("report", "GenerateClass", shared.ErrDependencyUnavailable, "artifact storage failed", err)
	}
	if err := h.catalog.Record(ctx, artifact); err != nil {
		return nil, shared.WrapError("report", "GenerateClass", shared.ErrDependencyUnavailable, "catalog record failed", err)
	}

	h.log.Info("class report generated",
		logger.String("class_id", classID),
		logger.String("term", term.String()),
		logger.String("locator", artifact.Locator),
	)

	return &GenerateClassReportResult{
		State:    report.StateCompleted,
		Artifact: artifact,
		Summary:  &summary,
	}, nil
}

// findExisting returns the newest class report for the key, if any.
func (h *GenerateClassReportHandler) findExisting(ctx context.Context, classID string, term shared.Term) (*report.Artifact, error) {
	existing, err := h.catalog.List(ctx, report.ListFilter{SubjectID: classID, Term: term})
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		if a.Kind == report.KindClass {
			return a, nil
		}
	}
	return nil, nil
}
