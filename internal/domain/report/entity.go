// Package report contains the report generation domain: the immutable
// generated artifact, the per-request state machine, and the ports to
// the catalog and the artifact byte store.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/digitschool/academic-core/internal/domain/shared"
)

// Kind distinguishes the two report variants.
type Kind string

const (
	// KindStudent is an individual bulletin: subject breakdown, overall
	// average and orientation for one student/term.
	KindStudent Kind = "student"

	// KindClass is a roster-wide report: per-student statistics plus a
	// class-level summary.
	KindClass Kind = "class"
)

// State tracks a generation request through its lifecycle. FailedNotFound
// and Completed are terminal.
type State string

const (
	StateRequested      State = "REQUESTED"
	StateResolving      State = "RESOLVING"
	StateAggregating    State = "AGGREGATING"
	StateFailedNotFound State = "FAILED_NOT_FOUND"
	StateRendering      State = "RENDERING"
	StateCataloged      State = "CATALOGED"
	StateCompleted      State = "COMPLETED"
)

// Artifact is the catalog entry for a generated document. Immutable once
// created: a report reflects the aggregate at generation time and is
// never retroactively updated; newer data requires a new artifact.
type Artifact struct {
	ID          string      `json:"id"`
	Kind        Kind        `json:"kind"`
	SubjectID   string      `json:"subject_id"` // student or class identifier
	Term        shared.Term `json:"term"`
	Locator     string      `json:"locator"` // storage path and retrieval key
	GeneratedAt time.Time   `json:"generated_at"`
}

// NewArtifact builds a catalog entry with a freshly generated locator.
func NewArtifact(kind Kind, subjectID string, term shared.Term, generatedAt time.Time) *Artifact {
	return &Artifact{
		ID:          uuid.NewString(),
		Kind:        kind,
		SubjectID:   subjectID,
		Term:        term,
		Locator:     Locator(kind, subjectID, term, generatedAt),
		GeneratedAt: generatedAt,
	}
}

// Locator derives the artifact filename embedding the subject identifier,
// the term and the generation timestamp. It doubles as storage path and
// retrieval path.
func Locator(kind Kind, subjectID string, term shared.Term, generatedAt time.Time) string {
	prefix := "bulletin"
	if kind == KindClass {
		prefix = "rapport_classe"
	}
	return fmt.Sprintf("%s_%s_%s_%d.txt", prefix, subjectID, term, generatedAt.UnixMilli())
}
