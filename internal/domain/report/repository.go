package report

import (
	"context"
	"fmt"
	"time"

	"github.com/digitschool/academic-core/internal/domain/shared"
)

// ListFilter narrows catalog listings. Zero values match everything.
type ListFilter struct {
	SubjectID string
	Term      shared.Term
}

// Catalog is the indexed store of generated-report metadata.
type Catalog interface {
	// Record persists a new catalog entry.
	Record(ctx context.Context, artifact *Artifact) error

	// List returns matching entries, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Artifact, error)

	// FindByLocator returns the entry for a locator or shared.ErrReportNotFound.
	FindByLocator(ctx context.Context, locator string) (*Artifact, error)
}

// ArtifactStore holds the rendered document bytes, keyed by locator.
type ArtifactStore interface {
	// Save writes the document. Artifacts are write-once; locators embed
	// a timestamp so collisions do not occur in practice.
	Save(ctx context.Context, locator string, content []byte) error

	// Load returns the document bytes or shared.ErrArtifactNotFound.
	Load(ctx context.Context, locator string) ([]byte, error)
}

// GenerationLockTTL bounds how long a generation may hold its lock. A
// crashed generator frees the key by expiry.
const GenerationLockTTL = 30 * time.Second

// LockName builds the lock key for one report identity. Two requests
// for the same kind/subject/term contend on the same key.
func LockName(kind Kind, subjectID string, term shared.Term) string {
	return fmt.Sprintf("%s:%s:%s", kind, subjectID, term)
}

// GenerationLock serializes report generation per report identity, so
// two concurrent requests cannot both aggregate, render and catalog
// the same document.
type GenerationLock interface {
	// Acquire takes the lock, or reports false when another holder has
	// it. The lock self-expires after ttl.
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Release frees the lock. Releasing an unheld lock is a no-op.
	Release(ctx context.Context, name string) error
}
