package grade

import (
	"context"
	"errors"
	"time"

	"github.com/digitschool/academic-core/internal/domain/shared"
)

// ErrCacheMiss is returned by SnapshotCache.Get when no entry exists for
// the key. A miss is not a failure; callers fall through to the ledger.
var ErrCacheMiss = errors.New("grade: snapshot cache miss")

// SnapshotTTL bounds the life of a cached aggregate. Writes through this
// core invalidate synchronously; the TTL only guards against writers that
// bypass the ledger's write path.
const SnapshotTTL = time.Hour

// StudentRecord pairs a ledger record with the student it belongs to,
// for class-wide grouped scans.
type StudentRecord struct {
	StudentID string
	Record    *Record
}

// Ledger is the append-only store of grade events.
type Ledger interface {
	// Append durably stores a new record. The record is immutable after
	// this call returns.
	Append(ctx context.Context, record *Record) error

	// Query returns a student's records, most recent first. A zero term
	// matches all terms.
	Query(ctx context.Context, studentID string, term shared.Term) ([]*Record, error)

	// QueryByClass returns records for every student enrolled in the
	// class, joined through the roster. A zero term matches all terms.
	QueryByClass(ctx context.Context, classID string, term shared.Term) ([]StudentRecord, error)

	// QueryTerm returns all records for a term across students, for
	// term-wide overview statistics.
	QueryTerm(ctx context.Context, term shared.Term) ([]StudentRecord, error)
}

// SnapshotCache holds precomputed aggregates keyed by CacheKey.
// Entries are replaced wholesale, never edited in place.
type SnapshotCache interface {
	// Get returns the cached snapshot or ErrCacheMiss.
	Get(ctx context.Context, key string) (*Snapshot, error)

	// Put replaces any existing entry for the key.
	Put(ctx context.Context, key string, snap *Snapshot, ttl time.Duration) error

	// Invalidate removes the entry unconditionally. Invalidating an
	// absent key is a no-op, not an error.
	Invalidate(ctx context.Context, key string) error

	// InvalidateAll clears every cached snapshot. Used after bulk
	// imports that bypass the append path, where per-key invalidation
	// cannot keep up.
	InvalidateAll(ctx context.Context) error
}
