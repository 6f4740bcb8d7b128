// Package grade contains the grade ledger domain: the append-only grade
// record, the derived aggregate snapshot, and the ports to the ledger
// store and the snapshot cache.
package grade

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/digitschool/academic-core/internal/domain/shared"
)

// Record is a single grade event in the ledger. Records are immutable
// once written: the ledger offers no update or delete path.
type Record struct {
	ID        string       `json:"id"`
	StudentID string       `json:"student_id"`
	Subject   string       `json:"subject"`
	Term      shared.Term  `json:"term"`
	Score     shared.Score `json:"score"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewRecord validates the inputs and builds a ledger record.
// The score must be within [0, 20] and the student ID a well-formed UUID.
func NewRecord(studentID, subject, term string, score float64) (*Record, error) {
	sid, err := shared.ParseEntityID(studentID)
	if err != nil {
		return nil, shared.ErrInvalidStudent
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, shared.ErrEmptySubject
	}

	t, err := shared.NewTerm(term)
	if err != nil {
		return nil, err
	}

	s, err := shared.NewScore(score)
	if err != nil {
		return nil, err
	}

	return &Record{
		ID:        uuid.NewString(),
		StudentID: sid,
		Subject:   subject,
		Term:      t,
		Score:     s,
		CreatedAt: time.Now().UTC(),
	}, nil
}
