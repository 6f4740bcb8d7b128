package shared

import (
	"strings"

	"github.com/google/uuid"
)

// Term identifies an academic grading period, e.g. "2025-T1".
// Terms are opaque labels from the domain's point of view; the only
// requirement is that they are non-empty.
type Term string

// NewTerm normalizes and validates a term label.
func NewTerm(s string) (Term, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyTerm
	}
	return Term(s), nil
}

// String returns the term label.
func (t Term) String() string { return string(t) }

// IsZero reports whether the term is unset.
func (t Term) IsZero() bool { return t == "" }

// Score is a grade value on the French 0-20 scale.
type Score float64

// Score bounds on the 0-20 scale.
const (
	MinScore Score = 0
	MaxScore Score = 20
)

// NewScore validates a raw score value.
func NewScore(v float64) (Score, error) {
	if v < float64(MinScore) || v > float64(MaxScore) {
		return 0, ErrScoreOutOfRange
	}
	return Score(v), nil
}

// Float64 returns the score as a plain float.
func (s Score) Float64() float64 { return float64(s) }

// ParseEntityID validates that an entity identifier (student, class,
// teacher) is a well-formed UUID and returns its canonical form.
func ParseEntityID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", WrapError("shared", "ParseEntityID", ErrInvalidID, "identifier must be a UUID", err)
	}
	return id.String(), nil
}
