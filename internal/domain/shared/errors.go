// Package shared contains common domain types, errors, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")

	// Dependency errors
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrTimeout               = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "grade", "report", "roster"
	Op      string // Operation that failed, e.g., "Append", "Generate"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Grade ledger domain errors
var (
	ErrScoreOutOfRange = NewDomainError("grade", "Validate", ErrValueOutOfRange, "score must be between 0 and 20")
	ErrInvalidStudent  = NewDomainError("grade", "Validate", ErrInvalidID, "invalid student ID")
	ErrEmptySubject    = NewDomainError("grade", "Validate", ErrEmptyValue, "subject cannot be empty")
	ErrEmptyTerm       = NewDomainError("grade", "Validate", ErrEmptyValue, "term is required")
)

// Roster domain errors
var (
	ErrClassNotFound   = NewDomainError("roster", "Find", ErrNotFound, "class not found")
	ErrStudentNotFound = NewDomainError("roster", "Find", ErrNotFound, "student not found")
)

// Report domain errors
var (
	ErrReportNotFound       = NewDomainError("report", "Resolve", ErrNotFound, "report not found")
	ErrNoGradesForTerm      = NewDomainError("report", "Aggregate", ErrNotFound, "no grades recorded for this term")
	ErrArtifactNotFound     = NewDomainError("report", "Load", ErrNotFound, "report artifact not found")
	ErrGenerationInProgress = NewDomainError("report", "Generate", ErrConflict, "a generation for this report is already running")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsDependencyUnavailable checks if the error comes from an unreachable
// backing store (ledger database or cache).
func IsDependencyUnavailable(err error) bool {
	return errors.Is(err, ErrDependencyUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// IsConflict checks if the error is a concurrent-operation conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
