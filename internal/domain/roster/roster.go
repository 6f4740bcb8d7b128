// Package roster exposes read access to class membership. Roster
// management (creating classes, enrolling students) belongs to the user
// service; this core only consumes enrollment for class-wide aggregation
// and report generation.
package roster

import (
	"context"
	"time"
)

// Class is the minimal class descriptor needed for reports.
type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

// Enrollment is one student's membership in a class. EnrolledAt carries
// the insertion order of the membership, which class statistics use as a
// stable tie-break.
type Enrollment struct {
	StudentID    string    `json:"student_id"`
	StudentEmail string    `json:"student_email"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

// Repository is the read port to the roster collaborator.
type Repository interface {
	// GetClass returns the class descriptor or shared.ErrClassNotFound.
	GetClass(ctx context.Context, classID string) (*Class, error)

	// EnrolledStudents returns the class's students in enrollment order.
	EnrolledStudents(ctx context.Context, classID string) ([]Enrollment, error)

	// StudentEmail returns the student's email for report headers, or
	// shared.ErrStudentNotFound.
	StudentEmail(ctx context.Context, studentID string) (string, error)
}
