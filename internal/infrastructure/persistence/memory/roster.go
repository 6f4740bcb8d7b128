package memory

import (
	"context"
	"sync"
	"time"

	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// Roster is an in-memory class and enrollment store. Enrollment order is
// insertion order, matching the enrollment-timestamp ordering used by the
// SQL implementation.
type Roster struct {
	mu          sync.RWMutex
	classes     map[string]*roster.Class
	enrollments map[string][]roster.Enrollment
	emails      map[string]string
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{
		classes:     make(map[string]*roster.Class),
		enrollments: make(map[string][]roster.Enrollment),
		emails:      make(map[string]string),
	}
}

// AddClass registers a class.
func (r *Roster) AddClass(class *roster.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *class
	r.classes[class.ID] = &clone
}

// Enroll appends a student to a class roster and registers the email.
func (r *Roster) Enroll(classID, studentID, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.enrollments[classID] = append(r.enrollments[classID], roster.Enrollment{
		StudentID:    studentID,
		StudentEmail: email,
		EnrolledAt:   time.Now().UTC(),
	})
	r.emails[studentID] = email
}

// AddStudent registers a student without enrolling them anywhere.
func (r *Roster) AddStudent(studentID, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails[studentID] = email
}

// GetClass returns the class or shared.ErrClassNotFound.
func (r *Roster) GetClass(_ context.Context, classID string) (*roster.Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	class, ok := r.classes[classID]
	if !ok {
		return nil, shared.ErrClassNotFound
	}
	clone := *class
	return &clone, nil
}

// EnrolledStudents returns the roster in enrollment order.
func (r *Roster) EnrolledStudents(_ context.Context, classID string) ([]roster.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.classes[classID]; !ok {
		return nil, shared.ErrClassNotFound
	}

	out := make([]roster.Enrollment, len(r.enrollments[classID]))
	copy(out, r.enrollments[classID])
	return out, nil
}

// StudentEmail returns the student's email or shared.ErrStudentNotFound.
func (r *Roster) StudentEmail(_ context.Context, studentID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email, ok := r.emails[studentID]
	if !ok {
		return "", shared.ErrStudentNotFound
	}
	return email, nil
}
