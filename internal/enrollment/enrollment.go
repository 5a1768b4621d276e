package enrollment

import (
	"context"
	"errors"
	"time"

	"campus/internal/catalog"
)

// Selection statuses. A selection only ever moves enrolled -> dropped;
// re-enrolling flips the same row back so the (student, course) unique
// constraint keeps holding.
const (
	StatusEnrolled = "enrolled"
	StatusDropped  = "dropped"
)

// Domain errors callers dispatch on with errors.Is.
var (
	ErrCourseUnavailable = errors.New("course does not exist or is closed")
	ErrAlreadyEnrolled   = errors.New("already enrolled in this course")
	ErrCapacityExceeded  = errors.New("course has reached its capacity")
	ErrNotEnrolled       = errors.New("not enrolled in this course")
)

// Selection is one student's standing in one course. RemainingHours is
// nil until the first check-in bookkeeping writes it; readers treat nil
// as the course's total hours.
type Selection struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	CourseID       string    `json:"course_id"`
	Status         string    `json:"status"`
	RemainingHours *float64  `json:"remaining_hours,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Ledger persists selections. Enroll owns the capacity check: the
// duplicate test, the enrolled count and the insert must observe one
// consistent snapshot per course, so the whole admission decision lives
// behind this single call.
type Ledger interface {
	// Enroll admits the student or fails with ErrAlreadyEnrolled /
	// ErrCapacityExceeded. A previously dropped selection is
	// reactivated with its remaining hours intact.
	Enroll(ctx context.Context, studentID string, course catalog.Course) (Selection, error)

	// Drop moves the enrolled selection to dropped, or ErrNotEnrolled.
	Drop(ctx context.Context, studentID, courseID string) (Selection, error)

	// GetEnrolled returns the enrolled selection, or ErrNotEnrolled.
	GetEnrolled(ctx context.Context, studentID, courseID string) (Selection, error)

	// ListEnrolled returns all enrolled selections for a student.
	ListEnrolled(ctx context.Context, studentID string) ([]Selection, error)

	// DecrementHours atomically applies max(0, current-1) where a nil
	// current counts as totalHours, and returns the new value.
	// Fails with ErrNotEnrolled when no enrolled selection exists.
	DecrementHours(ctx context.Context, studentID, courseID string, totalHours float64) (float64, error)

	// LowerRemainingHours writes hours only when it is below the stored
	// value (nil counting as totalHours). Used by reconciliation;
	// remaining hours never increase.
	LowerRemainingHours(ctx context.Context, studentID, courseID string, hours, totalHours float64) error
}

// HoursLeft reports remaining against total, defaulting to total when
// bookkeeping has not written yet.
func (s Selection) HoursLeft(totalHours float64) float64 {
	if s.RemainingHours == nil {
		return totalHours
	}
	return *s.RemainingHours
}
