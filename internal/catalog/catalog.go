package catalog

import (
	"context"
	"errors"
)

// Course availability statuses.
const (
	StatusAvailable = "available"
	StatusClosed    = "closed"
)

// ErrCourseNotFound is returned when no course exists for an id.
var ErrCourseNotFound = errors.New("course not found")

// Course holds the catalog metadata this subsystem reads. Capacity and
// status are administered elsewhere; nothing here writes them.
type Course struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Code     string  `json:"code"`
	Credit   float64 `json:"credit"`
	Hours    float64 `json:"hours"`
	Semester string  `json:"semester"`
	Year     int     `json:"year"`
	Capacity int     `json:"capacity"`
	Status   string  `json:"status"`
}

// Reader is the read-only catalog view consumed by the enrollment and
// check-in services.
type Reader interface {
	GetCourse(ctx context.Context, id string) (Course, error)
	ListAvailable(ctx context.Context) ([]Course, error)
}
