package attendance

import (
	"context"
	"errors"
	"time"
)

// DateLayout is the calendar-day granularity for check-ins.
const DateLayout = "2006-01-02"

// StatusPresent is the only status a self-reported check-in carries.
const StatusPresent = "present"

// ErrDuplicateCheckIn is returned when the student already checked in
// for the course on that date.
var ErrDuplicateCheckIn = errors.New("already checked in today")

// CheckIn is one attendance journal entry. Entries are append-only;
// nothing in this subsystem mutates or deletes them.
type CheckIn struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	CourseID    string    `json:"course_id"`
	Date        string    `json:"date"`
	CheckedInAt time.Time `json:"checked_in_at"`
	Status      string    `json:"status"`
	Location    string    `json:"location,omitempty"`
	DeviceInfo  string    `json:"device_info,omitempty"`
}

// Journal persists check-ins. Insert relies on a store-level unique
// constraint on (student, course, date) so two same-day racers cannot
// both land.
type Journal interface {
	Insert(ctx context.Context, rec CheckIn) (CheckIn, error)
	List(ctx context.Context, studentID, courseID, fromDate, toDate string) ([]CheckIn, error)
	CountPresent(ctx context.Context, studentID, courseID string) (int, error)
}
