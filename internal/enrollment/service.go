package enrollment

import (
	"context"
	"errors"
	"fmt"

	"campus/internal/catalog"
	"campus/internal/metrics"
)

// Service orchestrates course admission against the catalog and ledger.
type Service struct {
	courses catalog.Reader
	ledger  Ledger
}

// NewService creates a service.
func NewService(courses catalog.Reader, ledger Ledger) *Service {
	return &Service{courses: courses, ledger: ledger}
}

// Enroll admits studentID into courseID subject to availability and
// capacity. The ledger serializes the capacity check and insert per
// course, so two racers for the last seat cannot both win.
func (s *Service) Enroll(ctx context.Context, studentID, courseID string) (Selection, error) {
	if studentID == "" || courseID == "" {
		return Selection{}, fmt.Errorf("student and course required")
	}
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, catalog.ErrCourseNotFound) {
			return Selection{}, ErrCourseUnavailable
		}
		return Selection{}, fmt.Errorf("load course: %w", err)
	}
	if course.Status != catalog.StatusAvailable {
		return Selection{}, ErrCourseUnavailable
	}
	sel, err := s.ledger.Enroll(ctx, studentID, course)
	if err != nil {
		return Selection{}, err
	}
	metrics.EnrollmentsTotal.Inc()
	return sel, nil
}

// Drop withdraws the student. Dropping twice reports ErrNotEnrolled on
// the second call; remaining hours are left as they are.
func (s *Service) Drop(ctx context.Context, studentID, courseID string) (Selection, error) {
	if studentID == "" || courseID == "" {
		return Selection{}, fmt.Errorf("student and course required")
	}
	sel, err := s.ledger.Drop(ctx, studentID, courseID)
	if err != nil {
		return Selection{}, err
	}
	metrics.DropsTotal.Inc()
	return sel, nil
}

// CourseHours is one row of the remaining-hours report.
type CourseHours struct {
	CourseID       string  `json:"id"`
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	TotalHours     float64 `json:"totalHours"`
	RemainingHours float64 `json:"remainingHours"`
}

// RemainingHours reports total vs remaining instructional hours for
// every course the student is enrolled in.
func (s *Service) RemainingHours(ctx context.Context, studentID string) ([]CourseHours, error) {
	selections, err := s.ledger.ListEnrolled(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	report := make([]CourseHours, 0, len(selections))
	for _, sel := range selections {
		course, err := s.courses.GetCourse(ctx, sel.CourseID)
		if err != nil {
			return nil, fmt.Errorf("load course %s: %w", sel.CourseID, err)
		}
		report = append(report, CourseHours{
			CourseID:       course.ID,
			Name:           course.Name,
			Code:           course.Code,
			TotalHours:     course.Hours,
			RemainingHours: sel.HoursLeft(course.Hours),
		})
	}
	return report, nil
}
