package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campus/internal/catalog"
	"campus/internal/enrollment"
	"campus/internal/metrics"
	"campus/internal/queue"
)

// MsgReconcileHours asks the worker to recompute remaining hours for a
// (student, course) pair from the journal. Body is "studentID|courseID".
const MsgReconcileHours = "reconcile_hours"

// Service coordinates check-ins and the hours bookkeeping that follows
// them.
type Service struct {
	journal Journal
	ledger  enrollment.Ledger
	courses catalog.Reader
	queue   queue.Queue // may be nil; reconciliation is then skipped
}

// NewService creates a service.
func NewService(journal Journal, ledger enrollment.Ledger, courses catalog.Reader, q queue.Queue) *Service {
	return &Service{journal: journal, ledger: ledger, courses: courses, queue: q}
}

// CheckIn records attendance for the given calendar day (today when
// zero). The journal entry is the authoritative proof of attendance:
// once it lands, a failed hours decrement must not undo it, so the
// decrement is best-effort — logged, handed to the reconciliation
// queue, and never surfaced to the caller.
func (s *Service) CheckIn(ctx context.Context, studentID, courseID string, day time.Time, location, deviceInfo string) (CheckIn, error) {
	if studentID == "" || courseID == "" {
		return CheckIn{}, fmt.Errorf("student and course required")
	}
	if day.IsZero() {
		day = time.Now().UTC()
	}

	if _, err := s.ledger.GetEnrolled(ctx, studentID, courseID); err != nil {
		return CheckIn{}, err
	}
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return CheckIn{}, fmt.Errorf("load course: %w", err)
	}

	rec, err := s.journal.Insert(ctx, CheckIn{
		StudentID:  studentID,
		CourseID:   courseID,
		Date:       day.Format(DateLayout),
		Status:     StatusPresent,
		Location:   location,
		DeviceInfo: deviceInfo,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateCheckIn) {
			metrics.DuplicateCheckinsTotal.Inc()
		}
		return CheckIn{}, err
	}
	metrics.CheckinsTotal.Inc()

	if _, err := s.ledger.DecrementHours(ctx, studentID, courseID, course.Hours); err != nil {
		log.Printf("hours decrement deferred for student=%s course=%s: %v", studentID, courseID, err)
		metrics.DeferredHoursUpdatesTotal.Inc()
		s.requestReconcile(studentID, courseID)
	}
	return rec, nil
}

// requestReconcile enqueues a repair message; losing it is acceptable,
// the next successful decrement or reconcile pass covers the gap.
func (s *Service) requestReconcile(studentID, courseID string) {
	if s.queue == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	msg := queue.Message{Type: MsgReconcileHours, Body: []byte(studentID + "|" + courseID)}
	if err := s.queue.Publish(ctx, msg); err != nil {
		log.Printf("reconcile publish failed for student=%s course=%s: %v", studentID, courseID, err)
	}
}

// ListAttendance returns a student's check-ins, optionally filtered by
// course and an inclusive date range, newest first.
func (s *Service) ListAttendance(ctx context.Context, studentID, courseID, fromDate, toDate string) ([]CheckIn, error) {
	if studentID == "" {
		return nil, fmt.Errorf("student required")
	}
	for _, d := range []string{fromDate, toDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", d)
		}
	}
	return s.journal.List(ctx, studentID, courseID, fromDate, toDate)
}

// ReconcileHours recomputes remaining hours from the journal and lowers
// the ledger value when it missed decrements. It never raises it, so a
// reconcile racing a live check-in cannot hand hours back.
func (s *Service) ReconcileHours(ctx context.Context, studentID, courseID string) error {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	count, err := s.journal.CountPresent(ctx, studentID, courseID)
	if err != nil {
		return err
	}
	recomputed := course.Hours - float64(count)
	if recomputed < 0 {
		recomputed = 0
	}
	if err := s.ledger.LowerRemainingHours(ctx, studentID, courseID, recomputed, course.Hours); err != nil {
		return err
	}
	metrics.ReconciledHoursTotal.Inc()
	return nil
}
