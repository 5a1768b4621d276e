package enrollment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"campus/internal/catalog"
)

// Memory is an in-memory ledger for dev and tests. One mutex guards
// every operation, which gives the same per-course serialization the
// Postgres row lock provides.
type Memory struct {
	mu         sync.Mutex
	selections map[string]*Selection // key studentID+"/"+courseID
}

// NewMemory creates an empty ledger.
func NewMemory() *Memory {
	return &Memory{selections: make(map[string]*Selection)}
}

func key(studentID, courseID string) string {
	return studentID + "/" + courseID
}

// Enroll admits a student under the course capacity.
func (m *Memory) Enroll(_ context.Context, studentID string, course catalog.Course) (Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prior := m.selections[key(studentID, course.ID)]
	if prior != nil && prior.Status == StatusEnrolled {
		return Selection{}, ErrAlreadyEnrolled
	}

	enrolled := 0
	for _, sel := range m.selections {
		if sel.CourseID == course.ID && sel.Status == StatusEnrolled {
			enrolled++
		}
	}
	if enrolled >= course.Capacity {
		return Selection{}, ErrCapacityExceeded
	}

	now := time.Now().UTC()
	if prior != nil {
		// Reactivate, keeping remaining hours.
		prior.Status = StatusEnrolled
		prior.UpdatedAt = now
		return *prior, nil
	}

	hours := course.Hours
	sel := &Selection{
		ID:             uuid.NewString(),
		StudentID:      studentID,
		CourseID:       course.ID,
		Status:         StatusEnrolled,
		RemainingHours: &hours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.selections[key(studentID, course.ID)] = sel
	return *sel, nil
}

// Drop moves the enrolled selection to dropped.
func (m *Memory) Drop(_ context.Context, studentID, courseID string) (Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sel := m.selections[key(studentID, courseID)]
	if sel == nil || sel.Status != StatusEnrolled {
		return Selection{}, ErrNotEnrolled
	}
	sel.Status = StatusDropped
	sel.UpdatedAt = time.Now().UTC()
	return *sel, nil
}

// GetEnrolled returns the enrolled selection for a pair.
func (m *Memory) GetEnrolled(_ context.Context, studentID, courseID string) (Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sel := m.selections[key(studentID, courseID)]
	if sel == nil || sel.Status != StatusEnrolled {
		return Selection{}, ErrNotEnrolled
	}
	return *sel, nil
}

// ListEnrolled returns a student's enrolled selections.
func (m *Memory) ListEnrolled(_ context.Context, studentID string) ([]Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var selections []Selection
	for _, sel := range m.selections {
		if sel.StudentID == studentID && sel.Status == StatusEnrolled {
			selections = append(selections, *sel)
		}
	}
	sort.Slice(selections, func(i, j int) bool {
		return selections[i].CreatedAt.Before(selections[j].CreatedAt)
	})
	return selections, nil
}

// DecrementHours applies max(0, current-1) under the ledger lock.
func (m *Memory) DecrementHours(_ context.Context, studentID, courseID string, totalHours float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sel := m.selections[key(studentID, courseID)]
	if sel == nil || sel.Status != StatusEnrolled {
		return 0, ErrNotEnrolled
	}
	current := totalHours
	if sel.RemainingHours != nil {
		current = *sel.RemainingHours
	}
	next := current - 1
	if next < 0 {
		next = 0
	}
	sel.RemainingHours = &next
	sel.UpdatedAt = time.Now().UTC()
	return next, nil
}

// LowerRemainingHours writes hours only when below the stored value.
func (m *Memory) LowerRemainingHours(_ context.Context, studentID, courseID string, hours, totalHours float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sel := m.selections[key(studentID, courseID)]
	if sel == nil || sel.Status != StatusEnrolled {
		return nil
	}
	current := totalHours
	if sel.RemainingHours != nil {
		current = *sel.RemainingHours
	}
	if hours >= current {
		return nil
	}
	sel.RemainingHours = &hours
	sel.UpdatedAt = time.Now().UTC()
	return nil
}
