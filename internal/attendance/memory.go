package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory journal for dev and tests.
type Memory struct {
	mu      sync.Mutex
	byKey   map[string]CheckIn // studentID/courseID/date
	ordered []string
}

// NewMemory creates an empty journal.
func NewMemory() *Memory {
	return &Memory{byKey: make(map[string]CheckIn)}
}

func recKey(studentID, courseID, date string) string {
	return studentID + "/" + courseID + "/" + date
}

// Insert appends an entry, rejecting same-day duplicates.
func (m *Memory) Insert(_ context.Context, rec CheckIn) (CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := recKey(rec.StudentID, rec.CourseID, rec.Date)
	if _, exists := m.byKey[k]; exists {
		return CheckIn{}, ErrDuplicateCheckIn
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CheckedInAt.IsZero() {
		rec.CheckedInAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	m.byKey[k] = rec
	m.ordered = append(m.ordered, k)
	return rec, nil
}

// List returns filtered entries, newest date first.
func (m *Memory) List(_ context.Context, studentID, courseID, fromDate, toDate string) ([]CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var records []CheckIn
	for _, k := range m.ordered {
		rec := m.byKey[k]
		if rec.StudentID != studentID {
			continue
		}
		if courseID != "" && rec.CourseID != courseID {
			continue
		}
		if fromDate != "" && rec.Date < fromDate {
			continue
		}
		if toDate != "" && rec.Date > toDate {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].CheckedInAt.After(records[j].CheckedInAt)
	})
	return records, nil
}

// CountPresent counts entries for a pair.
func (m *Memory) CountPresent(_ context.Context, studentID, courseID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, rec := range m.byKey {
		if rec.StudentID == studentID && rec.CourseID == courseID && rec.Status == StatusPresent {
			count++
		}
	}
	return count, nil
}
