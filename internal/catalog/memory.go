package catalog

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory catalog for dev and tests.
type Memory struct {
	mu      sync.RWMutex
	courses map[string]Course
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{courses: make(map[string]Course)}
}

// Put adds or replaces a course.
func (m *Memory) Put(c Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Status == "" {
		c.Status = StatusAvailable
	}
	m.courses[c.ID] = c
}

// GetCourse returns a course or ErrCourseNotFound.
func (m *Memory) GetCourse(_ context.Context, id string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return c, nil
}

// ListAvailable returns courses open for enrollment, ordered by code then name.
func (m *Memory) ListAvailable(_ context.Context) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var courses []Course
	for _, c := range m.courses {
		if c.Status == StatusAvailable {
			courses = append(courses, c)
		}
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Code != courses[j].Code {
			return courses[i].Code < courses[j].Code
		}
		return courses[i].Name < courses[j].Name
	})
	return courses, nil
}
