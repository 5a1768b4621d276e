package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository reads courses from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const courseColumns = `id, name, code, credit, hours, semester, year, capacity, status`

// GetCourse returns a single course or ErrCourseNotFound.
func (r *Repository) GetCourse(ctx context.Context, id string) (Course, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+courseColumns+`
		FROM courses WHERE id = $1
	`, id)
	var c Course
	if err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Credit, &c.Hours, &c.Semester, &c.Year, &c.Capacity, &c.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

// ListAvailable returns courses open for enrollment.
func (r *Repository) ListAvailable(ctx context.Context) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE status = $1
		ORDER BY code, name
	`, StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Code, &c.Credit, &c.Hours, &c.Semester, &c.Year, &c.Capacity, &c.Status); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
