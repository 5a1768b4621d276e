package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"campus/internal/catalog"
)

// Repository persists selections in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectionColumns = `id, student_id, course_id, status, remaining_hours, created_at, updated_at`

// Enroll admits a student inside a single transaction. SELECT ... FOR
// UPDATE on the course row serializes concurrent admissions per course:
// the second racer blocks until the first commits and then sees the
// updated enrolled count, so the count(enrolled) <= capacity invariant
// holds at every commit point.
func (r *Repository) Enroll(ctx context.Context, studentID string, course catalog.Course) (Selection, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Selection{}, fmt.Errorf("begin enroll: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT capacity FROM courses WHERE id = $1 FOR UPDATE`,
		course.ID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrCourseUnavailable
			return Selection{}, err
		}
		return Selection{}, fmt.Errorf("lock course row: %w", err)
	}

	var prior Selection
	var havePrior bool
	err = tx.QueryRowContext(ctx, `
		SELECT `+selectionColumns+`
		FROM course_selections
		WHERE student_id = $1 AND course_id = $2
	`, studentID, course.ID).Scan(
		&prior.ID, &prior.StudentID, &prior.CourseID, &prior.Status,
		&prior.RemainingHours, &prior.CreatedAt, &prior.UpdatedAt,
	)
	switch {
	case err == nil:
		havePrior = true
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	default:
		return Selection{}, fmt.Errorf("read selection: %w", err)
	}
	if havePrior && prior.Status == StatusEnrolled {
		err = ErrAlreadyEnrolled
		return Selection{}, err
	}

	var enrolled int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM course_selections WHERE course_id = $1 AND status = $2`,
		course.ID, StatusEnrolled,
	).Scan(&enrolled)
	if err != nil {
		return Selection{}, fmt.Errorf("count enrolled: %w", err)
	}
	if enrolled >= capacity {
		err = ErrCapacityExceeded
		return Selection{}, err
	}

	var sel Selection
	if havePrior {
		// Reactivate the dropped row; remaining hours resume where
		// they stopped rather than resetting to the course total.
		err = tx.QueryRowContext(ctx, `
			UPDATE course_selections
			SET status = $3, updated_at = NOW()
			WHERE student_id = $1 AND course_id = $2
			RETURNING `+selectionColumns+`
		`, studentID, course.ID, StatusEnrolled).Scan(
			&sel.ID, &sel.StudentID, &sel.CourseID, &sel.Status,
			&sel.RemainingHours, &sel.CreatedAt, &sel.UpdatedAt,
		)
	} else {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO course_selections (id, student_id, course_id, status, remaining_hours)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+selectionColumns+`
		`, uuid.NewString(), studentID, course.ID, StatusEnrolled, course.Hours).Scan(
			&sel.ID, &sel.StudentID, &sel.CourseID, &sel.Status,
			&sel.RemainingHours, &sel.CreatedAt, &sel.UpdatedAt,
		)
	}
	if err != nil {
		return Selection{}, fmt.Errorf("write selection: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return Selection{}, fmt.Errorf("commit enroll: %w", err)
	}
	return sel, nil
}

// Drop moves the enrolled selection to dropped.
func (r *Repository) Drop(ctx context.Context, studentID, courseID string) (Selection, error) {
	var sel Selection
	err := r.db.QueryRowContext(ctx, `
		UPDATE course_selections
		SET status = $3, updated_at = NOW()
		WHERE student_id = $1 AND course_id = $2 AND status = $4
		RETURNING `+selectionColumns+`
	`, studentID, courseID, StatusDropped, StatusEnrolled).Scan(
		&sel.ID, &sel.StudentID, &sel.CourseID, &sel.Status,
		&sel.RemainingHours, &sel.CreatedAt, &sel.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Selection{}, ErrNotEnrolled
	}
	if err != nil {
		return Selection{}, fmt.Errorf("drop selection: %w", err)
	}
	return sel, nil
}

// GetEnrolled returns the enrolled selection for a pair.
func (r *Repository) GetEnrolled(ctx context.Context, studentID, courseID string) (Selection, error) {
	var sel Selection
	err := r.db.QueryRowContext(ctx, `
		SELECT `+selectionColumns+`
		FROM course_selections
		WHERE student_id = $1 AND course_id = $2 AND status = $3
	`, studentID, courseID, StatusEnrolled).Scan(
		&sel.ID, &sel.StudentID, &sel.CourseID, &sel.Status,
		&sel.RemainingHours, &sel.CreatedAt, &sel.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Selection{}, ErrNotEnrolled
	}
	if err != nil {
		return Selection{}, fmt.Errorf("get selection: %w", err)
	}
	return sel, nil
}

// ListEnrolled returns a student's enrolled selections.
func (r *Repository) ListEnrolled(ctx context.Context, studentID string) ([]Selection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectionColumns+`
		FROM course_selections
		WHERE student_id = $1 AND status = $2
		ORDER BY created_at
	`, studentID, StatusEnrolled)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}
	defer rows.Close()

	var selections []Selection
	for rows.Next() {
		var sel Selection
		if err := rows.Scan(
			&sel.ID, &sel.StudentID, &sel.CourseID, &sel.Status,
			&sel.RemainingHours, &sel.CreatedAt, &sel.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		selections = append(selections, sel)
	}
	return selections, rows.Err()
}

// DecrementHours applies max(0, current-1) in a single UPDATE so
// concurrent check-ins cannot lose a deduction.
func (r *Repository) DecrementHours(ctx context.Context, studentID, courseID string, totalHours float64) (float64, error) {
	var remaining float64
	err := r.db.QueryRowContext(ctx, `
		UPDATE course_selections
		SET remaining_hours = GREATEST(COALESCE(remaining_hours, $3) - 1, 0), updated_at = NOW()
		WHERE student_id = $1 AND course_id = $2 AND status = $4
		RETURNING remaining_hours
	`, studentID, courseID, totalHours, StatusEnrolled).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotEnrolled
	}
	if err != nil {
		return 0, fmt.Errorf("decrement hours: %w", err)
	}
	return remaining, nil
}

// LowerRemainingHours writes hours only when below the stored value.
func (r *Repository) LowerRemainingHours(ctx context.Context, studentID, courseID string, hours, totalHours float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE course_selections
		SET remaining_hours = $3, updated_at = NOW()
		WHERE student_id = $1 AND course_id = $2 AND status = $5
		  AND COALESCE(remaining_hours, $4) > $3
	`, studentID, courseID, hours, totalHours, StatusEnrolled)
	if err != nil {
		return fmt.Errorf("lower remaining hours: %w", err)
	}
	return nil
}
