package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists check-ins in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const checkinColumns = `id, student_id, course_id, checkin_date::text, checked_in_at, status, location, device_info`

// Insert appends a journal entry. A unique-violation on
// (student, course, date) maps to ErrDuplicateCheckIn; the constraint,
// not a prior read, is what closes the same-day race.
func (r *Repository) Insert(ctx context.Context, rec CheckIn) (CheckIn, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CheckedInAt.IsZero() {
		rec.CheckedInAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checkins (id, student_id, course_id, checkin_date, checked_in_at, status, location, device_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.StudentID, rec.CourseID, rec.Date, rec.CheckedInAt, rec.Status, rec.Location, rec.DeviceInfo)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return CheckIn{}, ErrDuplicateCheckIn
		}
		return CheckIn{}, fmt.Errorf("insert checkin: %w", err)
	}
	return rec, nil
}

// List returns check-ins with optional course and date-range filters,
// newest date first.
func (r *Repository) List(ctx context.Context, studentID, courseID, fromDate, toDate string) ([]CheckIn, error) {
	query := `SELECT ` + checkinColumns + ` FROM checkins WHERE student_id = $1`
	args := []any{studentID}
	if courseID != "" {
		args = append(args, courseID)
		query += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	if fromDate != "" {
		args = append(args, fromDate)
		query += fmt.Sprintf(" AND checkin_date >= $%d", len(args))
	}
	if toDate != "" {
		args = append(args, toDate)
		query += fmt.Sprintf(" AND checkin_date <= $%d", len(args))
	}
	query += " ORDER BY checkin_date DESC, checked_in_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	defer rows.Close()

	var records []CheckIn
	for rows.Next() {
		var rec CheckIn
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.CourseID, &rec.Date, &rec.CheckedInAt, &rec.Status, &rec.Location, &rec.DeviceInfo); err != nil {
			return nil, fmt.Errorf("scan checkin: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountPresent counts journal entries for a pair; reconciliation
// recomputes remaining hours from this.
func (r *Repository) CountPresent(ctx context.Context, studentID, courseID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM checkins
		WHERE student_id = $1 AND course_id = $2 AND status = $3
	`, studentID, courseID, StatusPresent).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count checkins: %w", err)
	}
	return count, nil
}
