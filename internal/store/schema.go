package store

import (
	"context"
	"database/sql"
)

// schema creates the tables this service owns. Uniqueness that the
// services rely on lives here, not in application code: one selection
// row per (student, course) and one check-in per (student, course, day).
const schema = `
CREATE TABLE IF NOT EXISTS courses (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	code        TEXT NOT NULL DEFAULT '',
	credit      DOUBLE PRECISION NOT NULL DEFAULT 0,
	hours       DOUBLE PRECISION NOT NULL,
	semester    TEXT NOT NULL DEFAULT '',
	year        INT NOT NULL DEFAULT 0,
	capacity    INT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'available',
	teacher_id  TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS course_selections (
	id              TEXT PRIMARY KEY,
	student_id      TEXT NOT NULL,
	course_id       TEXT NOT NULL REFERENCES courses(id),
	status          TEXT NOT NULL DEFAULT 'enrolled',
	remaining_hours DOUBLE PRECISION,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (student_id, course_id)
);

CREATE INDEX IF NOT EXISTS idx_selections_course ON course_selections(course_id, status);

CREATE TABLE IF NOT EXISTS checkins (
	id            TEXT PRIMARY KEY,
	student_id    TEXT NOT NULL,
	course_id     TEXT NOT NULL REFERENCES courses(id),
	checkin_date  DATE NOT NULL,
	checked_in_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	status        TEXT NOT NULL DEFAULT 'present',
	location      TEXT NOT NULL DEFAULT '',
	device_info   TEXT NOT NULL DEFAULT '',
	UNIQUE (student_id, course_id, checkin_date)
);

CREATE INDEX IF NOT EXISTS idx_checkins_student ON checkins(student_id, checkin_date);
`

// Migrate applies the schema, idempotently.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
