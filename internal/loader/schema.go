package loader

import (
	"context"
	"fmt"

	"github.com/acadplan/acadplan-core/internal/store"
)

// schemaStatements create the full relational schema. Every statement is
// idempotent so initialization can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS careers (
		id INTEGER PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		plan TEXT,
		modality TEXT,
		total_credits INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS subjects (
		id INTEGER PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		credits INTEGER,
		weekly_hours INTEGER,
		kind TEXT,
		career_id INTEGER NOT NULL REFERENCES careers(id)
	)`,
	`CREATE TABLE IF NOT EXISTS prerequisites (
		subject_id INTEGER NOT NULL REFERENCES subjects(id),
		required_subject_id INTEGER NOT NULL REFERENCES subjects(id),
		PRIMARY KEY (subject_id, required_subject_id),
		CHECK (subject_id <> required_subject_id)
	)`,
	`CREATE TABLE IF NOT EXISTS thematic_axes (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		position INTEGER,
		subject_id INTEGER NOT NULL REFERENCES subjects(id)
	)`,
	`CREATE TABLE IF NOT EXISTS activity_types (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		abbreviation TEXT,
		description TEXT,
		priority INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		start_date TEXT,
		end_date TEXT,
		axis_id INTEGER NOT NULL REFERENCES thematic_axes(id),
		activity_type_id INTEGER NOT NULL REFERENCES activity_types(id)
	)`,
	`CREATE TABLE IF NOT EXISTS calendar_events (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		kind TEXT,
		start_date TEXT,
		end_date TEXT,
		affects_activities INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		career_id INTEGER REFERENCES careers(id)
	)`,
	`CREATE TABLE IF NOT EXISTS career_enrollments (
		student_id INTEGER NOT NULL REFERENCES students(id),
		career_id INTEGER NOT NULL REFERENCES careers(id),
		status TEXT NOT NULL DEFAULT 'active',
		enrolled_at TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT,
		principal INTEGER NOT NULL DEFAULT 0,
		admission_period TEXT,
		notes TEXT,
		PRIMARY KEY (student_id, career_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subjects_career ON subjects(career_id)`,
	`CREATE INDEX IF NOT EXISTS idx_axes_subject ON thematic_axes(subject_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_axis ON activities(axis_id)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_student ON career_enrollments(student_id)`,
}

// EnsureSchema creates every table and index that is absent. Re-running is
// a no-op.
func EnsureSchema(ctx context.Context, gw *store.Gateway) error {
	for _, stmt := range schemaStatements {
		if _, err := gw.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
