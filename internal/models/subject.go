package models

// Subject represents a course belonging to exactly one career.
type Subject struct {
	ID          int64   `db:"id" json:"id"`
	Code        string  `db:"code" json:"code"`
	Name        string  `db:"name" json:"name"`
	Credits     *int    `db:"credits" json:"credits,omitempty"`
	WeeklyHours *int    `db:"weekly_hours" json:"weekly_hours,omitempty"`
	Kind        *string `db:"kind" json:"kind,omitempty"`
	CareerID    int64   `db:"career_id" json:"career_id"`
}

// Prerequisite is a directed "must complete before" edge between two
// subjects. The pair is the identity; there is no surrogate key.
type Prerequisite struct {
	SubjectID         int64 `db:"subject_id" json:"subject_id"`
	RequiredSubjectID int64 `db:"required_subject_id" json:"required_subject_id"`
}
