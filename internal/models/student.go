package models

// Student represents a learner registered in the institution.
//
// CareerID is the legacy direct career reference. It is being retired in
// favour of career_enrollments and is removed by the schema migrator once
// every student row has at least one enrollment row.
type Student struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	CareerID *int64 `db:"career_id" json:"career_id,omitempty"`
}
