package models

// CalendarEvent marks institutional dates. Events flagged with
// AffectsActivities perturb activity scheduling.
type CalendarEvent struct {
	ID                int64   `db:"id" json:"id"`
	Title             string  `db:"title" json:"title"`
	Kind              *string `db:"kind" json:"kind,omitempty"`
	StartDate         *string `db:"start_date" json:"start_date,omitempty"`
	EndDate           *string `db:"end_date" json:"end_date,omitempty"`
	AffectsActivities bool    `db:"affects_activities" json:"affects_activities"`
}
