package models

// ActivityType classifies activities and sets their scheduling priority.
type ActivityType struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Abbreviation *string `db:"abbreviation" json:"abbreviation,omitempty"`
	Description  *string `db:"description" json:"description,omitempty"`
	Priority     *int    `db:"priority" json:"priority,omitempty"`
}

// Activity is a scheduled unit of work under a thematic axis.
// Dates are stored as ISO-8601 text in the embedded store.
type Activity struct {
	ID             int64   `db:"id" json:"id"`
	Title          string  `db:"title" json:"title"`
	Description    *string `db:"description" json:"description,omitempty"`
	StartDate      *string `db:"start_date" json:"start_date,omitempty"`
	EndDate        *string `db:"end_date" json:"end_date,omitempty"`
	AxisID         int64   `db:"axis_id" json:"axis_id"`
	ActivityTypeID int64   `db:"activity_type_id" json:"activity_type_id"`
}
