package models

// ThematicAxis groups activities under a subject with a display order.
type ThematicAxis struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Position  *int   `db:"position" json:"position,omitempty"`
	SubjectID int64  `db:"subject_id" json:"subject_id"`
}
