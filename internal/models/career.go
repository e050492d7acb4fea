package models

// Career represents a degree program owning subjects.
type Career struct {
	ID           int64   `db:"id" json:"id"`
	Code         string  `db:"code" json:"code"`
	Name         string  `db:"name" json:"name"`
	Plan         *string `db:"plan" json:"plan,omitempty"`
	Modality     *string `db:"modality" json:"modality,omitempty"`
	TotalCredits *int    `db:"total_credits" json:"total_credits,omitempty"`
}
