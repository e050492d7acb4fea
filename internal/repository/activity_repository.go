package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/acadplan-core/internal/models"
)

// ActivityRepository reads activities for the calendar conflict check.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ListScheduled returns the activities carrying a start date, in date order.
func (r *ActivityRepository) ListScheduled(ctx context.Context) ([]models.Activity, error) {
	const query = `SELECT id, title, description, start_date, end_date, axis_id, activity_type_id
		FROM activities WHERE start_date IS NOT NULL ORDER BY start_date, id`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, fmt.Errorf("list scheduled activities: %w", err)
	}
	return activities, nil
}
