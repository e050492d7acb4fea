package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/acadplan-core/internal/models"
)

// ActivityTypeRepository reads the activity type catalog.
type ActivityTypeRepository struct {
	db *sqlx.DB
}

// NewActivityTypeRepository constructs the repository.
func NewActivityTypeRepository(db *sqlx.DB) *ActivityTypeRepository {
	return &ActivityTypeRepository{db: db}
}

// List returns all activity types.
func (r *ActivityTypeRepository) List(ctx context.Context) ([]models.ActivityType, error) {
	const query = `SELECT id, name, abbreviation, description, priority FROM activity_types ORDER BY id`
	var types []models.ActivityType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("list activity types: %w", err)
	}
	return types, nil
}
