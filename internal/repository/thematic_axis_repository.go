package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/acadplan-core/internal/models"
)

// ThematicAxisRepository reads thematic axes.
type ThematicAxisRepository struct {
	db *sqlx.DB
}

// NewThematicAxisRepository constructs the repository.
func NewThematicAxisRepository(db *sqlx.DB) *ThematicAxisRepository {
	return &ThematicAxisRepository{db: db}
}

// List returns all thematic axes.
func (r *ThematicAxisRepository) List(ctx context.Context) ([]models.ThematicAxis, error) {
	const query = `SELECT id, name, position, subject_id FROM thematic_axes ORDER BY subject_id, position`
	var axes []models.ThematicAxis
	if err := r.db.SelectContext(ctx, &axes, query); err != nil {
		return nil, fmt.Errorf("list thematic axes: %w", err)
	}
	return axes, nil
}
