package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/acadplan-core/internal/models"
)

// CareerRepository reads careers for enrollment reference checks.
type CareerRepository struct {
	db *sqlx.DB
}

// NewCareerRepository constructs the repository.
func NewCareerRepository(db *sqlx.DB) *CareerRepository {
	return &CareerRepository{db: db}
}

// FindByID returns a career by ID, or sql.ErrNoRows.
func (r *CareerRepository) FindByID(ctx context.Context, id int64) (*models.Career, error) {
	const query = `SELECT id, code, name, plan, modality, total_credits FROM careers WHERE id = ?`
	var career models.Career
	if err := r.db.GetContext(ctx, &career, query, id); err != nil {
		return nil, err
	}
	return &career, nil
}
