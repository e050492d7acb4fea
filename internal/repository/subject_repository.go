package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/acadplan-core/internal/models"
)

const subjectColumns = `id, code, name, credits, weekly_hours, kind, career_id`

// SubjectRepository reads subjects for the prerequisite editing flows.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID returns a subject by its ID, or sql.ErrNoRows.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE id = ?`, subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListByCareer returns all subjects owned by a career.
func (r *SubjectRepository) ListByCareer(ctx context.Context, careerID int64) ([]models.Subject, error) {
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE career_id = ? ORDER BY code`, subjectColumns)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, careerID); err != nil {
		return nil, fmt.Errorf("list subjects by career: %w", err)
	}
	return subjects, nil
}
