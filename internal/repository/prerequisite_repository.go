package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/acadplan-core/internal/models"
)

// PrerequisiteRepository handles persistence of prerequisite edges.
type PrerequisiteRepository struct {
	db *sqlx.DB
}

// NewPrerequisiteRepository constructs the repository.
func NewPrerequisiteRepository(db *sqlx.DB) *PrerequisiteRepository {
	return &PrerequisiteRepository{db: db}
}

// Exists reports whether the edge is present.
func (r *PrerequisiteRepository) Exists(ctx context.Context, subjectID, requiredID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM prerequisites WHERE subject_id = ? AND required_subject_id = ?`
	var count int
	if err := r.db.GetContext(ctx, &count, query, subjectID, requiredID); err != nil {
		return false, fmt.Errorf("check prerequisite: %w", err)
	}
	return count > 0, nil
}

// Create inserts the edge.
func (r *PrerequisiteRepository) Create(ctx context.Context, subjectID, requiredID int64) error {
	const query = `INSERT INTO prerequisites (subject_id, required_subject_id) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, subjectID, requiredID); err != nil {
		return fmt.Errorf("create prerequisite: %w", err)
	}
	return nil
}

// Delete removes the edge and returns the affected count.
func (r *PrerequisiteRepository) Delete(ctx context.Context, subjectID, requiredID int64) (int64, error) {
	const query = `DELETE FROM prerequisites WHERE subject_id = ? AND required_subject_id = ?`
	res, err := r.db.ExecContext(ctx, query, subjectID, requiredID)
	if err != nil {
		return 0, fmt.Errorf("delete prerequisite: %w", err)
	}
	return res.RowsAffected()
}

// ListRequired returns the subjects required by subjectID.
func (r *PrerequisiteRepository) ListRequired(ctx context.Context, subjectID int64) ([]models.Subject, error) {
	const query = `SELECT s.id, s.code, s.name, s.credits, s.weekly_hours, s.kind, s.career_id
		FROM prerequisites p
		JOIN subjects s ON s.id = p.required_subject_id
		WHERE p.subject_id = ?
		ORDER BY s.code`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, subjectID); err != nil {
		return nil, fmt.Errorf("list required subjects: %w", err)
	}
	return subjects, nil
}

// Adjacency returns the whole edge set keyed by subject, for reachability
// checks before accepting a new edge.
func (r *PrerequisiteRepository) Adjacency(ctx context.Context) (map[int64][]int64, error) {
	const query = `SELECT subject_id, required_subject_id FROM prerequisites`
	var edges []models.Prerequisite
	if err := r.db.SelectContext(ctx, &edges, query); err != nil {
		return nil, fmt.Errorf("load prerequisite edges: %w", err)
	}
	adjacency := make(map[int64][]int64, len(edges))
	for _, e := range edges {
		adjacency[e.SubjectID] = append(adjacency[e.SubjectID], e.RequiredSubjectID)
	}
	return adjacency, nil
}
