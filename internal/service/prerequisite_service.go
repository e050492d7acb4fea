package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/acadplan/acadplan-core/internal/models"
	appErrors "github.com/acadplan/acadplan-core/pkg/errors"
)

type prerequisiteRepository interface {
	Exists(ctx context.Context, subjectID, requiredID int64) (bool, error)
	Create(ctx context.Context, subjectID, requiredID int64) error
	Delete(ctx context.Context, subjectID, requiredID int64) (int64, error)
	ListRequired(ctx context.Context, subjectID int64) ([]models.Subject, error)
	Adjacency(ctx context.Context) (map[int64][]int64, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
	ListByCareer(ctx context.Context, careerID int64) ([]models.Subject, error)
}

// PrerequisiteService keeps the subject prerequisite relation a simple,
// acyclic, self-loop-free directed graph under incremental edits.
type PrerequisiteService struct {
	repo     prerequisiteRepository
	subjects subjectReader
	logger   *zap.Logger
}

// NewPrerequisiteService constructs PrerequisiteService.
func NewPrerequisiteService(repo prerequisiteRepository, subjects subjectReader, logger *zap.Logger) *PrerequisiteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrerequisiteService{repo: repo, subjects: subjects, logger: logger}
}

// AddPrerequisite inserts the edge subject→required after rejecting
// self-loops, duplicates and edges that would close a cycle.
func (s *PrerequisiteService) AddPrerequisite(ctx context.Context, subjectID, requiredID int64) error {
	if subjectID == requiredID {
		return appErrors.Clone(appErrors.ErrInvalidEdge, "a subject cannot require itself")
	}
	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load subject")
	}
	if _, err := s.subjects.FindByID(ctx, requiredID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "required subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load required subject")
	}
	exists, err := s.repo.Exists(ctx, subjectID, requiredID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to check prerequisite")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicate, "prerequisite already exists")
	}

	adjacency, err := s.repo.Adjacency(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load prerequisite graph")
	}
	if reachable(adjacency, requiredID, subjectID) {
		return appErrors.Clone(appErrors.ErrCycle, "prerequisite would create a cycle")
	}

	if err := s.repo.Create(ctx, subjectID, requiredID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to create prerequisite")
	}
	s.logger.Info("prerequisite added",
		zap.Int64("subject_id", subjectID),
		zap.Int64("required_subject_id", requiredID),
	)
	return nil
}

// RemovePrerequisite deletes the edge; a missing edge is a distinct
// not-found outcome.
func (s *PrerequisiteService) RemovePrerequisite(ctx context.Context, subjectID, requiredID int64) error {
	affected, err := s.repo.Delete(ctx, subjectID, requiredID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to remove prerequisite")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "prerequisite not found")
	}
	return nil
}

// ListPrerequisitesOf returns the subjects required by subjectID.
func (s *PrerequisiteService) ListPrerequisitesOf(ctx context.Context, subjectID int64) ([]models.Subject, error) {
	subjects, err := s.repo.ListRequired(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list prerequisites")
	}
	return subjects, nil
}

// ListCandidatesFor returns the subjects offerable as new prerequisites:
// same career only, excluding the subject itself and its existing
// prerequisites. Cross-career edges are not offered as an editing option.
func (s *PrerequisiteService) ListCandidatesFor(ctx context.Context, subjectID int64) ([]models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load subject")
	}
	peers, err := s.subjects.ListByCareer(ctx, subject.CareerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list career subjects")
	}
	existing, err := s.repo.ListRequired(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list prerequisites")
	}
	taken := make(map[int64]bool, len(existing))
	for _, e := range existing {
		taken[e.ID] = true
	}

	candidates := make([]models.Subject, 0, len(peers))
	for _, p := range peers {
		if p.ID == subjectID || taken[p.ID] {
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates, nil
}

// reachable reports whether target can be reached from start over the
// adjacency map, depth-first.
func reachable(adjacency map[int64][]int64, start, target int64) bool {
	if start == target {
		return true
	}
	visited := map[int64]bool{start: true}
	stack := []int64{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adjacency[node] {
			if next == target {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}
