package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadplan/acadplan-core/internal/models"
	appErrors "github.com/acadplan/acadplan-core/pkg/errors"
)

type enrollmentRepository interface {
	Find(ctx context.Context, studentID, careerID int64) (*models.CareerEnrollment, error)
	Exists(ctx context.Context, studentID, careerID int64) (bool, error)
	Create(ctx context.Context, e *models.CareerEnrollment) error
	Update(ctx context.Context, e *models.CareerEnrollment) (int64, error)
	UpdateStatus(ctx context.Context, studentID, careerID int64, status models.EnrollmentStatus, endDate *string) (int64, error)
	Delete(ctx context.Context, studentID, careerID int64) (int64, error)
	ListActiveByStudent(ctx context.Context, studentID int64) ([]models.CareerEnrollment, error)
	StudentsWithActive(ctx context.Context) ([]int64, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type careerReader interface {
	FindByID(ctx context.Context, id int64) (*models.Career, error)
}

// EnrollRequest describes enrollment creation. Dates are ISO days.
type EnrollRequest struct {
	StudentID       int64  `json:"student_id" validate:"required"`
	CareerID        int64  `json:"career_id" validate:"required"`
	Status          string `json:"status" validate:"omitempty,oneof=active inactive suspended completed abandoned"`
	EnrolledAt      string `json:"enrolled_at" validate:"required,datetime=2006-01-02"`
	StartDate       string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Principal       bool   `json:"principal"`
	AdmissionPeriod string `json:"admission_period"`
	Notes           string `json:"notes"`
}

// UpdateEnrollmentRequest rewrites the pair's mutable attributes.
type UpdateEnrollmentRequest struct {
	StudentID       int64  `json:"student_id" validate:"required"`
	CareerID        int64  `json:"career_id" validate:"required"`
	Status          string `json:"status" validate:"required,oneof=active inactive suspended completed abandoned"`
	EnrolledAt      string `json:"enrolled_at" validate:"required,datetime=2006-01-02"`
	StartDate       string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Principal       bool   `json:"principal"`
	AdmissionPeriod string `json:"admission_period"`
	Notes           string `json:"notes"`
}

// PrincipalOutcome classifies the principal-uniqueness advisory result.
type PrincipalOutcome string

const (
	// PrincipalOK means exactly one active enrollment carries the flag.
	PrincipalOK PrincipalOutcome = "ok"
	// PrincipalNone means no active enrollment is designated principal.
	PrincipalNone PrincipalOutcome = "none"
	// PrincipalMultiple means several active enrollments carry the flag;
	// operator correction is required, the system never demotes one itself.
	PrincipalMultiple PrincipalOutcome = "multiple"
)

// PrincipalCheck is the advisory result for one student.
type PrincipalCheck struct {
	StudentID        int64            `json:"student_id"`
	Outcome          PrincipalOutcome `json:"outcome"`
	ActiveCount      int              `json:"active_count"`
	PrincipalCareers []int64          `json:"principal_careers,omitempty"`
}

// PrincipalScan aggregates the advisory check across all students with
// active enrollments.
type PrincipalScan struct {
	Checked  int              `json:"checked"`
	Warnings []PrincipalCheck `json:"warnings,omitempty"`
	Errors   []PrincipalCheck `json:"errors,omitempty"`
}

// EnrollmentService manages the student↔career relation and its
// principal-uniqueness invariant.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentReader
	careers   careerReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentReader, careers careerReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, careers: careers, validator: validate, logger: logger}
}

// Enroll registers a student to a career. An existing pair is rejected,
// never upserted. The caller remains responsible for checking principal
// uniqueness afterwards.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.CareerEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid enrollment payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load student")
	}
	if _, err := s.careers.FindByID(ctx, req.CareerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "career not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load career")
	}
	exists, err := s.repo.Exists(ctx, req.StudentID, req.CareerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "student already enrolled in career")
	}

	status := models.EnrollmentStatus(req.Status)
	if req.Status == "" {
		status = models.EnrollmentStatusActive
	}
	enrollment := &models.CareerEnrollment{
		StudentID:       req.StudentID,
		CareerID:        req.CareerID,
		Status:          status,
		EnrolledAt:      req.EnrolledAt,
		StartDate:       optString(req.StartDate),
		EndDate:         optString(req.EndDate),
		Principal:       req.Principal,
		AdmissionPeriod: optString(req.AdmissionPeriod),
		Notes:           optString(req.Notes),
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to create enrollment")
	}
	s.logger.Info("enrollment created",
		zap.Int64("student_id", req.StudentID),
		zap.Int64("career_id", req.CareerID),
		zap.Bool("principal", req.Principal),
	)
	return enrollment, nil
}

// UpdateEnrollment rewrites the pair's mutable attributes; a missing pair
// is a distinct not-found outcome, never a silent no-op.
func (s *EnrollmentService) UpdateEnrollment(ctx context.Context, req UpdateEnrollmentRequest) (*models.CareerEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid enrollment payload")
	}
	enrollment := &models.CareerEnrollment{
		StudentID:       req.StudentID,
		CareerID:        req.CareerID,
		Status:          models.EnrollmentStatus(req.Status),
		EnrolledAt:      req.EnrolledAt,
		StartDate:       optString(req.StartDate),
		EndDate:         optString(req.EndDate),
		Principal:       req.Principal,
		AdmissionPeriod: optString(req.AdmissionPeriod),
		Notes:           optString(req.Notes),
	}
	affected, err := s.repo.Update(ctx, enrollment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to update enrollment")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	return enrollment, nil
}

// Withdraw removes the pair's enrollment row.
func (s *EnrollmentService) Withdraw(ctx context.Context, studentID, careerID int64) error {
	affected, err := s.repo.Delete(ctx, studentID, careerID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to withdraw enrollment")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	s.logger.Info("enrollment withdrawn", zap.Int64("student_id", studentID), zap.Int64("career_id", careerID))
	return nil
}

// ChangeStatus moves the pair to a new lifecycle status. Unknown values
// are rejected before the store is touched.
func (s *EnrollmentService) ChangeStatus(ctx context.Context, studentID, careerID int64, status string) error {
	newStatus := models.EnrollmentStatus(status)
	if !newStatus.Valid() {
		return appErrors.Clone(appErrors.ErrInvalidState, "unknown enrollment status: "+status)
	}
	affected, err := s.repo.UpdateStatus(ctx, studentID, careerID, newStatus, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to change enrollment status")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	return nil
}

// Complete marks the enrollment completed and records the end date.
func (s *EnrollmentService) Complete(ctx context.Context, studentID, careerID int64, endDate string) error {
	if err := s.validator.Var(endDate, "required,datetime=2006-01-02"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid end date")
	}
	affected, err := s.repo.UpdateStatus(ctx, studentID, careerID, models.EnrollmentStatusCompleted, &endDate)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to complete enrollment")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
	}
	s.logger.Info("enrollment completed", zap.Int64("student_id", studentID), zap.Int64("career_id", careerID))
	return nil
}

// ValidatePrincipalUniqueness is the read-only advisory over the student's
// active enrollments: exactly one principal is OK, zero is a warning,
// several is a data-corruption finding requiring operator correction.
func (s *EnrollmentService) ValidatePrincipalUniqueness(ctx context.Context, studentID int64) (*PrincipalCheck, error) {
	active, err := s.repo.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list active enrollments")
	}
	check := &PrincipalCheck{StudentID: studentID, ActiveCount: len(active)}
	for _, e := range active {
		if e.Principal {
			check.PrincipalCareers = append(check.PrincipalCareers, e.CareerID)
		}
	}
	switch len(check.PrincipalCareers) {
	case 1:
		check.Outcome = PrincipalOK
	case 0:
		check.Outcome = PrincipalNone
	default:
		check.Outcome = PrincipalMultiple
	}
	return check, nil
}

// ScanPrincipalIntegrity runs the advisory check for every student holding
// active enrollments.
func (s *EnrollmentService) ScanPrincipalIntegrity(ctx context.Context) (*PrincipalScan, error) {
	students, err := s.repo.StudentsWithActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list students")
	}
	scan := &PrincipalScan{Checked: len(students)}
	for _, id := range students {
		check, err := s.ValidatePrincipalUniqueness(ctx, id)
		if err != nil {
			return nil, err
		}
		switch check.Outcome {
		case PrincipalNone:
			scan.Warnings = append(scan.Warnings, *check)
		case PrincipalMultiple:
			scan.Errors = append(scan.Errors, *check)
		}
	}
	return scan, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
