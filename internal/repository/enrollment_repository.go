package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/acadplan/acadplan-core/internal/models"
)

const enrollmentColumns = `student_id, career_id, status, enrolled_at, start_date, end_date, principal, admission_period, notes`

// EnrollmentRepository handles persistence of career enrollments. The
// (student, career) pair is the row identity.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Find returns the enrollment for the pair, or sql.ErrNoRows.
func (r *EnrollmentRepository) Find(ctx context.Context, studentID, careerID int64) (*models.CareerEnrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM career_enrollments WHERE student_id = ? AND career_id = ?`, enrollmentColumns)
	var enrollment models.CareerEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, careerID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists reports whether the pair already has a row.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, careerID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM career_enrollments WHERE student_id = ? AND career_id = ?`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, careerID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return count > 0, nil
}

// Create persists a new enrollment row as given.
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.CareerEnrollment) error {
	query := fmt.Sprintf(`INSERT INTO career_enrollments (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, enrollmentColumns)
	if _, err := r.db.ExecContext(ctx, query,
		e.StudentID, e.CareerID, e.Status, e.EnrolledAt,
		e.StartDate, e.EndDate, e.Principal, e.AdmissionPeriod, e.Notes,
	); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update rewrites the pair's mutable attributes and returns the affected
// row count so callers can distinguish a missing pair.
func (r *EnrollmentRepository) Update(ctx context.Context, e *models.CareerEnrollment) (int64, error) {
	const query = `UPDATE career_enrollments
		SET status = ?, enrolled_at = ?, start_date = ?, end_date = ?, principal = ?, admission_period = ?, notes = ?
		WHERE student_id = ? AND career_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		e.Status, e.EnrolledAt, e.StartDate, e.EndDate, e.Principal, e.AdmissionPeriod, e.Notes,
		e.StudentID, e.CareerID,
	)
	if err != nil {
		return 0, fmt.Errorf("update enrollment: %w", err)
	}
	return res.RowsAffected()
}

// UpdateStatus changes the pair's status, optionally recording an end date.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, studentID, careerID int64, status models.EnrollmentStatus, endDate *string) (int64, error) {
	const query = `UPDATE career_enrollments SET status = ?, end_date = COALESCE(?, end_date)
		WHERE student_id = ? AND career_id = ?`
	res, err := r.db.ExecContext(ctx, query, status, endDate, studentID, careerID)
	if err != nil {
		return 0, fmt.Errorf("update enrollment status: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes the pair's row and returns the affected count.
func (r *EnrollmentRepository) Delete(ctx context.Context, studentID, careerID int64) (int64, error) {
	const query = `DELETE FROM career_enrollments WHERE student_id = ? AND career_id = ?`
	res, err := r.db.ExecContext(ctx, query, studentID, careerID)
	if err != nil {
		return 0, fmt.Errorf("delete enrollment: %w", err)
	}
	return res.RowsAffected()
}

// ListActiveByStudent returns the student's active enrollments.
func (r *EnrollmentRepository) ListActiveByStudent(ctx context.Context, studentID int64) ([]models.CareerEnrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM career_enrollments WHERE student_id = ? AND status = ? ORDER BY career_id`, enrollmentColumns)
	var enrollments []models.CareerEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list active enrollments: %w", err)
	}
	return enrollments, nil
}

// StudentsWithActive returns the distinct students holding at least one
// active enrollment, for the advisory integrity scan.
func (r *EnrollmentRepository) StudentsWithActive(ctx context.Context) ([]int64, error) {
	const query = `SELECT DISTINCT student_id FROM career_enrollments WHERE status = ? ORDER BY student_id`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list students with active enrollments: %w", err)
	}
	return ids, nil
}
