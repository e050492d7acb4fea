package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/acadplan-core/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryListActiveByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "career_id", "status", "enrolled_at", "start_date", "end_date", "principal", "admission_period", "notes"}).
		AddRow(int64(7), int64(1), "active", "2024-03-01", nil, nil, true, "2024-1", nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM career_enrollments WHERE student_id = ? AND status = ?")).
		WithArgs(int64(7), models.EnrollmentStatusActive).
		WillReturnRows(rows)

	enrollments, err := repo.ListActiveByStudent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.True(t, enrollments[0].Principal)
	assert.Equal(t, int64(1), enrollments[0].CareerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO career_enrollments")).
		WithArgs(int64(7), int64(1), models.EnrollmentStatusActive, "2024-03-01", nil, nil, true, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.CareerEnrollment{
		StudentID:  7,
		CareerID:   1,
		Status:     models.EnrollmentStatusActive,
		EnrolledAt: "2024-03-01",
		Principal:  true,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteReportsAffected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM career_enrollments WHERE student_id = ? AND career_id = ?")).
		WithArgs(int64(7), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Delete(context.Background(), 7, 9)
	require.NoError(t, err)
	assert.Zero(t, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateStatusKeepsEndDateWhenNil(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE career_enrollments SET status = ?, end_date = COALESCE(?, end_date)")).
		WithArgs(models.EnrollmentStatusSuspended, nil, int64(7), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.UpdateStatus(context.Background(), 7, 1, models.EnrollmentStatusSuspended, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrerequisiteRepositoryAdjacency(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPrerequisiteRepository(db)

	rows := sqlmock.NewRows([]string{"subject_id", "required_subject_id"}).
		AddRow(int64(2), int64(1)).
		AddRow(int64(3), int64(2)).
		AddRow(int64(3), int64(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_id, required_subject_id FROM prerequisites")).
		WillReturnRows(rows)

	adjacency, err := repo.Adjacency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, adjacency[2])
	assert.Equal(t, []int64{2, 1}, adjacency[3])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrerequisiteRepositoryDeleteReportsAffected(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPrerequisiteRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM prerequisites WHERE subject_id = ? AND required_subject_id = ?")).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Delete(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListByCareer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "name", "credits", "weekly_hours", "kind", "career_id"}).
		AddRow(int64(10), "ALG1", "Algebra I", 6, 4, "core", int64(1)).
		AddRow(int64(11), "ALG2", "Algebra II", 6, 4, "core", int64(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE career_id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	subjects, err := repo.ListByCareer(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "ALG1", subjects[0].Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
