package loader

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/acadplan-core/internal/dto"
	"github.com/acadplan/acadplan-core/internal/store"
	"github.com/acadplan/acadplan-core/internal/validation"
	appErrors "github.com/acadplan/acadplan-core/pkg/errors"
)

func newLoaderMock(t *testing.T) (*Loader, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	gw := store.NewGateway(sqlx.NewDb(db, "sqlmock"), nil)
	return New(gw, validation.New(nil), nil, nil), mock, func() { db.Close() }
}

func expectSchema(mock sqlmock.Sqlmock) {
	for range schemaStatements {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	l, mock, cleanup := newLoaderMock(t)
	defer cleanup()

	// Two consecutive runs issue the same IF NOT EXISTS statements and
	// neither fails.
	expectSchema(mock)
	expectSchema(mock)

	ctx := context.Background()
	require.NoError(t, EnsureSchema(ctx, l.gw))
	require.NoError(t, EnsureSchema(ctx, l.gw))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRefusesWhenValidationFails(t *testing.T) {
	l, mock, cleanup := newLoaderMock(t)
	defer cleanup()

	expectSchema(mock)

	batches := dto.BatchSet{
		Subjects: []dto.Record{
			{"id": "10", "code": "ALG1", "name": "Algebra I", "career_id": "99"},
		},
	}

	summary, err := l.Load(context.Background(), batches, Options{SkipExisting: true})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed.Code))
	require.NotNil(t, summary.Validation)
	assert.Len(t, summary.Validation.Violations[dto.RuleSubjectCareer], 1)
	// The loader never reached any insert.
	assert.Empty(t, summary.Tables)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadChecksCommittedIdentities(t *testing.T) {
	l, mock, cleanup := newLoaderMock(t)
	defer cleanup()

	expectSchema(mock)
	// Career 1 is already committed; the staged subject referencing it is
	// valid without a staged career batch.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM careers")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM subjects")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM thematic_axes")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM activity_types")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subjects")).
		WithArgs("10", "ALG1", "Algebra I", nil, nil, nil, "1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	batches := dto.BatchSet{
		Subjects: []dto.Record{
			{"id": "10", "code": "ALG1", "name": "Algebra I", "career_id": "1"},
		},
	}

	summary, err := l.Load(context.Background(), batches, Options{})
	require.NoError(t, err)
	assert.False(t, summary.Failed())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadIsolatesRecordFailures(t *testing.T) {
	l, mock, cleanup := newLoaderMock(t)
	defer cleanup()

	expectSchema(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO careers")).
		WithArgs("1", "INF", "Informatics", nil, nil, nil).
		WillReturnError(errors.New("UNIQUE constraint failed: careers.code"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO careers")).
		WithArgs("2", "MAT", "Mathematics", nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	batches := dto.BatchSet{
		Careers: []dto.Record{
			{"id": "1", "code": "INF", "name": "Informatics"},
			{"id": "2", "code": "MAT", "name": "Mathematics"},
		},
	}

	summary, err := l.Load(context.Background(), batches, Options{SkipExisting: true})
	require.NoError(t, err)

	require.NotEmpty(t, summary.Tables)
	careers := summary.Tables[0]
	assert.Equal(t, "careers", careers.Table)
	assert.Equal(t, 2, careers.Attempted)
	assert.Equal(t, 1, careers.Inserted)
	require.Len(t, careers.Errors, 1)
	assert.Contains(t, careers.Errors[0], "id=1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadNormalizesEmptyValuesToNull(t *testing.T) {
	l, mock, cleanup := newLoaderMock(t)
	defer cleanup()

	expectSchema(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO careers")).
		WithArgs("1", "INF", "Informatics", nil, nil, "240").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	batches := dto.BatchSet{
		Careers: []dto.Record{
			{"id": "1", "code": "INF", "name": "Informatics", "plan": "", "total_credits": "240"},
		},
	}

	summary, err := l.Load(context.Background(), batches, Options{SkipExisting: true})
	require.NoError(t, err)
	assert.False(t, summary.Failed())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadInsertsInDependencyOrder(t *testing.T) {
	l, mock, cleanup := newLoaderMock(t)
	defer cleanup()

	expectSchema(mock)

	// careers first, then subjects, then the prerequisite edge.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO careers")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subjects")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subjects")).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO prerequisites")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	batches := dto.BatchSet{
		Careers: []dto.Record{{"id": "1", "code": "INF", "name": "Informatics"}},
		Subjects: []dto.Record{
			{"id": "10", "code": "ALG1", "name": "Algebra I", "career_id": "1"},
			{"id": "11", "code": "ALG2", "name": "Algebra II", "career_id": "1"},
		},
		Prerequisites: []dto.Record{
			{"subject_id": "11", "required_subject_id": "10"},
		},
	}

	summary, err := l.Load(context.Background(), batches, Options{SkipExisting: true})
	require.NoError(t, err)
	require.Len(t, summary.Tables, len(tables))
	assert.Equal(t, "careers", summary.Tables[0].Table)
	assert.Equal(t, "subjects", summary.Tables[1].Table)
	assert.Equal(t, "prerequisites", summary.Tables[2].Table)
	require.NoError(t, mock.ExpectationsWereMet())
}
