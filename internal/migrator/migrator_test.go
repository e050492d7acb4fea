package migrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/acadplan-core/internal/store"
	appErrors "github.com/acadplan/acadplan-core/pkg/errors"
)

func newMigratorMock(t *testing.T) (*Migrator, sqlmock.Sqlmock, string, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	dir := t.TempDir()
	storePath := filepath.Join(dir, "acadplan.db")
	require.NoError(t, os.WriteFile(storePath, []byte("store-bytes"), 0o644))
	backupDir := filepath.Join(dir, "backups")

	gw := store.NewGateway(sqlx.NewDb(db, "sqlmock"), nil)
	m := New(gw, NewFileBackup(backupDir), storePath, nil, nil)
	return m, mock, backupDir, func() { db.Close() }
}

func expectPrecondition(mock sqlmock.Sqlmock, unmigrated int64) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(unmigrated))
}

func TestDropColumnRequiresConfirmation(t *testing.T) {
	m, mock, _, cleanup := newMigratorMock(t)
	defer cleanup()

	_, err := m.DropColumn(context.Background(), StudentCareerColumnPlan(), Options{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed.Code))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDropColumnAbortsOnUnmigratedRows(t *testing.T) {
	m, mock, backupDir, cleanup := newMigratorMock(t)
	defer cleanup()

	expectPrecondition(mock, 1)

	report, err := m.DropColumn(context.Background(), StudentCareerColumnPlan(), Options{Confirmed: true})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPreconditionFailed.Code))
	assert.Equal(t, 1, report.UnmigratedRows)
	assert.False(t, report.Precondition)

	// No backup was written and no DDL ran.
	_, statErr := os.Stat(backupDir)
	assert.True(t, os.IsNotExist(statErr))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDropColumnHappyPath(t *testing.T) {
	m, mock, backupDir, cleanup := newMigratorMock(t)
	defer cleanup()

	expectPrecondition(mock, 0)
	mock.ExpectExec(regexp.QuoteMeta("PRAGMA foreign_keys = OFF")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE students_new")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students_new (id, name, email) SELECT id, name, email FROM students")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE students")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE students_new RENAME TO students")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("PRAGMA foreign_keys = ON")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("PRAGMA table_info(students)")).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type"}).
			AddRow(0, "id", "INTEGER").
			AddRow(1, "name", "TEXT").
			AddRow(2, "email", "TEXT"))

	report, err := m.DropColumn(context.Background(), StudentCareerColumnPlan(), Options{Confirmed: true})
	require.NoError(t, err)

	assert.True(t, report.Precondition)
	assert.True(t, report.Rebuild)
	assert.True(t, report.PostCheck)
	assert.Equal(t, []string{"id", "name", "email"}, report.Columns)
	assert.NotContains(t, report.Columns, "career_id")

	// The timestamped backup exists and holds the store bytes.
	require.NotEmpty(t, report.BackupPath)
	payload, readErr := os.ReadFile(report.BackupPath)
	require.NoError(t, readErr)
	assert.Equal(t, "store-bytes", string(payload))
	entries, _ := filepath.Glob(filepath.Join(backupDir, "*.bak"))
	assert.Len(t, entries, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDropColumnRollsBackFailedRebuild(t *testing.T) {
	m, mock, _, cleanup := newMigratorMock(t)
	defer cleanup()

	expectPrecondition(mock, 0)
	mock.ExpectExec(regexp.QuoteMeta("PRAGMA foreign_keys = OFF")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE students_new")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students_new")).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()
	// Enforcement comes back on even though the rebuild failed.
	mock.ExpectExec(regexp.QuoteMeta("PRAGMA foreign_keys = ON")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	report, err := m.DropColumn(context.Background(), StudentCareerColumnPlan(), Options{Confirmed: true})
	require.Error(t, err)
	assert.False(t, report.Rebuild)
	assert.False(t, report.PostCheck)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDropColumnForceProceedsPastPrecondition(t *testing.T) {
	m, mock, _, cleanup := newMigratorMock(t)
	defer cleanup()

	// The count is still taken and reported under force.
	expectPrecondition(mock, 2)
	mock.ExpectExec(regexp.QuoteMeta("PRAGMA foreign_keys = OFF")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE students_new")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students_new")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE students")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE students_new RENAME TO students")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("PRAGMA foreign_keys = ON")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("PRAGMA table_info(students)")).
		WillReturnRows(sqlmock.NewRows([]string{"cid", "name", "type"}).
			AddRow(0, "id", "INTEGER").
			AddRow(1, "name", "TEXT").
			AddRow(2, "email", "TEXT"))

	report, err := m.DropColumn(context.Background(), StudentCareerColumnPlan(), Options{Confirmed: true, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, report.UnmigratedRows)
	assert.False(t, report.Precondition)
	assert.True(t, report.Rebuild)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileBackupPruneKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	b := NewFileBackup(dir)
	for _, name := range []string{"a.20240101-000000.bak", "a.20240102-000000.bak", "a.20240103-000000.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	require.NoError(t, b.Prune(2))

	entries, err := filepath.Glob(filepath.Join(dir, "*.bak"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotContains(t, entries, filepath.Join(dir, "a.20240101-000000.bak"))
}
