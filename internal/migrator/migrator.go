package migrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/acadplan/acadplan-core/internal/dto"
	"github.com/acadplan/acadplan-core/internal/store"
	appErrors "github.com/acadplan/acadplan-core/pkg/errors"
	"github.com/acadplan/acadplan-core/pkg/metrics"
)

// Plan describes one column removal. The engine has no native column drop,
// so the column's table is rebuilt through a shadow table with the new
// shape and swapped in place.
type Plan struct {
	Table  string
	Column string
	// ShadowDDL creates <Table>_new with the old columns minus Column,
	// keeping the same primary key.
	ShadowDDL string
	// CopyColumns are the surviving columns copied into the shadow table.
	CopyColumns []string
	// Precondition counts source rows whose data has not yet been migrated
	// to the column's replacement structure. Non-zero aborts unless forced.
	Precondition func(ctx context.Context, gw *store.Gateway) (int64, error)
}

// Options control a migration run.
type Options struct {
	// Confirmed is the explicit operator confirmation every destructive run
	// requires.
	Confirmed bool
	// Force proceeds past a failed precondition or backup. The precondition
	// count is still taken and reported for visibility.
	Force bool
}

// Migrator applies destructive, irreversible structural changes using the
// backup-then-rebuild-then-swap protocol.
type Migrator struct {
	gw        *store.Gateway
	backup    *FileBackup
	storePath string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// New constructs the migrator over the store file at storePath.
func New(gw *store.Gateway, backup *FileBackup, storePath string, m *metrics.Metrics, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{gw: gw, backup: backup, storePath: storePath, metrics: m, logger: logger}
}

// StudentCareerColumnPlan removes the legacy direct career reference from
// students once every student row has a career_enrollments counterpart.
func StudentCareerColumnPlan() Plan {
	return Plan{
		Table:  "students",
		Column: "career_id",
		ShadowDDL: `CREATE TABLE students_new (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE
		)`,
		CopyColumns: []string{"id", "name", "email"},
		Precondition: func(ctx context.Context, gw *store.Gateway) (int64, error) {
			return gw.QueryInt(ctx, `SELECT COUNT(*) FROM students s
				WHERE NOT EXISTS (SELECT 1 FROM career_enrollments e WHERE e.student_id = s.id)`)
		},
	}
}

// DropColumn runs the fixed protocol: precondition, file backup, disable
// foreign keys, rebuild inside one transaction, re-enable foreign keys,
// post-check. Each step's failure aborts the remaining steps; the table is
// never left half-migrated or with enforcement disabled.
func (m *Migrator) DropColumn(ctx context.Context, plan Plan, opts Options) (*dto.MigrationReport, error) {
	report := &dto.MigrationReport{Table: plan.Table, Column: plan.Column}

	if !opts.Confirmed {
		return report, appErrors.Clone(appErrors.ErrPreconditionFailed,
			"destructive migration requires explicit confirmation")
	}

	// Step 1: precondition. Runs even under force, as a visibility aid.
	if plan.Precondition != nil {
		count, err := plan.Precondition(ctx, m.gw)
		if err != nil {
			return report, appErrors.Wrap(err, appErrors.ErrInternal.Code, "precondition query failed")
		}
		report.UnmigratedRows = int(count)
		report.Precondition = count == 0
		if count > 0 {
			m.logger.Warn("unmigrated rows block column drop",
				zap.String("table", plan.Table),
				zap.Int64("unmigrated", count),
			)
			if !opts.Force {
				m.countMigration("aborted")
				return report, appErrors.Clone(appErrors.ErrPreconditionFailed,
					fmt.Sprintf("%d rows have no migrated counterpart", count))
			}
		}
	} else {
		report.Precondition = true
	}

	// Step 2: backup before any DDL.
	path, err := m.backup.Create(m.storePath)
	if err != nil {
		if !opts.Force {
			m.countMigration("aborted")
			return report, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, "store backup failed")
		}
		m.logger.Warn("proceeding without backup", zap.Error(err))
	}
	report.BackupPath = path

	// Steps 3-5: rebuild with enforcement disabled. The intermediate state
	// briefly violates referential shape, so foreign keys stay off until
	// the swap has committed or rolled back.
	if _, err := m.gw.Execute(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		m.countMigration("failed")
		return report, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to disable foreign keys")
	}

	rebuildErr := m.gw.WithTx(ctx, func(tx *sqlx.Tx) error {
		return rebuildTable(ctx, tx, plan)
	})

	if _, err := m.gw.Execute(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		m.logger.Error("failed to re-enable foreign keys", zap.Error(err))
		if rebuildErr == nil {
			rebuildErr = err
		}
	}

	if rebuildErr != nil {
		m.countMigration("failed")
		return report, appErrors.Wrap(rebuildErr, appErrors.ErrInternal.Code, "table rebuild failed")
	}
	report.Rebuild = true

	// Step 6: re-introspect and assert the final shape.
	columns, err := m.tableColumns(ctx, plan.Table)
	if err != nil {
		m.countMigration("failed")
		return report, appErrors.Wrap(err, appErrors.ErrInternal.Code, "post-check introspection failed")
	}
	report.Columns = columns
	report.PostCheck = verifyColumns(columns, plan)

	outcome := "succeeded"
	if !report.PostCheck {
		outcome = "postcheck_failed"
	}
	m.countMigration(outcome)
	m.logger.Info("column drop finished",
		zap.String("table", plan.Table),
		zap.String("column", plan.Column),
		zap.String("backup", report.BackupPath),
		zap.Bool("post_check", report.PostCheck),
	)
	return report, nil
}

// rebuildTable performs the shadow-table swap: create the new shape, copy
// every row, drop the original, rename the shadow into place.
func rebuildTable(ctx context.Context, tx *sqlx.Tx, plan Plan) error {
	if _, err := tx.ExecContext(ctx, plan.ShadowDDL); err != nil {
		return fmt.Errorf("create shadow table: %w", err)
	}
	cols := strings.Join(plan.CopyColumns, ", ")
	copyStmt := fmt.Sprintf("INSERT INTO %s_new (%s) SELECT %s FROM %s",
		plan.Table, cols, cols, plan.Table)
	if _, err := tx.ExecContext(ctx, copyStmt); err != nil {
		return fmt.Errorf("copy rows into shadow table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", plan.Table)); err != nil {
		return fmt.Errorf("drop original table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s_new RENAME TO %s", plan.Table, plan.Table)); err != nil {
		return fmt.Errorf("rename shadow table: %w", err)
	}
	return nil
}

func (m *Migrator) tableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := m.gw.QueryMaps(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	columns := make([]string, 0, len(rows))
	for _, row := range rows {
		columns = append(columns, fmt.Sprintf("%v", row["name"]))
	}
	return columns, nil
}

func verifyColumns(columns []string, plan Plan) bool {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	if present[plan.Column] {
		return false
	}
	for _, c := range plan.CopyColumns {
		if !present[c] {
			return false
		}
	}
	return true
}

func (m *Migrator) countMigration(outcome string) {
	if m.metrics != nil {
		m.metrics.Migrations.WithLabelValues(outcome).Inc()
	}
}
