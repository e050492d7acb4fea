package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/acadplan/acadplan-core/internal/dto"
	"github.com/acadplan/acadplan-core/internal/store"
	"github.com/acadplan/acadplan-core/internal/validation"
	appErrors "github.com/acadplan/acadplan-core/pkg/errors"
	"github.com/acadplan/acadplan-core/pkg/metrics"
)

// tableSpec binds a staged batch to its table and column list. Order in
// the tables slice is the dependency order of insertion.
type tableSpec struct {
	name    string
	columns []string
	batch   func(dto.BatchSet) []dto.Record
}

var tables = []tableSpec{
	{
		name:    "careers",
		columns: []string{"id", "code", "name", "plan", "modality", "total_credits"},
		batch:   func(b dto.BatchSet) []dto.Record { return b.Careers },
	},
	{
		name:    "subjects",
		columns: []string{"id", "code", "name", "credits", "weekly_hours", "kind", "career_id"},
		batch:   func(b dto.BatchSet) []dto.Record { return b.Subjects },
	},
	{
		name:    "prerequisites",
		columns: []string{"subject_id", "required_subject_id"},
		batch:   func(b dto.BatchSet) []dto.Record { return b.Prerequisites },
	},
	{
		name:    "thematic_axes",
		columns: []string{"id", "name", "position", "subject_id"},
		batch:   func(b dto.BatchSet) []dto.Record { return b.ThematicAxes },
	},
	{
		name:    "activity_types",
		columns: []string{"id", "name", "abbreviation", "description", "priority"},
		batch:   func(b dto.BatchSet) []dto.Record { return b.ActivityTypes },
	},
	{
		name:    "activities",
		columns: []string{"id", "title", "description", "start_date", "end_date", "axis_id", "activity_type_id"},
		batch:   func(b dto.BatchSet) []dto.Record { return b.Activities },
	},
	{
		name:    "calendar_events",
		columns: []string{"id", "title", "kind", "start_date", "end_date", "affects_activities"},
		batch:   func(b dto.BatchSet) []dto.Record { return b.CalendarEvents },
	},
}

// Options tune a bulk load run.
type Options struct {
	// Force loads even when the referential validation report is non-empty.
	Force bool
	// SkipExisting leaves out the store's committed identities when
	// validating, for loads into a fresh store.
	SkipExisting bool
}

// Loader orchestrates schema creation and ordered insertion of validated
// batches, producing a per-table outcome report.
type Loader struct {
	gw        *store.Gateway
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// New constructs the loader.
func New(gw *store.Gateway, validator *validation.Validator, m *metrics.Metrics, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{gw: gw, validator: validator, metrics: m, logger: logger}
}

// Load ensures the schema, gates on the referential validation report and
// inserts every batch in dependency order. Each table commits as one
// transaction; one record's failure is recorded and does not abort its
// batch. A store-level failure aborts the run as a top-level error.
func (l *Loader) Load(ctx context.Context, batches dto.BatchSet, opts Options) (*dto.LoadSummary, error) {
	summary := &dto.LoadSummary{RunID: uuid.NewString()}
	if l.metrics != nil {
		l.metrics.LoadRuns.Inc()
	}

	if err := EnsureSchema(ctx, l.gw); err != nil {
		return summary, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to prepare schema")
	}

	existing := validation.ExistingIDs{}
	if !opts.SkipExisting {
		var err error
		existing, err = validation.ExistingFromStore(ctx, l.gw)
		if err != nil {
			return summary, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to read committed identities")
		}
	}

	report := l.validator.ValidateAgainst(batches, existing)
	summary.Validation = report
	if !report.Empty() && !opts.Force {
		return summary, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("referential validation found %d violations", report.Total()))
	}

	for _, spec := range tables {
		records := spec.batch(batches)
		result, err := l.loadTable(ctx, spec, records)
		if err != nil {
			return summary, appErrors.Wrap(err, appErrors.ErrInternal.Code,
				fmt.Sprintf("failed to load table %s", spec.name))
		}
		summary.Tables = append(summary.Tables, result)
	}

	l.logger.Info("bulk load finished",
		zap.String("run_id", summary.RunID),
		zap.Bool("record_errors", summary.Failed()),
	)
	return summary, nil
}

// loadTable inserts one batch inside a single transaction, attempting every
// record independently.
func (l *Loader) loadTable(ctx context.Context, spec tableSpec, records []dto.Record) (dto.TableResult, error) {
	result := dto.TableResult{Table: spec.name, Attempted: len(records)}
	if len(records) == 0 {
		return result, nil
	}

	stmt := insertStatement(spec)
	err := l.gw.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, rec := range records {
			args := bindValues(spec.columns, rec)
			if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s id=%s: %v", spec.name, recordIdentity(spec, rec), err))
				if l.metrics != nil {
					l.metrics.RecordErrors.WithLabelValues(spec.name).Inc()
				}
				continue
			}
			result.Inserted++
			if l.metrics != nil {
				l.metrics.RecordsInserted.WithLabelValues(spec.name).Inc()
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

func insertStatement(spec tableSpec) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(spec.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.name, strings.Join(spec.columns, ", "), placeholders)
}

// bindValues maps a record onto the column list, normalizing empty strings
// to NULL so optional columns receive a true empty marker.
func bindValues(columns []string, rec dto.Record) []interface{} {
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		if value, ok := rec[col]; ok && value != "" {
			args[i] = value
		}
	}
	return args
}

func recordIdentity(spec tableSpec, rec dto.Record) string {
	if spec.name == "prerequisites" {
		return fmt.Sprintf("(%s,%s)", rec["subject_id"], rec["required_subject_id"])
	}
	return rec.ID()
}
