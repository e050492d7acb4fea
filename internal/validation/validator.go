package validation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/acadplan/acadplan-core/internal/dto"
	"github.com/acadplan/acadplan-core/internal/store"
)

// ExistingIDs carries identities already committed in the store, merged
// into the staged batches when validating incremental loads.
type ExistingIDs struct {
	Careers       map[string]bool
	Subjects      map[string]bool
	ThematicAxes  map[string]bool
	ActivityTypes map[string]bool
}

// Validator checks every foreign-key relationship among staged batches
// before any write touches the live store. It never mutates the store.
type Validator struct {
	logger *zap.Logger
}

// New constructs the validator.
func New(logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{logger: logger}
}

// Validate runs every rule against the staged batches alone.
func (v *Validator) Validate(batches dto.BatchSet) *dto.ValidationReport {
	return v.ValidateAgainst(batches, ExistingIDs{})
}

// ValidateAgainst runs every rule, treating identities in existing as
// already present. All rules are evaluated; there is no short-circuit, so
// one pass yields the complete report.
func (v *Validator) ValidateAgainst(batches dto.BatchSet, existing ExistingIDs) *dto.ValidationReport {
	report := dto.NewValidationReport()

	careers := collectIDs(batches.Careers, existing.Careers)
	subjects := collectIDs(batches.Subjects, existing.Subjects)
	axes := collectIDs(batches.ThematicAxes, existing.ThematicAxes)
	activityTypes := collectIDs(batches.ActivityTypes, existing.ActivityTypes)

	checkRef(report, batches.Subjects, "career_id", careers, dto.RuleSubjectCareer)
	checkEdgeRef(report, batches.Prerequisites, "subject_id", subjects)
	checkEdgeRef(report, batches.Prerequisites, "required_subject_id", subjects)
	checkRef(report, batches.ThematicAxes, "subject_id", subjects, dto.RuleAxisSubject)
	checkRef(report, batches.Activities, "axis_id", axes, dto.RuleActivityAxis)
	checkRef(report, batches.Activities, "activity_type_id", activityTypes, dto.RuleActivityType)

	if !report.Empty() {
		v.logger.Warn("referential validation found violations", zap.Int("total", report.Total()))
	}
	return report
}

// ExistingFromStore reads the identities already committed in the store.
// Read-only; used when validating inserts against prior loads.
func ExistingFromStore(ctx context.Context, gw *store.Gateway) (ExistingIDs, error) {
	existing := ExistingIDs{}
	tables := []struct {
		table string
		dest  *map[string]bool
	}{
		{"careers", &existing.Careers},
		{"subjects", &existing.Subjects},
		{"thematic_axes", &existing.ThematicAxes},
		{"activity_types", &existing.ActivityTypes},
	}
	for _, t := range tables {
		rows, err := gw.QueryMaps(ctx, fmt.Sprintf("SELECT id FROM %s", t.table))
		if err != nil {
			return ExistingIDs{}, fmt.Errorf("read existing %s: %w", t.table, err)
		}
		ids := make(map[string]bool, len(rows))
		for _, row := range rows {
			ids[fmt.Sprintf("%v", row["id"])] = true
		}
		*t.dest = ids
	}
	return existing, nil
}

func collectIDs(records []dto.Record, existing map[string]bool) map[string]bool {
	ids := make(map[string]bool, len(records)+len(existing))
	for id := range existing {
		ids[id] = true
	}
	for _, rec := range records {
		if id := rec.ID(); id != "" {
			ids[id] = true
		}
	}
	return ids
}

func checkRef(report *dto.ValidationReport, records []dto.Record, field string, known map[string]bool, rule string) {
	for _, rec := range records {
		ref := rec[field]
		if ref == "" {
			// Required references left empty surface as native NOT NULL
			// failures at insert time; the validator only chases dangling IDs.
			continue
		}
		if !known[ref] {
			report.Add(dto.Violation{Rule: rule, RecordID: rec.ID(), Field: field, Reference: ref})
		}
	}
}

// checkEdgeRef validates prerequisite edges, whose identity is the pair
// rather than an id column.
func checkEdgeRef(report *dto.ValidationReport, records []dto.Record, field string, subjects map[string]bool) {
	for _, rec := range records {
		ref := rec[field]
		if ref == "" {
			continue
		}
		if !subjects[ref] {
			identity := fmt.Sprintf("(%s,%s)", rec["subject_id"], rec["required_subject_id"])
			report.Add(dto.Violation{Rule: dto.RulePrerequisiteSubject, RecordID: identity, Field: field, Reference: ref})
		}
	}
}
