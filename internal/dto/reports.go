package dto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/acadplan/acadplan-core/pkg/export"
)

// Report renders the validation outcome: a per-rule summary section first,
// then one detail section per violated rule, in rule order.
func (r *ValidationReport) Report() export.Report {
	rep := export.Report{Title: "Referential Validation"}

	summary := export.Section{Heading: "summary", Headers: []string{"rule", "violations"}}
	for _, rule := range RuleNames {
		summary.Rows = append(summary.Rows, map[string]string{
			"rule":       rule,
			"violations": strconv.Itoa(len(r.Violations[rule])),
		})
	}
	rep.Sections = append(rep.Sections, summary)

	for _, rule := range RuleNames {
		violations := r.Violations[rule]
		if len(violations) == 0 {
			continue
		}
		detail := export.Section{Heading: rule, Headers: []string{"record", "field", "missing_reference"}}
		for _, v := range violations {
			detail.Rows = append(detail.Rows, map[string]string{
				"record":            v.RecordID,
				"field":             v.Field,
				"missing_reference": v.Reference,
			})
		}
		rep.Sections = append(rep.Sections, detail)
	}
	return rep
}

// Report renders the load run: one row per table, a record-error section
// when any insert failed, and the gating validation sections when the run
// was validated.
func (s *LoadSummary) Report() export.Report {
	rep := export.Report{Title: "Bulk Load " + s.RunID}

	tables := export.Section{Heading: "tables", Headers: []string{"table", "attempted", "inserted", "errors"}}
	var errorRows []map[string]string
	for _, t := range s.Tables {
		tables.Rows = append(tables.Rows, map[string]string{
			"table":     t.Table,
			"attempted": strconv.Itoa(t.Attempted),
			"inserted":  strconv.Itoa(t.Inserted),
			"errors":    strconv.Itoa(len(t.Errors)),
		})
		for _, msg := range t.Errors {
			errorRows = append(errorRows, map[string]string{"table": t.Table, "error": msg})
		}
	}
	rep.Sections = append(rep.Sections, tables)

	if len(errorRows) > 0 {
		rep.Sections = append(rep.Sections, export.Section{
			Heading: "record errors",
			Headers: []string{"table", "error"},
			Rows:    errorRows,
		})
	}
	if s.Validation != nil && !s.Validation.Empty() {
		rep.Sections = append(rep.Sections, s.Validation.Report().Sections...)
	}
	return rep
}

// Report renders the column drop step by step, with the surviving column
// list as its own section.
func (m *MigrationReport) Report() export.Report {
	rep := export.Report{Title: fmt.Sprintf("Column Drop %s.%s", m.Table, m.Column)}

	steps := export.Section{Heading: "steps", Headers: []string{"step", "outcome"}}
	for _, row := range []struct {
		step    string
		outcome string
	}{
		{"precondition", fmt.Sprintf("%t (unmigrated=%d)", m.Precondition, m.UnmigratedRows)},
		{"backup", m.BackupPath},
		{"rebuild", strconv.FormatBool(m.Rebuild)},
		{"post_check", strconv.FormatBool(m.PostCheck)},
	} {
		steps.Rows = append(steps.Rows, map[string]string{"step": row.step, "outcome": row.outcome})
	}
	rep.Sections = append(rep.Sections, steps)

	if len(m.Columns) > 0 {
		rep.Sections = append(rep.Sections, export.Section{
			Heading: "final columns",
			Headers: []string{"columns"},
			Rows:    []map[string]string{{"columns": strings.Join(m.Columns, ", ")}},
		})
	}
	return rep
}
