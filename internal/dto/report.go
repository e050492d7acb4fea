package dto

import "fmt"

// Validation rule names, keyed into ValidationReport. Each corresponds to
// one foreign-key relationship among the staged batches.
const (
	RuleSubjectCareer       = "subject_career"
	RulePrerequisiteSubject = "prerequisite_subject"
	RuleAxisSubject         = "axis_subject"
	RuleActivityAxis        = "activity_axis"
	RuleActivityType        = "activity_type"
)

// RuleNames lists every validation rule in report order.
var RuleNames = []string{
	RuleSubjectCareer,
	RulePrerequisiteSubject,
	RuleAxisSubject,
	RuleActivityAxis,
	RuleActivityType,
}

// Violation names one offending record and the dangling reference it holds.
type Violation struct {
	Rule      string `json:"rule"`
	RecordID  string `json:"record_id"`
	Field     string `json:"field"`
	Reference string `json:"reference"`
}

// Message renders the violation for operator display.
func (v Violation) Message() string {
	return fmt.Sprintf("%s: record %s references missing %s %s", v.Rule, v.RecordID, v.Field, v.Reference)
}

// ValidationReport aggregates per-rule violation lists. An empty report is
// the gate condition for the bulk loader.
type ValidationReport struct {
	Violations map[string][]Violation `json:"violations"`
}

// NewValidationReport builds an empty report.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{Violations: make(map[string][]Violation)}
}

// Add appends a violation under its rule, preserving insertion order.
func (r *ValidationReport) Add(v Violation) {
	r.Violations[v.Rule] = append(r.Violations[v.Rule], v)
}

// Empty reports whether no rule recorded a violation.
func (r *ValidationReport) Empty() bool {
	for _, list := range r.Violations {
		if len(list) > 0 {
			return false
		}
	}
	return true
}

// Total counts violations across all rules.
func (r *ValidationReport) Total() int {
	n := 0
	for _, list := range r.Violations {
		n += len(list)
	}
	return n
}

// TableResult summarises one table's batch outcome.
type TableResult struct {
	Table     string   `json:"table"`
	Attempted int      `json:"attempted"`
	Inserted  int      `json:"inserted"`
	Errors    []string `json:"errors,omitempty"`
}

// LoadSummary is the bulk loader's per-run outcome report.
type LoadSummary struct {
	RunID      string            `json:"run_id"`
	Tables     []TableResult     `json:"tables"`
	Validation *ValidationReport `json:"validation,omitempty"`
}

// Failed reports whether any table recorded record-level errors.
func (s *LoadSummary) Failed() bool {
	for _, t := range s.Tables {
		if len(t.Errors) > 0 {
			return true
		}
	}
	return false
}

// MigrationReport describes a column-drop run step by step.
type MigrationReport struct {
	Table          string   `json:"table"`
	Column         string   `json:"column"`
	UnmigratedRows int      `json:"unmigrated_rows"`
	BackupPath     string   `json:"backup_path,omitempty"`
	Precondition   bool     `json:"precondition"`
	Rebuild        bool     `json:"rebuild"`
	PostCheck      bool     `json:"post_check"`
	Columns        []string `json:"columns,omitempty"`
}
