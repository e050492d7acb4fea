package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRendersSections(t *testing.T) {
	rep := Report{
		Title: "Referential Validation",
		Sections: []Section{
			{
				Heading: "summary",
				Headers: []string{"rule", "violations"},
				Rows: []map[string]string{
					{"rule": "subject_career", "violations": "1"},
				},
			},
			{
				Heading: "subject_career",
				Headers: []string{"record", "missing_reference"},
				Rows: []map[string]string{
					{"record": "10", "missing_reference": "99"},
				},
			},
		},
	}

	out, err := NewCSVExporter().Render(rep)
	require.NoError(t, err)
	assert.Equal(t,
		"summary\nrule,violations\nsubject_career,1\n\nsubject_career\nrecord,missing_reference\n10,99\n",
		string(out))
}

func TestCSVExporterFillsMissingColumns(t *testing.T) {
	rep := Report{Sections: []Section{{
		Headers: []string{"table", "inserted", "errors"},
		Rows:    []map[string]string{{"table": "careers", "inserted": "2"}},
	}}}

	out, err := NewCSVExporter().Render(rep)
	require.NoError(t, err)
	assert.Contains(t, string(out), "careers,2,\n")
}

func TestCSVExporterRequiresSections(t *testing.T) {
	_, err := NewCSVExporter().Render(Report{Title: "empty"})
	require.Error(t, err)

	_, err = NewCSVExporter().Render(Report{Sections: []Section{{Heading: "bare"}}})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	rep := Report{
		Title:       "Bulk Load Summary",
		GeneratedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Sections: []Section{{
			Heading: "tables",
			Headers: []string{"table", "inserted"},
			Rows:    []map[string]string{{"table": "subjects", "inserted": "12"}},
		}},
	}

	out, err := NewPDFExporter().Render(rep)
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestPDFExporterRequiresSections(t *testing.T) {
	_, err := NewPDFExporter().Render(Report{Title: "empty"})
	require.Error(t, err)
}
