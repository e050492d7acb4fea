package export

import "time"

// Section is one titled table inside a report. Rows are keyed by the
// section's headers; missing keys render empty.
type Section struct {
	Heading string
	Headers []string
	Rows    []map[string]string
}

// Report is a render-ready operator report: a title, the moment it was
// produced, and one or more sections.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Sections    []Section
}
