package dto

// Record is one staged row, parsed from whatever external format into a
// field name → raw value map. Empty values mean "absent".
type Record map[string]string

// ID returns the record's declared identity, empty when missing.
func (r Record) ID() string {
	return r["id"]
}

// BatchSet carries the seven staged entity batches accepted by the bulk
// loader, named after the entities they populate.
type BatchSet struct {
	Careers        []Record
	Subjects       []Record
	Prerequisites  []Record
	ThematicAxes   []Record
	ActivityTypes  []Record
	Activities     []Record
	CalendarEvents []Record
}

// Empty reports whether no batch holds any record.
func (b BatchSet) Empty() bool {
	return len(b.Careers) == 0 && len(b.Subjects) == 0 && len(b.Prerequisites) == 0 &&
		len(b.ThematicAxes) == 0 && len(b.ActivityTypes) == 0 &&
		len(b.Activities) == 0 && len(b.CalendarEvents) == 0
}
