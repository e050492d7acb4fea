package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/acadplan/acadplan-core/internal/dto"
)

// batchFiles maps each staged batch to its CSV file name inside a batch
// directory. A missing file yields an empty batch, not an error.
var batchFiles = []struct {
	file   string
	assign func(*dto.BatchSet, []dto.Record)
}{
	{"careers.csv", func(b *dto.BatchSet, r []dto.Record) { b.Careers = r }},
	{"subjects.csv", func(b *dto.BatchSet, r []dto.Record) { b.Subjects = r }},
	{"prerequisites.csv", func(b *dto.BatchSet, r []dto.Record) { b.Prerequisites = r }},
	{"thematic_axes.csv", func(b *dto.BatchSet, r []dto.Record) { b.ThematicAxes = r }},
	{"activity_types.csv", func(b *dto.BatchSet, r []dto.Record) { b.ActivityTypes = r }},
	{"activities.csv", func(b *dto.BatchSet, r []dto.Record) { b.Activities = r }},
	{"calendar_events.csv", func(b *dto.BatchSet, r []dto.Record) { b.CalendarEvents = r }},
}

// ReadBatchDir parses the staged CSV files under dir into a BatchSet. Each
// file's header row declares the field names; unknown entities are ignored.
func ReadBatchDir(dir string) (dto.BatchSet, error) {
	var batches dto.BatchSet
	for _, bf := range batchFiles {
		path := filepath.Join(dir, bf.file)
		records, err := readBatchFile(path)
		if err != nil {
			return dto.BatchSet{}, err
		}
		bf.assign(&batches, records)
	}
	return batches, nil
}

func readBatchFile(path string) ([]dto.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open batch file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse batch file %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	records := make([]dto.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(dto.Record, len(header))
		for i, field := range header {
			if i < len(row) {
				rec[field] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
