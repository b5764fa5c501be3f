package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV decodes a comma-separated dataset with a t, x, y, z header row
// (case-insensitive, any column order) into a Dataset.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are dropped, not fatal

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read csv header: %w", err)
	}

	cols := make(map[string]int)
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	tCol, okT := cols["t"]
	xCol, okX := cols["x"]
	yCol, okY := cols["y"]
	zCol, okZ := cols["z"]
	if !okT || !okX || !okY || !okZ {
		return nil, fmt.Errorf("ingest: csv header must contain t, x, y, z, got %v", header)
	}

	maxCol := tCol
	for _, c := range []int{xCol, yCol, zCol} {
		if c > maxCol {
			maxCol = c
		}
	}

	var parsed []row
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read csv row: %w", err)
		}
		if len(rec) <= maxCol {
			continue
		}
		t, ok := parseTime(rec[tCol])
		if !ok {
			continue
		}
		x, okX := parseValue(rec[xCol])
		y, okY := parseValue(rec[yCol])
		z, okZ := parseValue(rec[zCol])
		if !okX || !okY || !okZ {
			continue
		}
		parsed = append(parsed, row{t: t, x: x, y: y, z: z})
	}

	return finish(parsed)
}
