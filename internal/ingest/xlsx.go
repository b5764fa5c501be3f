package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX decodes an Excel workbook sheet into a Dataset. Two column
// layouts are accepted, matched case-insensitively on the header row:
//
//	t, x, y, z                      — one shared timestamp column
//	t(x), x, t(y), y, t(z), z       — per-axis timestamp columns
//
// With per-axis timestamps the column belonging to axialAxis drives the
// shared timestamp sequence, mirroring how the recordings are exported.
// An empty sheet name selects the first sheet.
func ReadXLSX(r io.Reader, sheet, axialAxis string) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("ingest: workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("ingest: read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrNoUsableRows
	}

	cols := make(map[string]int)
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	tCol, ok := cols["t"]
	if !ok {
		// Per-axis timestamp layout: follow the axial axis' clock.
		tCol, ok = cols["t("+axialAxis+")"]
		if !ok {
			return nil, fmt.Errorf("ingest: sheet %q has no timestamp column (want t or t(%s))", sheet, axialAxis)
		}
	}
	xCol, okX := cols["x"]
	yCol, okY := cols["y"]
	zCol, okZ := cols["z"]
	if !okX || !okY || !okZ {
		return nil, fmt.Errorf("ingest: sheet %q is missing axis columns (want x, y, z)", sheet)
	}

	cell := func(rec []string, i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var parsed []row
	for _, rec := range rows[1:] {
		t, ok := parseTime(cell(rec, tCol))
		if !ok {
			continue
		}
		x, okX := parseValue(cell(rec, xCol))
		y, okY := parseValue(cell(rec, yCol))
		z, okZ := parseValue(cell(rec, zCol))
		if !okX || !okY || !okZ {
			continue
		}
		parsed = append(parsed, row{t: t, x: x, y: y, z: z})
	}

	return finish(parsed)
}
