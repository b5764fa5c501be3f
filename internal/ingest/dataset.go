// Package ingest decodes uploaded vibration datasets into the shape the
// diagnosis core consumes: a shared timestamp sequence plus one sample series
// per sensor axis. Rows with any missing or unparseable value are dropped
// before they reach the core.
package ingest

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrNoUsableRows is returned when, after dropping bad rows, fewer than two
// complete rows remain.
var ErrNoUsableRows = errors.New("ingest: no usable data rows in dataset")

// Dataset is a parsed triaxial vibration recording. Timestamps are shared
// across axes, sorted ascending, and every slice has equal length.
type Dataset struct {
	Timestamps []time.Time
	X, Y, Z    []float64
}

// Len returns the number of complete rows.
func (d *Dataset) Len() int { return len(d.Timestamps) }

// Tail keeps only the most recent n rows. n <= 0 keeps everything.
func (d *Dataset) Tail(n int) {
	if n <= 0 || n >= d.Len() {
		return
	}
	cut := d.Len() - n
	d.Timestamps = d.Timestamps[cut:]
	d.X = d.X[cut:]
	d.Y = d.Y[cut:]
	d.Z = d.Z[cut:]
}

// row is one complete record prior to sorting.
type row struct {
	t       time.Time
	x, y, z float64
}

func finish(rows []row) (*Dataset, error) {
	if len(rows) < 2 {
		return nil, ErrNoUsableRows
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].t.Before(rows[j].t) })

	ds := &Dataset{
		Timestamps: make([]time.Time, len(rows)),
		X:          make([]float64, len(rows)),
		Y:          make([]float64, len(rows)),
		Z:          make([]float64, len(rows)),
	}
	for i, r := range rows {
		ds.Timestamps[i] = r.t
		ds.X[i] = r.x
		ds.Y[i] = r.y
		ds.Z[i] = r.z
	}
	return ds, nil
}

// timeLayouts are tried in order when parsing timestamp cells.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"1/2/06 15:04",
}

// parseTime accepts the common textual timestamp layouts plus Excel serial
// date numbers (days since 1899-12-30).
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		seconds := (serial - 25569) * 86400 // serial 25569 is the Unix epoch
		return time.Unix(0, int64(seconds*float64(time.Second))).UTC(), true
	}
	return time.Time{}, false
}

func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
