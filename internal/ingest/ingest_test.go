package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	data := `t,x,y,z
2024-03-01 12:00:00,0.1,0.2,0.3
2024-03-01 12:00:01,0.4,0.5,0.6
2024-03-01 12:00:02,0.7,0.8,0.9
`
	ds, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)

	require.Equal(t, 3, ds.Len())
	assert.Equal(t, []float64{0.1, 0.4, 0.7}, ds.X)
	assert.Equal(t, []float64{0.3, 0.6, 0.9}, ds.Z)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), ds.Timestamps[0])
}

func TestReadCSVDropsIncompleteRows(t *testing.T) {
	data := `t,x,y,z
2024-03-01 12:00:00,0.1,0.2,0.3
2024-03-01 12:00:01,,0.5,0.6
not-a-time,0.4,0.5,0.6
2024-03-01 12:00:03,0.7,bad,0.9
2024-03-01 12:00:04,1.0,1.1,1.2
`
	ds, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)

	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []float64{0.1, 1.0}, ds.X)
}

func TestReadCSVSortsByTimestamp(t *testing.T) {
	data := `t,x,y,z
2024-03-01 12:00:02,3,3,3
2024-03-01 12:00:00,1,1,1
2024-03-01 12:00:01,2,2,2
`
	ds, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 3}, ds.X)
	assert.True(t, ds.Timestamps[0].Before(ds.Timestamps[1]))
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("t,x,y\n2024-03-01 12:00:00,1,2\n"))
	assert.Error(t, err)
}

func TestReadCSVTooFewRows(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("t,x,y,z\n2024-03-01 12:00:00,1,2,3\n"))
	assert.ErrorIs(t, err, ErrNoUsableRows)
}

func TestDatasetTail(t *testing.T) {
	ds := &Dataset{
		Timestamps: []time.Time{{}, {}, {}, {}},
		X:          []float64{1, 2, 3, 4},
		Y:          []float64{1, 2, 3, 4},
		Z:          []float64{1, 2, 3, 4},
	}

	ds.Tail(2)
	assert.Equal(t, []float64{3, 4}, ds.X)
	assert.Equal(t, 2, ds.Len())

	ds.Tail(0) // 0 keeps everything
	assert.Equal(t, 2, ds.Len())
}

func buildWorkbook(t *testing.T, header []string, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, name))
	}
	for i, rec := range rows {
		for col, v := range rec {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadXLSXSharedTimestamp(t *testing.T) {
	buf := buildWorkbook(t, []string{"t", "x", "y", "z"}, [][]any{
		{"2024-03-01 12:00:00", 0.1, 0.2, 0.3},
		{"2024-03-01 12:00:01", 0.4, 0.5, 0.6},
	})

	ds, err := ReadXLSX(buf, "", "z")
	require.NoError(t, err)

	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []float64{0.2, 0.5}, ds.Y)
}

func TestReadXLSXPerAxisTimestamps(t *testing.T) {
	ts := func(i int) string { return fmt.Sprintf("2024-03-01 12:00:%02d", i) }
	var rows [][]any
	for i := 0; i < 4; i++ {
		rows = append(rows, []any{ts(i), 0.1 * float64(i), ts(i), 0.2, ts(i), 0.3})
	}
	buf := buildWorkbook(t, []string{"T(X)", "X", "T(Y)", "Y", "T(Z)", "Z"}, rows)

	ds, err := ReadXLSX(buf, "", "z")
	require.NoError(t, err)

	require.Equal(t, 4, ds.Len())
	assert.InDelta(t, 0.3, ds.X[3], 1e-9)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 3, 0, time.UTC), ds.Timestamps[3])
}

func TestReadXLSXMissingTimestampColumn(t *testing.T) {
	buf := buildWorkbook(t, []string{"x", "y", "z"}, [][]any{{1, 2, 3}})
	_, err := ReadXLSX(buf, "", "z")
	assert.Error(t, err)
}

func TestParseTimeExcelSerial(t *testing.T) {
	// Serial 45357.5 is 2024-03-06 12:00:00 UTC.
	got, ok := parseTime("45357.5")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), got)
}
