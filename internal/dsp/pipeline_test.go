package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineValidation(t *testing.T) {
	_, err := NewPipeline(MachineConfig{RPM: 0, AxialAxis: "z"})
	assert.ErrorIs(t, err, ErrInvalidRPM)

	_, err = NewPipeline(MachineConfig{RPM: 1800, AxialAxis: "w"})
	assert.ErrorIs(t, err, ErrInvalidAxis)
}

func TestNewPipelineBearingWarning(t *testing.T) {
	p, err := NewPipeline(MachineConfig{RPM: 1800, AxialAxis: "z", BearingInfo: "BPFO=300,bad"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.Warning())
	assert.Empty(t, p.Catalog().Bearing)

	p, err = NewPipeline(MachineConfig{RPM: 1800, AxialAxis: "z", BearingInfo: "BPFO=300"})
	require.NoError(t, err)
	assert.Empty(t, p.Warning())
	assert.Equal(t, map[string]float64{"BPFO": 300}, p.Catalog().Bearing)
}

// A representative scenario: 1800 RPM (30 Hz shaft rate), components at 30 Hz
// and 90 Hz, sampled at 1 kHz for 10 seconds. Expect one Unbalance match
// near 30 Hz and one Looseness match near 90 Hz.
func TestDiagnoseAxisEndToEnd(t *testing.T) {
	const fs = 1000.0
	signal := addSignals(sine(30, 1, fs, 10), sine(90, 0.5, fs, 10))

	p, err := NewPipeline(MachineConfig{RPM: 1800, AxialAxis: "z"})
	require.NoError(t, err)

	report := p.DiagnoseAxis(AxisSignal{Axis: "x", Samples: signal}, fs)
	require.NoError(t, report.Err)
	assert.Equal(t, RoleRadial, report.Role)

	require.Len(t, report.Peaks, 2)

	var labels []string
	for _, m := range report.Matches {
		labels = append(labels, m.Label)
	}
	require.Equal(t, []string{LabelUnbalance, LabelLooseness}, labels)
	assert.InDelta(t, 30.0, report.Matches[0].Frequency, 0.1)
	assert.InDelta(t, 90.0, report.Matches[1].Frequency, 0.1)
}

func TestDiagnoseAxisRole(t *testing.T) {
	p, err := NewPipeline(MachineConfig{RPM: 1800, AxialAxis: "z"})
	require.NoError(t, err)

	signal := sine(30, 1, 1000, 1)
	assert.Equal(t, RoleAxial, p.DiagnoseAxis(AxisSignal{Axis: "z", Samples: signal}, 1000).Role)
	assert.Equal(t, RoleRadial, p.DiagnoseAxis(AxisSignal{Axis: "y", Samples: signal}, 1000).Role)
}

func TestDiagnoseAllIsolatesFailingAxis(t *testing.T) {
	p, err := NewPipeline(MachineConfig{RPM: 1800, AxialAxis: "z"})
	require.NoError(t, err)

	good := sine(30, 1, 1000, 1)
	reports, err := p.DiagnoseAll([]AxisSignal{
		{Axis: "x", Samples: good},
		{Axis: "y", Samples: nil}, // empty axis must not sink the run
		{Axis: "z", Samples: good},
	}, 1000)
	require.NoError(t, err)

	assert.NoError(t, reports[0].Err)
	assert.ErrorIs(t, reports[1].Err, ErrEmptySignal)
	assert.NoError(t, reports[2].Err)
	assert.NotEmpty(t, reports[0].Matches)
}

func TestDiagnoseAllFailsWhenEveryAxisFails(t *testing.T) {
	p, err := NewPipeline(MachineConfig{RPM: 1800, AxialAxis: "z"})
	require.NoError(t, err)

	_, err = p.DiagnoseAll([]AxisSignal{
		{Axis: "x"}, {Axis: "y"}, {Axis: "z"},
	}, 1000)
	assert.ErrorIs(t, err, ErrEmptySignal)
}
