package dsp

import (
	"errors"
	"fmt"
)

// Axis roles relative to the machine shaft.
const (
	RoleAxial  = "Axial"
	RoleRadial = "Radial"
)

// ErrInvalidAxis is returned when the configured axial axis is not x, y or z.
var ErrInvalidAxis = errors.New("dsp: axial axis must be x, y or z")

// MachineConfig carries the operator-supplied machine parameters for one
// diagnosis run.
type MachineConfig struct {
	RPM         float64
	AxialAxis   string // "x", "y" or "z"
	BearingInfo string // free text, "KEY=VALUE[,KEY=VALUE...]"
}

// AxisSignal is one axis of the triaxial recording.
type AxisSignal struct {
	Axis    string
	Samples []float64
}

// AxisReport is the diagnosis outcome for a single axis. When Err is set the
// axis could not be analyzed; the other fields are zero and the remaining
// axes are unaffected.
type AxisReport struct {
	Axis     string
	Role     string
	Spectrum Spectrum
	Peaks    []Peak
	Matches  []FaultMatch
	Err      error
}

// Pipeline runs spectrum computation, peak detection and fault classification
// per axis, sharing one catalog and sample rate across all axes. Axes carry
// no shared mutable state, so one pipeline may be used concurrently.
type Pipeline struct {
	config        MachineConfig
	catalog       *FaultFrequencyCatalog
	peakThreshold float64
	warning       string
}

// NewPipeline validates the machine configuration and builds the fault
// catalog. A malformed bearing string does not fail construction: the
// bearing rules are dropped and the parse message is kept as a warning.
func NewPipeline(config MachineConfig) (*Pipeline, error) {
	switch config.AxialAxis {
	case "x", "y", "z":
	default:
		return nil, fmt.Errorf("%w, got %q", ErrInvalidAxis, config.AxialAxis)
	}

	catalog, err := NewFaultFrequencyCatalog(config.RPM)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		config:        config,
		catalog:       catalog,
		peakThreshold: DefaultPeakThreshold,
	}

	bearing, err := ParseBearingInfo(config.BearingInfo)
	if err != nil {
		p.warning = err.Error()
	} else {
		catalog.Bearing = bearing
	}
	return p, nil
}

// SetPeakThreshold overrides the relative peak height (default 0.10).
func (p *Pipeline) SetPeakThreshold(h float64) { p.peakThreshold = h }

// SetMatchTolerance overrides the relative tolerance band (default 0.10).
func (p *Pipeline) SetMatchTolerance(tol float64) { p.catalog.Tolerance = tol }

// Warning returns the bearing-parse warning, or "" when the bearing catalog
// parsed cleanly.
func (p *Pipeline) Warning() string { return p.warning }

// Catalog exposes the fault catalog built from the machine configuration.
func (p *Pipeline) Catalog() *FaultFrequencyCatalog { return p.catalog }

// DiagnoseAxis analyzes a single axis sampled at fs Hz.
func (p *Pipeline) DiagnoseAxis(signal AxisSignal, fs float64) AxisReport {
	report := AxisReport{Axis: signal.Axis, Role: RoleRadial}
	if signal.Axis == p.config.AxialAxis {
		report.Role = RoleAxial
	}

	spectrum, err := NewSpectrumAnalyzer(fs).Compute(signal.Samples)
	if err != nil {
		report.Err = fmt.Errorf("axis %s: %w", signal.Axis, err)
		return report
	}

	peaks, err := DetectPeaks(spectrum, p.peakThreshold)
	if err != nil {
		report.Err = fmt.Errorf("axis %s: %w", signal.Axis, err)
		return report
	}

	report.Spectrum = spectrum
	report.Peaks = peaks
	report.Matches = ClassifyPeaks(peaks, p.catalog)
	return report
}

// DiagnoseAll analyzes every axis with the shared sample rate and catalog.
// A failing axis is reported through its Err field and does not stop the
// others; the returned error is non-nil only when every axis failed.
func (p *Pipeline) DiagnoseAll(signals []AxisSignal, fs float64) ([]AxisReport, error) {
	reports := make([]AxisReport, len(signals))
	failed := 0
	for i, sig := range signals {
		reports[i] = p.DiagnoseAxis(sig, fs)
		if reports[i].Err != nil {
			failed++
		}
	}
	if len(signals) > 0 && failed == len(signals) {
		return reports, fmt.Errorf("all %d axes failed, first error: %w", failed, reports[0].Err)
	}
	return reports, nil
}
