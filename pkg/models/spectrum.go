package models

import "time"

// SpectrumPoint represents a single spectral bin
type SpectrumPoint struct {
	Frequency float64 `json:"frequency" doc:"Frequency in Hz"`
	Amplitude float64 `json:"amplitude" doc:"FFT magnitude"`
}

// FaultMatch ties a fault label to the peak frequency that triggered it
type FaultMatch struct {
	Label     string  `json:"label" doc:"Fault label, e.g. Unbalance or Bearing (BPFO)"`
	Frequency float64 `json:"frequency" doc:"Matched peak frequency in Hz"`
}

// AxisReport represents the diagnosis outcome for one sensor axis
type AxisReport struct {
	Axis     string          `json:"axis" enum:"x,y,z" doc:"Sensor axis"`
	Role     string          `json:"role" enum:"Axial,Radial" doc:"Axis role relative to the shaft"`
	Spectrum []SpectrumPoint `json:"spectrum,omitempty" doc:"One-sided amplitude spectrum"`
	Peaks    []SpectrumPoint `json:"peaks,omitempty" doc:"Detected spectral peaks"`
	Matches  []FaultMatch    `json:"matches,omitempty" doc:"Fault matches for this axis"`
	Error    string          `json:"error,omitempty" doc:"Set when this axis could not be analyzed"`
}

// RMSEvent represents a rolling-RMS severity threshold crossing
type RMSEvent struct {
	Time   time.Time `json:"time" doc:"Sample timestamp"`
	Issues []string  `json:"issues" doc:"Severity labels active at this sample"`
}
