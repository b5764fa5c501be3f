package dsp

import (
	"math"
	"time"
)

// Severity labels produced by the RMS screen.
const (
	IssueRadialHigh = "Radial High"
	IssueAxialHigh  = "Axial High"
	IssueLooseness  = "Looseness"
)

// RMSThresholds are the rolling-RMS severity limits in signal units.
type RMSThresholds struct {
	Radial float64 // either radial axis RMS above this flags Radial High
	Axial  float64 // axial RMS above this flags Axial High
	Spread float64 // |x_rms - y_rms| above this flags Looseness
}

// DefaultRMSThresholds are the stock severity limits in g.
var DefaultRMSThresholds = RMSThresholds{Radial: 0.5, Axial: 0.35, Spread: 0.2}

// RMSWindowSeconds is the default rolling window length for the RMS screen.
const RMSWindowSeconds = 60

// RMSEvent flags the samples at which at least one severity limit was
// exceeded.
type RMSEvent struct {
	Time   time.Time
	Issues []string
}

// RollingRMS computes a trailing-window RMS per sample. Samples before the
// window fills use all samples seen so far, so the output has the same length
// as the input.
func RollingRMS(x []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(x))
	var sumSq float64
	for i, v := range x {
		sumSq += v * v
		n := i + 1
		if i >= window {
			sumSq -= x[i-window] * x[i-window]
			n = window
		}
		out[i] = math.Sqrt(sumSq / float64(n))
	}
	return out
}

// ScreenRMS runs the rolling-RMS severity screen over the two radial axes and
// the axial axis. The window covers windowSeconds of data at fs Hz, defaulting
// to RMSWindowSeconds when windowSeconds is not positive; with an unusable
// rate it falls back to a 10-sample window. Only samples with at least one
// issue produce an event.
func ScreenRMS(timestamps []time.Time, radialA, radialB, axial []float64, fs float64, windowSeconds int, th RMSThresholds) []RMSEvent {
	if windowSeconds <= 0 {
		windowSeconds = RMSWindowSeconds
	}
	window := 10
	if fs > 0 {
		window = int(fs * float64(windowSeconds))
		if window < 1 {
			window = 1
		}
	}

	rmsA := RollingRMS(radialA, window)
	rmsB := RollingRMS(radialB, window)
	rmsAx := RollingRMS(axial, window)

	n := len(timestamps)
	for _, s := range [][]float64{rmsA, rmsB, rmsAx} {
		if len(s) < n {
			n = len(s)
		}
	}

	var events []RMSEvent
	for i := 0; i < n; i++ {
		var issues []string
		if rmsA[i] > th.Radial || rmsB[i] > th.Radial {
			issues = append(issues, IssueRadialHigh)
		}
		if rmsAx[i] > th.Axial {
			issues = append(issues, IssueAxialHigh)
		}
		if math.Abs(rmsA[i]-rmsB[i]) > th.Spread {
			issues = append(issues, IssueLooseness)
		}
		if len(issues) > 0 {
			events = append(events, RMSEvent{Time: timestamps[i], Issues: issues})
		}
	}
	return events
}
