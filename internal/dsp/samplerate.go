package dsp

import (
	"errors"
	"sort"
	"time"
)

var (
	// ErrInsufficientData is returned when fewer than two timestamps are
	// available, leaving no delta to derive a rate from.
	ErrInsufficientData = errors.New("dsp: need at least two timestamps to estimate sample rate")

	// ErrDegenerateSampling is returned when the median timestamp delta is
	// not positive (duplicate or non-monotonic timestamps).
	ErrDegenerateSampling = errors.New("dsp: timestamps not increasing, sample rate undefined")
)

// EstimateSampleRate derives the effective sampling frequency in Hz from a
// timestamp sequence. It takes the median of consecutive deltas rather than
// the mean so a handful of recording gaps or jittered timestamps cannot skew
// the estimate.
func EstimateSampleRate(timestamps []time.Time) (float64, error) {
	if len(timestamps) < 2 {
		return 0, ErrInsufficientData
	}

	deltas := make([]float64, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		deltas[i-1] = timestamps[i].Sub(timestamps[i-1]).Seconds()
	}
	sort.Float64s(deltas)

	mid := len(deltas) / 2
	median := deltas[mid]
	if len(deltas)%2 == 0 {
		median = (deltas[mid-1] + deltas[mid]) / 2
	}

	if median <= 0 {
		return 0, ErrDegenerateSampling
	}
	return 1 / median, nil
}
