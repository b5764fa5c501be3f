package dsp

import "errors"

// ErrEmptySpectrum is returned when a spectrum has fewer than three bins,
// which leaves no interior bin that could qualify as a peak.
var ErrEmptySpectrum = errors.New("dsp: spectrum too short for peak detection")

// DefaultPeakThreshold is the relative height a bin must reach, as a fraction
// of the spectrum maximum, to count as a peak.
const DefaultPeakThreshold = 0.10

// Peak is a spectral bin satisfying the local-maximum and height criteria.
type Peak struct {
	Frequency float64
	Amplitude float64
}

// DetectPeaks scans a spectrum for strict interior local maxima whose
// amplitude is at least threshold times the spectrum maximum, returned in
// ascending frequency order. The first and last bins never qualify: a peak
// requires descent on both sides. A flat spectrum yields no peaks since the
// strict comparison fails everywhere.
func DetectPeaks(spec Spectrum, threshold float64) ([]Peak, error) {
	amps := spec.Amplitudes
	if len(amps) < 3 {
		return nil, ErrEmptySpectrum
	}

	var maxAmp float64
	for _, a := range amps {
		if a > maxAmp {
			maxAmp = a
		}
	}
	floor := threshold * maxAmp

	var peaks []Peak
	for i := 1; i < len(amps)-1; i++ {
		if amps[i] > amps[i-1] && amps[i] > amps[i+1] && amps[i] >= floor {
			peaks = append(peaks, Peak{Frequency: spec.Frequencies[i], Amplitude: amps[i]})
		}
	}
	return peaks, nil
}
