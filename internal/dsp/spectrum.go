package dsp

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptySignal is returned when a spectrum is requested for a signal with
// no samples.
var ErrEmptySignal = errors.New("dsp: empty signal")

// Spectrum is a one-sided amplitude spectrum: Frequencies holds the bin
// centers in Hz, ascending from 0 to fs/2, and Amplitudes the FFT magnitude
// at each bin. Both slices always have equal length.
type Spectrum struct {
	Frequencies []float64
	Amplitudes  []float64
}

// SpectrumAnalyzer converts real-valued time-domain samples into a one-sided
// amplitude spectrum. The sample mean is subtracted before the transform so
// DC bias never shows up as a spurious 0 Hz peak.
type SpectrumAnalyzer struct {
	sampleRate float64

	// ApplyWindow runs a Hann window over the de-meaned signal before the
	// transform. The diagnosis pipeline leaves it off so bin amplitudes stay
	// directly comparable between axes.
	ApplyWindow bool
}

// NewSpectrumAnalyzer creates an analyzer for signals sampled at fs Hz.
func NewSpectrumAnalyzer(fs float64) *SpectrumAnalyzer {
	return &SpectrumAnalyzer{sampleRate: fs}
}

// Compute returns the one-sided amplitude spectrum of signal. For an N-sample
// input the result has floor(N/2)+1 bins spaced fs/N apart.
func (sa *SpectrumAnalyzer) Compute(signal []float64) (Spectrum, error) {
	n := len(signal)
	if n == 0 {
		return Spectrum{}, ErrEmptySignal
	}

	mean := stat.Mean(signal, nil)
	buf := make([]float64, n)
	for i, v := range signal {
		buf[i] = v - mean
	}
	if sa.ApplyWindow {
		window.Hann(buf)
	}

	coeffs := fft.FFTReal(buf)

	bins := n/2 + 1
	freqs := make([]float64, bins)
	amps := make([]float64, bins)
	for i := 0; i < bins; i++ {
		freqs[i] = float64(i) * sa.sampleRate / float64(n)
		amps[i] = cmplx.Abs(coeffs[i])
	}

	return Spectrum{Frequencies: freqs, Amplitudes: amps}, nil
}
