package dsp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidRPM is returned for a non-positive rotational speed. A zero
	// rotational frequency would make every peak match the 0th harmonic
	// trivially, so it is rejected up front.
	ErrInvalidRPM = errors.New("dsp: rpm must be positive")

	// ErrMalformedBearingInfo marks a bearing catalog that could not be
	// parsed. It is recoverable: the caller continues with harmonic rules
	// only and surfaces the message as a warning.
	ErrMalformedBearingInfo = errors.New("malformed bearing info")
)

// DefaultMatchTolerance is the relative half-width of the tolerance band used
// when matching a detected frequency against a reference frequency.
const DefaultMatchTolerance = 0.10

// FaultFrequencyCatalog holds the shaft rotational frequency and any named
// bearing-defect frequencies, all in Hz. Built once per diagnosis and never
// mutated afterward.
type FaultFrequencyCatalog struct {
	Rotational float64
	Bearing    map[string]float64
	Tolerance  float64
}

// NewFaultFrequencyCatalog builds a catalog from a rotational speed in RPM.
func NewFaultFrequencyCatalog(rpm float64) (*FaultFrequencyCatalog, error) {
	if rpm <= 0 {
		return nil, ErrInvalidRPM
	}
	return &FaultFrequencyCatalog{
		Rotational: rpm / 60,
		Tolerance:  DefaultMatchTolerance,
	}, nil
}

// Matches reports whether f falls inside the relative tolerance band around
// target: |f - target| < Tolerance * target.
func (c *FaultFrequencyCatalog) Matches(f, target float64) bool {
	return math.Abs(f-target) < c.Tolerance*target
}

// ParseBearingInfo parses free text of the form "KEY=VALUE[,KEY=VALUE...]"
// into a label-to-Hz map. Labels are uppercased, values must be positive
// reals. Any malformed token discards the entire catalog and returns
// ErrMalformedBearingInfo: a half-parsed catalog would silently diagnose with
// whatever part of a mistyped string happened to be valid. Empty input yields
// an empty catalog with no error.
func ParseBearingInfo(text string) (map[string]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	out := make(map[string]float64)
	for _, token := range strings.Split(text, ",") {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: token %q is not KEY=VALUE", ErrMalformedBearingInfo, strings.TrimSpace(token))
		}
		label := strings.ToUpper(strings.TrimSpace(parts[0]))
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrMalformedBearingInfo, strings.TrimSpace(parts[1]))
		}
		if label == "" || value <= 0 {
			return nil, fmt.Errorf("%w: token %q needs a label and a positive frequency", ErrMalformedBearingInfo, strings.TrimSpace(token))
		}
		out[label] = value
	}
	return out, nil
}
