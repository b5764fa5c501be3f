package dsp

import "sort"

// Fault labels produced by the harmonic rules.
const (
	LabelUnbalance    = "Unbalance"
	LabelMisalignment = "Misalignment"
	LabelLooseness    = "Looseness"
)

// FaultMatch ties a fault label to the peak frequency that triggered it.
type FaultMatch struct {
	Label     string
	Frequency float64
}

// ClassifyPeaks maps detected peaks onto fault labels using the catalog.
// Rules run in a fixed order and every rule that fires appends a match, so a
// single peak can carry several labels (a peak near both 3x RPM and a bearing
// frequency yields two matches). The 3x/4x check is a single short-circuiting
// rule: a peak inside both bands still yields one Looseness label.
func ClassifyPeaks(peaks []Peak, catalog *FaultFrequencyCatalog) []FaultMatch {
	bearingLabels := make([]string, 0, len(catalog.Bearing))
	for label := range catalog.Bearing {
		bearingLabels = append(bearingLabels, label)
	}
	sort.Strings(bearingLabels)

	var matches []FaultMatch
	for _, p := range peaks {
		f := p.Frequency
		if catalog.Matches(f, catalog.Rotational) {
			matches = append(matches, FaultMatch{Label: LabelUnbalance, Frequency: f})
		}
		if catalog.Matches(f, 2*catalog.Rotational) {
			matches = append(matches, FaultMatch{Label: LabelMisalignment, Frequency: f})
		}
		if catalog.Matches(f, 3*catalog.Rotational) || catalog.Matches(f, 4*catalog.Rotational) {
			matches = append(matches, FaultMatch{Label: LabelLooseness, Frequency: f})
		}
		for _, label := range bearingLabels {
			if catalog.Matches(f, catalog.Bearing[label]) {
				matches = append(matches, FaultMatch{Label: "Bearing (" + label + ")", Frequency: f})
			}
		}
	}
	return matches
}
