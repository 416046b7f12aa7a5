package verdict

import (
	"fmt"
	"math"
)

// Label is the verdict of an ensemble run: the name of the supported
// hypothesis, or one of the reserved non-decisions below.
type Label string

const (
	LabelInconclusive       Label = "INCONCLUSIVE"
	LabelInsufficientSample Label = "INSUFFICIENT_SAMPLE"
)

// IsDecision reports whether the label names a supported hypothesis.
func (l Label) IsDecision() bool {
	return l != "" && l != LabelInconclusive && l != LabelInsufficientSample
}

// Confidence grades the strength of a decision.
type Confidence string

const (
	ConfidenceHigh Confidence = "HIGH"
	ConfidenceLow  Confidence = "LOW"
	ConfidenceNone Confidence = ""
)

// HypothesisProfile is one of the two pre-specified competing hypotheses: an
// expected inner/outer scale-parameter ratio and its expected scatter.
type HypothesisProfile struct {
	Name              string  `json:"name"`
	ExpectedRatioMean float64 `json:"expected_ratio_mean"`
	ExpectedRatioStd  float64 `json:"expected_ratio_std"`
}

// Validate reports whether the profile is well formed.
func (h HypothesisProfile) Validate() error {
	if h.Name == "" {
		return fmt.Errorf("hypothesis profile has no name")
	}
	if math.IsNaN(h.ExpectedRatioMean) || math.IsInf(h.ExpectedRatioMean, 0) || h.ExpectedRatioMean <= 0 {
		return fmt.Errorf("hypothesis %q: expected ratio mean must be positive and finite", h.Name)
	}
	if math.IsNaN(h.ExpectedRatioStd) || h.ExpectedRatioStd <= 0 {
		return fmt.Errorf("hypothesis %q: expected ratio std must be positive", h.Name)
	}
	return nil
}

// Contains reports whether an observed mean ratio falls inside the
// hypothesis's expected range (mean ± k·std).
func (h HypothesisProfile) Contains(observedMean, k float64) bool {
	return math.Abs(observedMean-h.ExpectedRatioMean) <= k*h.ExpectedRatioStd
}

// ExpectsDeviation reports whether the hypothesis predicts a ratio different
// from unity, i.e. a radius-dependent scale parameter.
func (h HypothesisProfile) ExpectsDeviation() bool {
	return math.Abs(h.ExpectedRatioMean-1.0) > 1e-9
}

// Distance returns how far an observed mean ratio sits from the hypothesis's
// expectation, in units of its expected scatter.
func (h HypothesisProfile) Distance(observedMean float64) float64 {
	return math.Abs(observedMean-h.ExpectedRatioMean) / h.ExpectedRatioStd
}

// Thresholds are the significance cuts for classifying the combined evidence.
type Thresholds struct {
	// SignificantZ is the combined-z magnitude required to call a deviation
	// significant (and, inversely, the ceiling for calling the sample
	// consistent with unity).
	SignificantZ float64 `json:"significant_z"`
	// StrongZ is the stricter magnitude that upgrades confidence to HIGH.
	StrongZ float64 `json:"strong_z"`
	// RangeSigma is the half-width multiplier k for HypothesisProfile.Contains.
	RangeSigma float64 `json:"range_sigma"`
}

// Validate reports whether the thresholds are coherent.
func (t Thresholds) Validate() error {
	if t.SignificantZ <= 0 || math.IsNaN(t.SignificantZ) {
		return fmt.Errorf("significant-z threshold must be positive")
	}
	if t.StrongZ < t.SignificantZ {
		return fmt.Errorf("strong-z threshold (%g) must be at least the significant-z threshold (%g)", t.StrongZ, t.SignificantZ)
	}
	if t.RangeSigma <= 0 {
		return fmt.Errorf("range sigma multiplier must be positive")
	}
	return nil
}
