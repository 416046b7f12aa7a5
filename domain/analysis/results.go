// Package analysis defines the immutable result records produced by one
// analysis run: per-bin fits, per-galaxy ratios and the ensemble summary.
package analysis

import (
	"rarscale/domain/core"
	"rarscale/domain/curve"
	"rarscale/domain/verdict"
)

// UncertaintyMethod records how a fit's parameter uncertainty was estimated.
type UncertaintyMethod string

const (
	UncertaintyBootstrap UncertaintyMethod = "bootstrap"
	UncertaintyAnalytic  UncertaintyMethod = "analytic"
	UncertaintyNone      UncertaintyMethod = ""
)

// FitResult is the outcome of one bounded fit of the scale parameter to one
// radial bin. Created once per bin-fit invocation, never mutated.
type FitResult struct {
	Bin         curve.BinLabel    `json:"bin"`
	A0          float64           `json:"a0"`
	A0Err       float64           `json:"a0_error"`
	Method      UncertaintyMethod `json:"uncertainty_method,omitempty"`
	Chi2Reduced float64           `json:"chi2_reduced"`
	NPoints     int               `json:"n_points"`
	Converged   bool              `json:"converged"`
	Reason      string            `json:"reason,omitempty"` // set when not converged
	Err         error             `json:"-"`                // the failure behind Reason, matchable with errors.Is
}

// GalaxyRadialResult is one galaxy's inner/outer comparison. When either bin
// fit is rejected the galaxy is excluded: Ratio, RatioErr and Z are undefined
// and Reason identifies the failing bin.
type GalaxyRadialResult struct {
	Galaxy     core.GalaxyID    `json:"galaxy"`
	Morphology curve.Morphology `json:"morphology"`
	Inner      FitResult        `json:"inner"`
	Outer      FitResult        `json:"outer"`
	Ratio      float64          `json:"ratio"`
	RatioErr   float64          `json:"ratio_error"`
	Z          float64          `json:"z_score"`
	Excluded   bool             `json:"excluded"`
	Reason     string           `json:"reason,omitempty"`
}

// EnsembleResult is the combined statistical outcome over all non-excluded
// galaxies of a run.
type EnsembleResult struct {
	TotalCount         int                `json:"total_count"`
	ValidCount         int                `json:"valid_count"`
	MeanRatio          float64            `json:"mean_ratio"` // inverse-variance weighted
	RatioStd           float64            `json:"ratio_std"`
	CombinedZ          float64            `json:"combined_z"`
	PValue             float64            `json:"p_value"` // two-sided
	Verdict            verdict.Label      `json:"verdict"`
	Confidence         verdict.Confidence `json:"confidence"`
	InsufficientSample bool               `json:"insufficient_sample"`
	Reason             string             `json:"reason,omitempty"`
}

// RunRecord ties one analysis run's results to the inputs that produced
// them, for persistence and reproducibility audits.
type RunRecord struct {
	ID          core.RunID     `json:"id"`
	CreatedAt   core.Timestamp `json:"created_at"`
	Seed        int64          `json:"seed"`
	QualityTier string         `json:"quality_tier"`
	Fingerprint core.Hash      `json:"fingerprint"`
	Galaxies    []GalaxyRadialResult `json:"galaxies"`
	Ensemble    EnsembleResult       `json:"ensemble"`
}

// ValidResults returns the non-excluded galaxy results, preserving order.
func ValidResults(results []GalaxyRadialResult) []GalaxyRadialResult {
	var out []GalaxyRadialResult
	for _, r := range results {
		if !r.Excluded {
			out = append(out, r)
		}
	}
	return out
}
