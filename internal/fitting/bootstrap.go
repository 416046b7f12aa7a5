package fitting

import (
	"math"
	"math/rand"

	"rarscale/domain/analysis"
	"rarscale/domain/curve"

	"github.com/montanaflynn/stats"
)

// estimateUncertainty picks the configured uncertainty estimator for an
// accepted fit. Bootstrap is used when it is enabled (BootstrapSamples > 0)
// and the bin is at least BootstrapMinPoints; otherwise, or when too few
// resamples refit successfully, the analytic curvature error is reported.
// The choice is recorded on the FitResult so downstream consumers can audit
// it.
func (f *Fitter) estimateUncertainty(points []curve.RotationCurvePoint, logA0 float64, stream *rand.Rand) (float64, analysis.UncertaintyMethod) {
	if f.cfg.BootstrapSamples <= 0 || len(points) < f.cfg.BootstrapMinPoints || stream == nil {
		return analyticError(points, logA0), analysis.UncertaintyAnalytic
	}

	samples := make([]float64, 0, f.cfg.BootstrapSamples)
	resample := make([]curve.RotationCurvePoint, len(points))

	for i := 0; i < f.cfg.BootstrapSamples; i++ {
		for j := range resample {
			resample[j] = points[stream.Intn(len(points))]
		}
		x, _, err := f.minimize(resample)
		if err != nil {
			continue
		}
		samples = append(samples, math.Pow(10, x))
	}

	// A spread needs at least two successful refits; anything less falls
	// back to the analytic error rather than reporting a fake zero.
	if len(samples) < 2 {
		return analyticError(points, logA0), analysis.UncertaintyAnalytic
	}

	sd, err := stats.StandardDeviation(samples)
	if err != nil || math.IsNaN(sd) {
		return analyticError(points, logA0), analysis.UncertaintyAnalytic
	}
	return sd, analysis.UncertaintyBootstrap
}
