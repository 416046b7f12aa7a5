// Package fitting implements the bounded single-parameter least-squares fit
// of the acceleration relation to one radial bin, with bootstrap or analytic
// uncertainty estimation.
package fitting

import (
	"fmt"
	"math"
	"math/rand"

	"rarscale/domain/analysis"
	"rarscale/domain/core"
	"rarscale/domain/curve"
	"rarscale/domain/relation"
	"rarscale/internal/config"
	"rarscale/internal/errors"
)

// invphi is the inverse golden ratio used by the section search.
var invphi = (math.Sqrt(5) - 1) / 2

// logTolerance is the convergence width of the bracketing interval in
// log₁₀(a0) space. 1e-9 dex is far below any measurement uncertainty.
const logTolerance = 1e-9

// Fitter fits the scale parameter to radial bins. Immutable after
// construction; safe for concurrent use.
type Fitter struct {
	cfg config.FitConfig
}

// New builds a fitter from validated fit configuration.
func New(cfg config.FitConfig) (*Fitter, error) {
	if cfg.A0Min <= 0 || cfg.A0Max <= cfg.A0Min {
		return nil, errors.ConfigInvalidFor(core.ErrInvalidBounds, fmt.Sprintf("invalid a0 bounds [%g, %g]", cfg.A0Min, cfg.A0Max))
	}
	if cfg.MinPoints < 1 || cfg.MaxIterations < 1 || cfg.GridSamples < 2 {
		return nil, errors.ConfigInvalid("fit configuration has non-positive limits")
	}
	return &Fitter{cfg: cfg}, nil
}

// Fit performs the bounded fit for one bin. It never returns an error: every
// failure mode is reported inside the FitResult so a bad bin cannot abort
// the ensemble. The stream drives bootstrap resampling and must be the bin's
// deterministic sub-stream.
func (f *Fitter) Fit(bin curve.RadialBin, stream *rand.Rand) analysis.FitResult {
	// Failures carry a sentinel-wrapped error so callers can distinguish
	// sparse data from optimizer trouble with errors.Is.
	fail := func(cause error) analysis.FitResult {
		err := core.NewBinError(string(bin.Label), cause)
		return analysis.FitResult{Bin: bin.Label, NPoints: bin.Count(), Converged: false, Err: err, Reason: err.Error()}
	}

	if bin.Count() < f.cfg.MinPoints {
		return fail(fmt.Errorf("%w (%d < %d)", core.ErrTooFewPoints, bin.Count(), f.cfg.MinPoints))
	}

	points := finitePoints(bin.Points)
	if len(points) < f.cfg.MinPoints {
		return fail(fmt.Errorf("%w: %d of %d points usable", core.ErrNonFiniteData, len(points), bin.Count()))
	}

	logA0, chi2, err := f.minimize(points)
	if err != nil {
		return fail(err)
	}

	a0 := math.Pow(10, logA0)
	if a0 < f.cfg.A0Min || a0 > f.cfg.A0Max {
		// The section search is bracketed, so this indicates a numerical
		// problem rather than a legitimate optimum.
		return fail(fmt.Errorf("%w: fitted a0 %g escaped bounds [%g, %g]", core.ErrNumerical, a0, f.cfg.A0Min, f.cfg.A0Max))
	}

	dof := len(points) - 1
	chi2Reduced := chi2
	if dof > 0 {
		chi2Reduced = chi2 / float64(dof)
	}

	a0Err, method := f.estimateUncertainty(points, logA0, stream)

	return analysis.FitResult{
		Bin:         bin.Label,
		A0:          a0,
		A0Err:       a0Err,
		Method:      method,
		Chi2Reduced: chi2Reduced,
		NPoints:     len(points),
		Converged:   true,
	}
}

// chiSquare evaluates the weighted sum of squared log-space residuals at a
// trial log₁₀(a0). Returns NaN as soon as any term is non-finite.
func chiSquare(points []curve.RotationCurvePoint, logA0 float64) float64 {
	a0 := math.Pow(10, logA0)
	sum := 0.0
	for _, p := range points {
		r := relation.Residual(p, a0)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return math.NaN()
		}
		// Zero reported uncertainty means an idealized (noise-free) point;
		// weight it uniformly instead of infinitely.
		s := relation.LogSigma(p)
		if math.IsNaN(s) || s <= 0 {
			s = 1
		}
		t := r / s
		sum += t * t
	}
	return sum
}

// minimize locates the chi-square minimum over the bounded interval: a
// coarse log-space grid scan to find the attraction basin, then a
// golden-section refinement inside the bracketing grid cells. Returns the
// located log₁₀(a0) and the chi-square there.
func (f *Fitter) minimize(points []curve.RotationCurvePoint) (float64, float64, error) {
	lo := math.Log10(f.cfg.A0Min)
	hi := math.Log10(f.cfg.A0Max)
	step := (hi - lo) / float64(f.cfg.GridSamples-1)

	bestIdx := -1
	bestChi := math.Inf(1)
	for i := 0; i < f.cfg.GridSamples; i++ {
		x := lo + float64(i)*step
		c := chiSquare(points, x)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return 0, 0, fmt.Errorf("%w during grid scan", core.ErrNumerical)
		}
		if c < bestChi {
			bestChi = c
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, 0, fmt.Errorf("%w: no finite chi-square in scan range", core.ErrNumerical)
	}

	// Bracket around the best grid point, clipped to the bounds.
	a := math.Max(lo, lo+float64(bestIdx-1)*step)
	b := math.Min(hi, lo+float64(bestIdx+1)*step)

	x, converged := f.goldenSection(points, a, b)
	if !converged {
		return 0, 0, fmt.Errorf("%w within %d iterations", core.ErrFitNotConverged, f.cfg.MaxIterations)
	}
	c := chiSquare(points, x)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, 0, fmt.Errorf("%w at optimum", core.ErrNumerical)
	}
	return x, c, nil
}

// goldenSection shrinks [a, b] around the minimum until the interval is
// below tolerance or the iteration budget runs out.
func (f *Fitter) goldenSection(points []curve.RotationCurvePoint, a, b float64) (float64, bool) {
	c := b - invphi*(b-a)
	d := a + invphi*(b-a)
	fc := chiSquare(points, c)
	fd := chiSquare(points, d)

	for i := 0; i < f.cfg.MaxIterations; i++ {
		if math.IsNaN(fc) || math.IsNaN(fd) {
			return 0, false
		}
		if b-a < logTolerance {
			return (a + b) / 2, true
		}
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invphi*(b-a)
			fc = chiSquare(points, c)
		} else {
			a, c, fc = c, d, fd
			d = a + invphi*(b-a)
			fd = chiSquare(points, d)
		}
	}
	// Interval may already be tight enough even when the budget ran out.
	if b-a < logTolerance {
		return (a + b) / 2, true
	}
	return 0, false
}

// analyticError derives the standard error from the finite-difference
// curvature of chi-square at the optimum, converted from log space:
// Δa0 ≈ a0 · ln 10 · Δlog₁₀(a0). Returns +Inf when the curvature is
// degenerate.
func analyticError(points []curve.RotationCurvePoint, logA0 float64) float64 {
	const h = 1e-4
	c0 := chiSquare(points, logA0)
	c1 := chiSquare(points, logA0+h)
	cm1 := chiSquare(points, logA0-h)
	d2 := (c1 - 2*c0 + cm1) / (h * h)
	if math.IsNaN(d2) || d2 <= 0 {
		return math.Inf(1)
	}
	logErr := 1.0 / math.Sqrt(d2)
	a0 := math.Pow(10, logA0)
	return a0 * math.Ln10 * logErr
}

func finitePoints(points []curve.RotationCurvePoint) []curve.RotationCurvePoint {
	out := make([]curve.RotationCurvePoint, 0, len(points))
	for _, p := range points {
		if p.IsFinite() {
			out = append(out, p)
		}
	}
	return out
}
