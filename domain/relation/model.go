// Package relation holds the closed-form radial acceleration relation under
// test. Stateless: every function is pure.
package relation

import (
	"math"

	"rarscale/domain/curve"
)

// ReferenceA0 is the literature value of the acceleration scale (m/s²),
// used as the default initial guess when fitting.
const ReferenceA0 = 1.2e-10

// sqrtCap bounds the exponent argument so Evaluate stays finite for points
// many orders of magnitude above the scale.
const sqrtCap = 1e3

// Evaluate computes the predicted observed acceleration for a baryonic
// acceleration gBar under scale parameter a0:
//
//	g_obs = g_bar / (1 − exp(−√(g_bar / a0)))
//
// For invalid inputs, or where the denominator underflows, the high-
// acceleration limit g_obs → g_bar is returned.
func Evaluate(gBar, a0 float64) float64 {
	if gBar <= 0 || a0 <= 0 {
		return gBar
	}
	x := gBar / a0
	if x > sqrtCap*sqrtCap {
		x = sqrtCap * sqrtCap
	}
	denom := 1 - math.Exp(-math.Sqrt(x))
	gObs := gBar / denom
	if math.IsNaN(gObs) || math.IsInf(gObs, 0) {
		return gBar
	}
	return gObs
}

// Residual returns the signed fit error of one measured point under scale
// parameter a0, in log₁₀ acceleration space. Accelerations span several
// decades per galaxy; log space keeps the least-squares problem
// well-conditioned across that range.
func Residual(p curve.RotationCurvePoint, a0 float64) float64 {
	pred := Evaluate(p.GBar, a0)
	if p.GObs <= 0 || pred <= 0 {
		return math.NaN()
	}
	return math.Log10(p.GObs) - math.Log10(pred)
}

// LogSigma converts a point's acceleration uncertainty into log₁₀ space:
// σ_log = σ_g / (g ln 10). Used as the weighting scale for Residual.
func LogSigma(p curve.RotationCurvePoint) float64 {
	if p.GObs <= 0 || p.GObsErr <= 0 {
		return math.NaN()
	}
	return p.GObsErr / (p.GObs * math.Ln10)
}

// DeepRegime reports whether a point sits in the low-acceleration regime
// (g_bar ≪ a0) where the relation departs most strongly from Newtonian.
func DeepRegime(gBar, a0 float64) bool {
	return gBar < 0.1*a0
}
