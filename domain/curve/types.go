package curve

import (
	"math"

	"rarscale/domain/core"
)

// RotationCurvePoint is a single measured point of a galaxy rotation curve,
// expressed as accelerations. Immutable once loaded.
type RotationCurvePoint struct {
	Galaxy  core.GalaxyID `json:"galaxy"`
	Radius  float64       `json:"radius_kpc"`  // galactocentric radius (kpc)
	GBar    float64       `json:"g_bar"`       // baryonic (Newtonian) acceleration (m/s²)
	GObs    float64       `json:"g_obs"`       // observed acceleration (m/s²)
	GObsErr float64       `json:"g_obs_error"` // 1σ uncertainty on GObs (m/s²)
}

// IsFinite reports whether every field of the point is finite and physically
// usable for fitting (positive accelerations, non-negative radius and error).
func (p RotationCurvePoint) IsFinite() bool {
	for _, v := range []float64{p.Radius, p.GBar, p.GObs, p.GObsErr} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p.Radius >= 0 && p.GBar > 0 && p.GObs > 0 && p.GObsErr >= 0
}

// QualityReport records the outcome of quality control for one galaxy.
type QualityReport struct {
	Passed  bool     `json:"passed"`
	Reasons []string `json:"reasons,omitempty"`
}

// GalaxyProfile is one galaxy's rotation curve plus quality metadata.
// Produced once by the data provider and consumed read-only by the core.
type GalaxyProfile struct {
	ID      core.GalaxyID        `json:"id"`
	Points  []RotationCurvePoint `json:"points"` // ordered by radius
	Quality QualityReport        `json:"quality"`
}

// Len returns the number of rotation-curve points.
func (g GalaxyProfile) Len() int { return len(g.Points) }

// MinRadius returns the smallest radius in the profile, or 0 when empty.
func (g GalaxyProfile) MinRadius() float64 {
	if len(g.Points) == 0 {
		return 0
	}
	min := g.Points[0].Radius
	for _, p := range g.Points[1:] {
		if p.Radius < min {
			min = p.Radius
		}
	}
	return min
}

// MaxRadius returns the largest radius in the profile, or 0 when empty.
func (g GalaxyProfile) MaxRadius() float64 {
	if len(g.Points) == 0 {
		return 0
	}
	max := g.Points[0].Radius
	for _, p := range g.Points[1:] {
		if p.Radius > max {
			max = p.Radius
		}
	}
	return max
}

// RadialSpan returns MaxRadius − MinRadius.
func (g GalaxyProfile) RadialSpan() float64 {
	if len(g.Points) == 0 {
		return 0
	}
	return g.MaxRadius() - g.MinRadius()
}
