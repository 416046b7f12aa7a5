package curve

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"rarscale/domain/core"
)

// QualityThresholds define the quality-control cuts applied to a galaxy
// profile before analysis.
type QualityThresholds struct {
	Name                string  `json:"name"`
	MinPoints           int     `json:"min_points"`
	MinRadialSpanKpc    float64 `json:"min_radial_span_kpc"`
	MaxInnerRadiusKpc   float64 `json:"max_inner_radius_kpc"` // innermost point must lie at or inside this radius
	MinOuterRadiusKpc   float64 `json:"min_outer_radius_kpc"` // outermost point must lie at or beyond this radius
	MaxVelErrorFraction float64 `json:"max_velocity_error_fraction"`
}

// Tiered presets, strictest first.
func StrictQuality() QualityThresholds {
	return QualityThresholds{Name: "STRICT", MinPoints: 8, MinRadialSpanKpc: 5.0, MaxInnerRadiusKpc: 1.0, MinOuterRadiusKpc: 10.0, MaxVelErrorFraction: 0.20}
}

func RelaxedQuality() QualityThresholds {
	return QualityThresholds{Name: "RELAXED", MinPoints: 6, MinRadialSpanKpc: 4.0, MaxInnerRadiusKpc: 2.0, MinOuterRadiusKpc: 8.0, MaxVelErrorFraction: 0.25}
}

func MinimalQuality() QualityThresholds {
	return QualityThresholds{Name: "MINIMAL", MinPoints: 5, MinRadialSpanKpc: 3.0, MaxInnerRadiusKpc: 3.0, MinOuterRadiusKpc: 6.0, MaxVelErrorFraction: 0.30}
}

func MaximalQuality() QualityThresholds {
	return QualityThresholds{Name: "MAXIMAL", MinPoints: 3, MinRadialSpanKpc: 0.0, MaxInnerRadiusKpc: 100.0, MinOuterRadiusKpc: 0.0, MaxVelErrorFraction: 1.0}
}

// QualityPreset resolves a tier name to its thresholds.
func QualityPreset(name string) (QualityThresholds, error) {
	switch name {
	case "strict", "STRICT":
		return StrictQuality(), nil
	case "relaxed", "RELAXED":
		return RelaxedQuality(), nil
	case "minimal", "MINIMAL":
		return MinimalQuality(), nil
	case "maximal", "MAXIMAL":
		return MaximalQuality(), nil
	default:
		return QualityThresholds{}, fmt.Errorf("unknown quality preset %q", name)
	}
}

// EvaluateQuality checks a profile against the thresholds and returns a
// report with every failing reason. Pure function, no side effects.
func EvaluateQuality(profile GalaxyProfile, c QualityThresholds) QualityReport {
	var reasons []string

	if profile.Len() == 0 {
		return QualityReport{Passed: false, Reasons: []string{"NoPoints"}}
	}
	if profile.Len() < c.MinPoints {
		reasons = append(reasons, fmt.Sprintf("Points(%d<%d)", profile.Len(), c.MinPoints))
	}
	if profile.RadialSpan() < c.MinRadialSpanKpc {
		reasons = append(reasons, "Range")
	}
	if profile.MinRadius() > c.MaxInnerRadiusKpc {
		reasons = append(reasons, "InnerR")
	}
	if profile.MaxRadius() < c.MinOuterRadiusKpc {
		reasons = append(reasons, "OuterR")
	}

	var relErrs []float64
	finite := true
	for _, p := range profile.Points {
		if !p.IsFinite() {
			finite = false
			continue
		}
		// g = v²/r so σ_g/g = 2 σ_v/v; invert to recover the relative
		// velocity error from the stored acceleration error.
		if p.GObs > 0 {
			relErrs = append(relErrs, p.GObsErr/(2*p.GObs))
		}
	}
	if !finite {
		reasons = append(reasons, "NonFinite")
	}
	if len(relErrs) > 0 {
		if med, err := stats.Median(relErrs); err == nil && med > c.MaxVelErrorFraction {
			reasons = append(reasons, "Err")
		}
	} else {
		reasons = append(reasons, "NoErrors")
	}

	// g_obs significantly below g_bar is unphysical for rotation-supported
	// systems; skip the check on the loosest tier, as provided data may be raw.
	if c.Name != "MAXIMAL" {
		for _, p := range profile.Points {
			if p.IsFinite() && p.GObs < 0.7*p.GBar {
				reasons = append(reasons, "g_obs<<g_bar")
				break
			}
		}
	}

	return QualityReport{Passed: len(reasons) == 0, Reasons: reasons}
}

// Validate reports whether the thresholds themselves are coherent.
func (c QualityThresholds) Validate() error {
	if c.MinPoints < 1 {
		return core.NewValidationError("min_points", fmt.Sprintf("must be positive, got %d", c.MinPoints))
	}
	if c.MinRadialSpanKpc < 0 || math.IsNaN(c.MinRadialSpanKpc) {
		return core.NewValidationError("min_radial_span_kpc", "must be non-negative")
	}
	if c.MaxVelErrorFraction <= 0 {
		return core.NewValidationError("max_velocity_error_fraction", "must be positive")
	}
	return nil
}
