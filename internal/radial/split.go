package radial

import (
	"fmt"

	"rarscale/domain/core"
	"rarscale/domain/curve"
	"rarscale/internal/config"
	"rarscale/internal/errors"
)

// SplitPolicy assigns rotation-curve points to an inner and an outer radial
// bin by two fixed radius thresholds. Points between the thresholds belong to
// neither bin: the gap keeps the two acceleration-scale estimates from
// sharing the transition region where neither regime dominates.
type SplitPolicy struct {
	innerMax float64 // kpc, inclusive upper edge of the inner bin
	outerMin float64 // kpc, inclusive lower edge of the outer bin
}

// NewSplitPolicy validates the thresholds and returns a policy.
func NewSplitPolicy(cfg config.BinConfig) (SplitPolicy, error) {
	if cfg.InnerMaxRadiusKpc <= 0 {
		return SplitPolicy{}, errors.ConfigInvalidFor(core.ErrInvalidBinPolicy, fmt.Sprintf("inner-bin maximum radius must be positive, got %g", cfg.InnerMaxRadiusKpc))
	}
	if cfg.OuterMinRadiusKpc < cfg.InnerMaxRadiusKpc {
		return SplitPolicy{}, errors.ConfigInvalidFor(core.ErrInvalidBinPolicy, fmt.Sprintf("outer-bin minimum radius %g undercuts the inner-bin maximum %g", cfg.OuterMinRadiusKpc, cfg.InnerMaxRadiusKpc))
	}
	return SplitPolicy{innerMax: cfg.InnerMaxRadiusKpc, outerMin: cfg.OuterMinRadiusKpc}, nil
}

// Split partitions a galaxy's points into the inner and outer bins. Point
// order within each bin follows the profile's radius ordering.
func (p SplitPolicy) Split(profile curve.GalaxyProfile) (inner, outer curve.RadialBin) {
	inner = curve.RadialBin{Label: curve.BinInner}
	outer = curve.RadialBin{Label: curve.BinOuter}
	for _, pt := range profile.Points {
		switch {
		case pt.Radius <= p.innerMax:
			inner.Points = append(inner.Points, pt)
		case pt.Radius >= p.outerMin:
			outer.Points = append(outer.Points, pt)
		}
	}
	return inner, outer
}
