package ports

import (
	"context"

	"rarscale/domain/core"
	"rarscale/domain/curve"
)

// DataProviderPort supplies rotation-curve profiles to the analysis core.
// Implementations own parsing and file layout; the core consumes profiles
// read-only.
type DataProviderPort interface {
	// Profiles returns every loaded galaxy profile keyed by identifier.
	Profiles(ctx context.Context) (map[core.GalaxyID]curve.GalaxyProfile, error)

	// Profile returns one galaxy's profile.
	Profile(ctx context.Context, id core.GalaxyID) (curve.GalaxyProfile, error)

	// QualityGalaxies returns the identifiers passing the given thresholds,
	// in a stable (sorted) order.
	QualityGalaxies(ctx context.Context, thresholds curve.QualityThresholds) ([]core.GalaxyID, error)
}
