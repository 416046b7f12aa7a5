package ports

import (
	"math/rand"

	"rarscale/domain/core"
	"rarscale/domain/curve"
)

// RNGPort provides seeded random number generation for deterministic
// bootstrap resampling. Sub-streams are derived from the run-level seed so
// that parallel execution order cannot affect numerical outcomes.
type RNGPort interface {
	// BinStream returns a deterministic generator for one galaxy's radial
	// bin. The same (seed, galaxy, bin) triple always yields an identical
	// stream.
	BinStream(galaxy core.GalaxyID, bin curve.BinLabel) *rand.Rand

	// Seed returns the run-level seed the streams derive from.
	Seed() int64
}
