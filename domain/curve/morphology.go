package curve

import (
	"strings"

	"rarscale/domain/core"
)

// Morphology is a coarse galaxy classification inferred from catalog naming.
// This is pure metadata: the analysis core never branches on it, callers use
// it to select sub-ensembles.
type Morphology string

const (
	MorphologyDwarf   Morphology = "dwarf"
	MorphologySpiral  Morphology = "spiral"
	MorphologyUnknown Morphology = "unknown"
)

// Dwarf-dominated and spiral-dominated catalog prefixes. UGCA galaxies are
// dwarfs, so the dwarf list is checked before "UGC" matches.
var (
	dwarfCatalogs  = []string{"DDO", "UGCA", "D5", "F5"}
	spiralCatalogs = []string{"NGC", "UGC", "ESO", "IC", "PGC"}
)

// ClassifyMorphology maps a galaxy identifier to its morphology category by
// catalog naming convention.
func ClassifyMorphology(id core.GalaxyID) Morphology {
	name := strings.ToUpper(id.String())
	for _, kw := range dwarfCatalogs {
		if strings.Contains(name, kw) {
			return MorphologyDwarf
		}
	}
	for _, kw := range spiralCatalogs {
		if strings.Contains(name, kw) {
			return MorphologySpiral
		}
	}
	return MorphologyUnknown
}

// FilterByMorphology returns the subset of profiles in the given category,
// preserving input order.
func FilterByMorphology(profiles []GalaxyProfile, m Morphology) []GalaxyProfile {
	var out []GalaxyProfile
	for _, p := range profiles {
		if ClassifyMorphology(p.ID) == m {
			out = append(out, p)
		}
	}
	return out
}
