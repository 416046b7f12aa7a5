package curve

// BinLabel identifies a radial bin of a rotation curve.
type BinLabel string

const (
	BinInner BinLabel = "inner"
	BinOuter BinLabel = "outer"
)

// RadialBin is the subset of a profile's points selected by a radius
// predicate. Derived from a profile, never mutated after creation.
type RadialBin struct {
	Label  BinLabel             `json:"label"`
	Points []RotationCurvePoint `json:"points"`
}

// Count returns the number of points in the bin.
func (b RadialBin) Count() int { return len(b.Points) }
