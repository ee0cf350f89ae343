package output

// TransformKind selects the direction of a sky frame rotation.
type TransformKind int

// Rotation directions.
const (
	GAL2EQ TransformKind = iota
	EQ2GAL
)

// String returns the string representation of the kind.
func (k TransformKind) String() string {
	switch k {
	case GAL2EQ:
		return "GAL2EQ"
	case EQ2GAL:
		return "EQ2GAL"
	default:
		return "unknown"
	}
}

// AstroTransformer defines the secondary port for equatorial/galactic
// rotations. Positions are [lon, lat] in degrees; extra components are
// ignored and not returned.
type AstroTransformer interface {
	// Transform rotates geo in the given direction.
	Transform(geo []float64, kind TransformKind) []float64
}
