package projection

import (
	"math"

	"github.com/jobrunner/sphaera/internal/domain"
)

// mercatorMaxLat is where latitudes are clamped; the projection diverges at
// the poles.
const mercatorMaxLat = 85.05

// Mercator is the spherical Mercator projection around a central meridian.
type Mercator struct {
	lambda0 float64
}

// NewMercator creates a Mercator projection centred on lambda0 degrees.
func NewMercator(lambda0 float64) *Mercator {
	return &Mercator{lambda0: lambda0}
}

// Name returns the projection name.
func (m *Mercator) Name() string {
	return NameMercator
}

// GeoBound returns the displayed latitude band.
func (m *Mercator) GeoBound() domain.GeoBound {
	return domain.GeoBound{West: -180, South: -80, East: 180, North: 84}
}

// Project clamps the latitude to ±85.05 degrees and projects geo.
func (m *Mercator) Project(geo []float64, dest []float64) []float64 {
	if len(geo) < 2 {
		return zero(dest)
	}
	lat := math.Max(-mercatorMaxLat, math.Min(mercatorMaxLat, geo[1]))
	lon := geo[0]
	h := heightOf(geo)

	dest = vec3(dest)
	phi := lat * degToRad
	dest[0] = (lon - m.lambda0) * degToRad
	dest[1] = math.Log(math.Tan(phi) + 1/math.Cos(phi))
	dest[2] = h
	return dest
}

// UnProject inverts Project; positions beyond the clamped latitude fail.
func (m *Mercator) UnProject(xyz []float64, dest []float64) ([]float64, bool) {
	if len(xyz) < 3 {
		return nil, false
	}
	lat := math.Atan(math.Sinh(xyz[1])) * radToDeg
	if math.Abs(lat) > mercatorMaxLat+1e-9 {
		return nil, false
	}

	x, z := xyz[0], xyz[2]
	dest = vec3(dest)
	dest[0] = m.lambda0 + x*radToDeg
	dest[1] = lat
	dest[2] = z
	return dest, true
}
