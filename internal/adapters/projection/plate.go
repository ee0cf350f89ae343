package projection

import (
	"math"

	"github.com/jobrunner/sphaera/internal/domain"
)

// Plate is the equirectangular projection: x and y are longitude and
// latitude in radians.
type Plate struct{}

// NewPlate creates a plate carrée projection.
func NewPlate() *Plate {
	return &Plate{}
}

// Name returns the projection name.
func (p *Plate) Name() string {
	return NamePlate
}

// GeoBound returns the whole sphere.
func (p *Plate) GeoBound() domain.GeoBound {
	return domain.GeoBound{West: -180, South: -90, East: 180, North: 90}
}

// Project maps geo degrees to radians.
func (p *Plate) Project(geo []float64, dest []float64) []float64 {
	if len(geo) < 2 {
		return zero(dest)
	}
	dest = vec3(dest)
	h := heightOf(geo)
	dest[0] = geo[0] * degToRad
	dest[1] = geo[1] * degToRad
	dest[2] = h
	return dest
}

// UnProject maps radians back to degrees.
func (p *Plate) UnProject(xyz []float64, dest []float64) ([]float64, bool) {
	if len(xyz) < 3 || math.Abs(xyz[1]) > math.Pi/2 {
		return nil, false
	}
	dest = vec3(dest)
	z := xyz[2]
	dest[0] = xyz[0] * radToDeg
	dest[1] = xyz[1] * radToDeg
	dest[2] = z
	return dest, true
}
