package domain

import (
	"fmt"
	"math"
)

// Geoide is the datum of a frame: the radius of the body in rendering space
// and its physical radius in meters.
type Geoide struct {
	radius           float64
	realPlanetRadius float64
	heightScale      float64
}

// NewGeoide creates a geoide. Both radii must be finite and strictly positive.
func NewGeoide(radius, realPlanetRadius float64) (Geoide, error) {
	if !isPositiveFinite(radius) {
		return Geoide{}, &ParameterError{
			Field:   "radius",
			Message: fmt.Sprintf("must be a positive number, got %v", radius),
			Err:     ErrInvalidArgument,
		}
	}
	if !isPositiveFinite(realPlanetRadius) {
		return Geoide{}, &ParameterError{
			Field:   "realPlanetRadius",
			Message: fmt.Sprintf("must be a positive number, got %v", realPlanetRadius),
			Err:     ErrInvalidArgument,
		}
	}

	return Geoide{
		radius:           radius,
		realPlanetRadius: realPlanetRadius,
		heightScale:      1.0 / realPlanetRadius,
	}, nil
}

// Radius returns the radius of the body in rendering space.
func (g Geoide) Radius() float64 {
	return g.radius
}

// RealPlanetRadius returns the physical radius of the body in meters.
func (g Geoide) RealPlanetRadius() float64 {
	return g.realPlanetRadius
}

// HeightScale returns the factor converting meters to rendering units.
func (g Geoide) HeightScale() float64 {
	return g.heightScale
}

// IsZero returns true if the geoide was never initialized.
func (g Geoide) IsZero() bool {
	return g.radius == 0 && g.realPlanetRadius == 0
}

func isPositiveFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
