package projection

import (
	"math"

	"github.com/jobrunner/sphaera/internal/domain"
)

// Pole names accepted by NewAzimuth.
const (
	PoleNorth = "north"
	PoleSouth = "south"
)

// Azimuth is the azimuthal equidistant projection centred on a pole. The
// radial distance is the colatitude in radians.
type Azimuth struct {
	pole string
}

// NewAzimuth creates an azimuthal projection. Anything but "south" selects
// the north pole.
func NewAzimuth(pole string) *Azimuth {
	if pole != PoleSouth {
		pole = PoleNorth
	}
	return &Azimuth{pole: pole}
}

// Name returns the projection name.
func (a *Azimuth) Name() string {
	return NameAzimuth
}

// Pole returns the projection centre.
func (a *Azimuth) Pole() string {
	return a.pole
}

// GeoBound returns the hemisphere around the pole.
func (a *Azimuth) GeoBound() domain.GeoBound {
	if a.pole == PoleSouth {
		return domain.GeoBound{West: -180, South: -90, East: 180, North: 0}
	}
	return domain.GeoBound{West: -180, South: 0, East: 180, North: 90}
}

func (a *Azimuth) sign() float64 {
	if a.pole == PoleSouth {
		return -1
	}
	return 1
}

// Project maps geo onto the plane tangent to the pole.
func (a *Azimuth) Project(geo []float64, dest []float64) []float64 {
	if len(geo) < 2 {
		return zero(dest)
	}
	p := (90 - a.sign()*geo[1]) * degToRad
	o := a.sign() * geo[0] * degToRad
	h := heightOf(geo)

	dest = vec3(dest)
	dest[0] = p * math.Sin(o)
	dest[1] = -p * math.Cos(o)
	dest[2] = h
	return dest
}

// UnProject inverts Project; points more than 90 degrees from the pole fail.
func (a *Azimuth) UnProject(xyz []float64, dest []float64) ([]float64, bool) {
	if len(xyz) < 3 {
		return nil, false
	}
	p := math.Hypot(xyz[0], xyz[1]) * radToDeg
	if p > 90 {
		return nil, false
	}
	o := math.Atan2(xyz[0], -xyz[1]) * radToDeg * a.sign()

	z := xyz[2]
	dest = vec3(dest)
	dest[0] = o
	dest[1] = a.sign() * (90 - p)
	dest[2] = z
	return dest, true
}
