package crs

import (
	"log/slog"

	"github.com/jobrunner/sphaera/internal/domain"
)

// Physical radii in meters.
const (
	EarthRadius = 6378137.0
	MarsRadius  = 3396190.0
	MoonRadius  = 1737400.0
	SunRadius   = 696342000.0
)

const (
	wgs84Description = "WGS84 coordinate Reference System is the geodetic system used by GPS. The longitude " +
		"increases to the east from the Greenwich meridian and the latitude is measured in degrees north or " +
		"south of the equator."
	mars2000Description = "Mars 2000 coordinate Reference System is a coordinate system using the Mars sphere and " +
		"in which the planetocentric longitude increases to the east. The planetocentric latitude is measured in " +
		"degrees north or south of the Mars equator."
	moon2000Description = "Moon 2000 coordinate Reference System is a coordinate system using the Moon sphere and " +
		"in which the planetocentric longitude increases to the east. The planetocentric latitude is measured in " +
		"degrees north or south of the Moon equator."
	sunDescription = "Sun coordinate Reference System is a coordinate system using the Sun sphere and in which " +
		"the heliocentric longitude increases to the east. The heliocentric latitude is measured in degrees north " +
		"or south of the Sun equator."
)

// Planetary is a body-fixed frame on a unit sphere: Earth, Mars, Moon or Sun.
// Its hooks are no-ops.
type Planetary struct {
	*base
	description string
}

func newPlanetary(name domain.FrameID, realRadius float64, description string, conv *Converter, logger *slog.Logger) (*Planetary, error) {
	p := &Planetary{description: description}
	b, err := newBase(config{
		geoideName:       name,
		radius:           1.0,
		realPlanetRadius: realRadius,
		kind:             domain.DomainPlanet,
		bound:            domain.NewGeoBound(-180, -90, 180, 90),
	}, p, conv, logger)
	if err != nil {
		return nil, err
	}
	p.base = b
	return p, nil
}

// NewWGS84 creates the Earth frame. conv may be nil when only the alias
// conversions are needed.
func NewWGS84(conv *Converter, logger *slog.Logger) (*Planetary, error) {
	return newPlanetary(domain.FrameWGS84, EarthRadius, wgs84Description, conv, logger)
}

// NewMars2000 creates the IAU 2000 Mars frame.
func NewMars2000(conv *Converter, logger *slog.Logger) (*Planetary, error) {
	return newPlanetary(domain.FrameMars2000, MarsRadius, mars2000Description, conv, logger)
}

// NewMoon2000 creates the IAU 2000 Moon frame.
func NewMoon2000(conv *Converter, logger *slog.Logger) (*Planetary, error) {
	return newPlanetary(domain.FrameMoon2000, MoonRadius, moon2000Description, conv, logger)
}

// NewSun creates the heliographic frame.
func NewSun(conv *Converter, logger *slog.Logger) (*Planetary, error) {
	return newPlanetary(domain.FrameSun, SunRadius, sunDescription, conv, logger)
}

// Name returns the frame identifier.
func (p *Planetary) Name() string {
	return string(p.name)
}

// Description returns a human-readable description.
func (p *Planetary) Description() string {
	return p.description
}

// LongitudeLabel returns "Long".
func (p *Planetary) LongitudeLabel() string {
	return "Long"
}

// LatitudeLabel returns "Lat".
func (p *Planetary) LatitudeLabel() string {
	return "Lat"
}

// FormatCoordinates renders latitude then longitude rounded to 3 decimals
// with N/S and E/W suffixes, e.g. ["Lat = 12.5 N", "Long = 3.25 W"].
func (p *Planetary) FormatCoordinates(geo []float64) [2]string {
	if len(geo) < 2 {
		return [2]string{}
	}
	lon := roundTo(geo[0], 3)
	lat := roundTo(geo[1], 3)

	latStr := formatNumber(lat) + " N"
	if lat < 0 {
		latStr = formatNumber(-lat) + " S"
	}
	lonStr := formatNumber(lon) + " E"
	if lon < 0 {
		lonStr = formatNumber(-lon) + " W"
	}

	return [2]string{
		p.LatitudeLabel() + " = " + latStr,
		p.LongitudeLabel() + " = " + lonStr,
	}
}

func (p *Planetary) setupPosBeforeTrans(_ []float64) {}

func (p *Planetary) setupPosAfterTrans(_ []float64) {}
