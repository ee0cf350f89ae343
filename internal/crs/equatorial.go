package crs

import (
	"log/slog"

	"github.com/jobrunner/sphaera/internal/domain"
)

const equatorialDescription = "System in which a celestial object's position on the celestial sphere is " +
	"described in terms of its declination and right ascension, measured with respect to the celestial equator. " +
	"Declination is measured in degrees north or south of the celestial equator but right ascension is measured " +
	"in hours, minutes, and seconds eastward along the celestial equator from the point of the vernal equinox. " +
	"Coordinates are given for the J2000 epoch."

// Sky frames render on a sphere of radius 10 so they enclose the planets.
const skyRadius = 10.0

// Equatorial is the J2000 right ascension/declination sky frame.
type Equatorial struct {
	*base
}

// NewEquatorial creates the equatorial frame. conv is needed only by
// GalacticFrameMatrix and the sky conversions of Convert.
func NewEquatorial(conv *Converter, logger *slog.Logger) (*Equatorial, error) {
	e := &Equatorial{}
	b, err := newBase(config{
		geoideName:       domain.FrameEquatorial,
		radius:           skyRadius,
		realPlanetRadius: 1.0,
		kind:             domain.DomainSky,
		bound:            domain.NewGeoBound(0, -90, 360, 90),
	}, e, conv, logger)
	if err != nil {
		return nil, err
	}
	e.base = b
	return e, nil
}

// Name returns the frame identifier.
func (e *Equatorial) Name() string {
	return string(domain.FrameEquatorial)
}

// Description returns a human-readable description.
func (e *Equatorial) Description() string {
	return equatorialDescription
}

// LongitudeLabel returns "α".
func (e *Equatorial) LongitudeLabel() string {
	return "α"
}

// LatitudeLabel returns "δ".
func (e *Equatorial) LatitudeLabel() string {
	return "δ"
}

// FormatCoordinates renders right ascension in HMS and declination in DMS.
func (e *Equatorial) FormatCoordinates(geo []float64) [2]string {
	if len(geo) < 2 {
		return [2]string{}
	}
	sexa := e.SexagesimalFromDeg(geo)
	return [2]string{
		e.LongitudeLabel() + " = " + sexa[0],
		e.LatitudeLabel() + " = " + sexa[1],
	}
}

// GalacticFrameMatrix returns the matrix whose columns are the galactic
// centre, the galactic east point and the galactic north pole expressed in
// equatorial rendering space.
func (e *Equatorial) GalacticFrameMatrix() (domain.Mat4, error) {
	var center, east, north [3]float64
	axes := []struct {
		gal  []float64
		dest []float64
	}{
		{[]float64{0, 0}, center[:]},
		{[]float64{90, 0}, east[:]},
		{[]float64{0, 90}, north[:]},
	}
	for _, a := range axes {
		eq, err := e.Convert(a.gal, domain.FrameGalactic, domain.FrameEquatorial)
		if err != nil {
			return domain.Mat4{}, err
		}
		e.FromGeoTo3D(eq, a.dest)
	}

	return domain.Mat4{
		center[0], center[1], center[2], 0,
		east[0], east[1], east[2], 0,
		north[0], north[1], north[2], 0,
		0, 0, 0, 1,
	}, nil
}

// TransformVec applies GalacticFrameMatrix to v.
func (e *Equatorial) TransformVec(v [3]float64) ([3]float64, error) {
	m, err := e.GalacticFrameMatrix()
	if err != nil {
		return [3]float64{}, err
	}
	return m.MulVec3(v), nil
}

func (e *Equatorial) setupPosBeforeTrans(pos []float64) {
	if pos[0] > 180 {
		pos[0] -= 360
	}
}

func (e *Equatorial) setupPosAfterTrans(pos []float64) {
	if pos[0] < 0 {
		pos[0] += 360
	}
}
