package crs

import (
	"fmt"
	"log/slog"

	"github.com/jobrunner/sphaera/internal/domain"
)

const galacticDescription = "System in which a celestial object's position on the celestial sphere is described " +
	"in relation to the structure of the Milky Way galaxy. An object's galactic longitude is measured along the " +
	"galactic equator, beginning at a point in the constellation Sagittarius lying in the direction of the Milky " +
	"Way's nucleus. Galactic latitude is measured in degrees north or south of the galactic equator toward the " +
	"galactic poles."

// Galactic is the galactic longitude/latitude sky frame. Rendering space is
// shared with Equatorial: its hooks rotate positions into equatorial
// coordinates before the spherical math and back afterwards.
type Galactic struct {
	*base
}

// NewGalactic creates the galactic frame. conv must carry an astronomical
// transform.
func NewGalactic(conv *Converter, logger *slog.Logger) (*Galactic, error) {
	if conv == nil || conv.astro == nil {
		return nil, &domain.ParameterError{
			Field:   "astro",
			Message: fmt.Sprintf("frame %s requires an astronomical transform", domain.FrameGalactic),
			Err:     domain.ErrMissingParameter,
		}
	}

	g := &Galactic{}
	b, err := newBase(config{
		geoideName:       domain.FrameGalactic,
		radius:           skyRadius,
		realPlanetRadius: 1.0,
		kind:             domain.DomainSky,
		bound:            domain.NewGeoBound(0, -90, 360, 90),
	}, g, conv, logger)
	if err != nil {
		return nil, err
	}
	g.base = b
	return g, nil
}

// Name returns the frame identifier.
func (g *Galactic) Name() string {
	return string(domain.FrameGalactic)
}

// Description returns a human-readable description.
func (g *Galactic) Description() string {
	return galacticDescription
}

// LongitudeLabel returns "l".
func (g *Galactic) LongitudeLabel() string {
	return "l"
}

// LatitudeLabel returns "b".
func (g *Galactic) LatitudeLabel() string {
	return "b"
}

// FormatCoordinates renders l and b in degrees rounded to 3 decimals.
func (g *Galactic) FormatCoordinates(geo []float64) [2]string {
	if len(geo) < 2 {
		return [2]string{}
	}
	return [2]string{
		g.LongitudeLabel() + " = " + formatDecimal(geo[0], 3) + "°",
		g.LatitudeLabel() + " = " + formatDecimal(geo[1], 3) + "°",
	}
}

func (g *Galactic) setupPosBeforeTrans(pos []float64) {
	eq := g.conv.galToEq(pos[:2])
	pos[0], pos[1] = eq[0], eq[1]
	if pos[0] > 180 {
		pos[0] -= 360
	}
}

func (g *Galactic) setupPosAfterTrans(pos []float64) {
	if pos[0] < 0 {
		pos[0] += 360
	}
	gal := g.conv.eqToGal(pos[:2])
	pos[0], pos[1] = gal[0], gal[1]
}
