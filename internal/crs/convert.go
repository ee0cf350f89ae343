package crs

import (
	"fmt"
	"log/slog"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

// aliasPairs lists frame identifiers naming the same physical frame.
var aliasPairs = [][2]domain.FrameID{
	{domain.FrameMars2000, domain.FrameMars2000Old},
	{domain.FrameMoon2000, domain.FrameMoon2000Old},
	{domain.FrameWGS84, domain.FrameEPSG4326},
}

// Converter is the frame conversion table. It is stateless apart from its
// collaborators and safe for concurrent use.
type Converter struct {
	astro  output.AstroTransformer
	logger *slog.Logger
}

// NewConverter creates a conversion table. astro may be nil, in which case
// the sky frame pairs fail with domain.ErrUnavailable.
func NewConverter(astro output.AstroTransformer, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{astro: astro, logger: logger}
}

// Convert re-expresses geo from one frame into another. The input is returned
// unchanged when no conversion is needed. Components beyond lon/lat are
// carried over as-is.
func (c *Converter) Convert(geo []float64, from, to domain.FrameID) ([]float64, error) {
	if from == to {
		return geo, nil
	}

	switch {
	case from == domain.FrameGalactic && to == domain.FrameEquatorial:
		if err := c.checkSky(geo, from, to); err != nil {
			return nil, err
		}
		return c.galToEq(geo), nil
	case from == domain.FrameEquatorial && to == domain.FrameGalactic:
		if err := c.checkSky(geo, from, to); err != nil {
			return nil, err
		}
		return c.eqToGal(geo), nil
	case isAlias(from, to):
		return geo, nil
	}

	return nil, &domain.ConversionError{From: from, To: to}
}

// Supports reports whether Convert handles the pair.
func (c *Converter) Supports(from, to domain.FrameID) bool {
	if from == to || isAlias(from, to) {
		return true
	}
	sky := (from == domain.FrameGalactic && to == domain.FrameEquatorial) ||
		(from == domain.FrameEquatorial && to == domain.FrameGalactic)
	return sky && c.astro != nil
}

func (c *Converter) checkSky(geo []float64, from, to domain.FrameID) error {
	if c.astro == nil {
		return fmt.Errorf("conversion %s to %s: no astronomical transform: %w", from, to, domain.ErrUnavailable)
	}
	if len(geo) < 2 {
		return fmt.Errorf("conversion %s to %s: position has %d components: %w", from, to, len(geo), domain.ErrMalformedInput)
	}
	return nil
}

func (c *Converter) galToEq(geo []float64) []float64 {
	return withTail(c.astro.Transform(geo[:2], output.GAL2EQ), geo)
}

// eqToGal folds a negative galactic longitude back into [0, 360). The
// reverse direction has no such compensation.
func (c *Converter) eqToGal(geo []float64) []float64 {
	out := c.astro.Transform(geo[:2], output.EQ2GAL)
	if out[0] < 0 {
		c.logger.Debug("EQ2GAL transformation returned negative longitude", "lon", out[0])
		out[0] += 360
	}
	return withTail(out, geo)
}

func withTail(lonLat, geo []float64) []float64 {
	if len(geo) <= 2 {
		return lonLat[:2]
	}
	res := make([]float64, len(geo))
	res[0], res[1] = lonLat[0], lonLat[1]
	copy(res[2:], geo[2:])
	return res
}

func isAlias(a, b domain.FrameID) bool {
	for _, p := range aliasPairs {
		if (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a) {
			return true
		}
	}
	return false
}

// Canonical resolves a legacy identifier to the frame it aliases.
func Canonical(id domain.FrameID) domain.FrameID {
	for _, p := range aliasPairs {
		if p[1] == id {
			return p[0]
		}
	}
	return id
}
