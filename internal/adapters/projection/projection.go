// Package projection provides the 2D map projections that flatten a frame
// onto a plane. Projected coordinates are in radians of the unit sphere; the
// third component carries the height unchanged.
package projection

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

// Projection names.
const (
	NamePlate     = "Plate"
	NameMercator  = "Mercator"
	NameMollweide = "Mollweide"
	NameAzimuth   = "Azimuth"
	NameAitoff    = "Aitoff"
)

const (
	degToRad = math.Pi / 180
	radToDeg = 180 / math.Pi
)

// Factory creates projections by name. It implements output.ProjectionFactory.
type Factory struct{}

// NewFactory creates a projection factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create returns the named projection. "Plate Carrée" is accepted for Plate.
func (f *Factory) Create(name string, opts output.ProjectionOptions) (output.Projection, error) {
	switch strings.TrimSpace(name) {
	case NamePlate, "Plate Carrée", "PlateCarree":
		return NewPlate(), nil
	case NameMercator:
		return NewMercator(opts.Lambda0), nil
	case NameMollweide:
		return NewMollweide(), nil
	case NameAzimuth:
		return NewAzimuth(opts.Pole), nil
	case NameAitoff:
		return NewAitoff(), nil
	}
	return nil, fmt.Errorf("projection %q is not implemented: %w", name, domain.ErrUnsupportedProjection)
}

// Names lists the supported projection names.
func (f *Factory) Names() []string {
	names := []string{NamePlate, NameMercator, NameMollweide, NameAzimuth, NameAitoff}
	sort.Strings(names)
	return names
}

func vec3(dest []float64) []float64 {
	if cap(dest) >= 3 {
		return dest[:3]
	}
	return make([]float64, 3)
}

func heightOf(geo []float64) float64 {
	if len(geo) > 2 {
		return geo[2]
	}
	return 0
}

func zero(dest []float64) []float64 {
	dest = vec3(dest)
	dest[0], dest[1], dest[2] = 0, 0, 0
	return dest
}
