package output

import "github.com/jobrunner/sphaera/internal/domain"

// Projection defines the secondary port for 2D map projections.
//
// Project maps [lon, lat, (height)] in degrees to [x, y, height]; UnProject is
// its inverse and reports false when xyz lies outside the projection domain.
// Both write into dest when it has room for three components.
type Projection interface {
	Name() string
	Project(geo []float64, dest []float64) []float64
	UnProject(xyz []float64, dest []float64) ([]float64, bool)
	GeoBound() domain.GeoBound
}

// ProjectionOptions carries projection-specific parameters.
type ProjectionOptions struct {
	Lambda0 float64 // Central meridian in degrees (Mercator)
	Pole    string  // "north" or "south" (Azimuth)
}

// ProjectionFactory creates projections by name.
type ProjectionFactory interface {
	// Create returns the named projection or an error wrapping
	// domain.ErrUnsupportedProjection.
	Create(name string, opts ProjectionOptions) (Projection, error)

	// Names lists the supported projection names.
	Names() []string
}
