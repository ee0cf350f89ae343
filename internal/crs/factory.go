package crs

import (
	"fmt"
	"log/slog"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

// Options selects the frame to construct.
type Options struct {
	GeoideName        domain.FrameID           // Required
	ProjectionName    string                   // Optional; wraps the frame in a Projected
	ProjectionOptions output.ProjectionOptions // Projection-specific parameters
}

// Factory constructs CRS instances by frame identifier.
type Factory struct {
	conv        *Converter
	projections output.ProjectionFactory
	logger      *slog.Logger
}

// NewFactory creates a factory. astro is needed for the Galactic frame and
// the sky conversions; projections is needed for projected frames. Either may
// be nil.
func NewFactory(astro output.AstroTransformer, projections output.ProjectionFactory, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		conv:        NewConverter(astro, logger),
		projections: projections,
		logger:      logger,
	}
}

// Converter returns the conversion table shared by every CRS of the factory.
func (f *Factory) Converter() *Converter {
	return f.conv
}

// Create builds the frame named by opts.GeoideName, optionally projected.
func (f *Factory) Create(opts Options) (CRS, error) {
	if opts.GeoideName == "" {
		return nil, &domain.ParameterError{
			Field:   "geoideName",
			Message: "geoideName not defined",
			Err:     domain.ErrMissingParameter,
		}
	}

	cs, err := f.createFrame(opts.GeoideName)
	if err != nil {
		return nil, err
	}

	if opts.ProjectionName == "" {
		return cs, nil
	}

	if f.projections == nil {
		return nil, fmt.Errorf("projection %q for frame %s: %w",
			opts.ProjectionName, opts.GeoideName, domain.ErrUnsupportedProjection)
	}
	projection, err := f.projections.Create(opts.ProjectionName, opts.ProjectionOptions)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("creating projected frame", "frame", cs.GeoideName(), "projection", projection.Name())
	projected, err := NewProjected(cs, projection)
	if err != nil {
		return nil, err
	}
	return projected, nil
}

func (f *Factory) createFrame(name domain.FrameID) (CRS, error) {
	var (
		cs  CRS
		err error
	)

	switch Canonical(name) {
	case domain.FrameEquatorial:
		var e *Equatorial
		e, err = NewEquatorial(f.conv, f.logger)
		cs = e
	case domain.FrameGalactic:
		var g *Galactic
		g, err = NewGalactic(f.conv, f.logger)
		cs = g
	case domain.FrameHorizontalLocal:
		var h *HorizontalLocal
		h, err = NewHorizontalLocal(f.conv, f.logger)
		cs = h
	case domain.FrameWGS84, domain.FrameMars2000, domain.FrameMoon2000, domain.FrameSun:
		var p *Planetary
		p, err = f.createPlanetary(Canonical(name))
		cs = p
	default:
		return nil, &domain.FrameError{Frame: name}
	}

	if err != nil {
		return nil, err
	}
	return cs, nil
}

func (f *Factory) createPlanetary(name domain.FrameID) (*Planetary, error) {
	switch name {
	case domain.FrameMars2000:
		return NewMars2000(f.conv, f.logger)
	case domain.FrameMoon2000:
		return NewMoon2000(f.conv, f.logger)
	case domain.FrameSun:
		return NewSun(f.conv, f.logger)
	default:
		return NewWGS84(f.conv, f.logger)
	}
}

// Frames lists the frames the factory can build without aliases.
func (f *Factory) Frames() []domain.FrameID {
	frames := make([]domain.FrameID, 0, len(domain.KnownFrames))
	for _, id := range domain.KnownFrames {
		if Canonical(id) != id {
			continue
		}
		if id == domain.FrameGalactic && f.conv.astro == nil {
			continue
		}
		frames = append(frames, id)
	}
	return frames
}
