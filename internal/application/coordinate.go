package application

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jobrunner/sphaera/internal/crs"
	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/input"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

// Operation names reported to the metrics collector.
const (
	OpConvert        = "convert"
	OpToCartesian    = "cartesian"
	OpFromCartesian  = "geographic"
	OpLocalTransform = "transform"
	OpFormat         = "format"
	OpParse          = "parse"
	OpQueryBound     = "query_bound"
)

// CoordinateService implements input.CoordinateService on top of the frame
// registry.
type CoordinateService struct {
	frames  *FrameRegistry
	metrics output.MetricsCollector
	logger  *slog.Logger
}

// NewCoordinateService creates a new coordinate service.
func NewCoordinateService(frames *FrameRegistry, metrics output.MetricsCollector, logger *slog.Logger) *CoordinateService {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return &CoordinateService{
		frames:  frames,
		metrics: metrics,
		logger:  logger,
	}
}

// Frames describes every frame the factory can build.
func (s *CoordinateService) Frames() []input.FrameInfo {
	ids := s.frames.Factory().Frames()
	infos := make([]input.FrameInfo, 0, len(ids))
	for _, id := range ids {
		cs, err := s.frames.Get(input.FrameSelector{Frame: id})
		if err != nil {
			s.logger.Warn("failed to build frame", "frame", id, "error", err)
			continue
		}
		infos = append(infos, describe(cs))
	}
	return infos
}

// Frame describes the frame named by sel.
func (s *CoordinateService) Frame(sel input.FrameSelector) (*input.FrameInfo, error) {
	cs, err := s.frames.Get(sel)
	if err != nil {
		return nil, err
	}
	info := describe(cs)
	return &info, nil
}

// Convert re-expresses pos in the frame to.
func (s *CoordinateService) Convert(pos domain.Position, to domain.FrameID) (result domain.Position, err error) {
	defer s.observe(OpConvert, to, time.Now(), &err)

	if !domain.IsKnownFrame(pos.Frame) {
		return domain.Position{}, &domain.FrameError{Frame: pos.Frame}
	}
	if !domain.IsKnownFrame(to) {
		return domain.Position{}, &domain.FrameError{Frame: to}
	}

	geo, err := s.frames.Factory().Converter().Convert(pos.Geo(), pos.Frame, to)
	if err != nil {
		return domain.Position{}, err
	}
	return domain.PositionFromGeo(geo, to)
}

// ToCartesian maps geo to world 3D in the selected frame.
func (s *CoordinateService) ToCartesian(sel input.FrameSelector, geo []float64) (xyz []float64, err error) {
	defer s.observe(OpToCartesian, sel.Frame, time.Now(), &err)

	if len(geo) < 2 {
		return nil, malformed("geographic", geo)
	}
	cs, err := s.frames.Get(sel)
	if err != nil {
		return nil, err
	}
	return cs.Get3DFromWorld(geo, nil), nil
}

// FromCartesian maps world 3D back to geographic coordinates.
func (s *CoordinateService) FromCartesian(sel input.FrameSelector, xyz []float64) (geo []float64, err error) {
	defer s.observe(OpFromCartesian, sel.Frame, time.Now(), &err)

	if len(xyz) < 3 {
		return nil, malformed("cartesian", xyz)
	}
	cs, err := s.frames.Get(sel)
	if err != nil {
		return nil, err
	}
	geo = cs.WorldFrom3D(xyz, nil)
	if geo == nil {
		return nil, fmt.Errorf("position %v is outside the %s projection domain: %w",
			xyz, sel.Projection, domain.ErrInvalidArgument)
	}
	return geo, nil
}

// LocalTransform returns the local frame matrix at geo.
func (s *CoordinateService) LocalTransform(sel input.FrameSelector, geo []float64, lhv bool) (m domain.Mat4, err error) {
	defer s.observe(OpLocalTransform, sel.Frame, time.Now(), &err)

	if len(geo) < 2 {
		return m, malformed("geographic", geo)
	}
	cs, err := s.frames.Get(sel)
	if err != nil {
		return m, err
	}
	if lhv {
		cs.LHVTransform(geo, &m)
	} else {
		cs.LocalTransform(geo, &m)
	}
	return m, nil
}

// Format renders geo with the conventions of the selected frame.
func (s *CoordinateService) Format(sel input.FrameSelector, geo []float64) (f *input.Formatted, err error) {
	defer s.observe(OpFormat, sel.Frame, time.Now(), &err)

	if len(geo) < 2 {
		return nil, malformed("geographic", geo)
	}
	cs, err := s.frames.Get(sel)
	if err != nil {
		return nil, err
	}
	return &input.Formatted{
		Labels:      [2]string{cs.LongitudeLabel(), cs.LatitudeLabel()},
		Coordinates: cs.FormatCoordinates(geo),
		Sexagesimal: cs.SexagesimalFromDeg(geo),
	}, nil
}

// ParseSexagesimal reads an HMS/DMS pair into decimal degrees.
func (s *CoordinateService) ParseSexagesimal(sel input.FrameSelector, values [2]string) (geo []float64, err error) {
	defer s.observe(OpParse, sel.Frame, time.Now(), &err)

	cs, err := s.frames.Get(sel)
	if err != nil {
		return nil, err
	}
	return cs.DecimalDegFromSexagesimal(values)
}

func (s *CoordinateService) observe(op string, frame domain.FrameID, start time.Time, err *error) {
	success := *err == nil
	s.metrics.IncOperationCount(op, string(frame), success)
	s.metrics.ObserveOperationDuration(op, time.Since(start))
	if !success {
		s.logger.Debug("operation failed", "operation", op, "frame", frame, "error", *err)
	}
}

func describe(cs crs.CRS) input.FrameInfo {
	g := cs.Geoide()
	info := input.FrameInfo{
		ID:             cs.GeoideName(),
		Name:           cs.Name(),
		Description:    cs.Description(),
		Type:           cs.Type(),
		Radius:         g.Radius(),
		RealRadius:     g.RealPlanetRadius(),
		HeightScale:    g.HeightScale(),
		Bound:          cs.GeoBound(),
		LongitudeLabel: cs.LongitudeLabel(),
		LatitudeLabel:  cs.LatitudeLabel(),
		WKT:            crs.WKT(cs),
	}
	if p, ok := cs.(*crs.Projected); ok {
		info.Projection = p.Projection().Name()
	}
	return info
}

func malformed(kind string, v []float64) error {
	return fmt.Errorf("%s vector has %d components: %w", kind, len(v), domain.ErrMalformedInput)
}
