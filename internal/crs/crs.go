// Package crs implements the coordinate reference systems of the globe: the
// spherical transforms between geographic positions and rendering space,
// local tangent frames, the frame conversion table and flat projections.
//
// Every operation is a pure function of its inputs and the immutable CRS
// configuration. Functions returning a vector or matrix accept an optional
// dest; when dest has room for the result it is filled and returned,
// otherwise a new value is allocated.
package crs

import (
	"log/slog"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

// CRS is a coordinate reference system. The set of implementations is closed:
// only the variants of this package satisfy it.
type CRS interface {
	variant
	domain.FrameConverter

	Geoide() domain.Geoide
	Type() domain.Domain
	GeoBound() domain.GeoBound
	IsFlat() bool
	IsProjected() bool

	// FromGeoTo3D maps [lon, lat, (height)] in degrees/meters onto the sphere.
	FromGeoTo3D(geo, dest []float64) []float64
	// From3DToGeo is the inverse of FromGeoTo3D.
	From3DToGeo(xyz, dest []float64) []float64
	// Get3DFromWorld normalizes geo for the frame, then maps it to 3D.
	Get3DFromWorld(geo, dest []float64) []float64
	// WorldFrom3D maps xyz back to a normalized geographic position.
	WorldFrom3D(xyz, dest []float64) []float64
	// Get3DFromWorldInCrs converts geo from source into this frame first.
	Get3DFromWorldInCrs(geo []float64, source domain.FrameID, dest []float64) ([]float64, error)

	LocalTransform(geo []float64, dest *domain.Mat4) *domain.Mat4
	LHVTransform(geo []float64, dest *domain.Mat4) *domain.Mat4
	VerticalAt3D(pos, dest []float64) []float64
	Elevation(src output.ElevationSource, geo []float64) float64

	SexagesimalFromDeg(geo []float64) [2]string
	DecimalDegFromSexagesimal(sexagesimal [2]string) ([]float64, error)
}

// variant holds the members every frame must define itself.
type variant interface {
	Name() string
	Description() string
	LongitudeLabel() string
	LatitudeLabel() string
	FormatCoordinates(geo []float64) [2]string

	setupPosBeforeTrans(pos []float64)
	setupPosAfterTrans(pos []float64)
	core() *base
}

// config is the construction record of a frame.
type config struct {
	geoideName       domain.FrameID
	radius           float64
	realPlanetRadius float64
	kind             domain.Domain
	bound            *domain.GeoBound
}

// base is the spherical core shared by all frames. Methods needing the
// frame-specific hooks reach them through v.
type base struct {
	v      variant
	name   domain.FrameID
	geoide domain.Geoide
	kind   domain.Domain
	bound  domain.GeoBound
	flat   bool
	conv   *Converter
	logger *slog.Logger
}

func newBase(cfg config, v variant, conv *Converter, logger *slog.Logger) (*base, error) {
	if cfg.geoideName == "" {
		return nil, &domain.ParameterError{Field: "geoideName", Err: domain.ErrMissingParameter}
	}
	if cfg.kind == domain.DomainUnknown {
		return nil, &domain.ParameterError{Field: "type", Err: domain.ErrMissingParameter}
	}
	if cfg.bound == nil {
		return nil, &domain.ParameterError{Field: "geoBound", Err: domain.ErrMissingParameter}
	}

	geoide, err := domain.NewGeoide(cfg.radius, cfg.realPlanetRadius)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	if conv == nil {
		conv = NewConverter(nil, logger)
	}

	return &base{
		v:      v,
		name:   cfg.geoideName,
		geoide: geoide,
		kind:   cfg.kind,
		bound:  *cfg.bound,
		conv:   conv,
		logger: logger,
	}, nil
}

func (b *base) core() *base {
	return b
}

// GeoideName returns the frame identifier.
func (b *base) GeoideName() domain.FrameID {
	return b.name
}

// Geoide returns the datum.
func (b *base) Geoide() domain.Geoide {
	return b.geoide
}

// Type returns the domain of the frame.
func (b *base) Type() domain.Domain {
	return b.kind
}

// GeoBound returns a copy of the frame bound.
func (b *base) GeoBound() domain.GeoBound {
	return b.bound
}

// IsFlat reports whether the frame is a 2D map.
func (b *base) IsFlat() bool {
	return b.flat
}

// IsProjected reports whether the frame wraps a projection.
func (b *base) IsProjected() bool {
	return false
}

// Convert re-expresses geo between two frames using the conversion table.
func (b *base) Convert(geo []float64, from, to domain.FrameID) ([]float64, error) {
	return b.conv.Convert(geo, from, to)
}

func (b *base) FromGeoTo3D(geo, dest []float64) []float64 {
	dest = vec3(dest)
	if len(geo) < 2 {
		b.logger.Debug("geographic position has fewer than 2 components",
			"frame", b.name, "components", len(geo))
		dest[0], dest[1], dest[2] = 0, 0, 0
		return dest
	}

	lon := toRadians(geo[0])
	lat := toRadians(geo[1])
	cosLat := math.Cos(lat)

	height := 0.0
	if len(geo) > 2 {
		height = b.geoide.HeightScale() * geo[2]
	}
	radius := b.geoide.Radius() + height

	dest[0] = radius * math.Cos(lon) * cosLat
	dest[1] = radius * math.Sin(lon) * cosLat
	dest[2] = radius * math.Sin(lat)
	return dest
}

func (b *base) From3DToGeo(xyz, dest []float64) []float64 {
	dest = vec3(dest)
	if len(xyz) < 3 {
		b.logger.Debug("3D position has fewer than 3 components",
			"frame", b.name, "components", len(xyz))
		dest[0], dest[1], dest[2] = 0, 0, 0
		return dest
	}

	r := r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}.Norm()
	if r == 0 {
		dest[0], dest[1] = 0, 0
		dest[2] = -b.geoide.RealPlanetRadius() * b.geoide.Radius()
		return dest
	}

	dest[0] = toDegrees(math.Atan2(xyz[1]/r, xyz[0]/r))
	dest[1] = toDegrees(math.Asin(xyz[2] / r))
	dest[2] = b.geoide.RealPlanetRadius() * (r - b.geoide.Radius())
	return dest
}

func (b *base) Get3DFromWorld(geo, dest []float64) []float64 {
	var buf [3]float64
	pos := copyPos(buf[:], geo)
	if len(pos) >= 2 {
		b.v.setupPosBeforeTrans(pos)
	}
	return b.FromGeoTo3D(pos, dest)
}

func (b *base) WorldFrom3D(xyz, dest []float64) []float64 {
	dest = b.From3DToGeo(xyz, dest)
	b.v.setupPosAfterTrans(dest)
	return dest
}

func (b *base) Get3DFromWorldInCrs(geo []float64, source domain.FrameID, dest []float64) ([]float64, error) {
	inFrame, err := b.conv.Convert(geo, source, b.name)
	if err != nil {
		return nil, err
	}
	return b.Get3DFromWorld(inFrame, dest), nil
}

// LocalTransform returns the East-North-Up basis at geo with no translation.
func (b *base) LocalTransform(geo []float64, dest *domain.Mat4) *domain.Mat4 {
	if dest == nil {
		dest = &domain.Mat4{}
	}
	if len(geo) < 2 {
		dest.SetIdentity()
		return dest
	}
	setBasis(dest, geo)
	return dest
}

// LHVTransform returns the East-North-Up basis at geo translated to its 3D
// position.
func (b *base) LHVTransform(geo []float64, dest *domain.Mat4) *domain.Mat4 {
	dest = b.LocalTransform(geo, dest)
	if len(geo) < 2 {
		return dest
	}
	var pt [3]float64
	b.Get3DFromWorld(geo, pt[:])
	dest[12], dest[13], dest[14] = pt[0], pt[1], pt[2]
	return dest
}

// VerticalAt3D returns the unit vertical at a 3D position.
func (b *base) VerticalAt3D(pos, dest []float64) []float64 {
	dest = vec3(dest)
	if b.flat || len(pos) < 3 {
		dest[0], dest[1], dest[2] = 0, 0, 1
		return dest
	}
	v := r3.Vector{X: pos[0], Y: pos[1], Z: pos[2]}
	if v.Norm() == 0 {
		dest[0], dest[1], dest[2] = 0, 0, 1
		return dest
	}
	v = v.Normalize()
	dest[0], dest[1], dest[2] = v.X, v.Y, v.Z
	return dest
}

// Elevation returns the terrain height under geo, or 0 without a source.
func (b *base) Elevation(src output.ElevationSource, geo []float64) float64 {
	if src == nil || len(geo) < 2 {
		return 0
	}
	return src.Elevation(geo[0], geo[1])
}

// SexagesimalFromDeg formats [ra, dec] in degrees as HMS/DMS strings.
func (b *base) SexagesimalFromDeg(geo []float64) [2]string {
	if len(geo) < 2 {
		return [2]string{}
	}
	return SexagesimalFromDeg(geo[0], geo[1])
}

// DecimalDegFromSexagesimal parses HMS/DMS strings into [ra, dec] degrees.
func (b *base) DecimalDegFromSexagesimal(sexagesimal [2]string) ([]float64, error) {
	lon, lat, err := DecimalDegFromSexagesimal(sexagesimal[0], sexagesimal[1])
	if err != nil {
		return nil, err
	}
	return []float64{lon, lat}, nil
}

// setBasis writes the ENU basis at geo into m and clears its translation.
func setBasis(m *domain.Mat4, geo []float64) {
	lon := toRadians(geo[0])
	lat := toRadians(geo[1])

	up := r3.Vector{
		X: math.Cos(lon) * math.Cos(lat),
		Y: math.Sin(lon) * math.Cos(lat),
		Z: math.Sin(lat),
	}.Normalize()
	east := r3.Vector{X: -math.Sin(lon), Y: math.Cos(lon), Z: 0}
	north := up.Cross(east)

	*m = domain.Mat4{
		east.X, east.Y, east.Z, 0,
		north.X, north.Y, north.Z, 0,
		up.X, up.Y, up.Z, 0,
		0, 0, 0, 1,
	}
}

func vec3(dest []float64) []float64 {
	if cap(dest) >= 3 {
		return dest[:3]
	}
	return make([]float64, 3)
}

// copyPos copies geo into buf when it fits so hooks never touch the input.
func copyPos(buf, geo []float64) []float64 {
	if len(geo) <= len(buf) {
		pos := buf[:len(geo)]
		copy(pos, geo)
		return pos
	}
	return append([]float64(nil), geo...)
}

func toRadians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

func toDegrees(rad float64) float64 {
	return (s1.Angle(rad) * s1.Radian).Degrees()
}
