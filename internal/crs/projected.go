package crs

import (
	"fmt"

	"github.com/jobrunner/sphaera/internal/domain"
	"github.com/jobrunner/sphaera/internal/ports/output"
)

// Projected is a frame flattened onto a 2D map by a projection. Positions are
// still reported in the geographic frame of the wrapped CRS.
type Projected struct {
	*base
	cs         CRS
	projection output.Projection
}

// NewProjected wraps cs with projection. The projected frame keeps the geoide,
// type and identifier of cs and takes its bound from the projection; cs itself
// is left untouched.
func NewProjected(cs CRS, projection output.Projection) (*Projected, error) {
	if cs == nil {
		return nil, &domain.ParameterError{Field: "crs", Err: domain.ErrMissingParameter}
	}
	if projection == nil {
		return nil, &domain.ParameterError{Field: "projection", Err: domain.ErrMissingParameter}
	}

	p := &Projected{cs: cs, projection: projection}
	inner := cs.core()
	bound := projection.GeoBound()
	if !bound.IsValid() {
		return nil, &domain.ParameterError{
			Field:   "projection",
			Message: fmt.Sprintf("projection %s has invalid bound %s", projection.Name(), bound.String()),
			Err:     domain.ErrInvalidArgument,
		}
	}

	p.base = &base{
		v:      p,
		name:   inner.name,
		geoide: inner.geoide,
		kind:   inner.kind,
		bound:  bound,
		flat:   true,
		conv:   inner.conv,
		logger: inner.logger,
	}
	return p, nil
}

// Base returns the wrapped CRS.
func (p *Projected) Base() CRS {
	return p.cs
}

// Projection returns the projection in use.
func (p *Projected) Projection() output.Projection {
	return p.projection
}

// IsProjected returns true.
func (p *Projected) IsProjected() bool {
	return true
}

// Name returns the name of the wrapped CRS.
func (p *Projected) Name() string { return p.cs.Name() }

// Description returns the description of the wrapped CRS.
func (p *Projected) Description() string { return p.cs.Description() }

// LongitudeLabel returns the longitude label of the wrapped CRS.
func (p *Projected) LongitudeLabel() string { return p.cs.LongitudeLabel() }

// LatitudeLabel returns the latitude label of the wrapped CRS.
func (p *Projected) LatitudeLabel() string { return p.cs.LatitudeLabel() }

// FormatCoordinates delegates to the wrapped CRS.
func (p *Projected) FormatCoordinates(geo []float64) [2]string {
	return p.cs.FormatCoordinates(geo)
}

// Get3DFromWorld normalizes geo like the wrapped CRS does, projects it and
// scales the height into rendering units.
func (p *Projected) Get3DFromWorld(geo, dest []float64) []float64 {
	var buf [3]float64
	pos := copyPos(buf[:], geo)
	if len(pos) < 2 {
		p.logger.Debug("geographic position has fewer than 2 components",
			"frame", p.name, "components", len(pos))
		dest = vec3(dest)
		dest[0], dest[1], dest[2] = 0, 0, 0
		return dest
	}
	p.cs.setupPosBeforeTrans(pos)

	dest = p.projection.Project(pos, vec3(dest))
	dest[2] *= p.geoide.HeightScale()
	return dest
}

// WorldFrom3D unprojects xyz and returns the geographic position with its
// height in meters. It returns nil when xyz is outside the projection domain.
func (p *Projected) WorldFrom3D(xyz, dest []float64) []float64 {
	if len(xyz) < 3 {
		return nil
	}
	geo, ok := p.projection.UnProject(xyz, vec3(dest))
	if !ok {
		return nil
	}
	p.cs.setupPosAfterTrans(geo)
	geo[2] /= p.geoide.HeightScale()
	return geo
}

// Get3DFromWorldInCrs converts geo from source into this frame and projects it.
func (p *Projected) Get3DFromWorldInCrs(geo []float64, source domain.FrameID, dest []float64) ([]float64, error) {
	inFrame, err := p.conv.Convert(geo, source, p.name)
	if err != nil {
		return nil, err
	}
	return p.Get3DFromWorld(inFrame, dest), nil
}

// LocalTransform returns the identity: a flat map has a single tangent frame.
func (p *Projected) LocalTransform(_ []float64, dest *domain.Mat4) *domain.Mat4 {
	if dest == nil {
		dest = &domain.Mat4{}
	}
	dest.SetIdentity()
	return dest
}

// LHVTransform returns the identity translated to the projected position.
func (p *Projected) LHVTransform(geo []float64, dest *domain.Mat4) *domain.Mat4 {
	dest = p.LocalTransform(geo, dest)
	if len(geo) < 2 {
		return dest
	}
	var pt [3]float64
	p.projection.Project(geo, pt[:])
	dest[12] = pt[0]
	dest[13] = pt[1]
	dest[14] = pt[2] * p.geoide.HeightScale()
	return dest
}

func (p *Projected) setupPosBeforeTrans(pos []float64) {
	p.cs.setupPosBeforeTrans(pos)
}

func (p *Projected) setupPosAfterTrans(pos []float64) {
	p.cs.setupPosAfterTrans(pos)
}
