package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// GeoBound is an axis-aligned longitude/latitude rectangle in degrees.
//
// West <= East and South <= North must hold before the bound is used in an
// intersection test. Rectangles crossing the antimeridian are not supported.
type GeoBound struct {
	West  float64
	South float64
	East  float64
	North float64
}

// NewGeoBound creates a bound from its west, south, east and north edges.
func NewGeoBound(west, south, east, north float64) *GeoBound {
	return &GeoBound{West: west, South: south, East: east, North: north}
}

// FrameConverter re-expresses positions from a foreign frame into its own.
type FrameConverter interface {
	GeoideName() FrameID
	Convert(geo []float64, from, to FrameID) ([]float64, error)
}

// Center returns the midpoint of the bound as [lon, lat, 0].
func (b *GeoBound) Center() []float64 {
	return []float64{(b.West + b.East) * 0.5, (b.South + b.North) * 0.5, 0.0}
}

// IsValid checks that the edges are ordered.
func (b *GeoBound) IsValid() bool {
	return b.West <= b.East && b.South <= b.North
}

// Width returns the longitude extent in degrees.
func (b *GeoBound) Width() float64 {
	return b.East - b.West
}

// Height returns the latitude extent in degrees.
func (b *GeoBound) Height() float64 {
	return b.North - b.South
}

// ComputeFromCoordinates recomputes the bound as the min/max over the given
// vertices. The first vertex seeds the bound. An empty slice leaves the bound
// untouched.
func (b *GeoBound) ComputeFromCoordinates(coordinates [][]float64) {
	if len(coordinates) == 0 {
		return
	}

	b.West = coordinates[0][0]
	b.East = coordinates[0][0]
	b.South = coordinates[0][1]
	b.North = coordinates[0][1]

	for _, c := range coordinates[1:] {
		b.extend(c[0], c[1])
	}
}

// ComputeFromCoordinatesInCrsTo recomputes the bound after re-expressing every
// vertex from sourceFrame into the frame of target. The vertices actually used
// are returned; when no conversion is needed that is the input slice itself.
func (b *GeoBound) ComputeFromCoordinatesInCrsTo(coordinates [][]float64, sourceFrame FrameID, target FrameConverter) ([][]float64, error) {
	targetFrame := target.GeoideName()
	if sourceFrame == targetFrame {
		b.ComputeFromCoordinates(coordinates)
		return coordinates, nil
	}

	converted := make([][]float64, len(coordinates))
	for i, c := range coordinates {
		if len(c) < 2 {
			return nil, fmt.Errorf("vertex %d has %d components: %w", i, len(c), ErrMalformedInput)
		}
		xy, err := target.Convert(c[:2], sourceFrame, targetFrame)
		if err != nil {
			return nil, err
		}
		v := make([]float64, len(c))
		copy(v, c)
		v[0], v[1] = xy[0], xy[1]
		converted[i] = v
	}

	b.ComputeFromCoordinates(converted)
	return converted, nil
}

// IsPointInside checks if [lon, lat] lies inside the closed rectangle.
func (b *GeoBound) IsPointInside(point []float64) bool {
	if len(point) < 2 {
		return false
	}
	return point[0] >= b.West && point[0] <= b.East && point[1] >= b.South && point[1] <= b.North
}

// Intersects returns false when the rectangles are disjoint on either axis.
// Rectangles that only share an edge do not intersect.
func (b *GeoBound) Intersects(other *GeoBound) bool {
	if b.West >= other.East || b.East <= other.West {
		return false
	}
	return !(b.South >= other.North || b.North <= other.South)
}

// IntersectsGeometry tests the bound against every part of a line or polygon
// geometry. Polygon holes are treated like outer rings. Other geometry types
// never intersect.
func (b *GeoBound) IntersectsGeometry(geometry orb.Geometry) bool {
	switch g := geometry.(type) {
	case orb.LineString:
		return b.intersectsPoints(g)
	case orb.MultiLineString:
		for _, ls := range g {
			if b.intersectsPoints(ls) {
				return true
			}
		}
	case orb.Polygon:
		return b.intersectsPolygon(g)
	case orb.MultiPolygon:
		for _, p := range g {
			if b.intersectsPolygon(p) {
				return true
			}
		}
	}
	return false
}

// BoundOf returns the bound of a sequence of orb points, or nil when empty.
func BoundOf(points []orb.Point) *GeoBound {
	if len(points) == 0 {
		return nil
	}
	bound := &GeoBound{West: points[0][0], East: points[0][0], South: points[0][1], North: points[0][1]}
	for _, p := range points[1:] {
		bound.extend(p[0], p[1])
	}
	return bound
}

// ToOrb converts the bound into an orb.Bound.
func (b *GeoBound) ToOrb() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// String returns a string representation of the bound.
func (b *GeoBound) String() string {
	return fmt.Sprintf("BOUND(%g %g, %g %g)", b.West, b.South, b.East, b.North)
}

func (b *GeoBound) intersectsPolygon(p orb.Polygon) bool {
	for _, ring := range p {
		if b.intersectsPoints(ring) {
			return true
		}
	}
	return false
}

func (b *GeoBound) intersectsPoints(points []orb.Point) bool {
	part := BoundOf(points)
	if part == nil {
		return false
	}
	return b.Intersects(part)
}

func (b *GeoBound) extend(x, y float64) {
	if x < b.West {
		b.West = x
	}
	if x > b.East {
		b.East = x
	}
	if y < b.South {
		b.South = y
	}
	if y > b.North {
		b.North = y
	}
}
