package application

import (
	"github.com/paulmach/orb"
)

// vertexList flattens the vertices of g in traversal order.
func vertexList(g orb.Geometry) [][]float64 {
	var out [][]float64
	walk(g, func(p *orb.Point) {
		out = append(out, []float64{p[0], p[1]})
	})
	return out
}

// rebuild returns a copy of g whose vertices are replaced, in traversal
// order, by vertices.
func rebuild(g orb.Geometry, vertices [][]float64) orb.Geometry {
	if g == nil {
		return nil
	}
	i := 0
	return walk(orb.Clone(g), func(p *orb.Point) {
		if i < len(vertices) {
			p[0], p[1] = vertices[i][0], vertices[i][1]
		}
		i++
	})
}

// walk visits every vertex of g. Slice geometries are modified in place; the
// returned geometry carries changes to bare points.
func walk(g orb.Geometry, fn func(p *orb.Point)) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		fn(&g)
		return g
	case orb.MultiPoint:
		for i := range g {
			fn(&g[i])
		}
		return g
	case orb.LineString:
		for i := range g {
			fn(&g[i])
		}
		return g
	case orb.Ring:
		for i := range g {
			fn(&g[i])
		}
		return g
	case orb.MultiLineString:
		for _, ls := range g {
			walk(ls, fn)
		}
		return g
	case orb.Polygon:
		for _, r := range g {
			walk(r, fn)
		}
		return g
	case orb.MultiPolygon:
		for _, p := range g {
			walk(p, fn)
		}
		return g
	case orb.Collection:
		for i := range g {
			g[i] = walk(g[i], fn)
		}
		return g
	}
	return g
}
