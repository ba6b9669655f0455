// Package geometry holds the immutable polygon model used by the distance
// and containment indexes: points with a cached latitude scale, closed
// rings, polygons with holes and multipolygon collections.
package geometry

import (
	"math"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
)

type Geometry struct {
	Polygons []Polygon
	BBox     BBox
}

type Stats struct {
	Polygons int
	Rings    int
	Points   int
}

// New builds a Geometry from nested coordinate arrays: polygons, rings,
// points as [lon, lat]. Rings that are not closed get their first point
// appended.
func New(coords [][][][2]float64) (*Geometry, error) {
	polygons := make([]Polygon, 0, len(coords))
	for i, polygon := range coords {
		if len(polygon) == 0 {
			return nil, fatal.Inputf("geometry.New", "polygon %d has no rings", i)
		}
		rings := make([]Ring, 0, len(polygon))
		for j, ring := range polygon {
			if len(ring) < 2 {
				return nil, fatal.Inputf("geometry.New", "polygon %d ring %d has %d points, need at least 2", i, j, len(ring))
			}
			points := make([]Point, 0, len(ring)+1)
			for k, c := range ring {
				if !isFinite(c[0]) || !isFinite(c[1]) {
					return nil, fatal.Inputf("geometry.New", "polygon %d ring %d point %d is not finite: %v", i, j, k, c)
				}
				points = append(points, NewPoint(c[0], c[1]))
			}
			if !points[0].Equals(points[len(points)-1]) {
				points = append(points, points[0])
			}
			rings = append(rings, newRing(points))
		}
		polygons = append(polygons, newPolygon(rings))
	}
	return newGeometry(polygons), nil
}

func newGeometry(polygons []Polygon) *Geometry {
	bbox := NewBBox()
	for i := range polygons {
		bbox.AddBBox(polygons[i].BBox)
	}
	return &Geometry{Polygons: polygons, BBox: bbox}
}

// Merge concatenates the polygons of several geometries.
func Merge(geometries ...*Geometry) *Geometry {
	var polygons []Polygon
	for _, g := range geometries {
		polygons = append(polygons, g.Polygons...)
	}
	return newGeometry(polygons)
}

func (g *Geometry) IsEmpty() bool {
	return len(g.Polygons) == 0
}

func (g *Geometry) ContainsPoint(p Point) bool {
	if !g.BBox.ContainsXY(p.X, p.Y) {
		return false
	}
	for i := range g.Polygons {
		if g.Polygons[i].ContainsPoint(p) {
			return true
		}
	}
	return false
}

// Clip returns a reduced copy of g for use on the kept side of c. Runs of
// outside vertices collapse to their two end points, so containment of any
// point on the kept side is unchanged. The result is not an exact
// intersection with the half plane.
func (g *Geometry) Clip(c Cut) *Geometry {
	polygons := make([]Polygon, 0, len(g.Polygons))
	for i := range g.Polygons {
		if p, ok := g.Polygons[i].clip(c); ok {
			polygons = append(polygons, p)
		}
	}
	return newGeometry(polygons)
}

// Segments returns one segment per edge of every ring.
func (g *Geometry) Segments() []Segment {
	var segments []Segment
	for i := range g.Polygons {
		for j := range g.Polygons[i].Rings {
			segments = g.Polygons[i].Rings[j].segments(segments)
		}
	}
	return segments
}

func (g *Geometry) Stats() Stats {
	var s Stats
	s.Polygons = len(g.Polygons)
	for i := range g.Polygons {
		s.Rings += len(g.Polygons[i].Rings)
		for j := range g.Polygons[i].Rings {
			s.Points += len(g.Polygons[i].Rings[j].Points)
		}
	}
	return s
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
