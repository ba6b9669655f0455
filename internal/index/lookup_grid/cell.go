package lookup_grid

import "github.com/ecopia-map/sdf_tiler/internal/geometry"

type cell struct {
	covered    bool
	candidates []int
}

type relation int

const (
	relationDisjoint relation = iota
	relationTouches
	relationCovers
)

// classify relates a polygon to a closed cell. When no ring touches the
// cell, the cell is either fully inside or fully outside the polygon and a
// single corner decides which.
func classify(polygon *geometry.Polygon, box geometry.BBox) relation {
	if !polygon.BBox.Overlaps(box) {
		return relationDisjoint
	}

	corners := [4]geometry.Point{
		geometry.NewPoint(box.XMin, box.YMin),
		geometry.NewPoint(box.XMax, box.YMin),
		geometry.NewPoint(box.XMax, box.YMax),
		geometry.NewPoint(box.XMin, box.YMax),
	}
	edges := [4]geometry.Segment{
		geometry.NewSegment(corners[0], corners[1]),
		geometry.NewSegment(corners[1], corners[2]),
		geometry.NewSegment(corners[2], corners[3]),
		geometry.NewSegment(corners[3], corners[0]),
	}

	for i := range polygon.Rings {
		if ringTouches(&polygon.Rings[i], box, edges) {
			return relationTouches
		}
	}
	if polygon.ContainsPoint(corners[0]) {
		return relationCovers
	}
	return relationDisjoint
}

func ringTouches(ring *geometry.Ring, box geometry.BBox, edges [4]geometry.Segment) bool {
	if !ring.BBox.Overlaps(box) {
		return false
	}
	for _, p := range ring.Points {
		if box.ContainsXY(p.X, p.Y) {
			return true
		}
	}
	for i := 1; i < len(ring.Points); i++ {
		s := geometry.NewSegment(ring.Points[i-1], ring.Points[i])
		if !s.BBox.Overlaps(box) {
			continue
		}
		for _, e := range edges {
			if s.Intersects(e) {
				return true
			}
		}
	}
	return false
}
