package geometry

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// Segment is one ring edge. Mid is the discriminator used when
// partitioning segments into a tree.
type Segment struct {
	P0, P1 Point
	Mid    Point
	BBox   BBox
}

func NewSegment(p0, p1 Point) Segment {
	bbox := NewBBox()
	bbox.AddPoint(p0)
	bbox.AddPoint(p1)
	return Segment{
		P0:   p0,
		P1:   p1,
		Mid:  NewPoint((p0.X+p1.X)/2, (p0.Y+p1.Y)/2),
		BBox: bbox,
	}
}

// Distance returns the ground distance in meters from p to the closest
// point of s. Coordinates are taken relative to p with x scaled by the east-
// west factor at p, so the closest point is found in the same metric the
// distance is measured in.
func (s Segment) Distance(p Point) float64 {
	sx := math.Sqrt(p.ScaleX2)
	v := vec.Vec2{X: (s.P0.X - p.X) * sx, Y: s.P0.Y - p.Y}
	d := vec.Vec2{X: (s.P1.X - s.P0.X) * sx, Y: s.P1.Y - s.P0.Y}

	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return math.Hypot(v.X, v.Y) * Deg2Meters
	}
	t := -(v.X*d.X + v.Y*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	c := v.Add(d.Mul(t))
	return math.Hypot(c.X, c.Y) * Deg2Meters
}

// Intersects reports whether s and o share at least one point. Touching
// and collinear overlap count.
func (s Segment) Intersects(o Segment) bool {
	if !s.BBox.Overlaps(o.BBox) {
		return false
	}
	d1 := orientation(s.P0, s.P1, o.P0)
	d2 := orientation(s.P0, s.P1, o.P1)
	d3 := orientation(o.P0, o.P1, s.P0)
	d4 := orientation(o.P0, o.P1, s.P1)

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	return (d1 == 0 && onSegment(s, o.P0)) ||
		(d2 == 0 && onSegment(s, o.P1)) ||
		(d3 == 0 && onSegment(o, s.P0)) ||
		(d4 == 0 && onSegment(o, s.P1))
}

func orientation(a, b, c Point) float64 {
	v := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func onSegment(s Segment, p Point) bool {
	return s.BBox.ContainsXY(p.X, p.Y)
}
