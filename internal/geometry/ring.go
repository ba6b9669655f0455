package geometry

// Ring is a closed polyline: the last point repeats the first.
type Ring struct {
	Points []Point
	BBox   BBox
}

func newRing(points []Point) Ring {
	bbox := NewBBox()
	for _, p := range points {
		bbox.AddPoint(p)
	}
	return Ring{Points: points, BBox: bbox}
}

// ContainsPoint applies the even-odd rule with a ray cast towards +x.
func (r *Ring) ContainsPoint(p Point) bool {
	if !r.BBox.ContainsXY(p.X, p.Y) {
		return false
	}
	inside := false
	for i := 1; i < len(r.Points); i++ {
		p0 := r.Points[i-1]
		p1 := r.Points[i]
		if (p1.Y > p.Y) != (p0.Y > p.Y) &&
			p.X < (p0.X-p1.X)*(p.Y-p1.Y)/(p0.Y-p1.Y)+p1.X {
			inside = !inside
		}
	}
	return inside
}

// clip drops every vertex that lies outside c together with both of its
// neighbours. Returns false if nothing is left.
func (r *Ring) clip(c Cut) (Ring, bool) {
	n := len(r.Points) - 1
	if n < 1 {
		return Ring{}, false
	}

	outside := make([]bool, n)
	all := true
	for i := 0; i < n; i++ {
		outside[i] = c.Outside(r.Points[i])
		all = all && outside[i]
	}
	if all {
		return Ring{}, false
	}

	points := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		if outside[i] && outside[(i+n-1)%n] && outside[(i+1)%n] {
			continue
		}
		points = append(points, r.Points[i])
	}
	points = append(points, points[0])
	return newRing(points), true
}

func (r *Ring) segments(dst []Segment) []Segment {
	for i := 1; i < len(r.Points); i++ {
		dst = append(dst, NewSegment(r.Points[i-1], r.Points[i]))
	}
	return dst
}
