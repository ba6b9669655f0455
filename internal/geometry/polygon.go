package geometry

// Polygon holds an outer ring at index 0 followed by its holes.
type Polygon struct {
	Rings []Ring
	BBox  BBox
}

func newPolygon(rings []Ring) Polygon {
	bbox := NewBBox()
	for i := range rings {
		bbox.AddBBox(rings[i].BBox)
	}
	return Polygon{Rings: rings, BBox: bbox}
}

func (p *Polygon) Outer() *Ring {
	return &p.Rings[0]
}

func (p *Polygon) Holes() []Ring {
	return p.Rings[1:]
}

func (p *Polygon) ContainsPoint(pt Point) bool {
	if !p.BBox.ContainsXY(pt.X, pt.Y) {
		return false
	}
	if !p.Outer().ContainsPoint(pt) {
		return false
	}
	holes := p.Holes()
	for i := range holes {
		if holes[i].ContainsPoint(pt) {
			return false
		}
	}
	return true
}

func (p *Polygon) clip(c Cut) (Polygon, bool) {
	outer, ok := p.Rings[0].clip(c)
	if !ok {
		return Polygon{}, false
	}
	rings := []Ring{outer}
	for i := 1; i < len(p.Rings); i++ {
		if hole, ok := p.Rings[i].clip(c); ok {
			rings = append(rings, hole)
		}
	}
	return newPolygon(rings), true
}
