package geometry

import "math"

// BBox is an axis aligned bounding box in degrees. The zero value is not
// empty, use NewBBox to get one that any point will grow.
type BBox struct {
	XMin, YMin float64
	XMax, YMax float64
}

func NewBBox() BBox {
	return BBox{
		XMin: math.Inf(1),
		YMin: math.Inf(1),
		XMax: math.Inf(-1),
		YMax: math.Inf(-1),
	}
}

func (b BBox) IsEmpty() bool {
	return b.XMin > b.XMax || b.YMin > b.YMax
}

func (b *BBox) AddPoint(p Point) {
	b.XMin = math.Min(b.XMin, p.X)
	b.YMin = math.Min(b.YMin, p.Y)
	b.XMax = math.Max(b.XMax, p.X)
	b.YMax = math.Max(b.YMax, p.Y)
}

func (b *BBox) AddBBox(o BBox) {
	b.XMin = math.Min(b.XMin, o.XMin)
	b.YMin = math.Min(b.YMin, o.YMin)
	b.XMax = math.Max(b.XMax, o.XMax)
	b.YMax = math.Max(b.YMax, o.YMax)
}

func (b BBox) Width() float64 {
	return b.XMax - b.XMin
}

func (b BBox) Height() float64 {
	return b.YMax - b.YMin
}

func (b BBox) Center() (float64, float64) {
	return (b.XMin + b.XMax) / 2, (b.YMin + b.YMax) / 2
}

// ContainsXY is inclusive on all four edges.
func (b BBox) ContainsXY(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

// Overlaps is inclusive: boxes sharing only an edge overlap.
func (b BBox) Overlaps(o BBox) bool {
	return b.XMin <= o.XMax && o.XMin <= b.XMax && b.YMin <= o.YMax && o.YMin <= b.YMax
}

// DistanceTo is a lower bound of the distance from p to anything inside b.
// It is zero when p lies inside b.
func (b BBox) DistanceTo(p Point) float64 {
	dx := math.Max(math.Max(b.XMin-p.X, p.X-b.XMax), 0)
	dy := math.Max(math.Max(b.YMin-p.Y, p.Y-b.YMax), 0)
	return metersAt(p, dx, dy)
}
