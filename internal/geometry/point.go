package geometry

import "math"

// Deg2Meters is the length of one degree of arc on the WGS84 equator.
const Deg2Meters = 6378137 * math.Pi / 180

const deg2rad = math.Pi / 180

// Point is a lon/lat position in degrees. ScaleX2 is the squared east-west
// scale factor at the point's latitude and is fixed at construction.
type Point struct {
	X       float64
	Y       float64
	ScaleX2 float64
}

func NewPoint(x, y float64) Point {
	c := math.Cos(y * deg2rad)
	return Point{X: x, Y: y, ScaleX2: c * c}
}

// DistanceTo returns the approximate ground distance in meters from p to q,
// using the local scale of p.
func (p Point) DistanceTo(q Point) float64 {
	return metersAt(p, q.X-p.X, q.Y-p.Y)
}

// metersAt converts a degree offset from p into meters. Every distance in
// this package goes through here so that bounds and exact distances round
// the same way.
func metersAt(p Point, dx, dy float64) float64 {
	return math.Hypot(dx*math.Sqrt(p.ScaleX2), dy) * Deg2Meters
}

func (p Point) Equals(q Point) bool {
	return p.X == q.X && p.Y == q.Y
}
