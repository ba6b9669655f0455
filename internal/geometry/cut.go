package geometry

import "fmt"

type Side int

const (
	SideTop Side = iota
	SideBottom
	SideLeft
	SideRight
)

// Cut is an axis aligned half plane. Points on the named side of Value are
// outside the cut.
type Cut struct {
	Side  Side
	Value float64
}

// CutTop discards everything north of y.
func CutTop(y float64) Cut { return Cut{Side: SideTop, Value: y} }

// CutBottom discards everything south of y.
func CutBottom(y float64) Cut { return Cut{Side: SideBottom, Value: y} }

// CutLeft discards everything west of x.
func CutLeft(x float64) Cut { return Cut{Side: SideLeft, Value: x} }

// CutRight discards everything east of x.
func CutRight(x float64) Cut { return Cut{Side: SideRight, Value: x} }

func (c Cut) Outside(p Point) bool {
	switch c.Side {
	case SideTop:
		return p.Y > c.Value
	case SideBottom:
		return p.Y < c.Value
	case SideLeft:
		return p.X < c.Value
	case SideRight:
		return p.X > c.Value
	}
	panic(fmt.Sprintf("geometry: invalid cut side %d", c.Side))
}

func (c Cut) String() string {
	names := [...]string{"top", "bottom", "left", "right"}
	if c.Side < 0 || int(c.Side) >= len(names) {
		return fmt.Sprintf("cut(%d, %g)", c.Side, c.Value)
	}
	return fmt.Sprintf("%s(%g)", names[c.Side], c.Value)
}
