package index

import (
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
)

type ITree interface {
	Build() error
	IsBuilt() bool
	Clear() bool
}

// Returns the distance in meters from a point to the nearest boundary,
// never more than maxDistance
type DistanceIndex interface {
	MinDistance(p geometry.Point, maxDistance float64) float64
}

type ContainmentIndex interface {
	ContainsPoint(p geometry.Point) bool
}
