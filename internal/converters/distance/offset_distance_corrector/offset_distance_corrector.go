package offset_distance_corrector

import "github.com/ecopia-map/sdf_tiler/internal/converters"

// OffsetDistanceCorrector grows every shape by Offset meters, which turns
// the boundary distance into the distance to a buffer of that radius.
type OffsetDistanceCorrector struct {
	Offset float64
}

func NewOffsetDistanceCorrector(offset float64) converters.DistanceCorrector {
	return &OffsetDistanceCorrector{
		Offset: offset,
	}
}

func (c *OffsetDistanceCorrector) CorrectDistance(lon, lat, distance float64) float64 {
	return distance - c.Offset
}
