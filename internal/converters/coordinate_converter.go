package converters

import "strconv"

type CoordinateConverter interface {
	// Converts lon/lat or easting/northing pairs in place from sourceSrid
	// to targetSrid. Geographic systems use degrees.
	ConvertCoordinatesSrid(sourceSrid int, targetSrid int, xs, ys []float64) error
	Cleanup()
}

// Adjusts a signed boundary distance in meters at lon/lat
type DistanceCorrector interface {
	CorrectDistance(lon, lat, distance float64) float64
}

// NoopCoordinateConverter accepts only conversions between identical
// systems and leaves coordinates as they are.
type NoopCoordinateConverter struct{}

func (NoopCoordinateConverter) ConvertCoordinatesSrid(sourceSrid int, targetSrid int, xs, ys []float64) error {
	if sourceSrid != targetSrid {
		return &UnsupportedSridError{Srid: sourceSrid}
	}
	return nil
}

func (NoopCoordinateConverter) Cleanup() {}

type UnsupportedSridError struct {
	Srid int
}

func (e *UnsupportedSridError) Error() string {
	return "unsupported srid " + strconv.Itoa(e.Srid)
}
