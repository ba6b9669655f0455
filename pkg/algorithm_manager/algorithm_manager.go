package algorithm_manager

import (
	"github.com/ecopia-map/sdf_tiler/internal/converters"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/ecopia-map/sdf_tiler/internal/index"
	"github.com/ecopia-map/sdf_tiler/internal/index/segment_tree"
	"github.com/ecopia-map/sdf_tiler/internal/metrics"
	"github.com/ecopia-map/sdf_tiler/internal/raster"
)

type AlgorithmManager interface {
	GetCoordinateConverterAlgorithm() converters.CoordinateConverter
	// nil when distances are used as they are
	GetDistanceCorrectorAlgorithm() converters.DistanceCorrector
	GetDistanceIndexAlgorithm(g *geometry.Geometry) (*segment_tree.SegmentTree, error)
	// nil selects containment against the clipped geometry during the fill
	GetContainmentIndexAlgorithm(g *geometry.Geometry, img *raster.GeoImage) (index.ContainmentIndex, error)
	GetMetrics() *metrics.Metrics
}
