package pkg

import (
	"github.com/ecopia-map/sdf_tiler/internal/converters"
	"github.com/ecopia-map/sdf_tiler/internal/converters/distance/offset_distance_corrector"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/ecopia-map/sdf_tiler/internal/index"
	"github.com/ecopia-map/sdf_tiler/internal/index/lookup_grid"
	"github.com/ecopia-map/sdf_tiler/internal/index/segment_tree"
	"github.com/ecopia-map/sdf_tiler/internal/metrics"
	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
)

// Same choices as the standard manager, restricted to EPSG:4326 input
type testAlgorithmManager struct {
	options *tiler.TilerOptions
	metrics *metrics.Metrics
}

func newTestAlgorithmManager(opts *tiler.TilerOptions) *testAlgorithmManager {
	return &testAlgorithmManager{options: opts, metrics: metrics.New()}
}

func (am *testAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return converters.NoopCoordinateConverter{}
}

func (am *testAlgorithmManager) GetDistanceCorrectorAlgorithm() converters.DistanceCorrector {
	if am.options.Buffer == 0 {
		return nil
	}
	return offset_distance_corrector.NewOffsetDistanceCorrector(am.options.Buffer)
}

func (am *testAlgorithmManager) GetDistanceIndexAlgorithm(g *geometry.Geometry) (*segment_tree.SegmentTree, error) {
	tree := segment_tree.NewSegmentTree(g.Segments(), am.options.MaxLeafSize)
	return tree, tree.Build()
}

func (am *testAlgorithmManager) GetContainmentIndexAlgorithm(g *geometry.Geometry, img *raster.GeoImage) (index.ContainmentIndex, error) {
	if am.options.Containment != tiler.ContainmentGrid {
		return nil, nil
	}
	grid, err := lookup_grid.NewLookupGrid(g, img.Bounds(), am.options.GridResolution)
	if err != nil {
		return nil, err
	}
	return grid, nil
}

func (am *testAlgorithmManager) GetMetrics() *metrics.Metrics {
	return am.metrics
}
