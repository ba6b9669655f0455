package std_algorithm_manager

import (
	"github.com/ecopia-map/sdf_tiler/internal/converters"
	"github.com/ecopia-map/sdf_tiler/internal/converters/distance/offset_distance_corrector"
	"github.com/ecopia-map/sdf_tiler/internal/converters/proj4_coordinate_converter"
	"github.com/ecopia-map/sdf_tiler/internal/geojson_loader"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/ecopia-map/sdf_tiler/internal/index"
	"github.com/ecopia-map/sdf_tiler/internal/index/lookup_grid"
	"github.com/ecopia-map/sdf_tiler/internal/index/segment_tree"
	"github.com/ecopia-map/sdf_tiler/internal/metrics"
	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
	"github.com/ecopia-map/sdf_tiler/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	options             *tiler.TilerOptions
	coordinateConverter converters.CoordinateConverter
	distanceCorrector   converters.DistanceCorrector
	metrics             *metrics.Metrics
}

func NewAlgorithmManager(opt *tiler.TilerOptions) algorithm_manager.AlgorithmManager {
	var coordinateConverter converters.CoordinateConverter = converters.NoopCoordinateConverter{}
	if opt.Srid != geojson_loader.TargetSrid {
		coordinateConverter = proj4_coordinate_converter.NewProj4CoordinateConverter()
	}

	var distanceCorrector converters.DistanceCorrector
	if opt.Buffer != 0 {
		distanceCorrector = offset_distance_corrector.NewOffsetDistanceCorrector(opt.Buffer)
	}

	return &StandardAlgorithmManager{
		options:             opt,
		coordinateConverter: coordinateConverter,
		distanceCorrector:   distanceCorrector,
		metrics:             metrics.New(),
	}
}

func (am *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return am.coordinateConverter
}

func (am *StandardAlgorithmManager) GetDistanceCorrectorAlgorithm() converters.DistanceCorrector {
	return am.distanceCorrector
}

func (am *StandardAlgorithmManager) GetDistanceIndexAlgorithm(g *geometry.Geometry) (*segment_tree.SegmentTree, error) {
	tree := segment_tree.NewSegmentTree(g.Segments(), am.options.MaxLeafSize)
	if err := tree.Build(); err != nil {
		return nil, err
	}
	return tree, nil
}

func (am *StandardAlgorithmManager) GetContainmentIndexAlgorithm(g *geometry.Geometry, img *raster.GeoImage) (index.ContainmentIndex, error) {
	switch am.options.Containment {
	case tiler.ContainmentGrid:
		grid, err := lookup_grid.NewLookupGrid(g, img.Bounds(), am.options.GridResolution)
		if err != nil {
			return nil, err
		}
		return grid, nil
	default:
		return nil, nil
	}
}

func (am *StandardAlgorithmManager) GetMetrics() *metrics.Metrics {
	return am.metrics
}
