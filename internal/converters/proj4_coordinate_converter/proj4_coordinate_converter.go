package proj4_coordinate_converter

import (
	"fmt"
	"math"
	"sync"

	"github.com/ecopia-map/sdf_tiler/internal/converters"
	proj "github.com/xeonx/proj4"
)

// proj4 definitions of the systems input geometry is commonly delivered in
var epsgDefinitions = map[int]string{
	4326:  "+proj=longlat +datum=WGS84 +no_defs",
	3857:  "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +nadgrids=@null +wktext +no_defs",
	3395:  "+proj=merc +lon_0=0 +k=1 +x_0=0 +y_0=0 +datum=WGS84 +units=m +no_defs",
	4258:  "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs",
	25832: "+proj=utm +zone=32 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
	25833: "+proj=utm +zone=33 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
	31467: "+proj=tmerc +lat_0=0 +lon_0=9 +k=1 +x_0=3500000 +y_0=0 +datum=potsdam +units=m +no_defs",
	32632: "+proj=utm +zone=32 +datum=WGS84 +units=m +no_defs",
	32633: "+proj=utm +zone=33 +datum=WGS84 +units=m +no_defs",
}

type epsgProjection struct {
	EpsgCode   int
	Projection *proj.Proj
}

type proj4CoordinateConverter struct {
	sync.Mutex
	EpsgDatabase map[int]*epsgProjection
}

func NewProj4CoordinateConverter() converters.CoordinateConverter {
	return &proj4CoordinateConverter{
		EpsgDatabase: map[int]*epsgProjection{},
	}
}

func SupportedSrids() []int {
	srids := make([]int, 0, len(epsgDefinitions))
	for srid := range epsgDefinitions {
		srids = append(srids, srid)
	}
	return srids
}

func (cc *proj4CoordinateConverter) ConvertCoordinatesSrid(sourceSrid int, targetSrid int, xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("coordinate arrays differ in length: %d != %d", len(xs), len(ys))
	}
	if sourceSrid == targetSrid || len(xs) == 0 {
		return nil
	}

	// proj handles are not safe for concurrent use
	cc.Lock()
	defer cc.Unlock()

	src, err := cc.initProjection(sourceSrid)
	if err != nil {
		return err
	}
	dst, err := cc.initProjection(targetSrid)
	if err != nil {
		return err
	}

	if src.Projection.IsLatLong() {
		scale(xs, ys, math.Pi/180)
	}
	zs := make([]float64, len(xs))
	if err := proj.TransformRaw(src.Projection, dst.Projection, xs, ys, zs); err != nil {
		return fmt.Errorf("transforming from EPSG:%d to EPSG:%d: %w", sourceSrid, targetSrid, err)
	}
	if dst.Projection.IsLatLong() {
		scale(xs, ys, 180/math.Pi)
	}
	return nil
}

// Releases all projection objects from memory
func (cc *proj4CoordinateConverter) Cleanup() {
	cc.Lock()
	defer cc.Unlock()
	for _, val := range cc.EpsgDatabase {
		if val.Projection != nil {
			val.Projection.Close()
		}
	}
	cc.EpsgDatabase = map[int]*epsgProjection{}
}

func (cc *proj4CoordinateConverter) initProjection(code int) (*epsgProjection, error) {
	if p, ok := cc.EpsgDatabase[code]; ok {
		return p, nil
	}
	definition, ok := epsgDefinitions[code]
	if !ok {
		return nil, &converters.UnsupportedSridError{Srid: code}
	}
	projection, err := proj.InitPlus(definition)
	if err != nil {
		return nil, fmt.Errorf("initializing EPSG:%d: %w", code, err)
	}
	p := &epsgProjection{EpsgCode: code, Projection: projection}
	cc.EpsgDatabase[code] = p
	return p, nil
}

func scale(xs, ys []float64, f float64) {
	for i := range xs {
		xs[i] *= f
		ys[i] *= f
	}
}
