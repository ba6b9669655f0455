package geojson_loader

import (
	"encoding/json"
	"os"

	"github.com/ecopia-map/sdf_tiler/internal/converters"
	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/golang/glog"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Srid of the coordinates handed to the geometry model
const TargetSrid = 4326

// Reads polygonal GeoJSON into a geometry.Geometry in EPSG:4326.
type GeoJSONLoader struct {
	converter converters.CoordinateConverter
	srid      int
}

func NewGeoJSONLoader(converter converters.CoordinateConverter, srid int) *GeoJSONLoader {
	return &GeoJSONLoader{
		converter: converter,
		srid:      srid,
	}
}

func (l *GeoJSONLoader) LoadFile(filePath string) (*geometry.Geometry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fatal.IO("read "+filePath, err)
	}
	g, err := l.Load(data)
	if err != nil {
		return nil, err
	}
	stats := g.Stats()
	glog.Infof("loaded %s: %d polygons, %d rings, %d points", filePath, stats.Polygons, stats.Rings, stats.Points)
	return g, nil
}

// Load accepts a FeatureCollection, a Feature or a bare geometry object.
func (l *GeoJSONLoader) Load(data []byte) (*geometry.Geometry, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fatal.New(fatal.KindInput, "geojson", err)
	}

	var geometries []orb.Geometry
	switch header.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fatal.New(fatal.KindInput, "geojson", err)
		}
		for _, f := range fc.Features {
			geometries = append(geometries, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fatal.New(fatal.KindInput, "geojson", err)
		}
		geometries = append(geometries, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fatal.New(fatal.KindInput, "geojson", err)
		}
		geometries = append(geometries, g.Geometry())
	}

	var polygons []orb.Polygon
	for _, g := range geometries {
		var err error
		if polygons, err = collectPolygons(g, polygons); err != nil {
			return nil, err
		}
	}

	if err := l.reproject(polygons); err != nil {
		return nil, err
	}

	return geometry.New(toCoordinates(polygons))
}

func collectPolygons(g orb.Geometry, out []orb.Polygon) ([]orb.Polygon, error) {
	switch v := g.(type) {
	case nil:
		return out, nil
	case orb.Polygon:
		return append(out, v), nil
	case orb.MultiPolygon:
		return append(out, v...), nil
	case orb.Collection:
		var err error
		for _, child := range v {
			if out, err = collectPolygons(child, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	case orb.LineString, orb.MultiLineString:
		return out, nil
	}
	return nil, fatal.Inputf("geojson", "unsupported geometry type %s", g.GeoJSONType())
}

func (l *GeoJSONLoader) reproject(polygons []orb.Polygon) error {
	if l.srid == TargetSrid {
		return nil
	}
	for _, polygon := range polygons {
		for _, ring := range polygon {
			xs := make([]float64, len(ring))
			ys := make([]float64, len(ring))
			for i, p := range ring {
				xs[i], ys[i] = p[0], p[1]
			}
			if err := l.converter.ConvertCoordinatesSrid(l.srid, TargetSrid, xs, ys); err != nil {
				return fatal.New(fatal.KindInput, "reproject", err)
			}
			for i := range ring {
				ring[i] = orb.Point{xs[i], ys[i]}
			}
		}
	}
	return nil
}

func toCoordinates(polygons []orb.Polygon) [][][][2]float64 {
	coords := make([][][][2]float64, len(polygons))
	for i, polygon := range polygons {
		coords[i] = make([][][2]float64, len(polygon))
		for j, ring := range polygon {
			coords[i][j] = make([][2]float64, len(ring))
			for k, p := range ring {
				coords[i][j][k] = p
			}
		}
	}
	return coords
}
