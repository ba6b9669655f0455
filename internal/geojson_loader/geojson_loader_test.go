package geojson_loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/sdf_tiler/internal/converters"
	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const featureCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "block"}, "geometry": {
      "type": "Polygon",
      "coordinates": [[[0, 0], [0, 10], [10, 10], [10, 0], [0, 0]], [[4, 4], [6, 4], [6, 6], [4, 6], [4, 4]]]
    }},
    {"type": "Feature", "properties": {}, "geometry": {
      "type": "MultiPolygon",
      "coordinates": [[[[20, 0], [21, 0], [21, 1], [20, 0]]], [[[30, 0], [31, 0], [31, 1], [30, 0]]]]
    }},
    {"type": "Feature", "properties": {}, "geometry": {
      "type": "LineString",
      "coordinates": [[0, 0], [5, 5]]
    }},
    {"type": "Feature", "properties": {}, "geometry": null}
  ]
}`

func loader() *GeoJSONLoader {
	return NewGeoJSONLoader(converters.NoopCoordinateConverter{}, TargetSrid)
}

func TestLoadFeatureCollection(t *testing.T) {
	g, err := loader().Load([]byte(featureCollection))
	require.NoError(t, err)

	assert.Equal(t, geometry.Stats{Polygons: 3, Rings: 4, Points: 18}, g.Stats())
	assert.True(t, g.ContainsPoint(geometry.NewPoint(2, 2)))
	assert.False(t, g.ContainsPoint(geometry.NewPoint(5, 5)), "inside the hole")
	assert.True(t, g.ContainsPoint(geometry.NewPoint(30.8, 0.2)))
}

func TestLoadFeatureAndBareGeometry(t *testing.T) {
	feature := `{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [0, 1], [1, 1], [1, 0]]]}}`
	g, err := loader().Load([]byte(feature))
	require.NoError(t, err)
	assert.Equal(t, 1, g.Stats().Polygons)
	assert.Equal(t, 5, g.Stats().Points, "open rings are closed")

	collection := `{"type": "GeometryCollection", "geometries": [
	  {"type": "Polygon", "coordinates": [[[0, 0], [0, 1], [1, 1], [0, 0]]]},
	  {"type": "MultiLineString", "coordinates": [[[0, 0], [1, 1]]]},
	  {"type": "GeometryCollection", "geometries": [
	    {"type": "MultiPolygon", "coordinates": [[[[5, 5], [6, 5], [6, 6], [5, 5]]]]}
	  ]}
	]}`
	g, err = loader().Load([]byte(collection))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Stats().Polygons)
}

func TestLoadRejectsUnsupportedInput(t *testing.T) {
	for name, data := range map[string]string{
		"point":      `{"type": "Point", "coordinates": [1, 2]}`,
		"multipoint": `{"type": "Feature", "properties": {}, "geometry": {"type": "MultiPoint", "coordinates": [[1, 2]]}}`,
		"not json":   `polygon`,
		"bad ring":   `{"type": "Polygon", "coordinates": [[[0, 0]]]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := loader().Load([]byte(data))
			assert.ErrorIs(t, err, fatal.ErrInput)
		})
	}
}

type shiftConverter struct {
	calls int
}

func (c *shiftConverter) ConvertCoordinatesSrid(sourceSrid int, targetSrid int, xs, ys []float64) error {
	if sourceSrid != 3857 || targetSrid != TargetSrid {
		return errors.New("unexpected srid")
	}
	c.calls++
	for i := range xs {
		xs[i] += 100
		ys[i] -= 10
	}
	return nil
}

func (c *shiftConverter) Cleanup() {}

func TestLoadReprojects(t *testing.T) {
	converter := &shiftConverter{}
	g, err := NewGeoJSONLoader(converter, 3857).Load([]byte(featureCollection))
	require.NoError(t, err)

	assert.Equal(t, 4, converter.calls)
	assert.Equal(t, geometry.BBox{XMin: 100, YMin: -10, XMax: 131, YMax: 0}, g.BBox)

	_, err = NewGeoJSONLoader(converters.NoopCoordinateConverter{}, 3857).Load([]byte(featureCollection))
	assert.ErrorIs(t, err, fatal.ErrInput)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.geojson")
	require.NoError(t, os.WriteFile(path, []byte(featureCollection), 0644))

	g, err := loader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, g.Stats().Polygons)

	_, err = loader().LoadFile(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.ErrorIs(t, err, fatal.ErrIO)
}
