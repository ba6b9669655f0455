package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldTileBounds(t *testing.T) {
	img, err := NewGeoImage(256, 0, 0, 0, 0)
	require.NoError(t, err)

	b := img.Bounds()
	assert.InDelta(t, -180, b.LLx, 1e-9)
	assert.InDelta(t, 180, b.URx, 1e-9)
	assert.InDelta(t, -85.0511287798, b.LLy, 1e-9)
	assert.InDelta(t, 85.0511287798, b.URy, 1e-9)

	center := img.PixelToPoint(128, 128)
	assert.InDelta(t, 0, center.X, 1e-9)
	assert.InDelta(t, 0, center.Y, 1e-9)
}

func TestDerivedFields(t *testing.T) {
	img, err := NewGeoImage(2048, 11, 1069, 697, MaxDistance)
	require.NoError(t, err)

	assert.Equal(t, 1069.0/2048, img.X0)
	assert.Equal(t, 697.0/2048, img.Y0)
	assert.Equal(t, 1.0/2048/2048, img.PixelScale)
	assert.Equal(t, MaxDistance, img.Value(0, 100, 100))
}

func TestPointToPixelInvertsPixelToPoint(t *testing.T) {
	img, err := NewGeoImage(512, 11, 1069, 697, 0)
	require.NoError(t, err)

	for _, px := range [][2]float64{{0, 0}, {0.5, 0.5}, {511.5, 3.25}, {200, 400}, {512, 512}} {
		p := img.PixelToPoint(px[0], px[1])
		x, y := img.PointToPixel(p.X, p.Y)
		assert.InDelta(t, px[0], x, 1e-6)
		assert.InDelta(t, px[1], y, 1e-6)
	}
}

func TestNewGeoImageRejectsBadTiles(t *testing.T) {
	tests := []struct {
		name          string
		size, z, x, y uint32
		fill          []float64
	}{
		{"zero size", 0, 0, 0, 0, []float64{0}},
		{"no channels", 256, 0, 0, 0, nil},
		{"x outside grid", 256, 2, 4, 0, []float64{0}},
		{"y outside grid", 256, 2, 0, 4, []float64{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeoImage(tt.size, tt.z, tt.x, tt.y, tt.fill...)
			assert.Error(t, err)
		})
	}
}

func TestSetPixelValue(t *testing.T) {
	img, err := NewGeoImage(4, 3, 1, 2, 0, 0)
	require.NoError(t, err)

	require.NoError(t, img.SetPixelValue(1, 3, 2, 7))
	assert.Equal(t, 7.0, img.Channels[1][3+2*4])
	assert.Error(t, img.SetPixelValue(0, 4, 0, 1))
	assert.Error(t, img.SetPixelValue(0, 0, 4, 1))
	assert.Error(t, img.SetPixelValue(2, 0, 0, 1))
}

func TestCalcPath(t *testing.T) {
	assert.Equal(t, "tiles/11/697/1069.png", CalcPath("tiles", 11, 1069, 697, "png"))

	img, err := NewGeoImage(4, 3, 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "out/3/2/1.bin", img.Path("out", "bin"))
}

func TestParsePath(t *testing.T) {
	zoom, x, y, ext, err := ParsePath("tiles", CalcPath("tiles", 11, 1069, 697, "bin"))
	require.NoError(t, err)
	assert.Equal(t, uint32(11), zoom)
	assert.Equal(t, uint32(1069), x)
	assert.Equal(t, uint32(697), y)
	assert.Equal(t, "bin", ext)

	for _, path := range []string{"tiles/11/697.bin", "tiles/a/697/1069.bin", "tiles/11/697/1069/x.bin", "tiles/11/697/-1.bin"} {
		_, _, _, _, err := ParsePath("tiles", path)
		assert.Error(t, err, path)
	}
}
