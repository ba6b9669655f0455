package raster

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackedEncoding(t *testing.T) {
	img, err := NewGeoImage(2, 1, 0, 0, 0)
	require.NoError(t, err)
	copy(img.Channels[0], []float64{0, -12.34, 5000, -5000})

	m, err := img.Image(ExportOptions{Encoding: EncodingPacked})
	require.NoError(t, err)
	rgba := m.(*image.RGBA)

	tests := []struct {
		x, y int
		want uint16
	}{
		{0, 0, 32768},
		{1, 0, 32768 - 123},
		{0, 1, 32768 + 30000},
		{1, 1, 32768 - 30000},
	}
	for _, tt := range tests {
		c := rgba.RGBAAt(tt.x, tt.y)
		assert.Equal(t, tt.want, uint16(c.R)|uint16(c.G)<<8, "pixel (%d, %d)", tt.x, tt.y)
		assert.Zero(t, c.B)
		assert.Equal(t, uint8(255), c.A)
	}
	assert.Equal(t, -12.3, UnpackDistance(32768-123, 0))
}

func TestGray16Encoding(t *testing.T) {
	img, err := NewGeoImage(1, 0, 0, 0, 2.5)
	require.NoError(t, err)

	m, err := img.Image(ExportOptions{Encoding: EncodingGray16, Scale: 2})
	require.NoError(t, err)
	assert.Equal(t, uint16(32773), m.(*image.Gray16).Gray16At(0, 0).Y)
}

func TestRGEncoding(t *testing.T) {
	img, err := NewGeoImage(2, 1, 0, 0, 0, 0)
	require.NoError(t, err)
	copy(img.Channels[0], []float64{0, 0.5, 1, 2})
	copy(img.Channels[1], []float64{-1, 0.25, 0.999, 1})

	m, err := img.Image(ExportOptions{Encoding: EncodingRG})
	require.NoError(t, err)
	rgba := m.(*image.RGBA)

	assert.Equal(t, [2]uint8{0, 0}, rg(rgba, 0, 0))
	assert.Equal(t, [2]uint8{128, 64}, rg(rgba, 1, 0))
	assert.Equal(t, [2]uint8{255, 255}, rg(rgba, 0, 1))
	assert.Equal(t, [2]uint8{255, 255}, rg(rgba, 1, 1))
}

func TestRGEncodingNeedsTwoChannels(t *testing.T) {
	img, err := NewGeoImage(2, 1, 0, 0, 0)
	require.NoError(t, err)

	_, err = img.Image(ExportOptions{Encoding: EncodingRG})
	assert.Error(t, err)
}

func TestParseEncoding(t *testing.T) {
	e, err := ParseEncoding("gray16")
	require.NoError(t, err)
	assert.Equal(t, EncodingGray16, e)

	_, err = ParseEncoding("jpeg")
	assert.Error(t, err)
	assert.Equal(t, EncodingRG, DefaultEncoding(ModeField))
	assert.Equal(t, EncodingPacked, DefaultEncoding(ModeDistance))
}

func rg(m *image.RGBA, x, y int) [2]uint8 {
	c := m.RGBAAt(x, y)
	return [2]uint8{c.R, c.G}
}
