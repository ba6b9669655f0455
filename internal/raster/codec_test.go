package raster

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/ecopia-map/sdf_tiler/internal/index/segment_tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	img := gradient(t, 32, 11, 1069, 697)
	img.Channels[0][5] = math.Copysign(0, -1)
	img.Channels[1][7] = math.SmallestNonzeroFloat64

	var buf bytes.Buffer
	require.NoError(t, img.Save(&buf))
	assert.Equal(t, 50+2*(8+32*32*8), buf.Len())

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.True(t, Equal(img, loaded))
	assert.True(t, math.Signbit(loaded.Channels[0][5]))
}

func TestFillValuesFollowDerivedImages(t *testing.T) {
	img, err := NewGeoImage(8, 3, 1, 1, MaxDistance, 0.5)
	require.NoError(t, err)
	tree := segment_tree.NewSegmentTree(nil, 0)
	require.NoError(t, tree.Build())
	require.NoError(t, img.Fill(&geometry.Geometry{BBox: geometry.NewBBox()}, tree, nil, FillOptions{Mode: ModeField}))

	var buf bytes.Buffer
	require.NoError(t, img.Save(&buf))
	loaded, err := Load(&buf)
	require.NoError(t, err)
	sub, err := img.ExtractSubtile(1, 0, 4)
	require.NoError(t, err)
	small, err := img.ScaledDownClone(4)
	require.NoError(t, err)
	for _, derived := range []*GeoImage{loaded, sub, small, img.Clone()} {
		assert.Equal(t, []float64{MaxDistance, 0.5}, derived.FillValues)
	}

	clone := img.Clone()
	clone.FillValues[0] = 1
	assert.Equal(t, MaxDistance, img.FillValues[0])
}

func TestSaveLoadFile(t *testing.T) {
	img := gradient(t, 8, 3, 1, 1)
	path := filepath.Join(t.TempDir(), "tile.bin")

	require.NoError(t, img.SaveFile(path))
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, Equal(img, loaded))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.bin"))
	assert.True(t, errors.Is(err, fatal.ErrIO))
}

func TestLoadRejectsCorruptInput(t *testing.T) {
	img := gradient(t, 4, 2, 1, 1)
	var buf bytes.Buffer
	require.NoError(t, img.Save(&buf))
	good := buf.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("XXXX"), good[4:]...)},
		{"truncated", good[:len(good)-3]},
		{"trailing", append(append([]byte(nil), good...), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, fatal.ErrInput))
		})
	}
}
