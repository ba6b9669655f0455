package io

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/metrics"
	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func testTile(t *testing.T, size, zoom, x, y uint32) *raster.GeoImage {
	t.Helper()
	img, err := raster.NewGeoImage(size, zoom, x, y, 250)
	require.NoError(t, err)
	return img
}

func testOptions(folder string) *tiler.TilerOptions {
	return &tiler.TilerOptions{
		TileSize:    4,
		N:           2,
		MaxDistance: 3000,
		Mode:        raster.ModeDistance,
		Encoding:    raster.EncodingPacked,
		Format:      tiler.FormatPNG,
		FolderPNG:   folder,
	}
}

func TestEncodeImage(t *testing.T) {
	m, err := testTile(t, 4, 1, 0, 0).Image(raster.ExportOptions{Encoding: raster.EncodingPacked})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeImage(&buf, m, tiler.FormatPNG))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Bounds(), decoded.Bounds())

	buf.Reset()
	require.NoError(t, EncodeImage(&buf, m, tiler.FormatTIFF))
	decoded, err = tiff.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Bounds(), decoded.Bounds())

	assert.Error(t, EncodeImage(&buf, m, tiler.ImageFormat("gif")))
}

func TestProducerAndConsumersWriteTileTree(t *testing.T) {
	folder := t.TempDir()
	opts := testOptions(folder)
	m := metrics.New()

	work := make(chan *WorkUnit, 2)
	errchan := make(chan error, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	go NewStandardProducer(folder, opts).Produce(work, errchan, &wg, testTile(t, 8, 3, 1, 2))
	go NewStandardConsumer(m).Consume(work, errchan, &wg)
	go NewStandardConsumer(m).Consume(work, errchan, &wg)
	wg.Wait()
	close(errchan)

	for err := range errchan {
		assert.NoError(t, err)
	}
	for _, tile := range [][3]uint32{{4, 2, 4}, {4, 3, 4}, {4, 2, 5}, {4, 3, 5}, {3, 1, 2}} {
		assert.FileExists(t, raster.CalcPath(folder, tile[0], tile[1], tile[2], "png"))
	}
	assert.Equal(t, 4.0, testutil.ToFloat64(m.TilesWritten.WithLabelValues("4")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TilesWritten.WithLabelValues("3")))
}

func TestConsumerKeepsDrainingAfterFailure(t *testing.T) {
	// a file where the zoom folder should be
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "4"), nil, 0644))
	opts := testOptions(folder)

	work := make(chan *WorkUnit)
	errchan := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go NewStandardProducer(folder, opts).Produce(work, errchan, &wg, testTile(t, 8, 3, 1, 2))
	go NewStandardConsumer(nil).Consume(work, errchan, &wg)
	wg.Wait()
	close(errchan)

	var errs []error
	for err := range errchan {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], fatal.ErrIO)
}

func TestMergeProducerSubmitsOneUnit(t *testing.T) {
	work := make(chan *WorkUnit, 2)
	errchan := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	NewStandardMergeProducer("out", testOptions("out")).Produce(work, errchan, &wg, testTile(t, 4, 3, 1, 2))
	wg.Wait()

	var units []*WorkUnit
	for u := range work {
		units = append(units, u)
	}
	require.Len(t, units, 1)
	assert.Equal(t, "out", units[0].BasePath)
	assert.Equal(t, uint32(3), units[0].Tile.Zoom)
}

func TestWriteBinaryTile(t *testing.T) {
	folder := t.TempDir()
	tile := testTile(t, 4, 3, 1, 2)
	require.NoError(t, WriteBinaryTile(folder, tile))

	loaded, err := raster.LoadFile(raster.CalcPath(folder, 3, 1, 2, tiler.BinExtension))
	require.NoError(t, err)
	assert.True(t, raster.Equal(tile, loaded))
}
