package io

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/metrics"
	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
	"github.com/ecopia-map/sdf_tiler/tools"
	"golang.org/x/image/tiff"
)

type StandardConsumer struct {
	metrics *metrics.Metrics
}

func NewStandardConsumer(m *metrics.Metrics) *StandardConsumer {
	return &StandardConsumer{
		metrics: m,
	}
}

// Continually consumes WorkUnits submitted to a work channel writing the corresponding image files.
// Continues working until the work channel is closed or an error is raised. In this last case submits the error
// to the error channel and keeps draining the work channel so that the producer never blocks.
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup) {
	defer waitGroup.Done()

	failed := false
	for work := range workchan {
		if failed {
			continue
		}
		if err := c.doWork(work); err != nil {
			errchan <- err
			failed = true
		}
	}
}

// Takes a workunit and writes the tile image
func (c *StandardConsumer) doWork(workUnit *WorkUnit) error {
	tile := workUnit.Tile
	opts := workUnit.Opts

	m, err := tile.Image(opts.ExportOptions())
	if err != nil {
		return err
	}

	filePath := tile.Path(workUnit.BasePath, opts.Format.Extension())
	err = tools.WriteFileAtomic(filePath, func(w io.Writer) error {
		return EncodeImage(w, m, opts.Format)
	})
	if err != nil {
		return fatal.IO("write tile "+tile.String(), err)
	}

	c.metrics.TileWritten(tile.Zoom)
	return nil
}

func EncodeImage(w io.Writer, m image.Image, format tiler.ImageFormat) error {
	switch format {
	case tiler.FormatPNG:
		return png.Encode(w, m)
	case tiler.FormatTIFF:
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("unsupported image format %q", format)
}

// Writes a tile in the binary form read back by merges
func WriteBinaryTile(folder string, tile *raster.GeoImage) error {
	filePath := tile.Path(folder, tiler.BinExtension)
	err := tools.WriteFileAtomic(filePath, tile.Save)
	if err != nil {
		return fatal.IO("write binary tile "+tile.String(), err)
	}
	return nil
}
