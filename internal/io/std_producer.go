package io

import (
	"sync"

	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
)

type StandardProducer struct {
	basePath string
	options  *tiler.TilerOptions
}

func NewStandardProducer(basePath string, options *tiler.TilerOptions) *StandardProducer {
	return &StandardProducer{
		basePath: basePath,
		options:  options,
	}
}

// Cuts a rendered image into its tile tree and submits one WorkUnit per tile to the provided work channel.
// Closes the channel when all work is submitted.
func (p *StandardProducer) Produce(work chan *WorkUnit, errchan chan error, wg *sync.WaitGroup, image *raster.GeoImage) {
	defer wg.Done()
	defer close(work)

	err := image.ExportTileTree(p.options.TileSize, func(tile *raster.GeoImage) error {
		work <- &WorkUnit{
			Tile:     tile,
			BasePath: p.basePath,
			Opts:     p.options,
		}
		return nil
	})
	if err != nil {
		errchan <- err
	}
}

type StandardMergeProducer struct {
	basePath string
	options  *tiler.TilerOptions
}

func NewStandardMergeProducer(basePath string, options *tiler.TilerOptions) *StandardMergeProducer {
	return &StandardMergeProducer{
		basePath: basePath,
		options:  options,
	}
}

// Submits the merged image itself as the only WorkUnit. Closes the channel afterwards.
func (p *StandardMergeProducer) Produce(work chan *WorkUnit, errchan chan error, wg *sync.WaitGroup, image *raster.GeoImage) {
	defer wg.Done()
	defer close(work)

	work <- &WorkUnit{
		Tile:     image,
		BasePath: p.basePath,
		Opts:     p.options,
	}
}
