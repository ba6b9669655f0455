package io

import (
	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
)

// Contains the minimal data needed to write a single tile, i.e. an image file and optionally its binary form
type WorkUnit struct {
	Tile     *raster.GeoImage
	Opts     *tiler.TilerOptions
	BasePath string
}
