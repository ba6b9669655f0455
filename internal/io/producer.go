package io

import (
	"sync"

	"github.com/ecopia-map/sdf_tiler/internal/raster"
)

type Producer interface {
	Produce(work chan *WorkUnit, errchan chan error, wg *sync.WaitGroup, image *raster.GeoImage)
}
