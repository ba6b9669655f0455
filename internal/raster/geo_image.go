// Package raster holds GeoImage, a square multi-channel float raster placed
// on the Web Mercator tile grid, and the operations that fill it, cut it
// into tiles, reduce and merge it.
package raster

import (
	"github.com/ecopia-map/sdf_tiler/internal/fatal"
)

// MaxDistance is the default clamp of signed distances in meters, and the
// fill value of distance channels.
const MaxDistance = 3000.0

// MaxZoom is the deepest zoom level a tile can be addressed at.
const MaxZoom = 30

// GeoImage covers the area of tile (Zoom, XOffset, YOffset) with Size x
// Size pixels. X0, Y0 and PixelScale are derived from the tile position and
// map pixels to normalized Mercator coordinates in [0, 1].
type GeoImage struct {
	Size       uint32
	Zoom       uint32
	XOffset    uint32
	YOffset    uint32
	X0         float64
	Y0         float64
	PixelScale float64
	Channels   [][]float64 // Channels[c][x+y*Size]
	FillValues []float64   // value untouched pixels of channel c hold
}

// NewGeoImage allocates one channel per fill value, initialized to it.
func NewGeoImage(size, zoom, xOffset, yOffset uint32, fill ...float64) (*GeoImage, error) {
	if size == 0 {
		return nil, fatal.Preconditionf("raster.NewGeoImage", "size must be positive")
	}
	if len(fill) == 0 {
		return nil, fatal.Preconditionf("raster.NewGeoImage", "at least one channel required")
	}
	if zoom > MaxZoom {
		return nil, fatal.Preconditionf("raster.NewGeoImage", "zoom %d out of range", zoom)
	}
	if uint64(xOffset) >= tilesAt(zoom) || uint64(yOffset) >= tilesAt(zoom) {
		return nil, fatal.Preconditionf("raster.NewGeoImage", "tile %d/%d/%d outside the grid", zoom, xOffset, yOffset)
	}

	img := newHeader(size, zoom, xOffset, yOffset)
	img.FillValues = append([]float64(nil), fill...)
	img.Channels = make([][]float64, len(fill))
	for c := range img.Channels {
		data := make([]float64, int(size)*int(size))
		for i := range data {
			data[i] = fill[c]
		}
		img.Channels[c] = data
	}
	return img, nil
}

func newHeader(size, zoom, xOffset, yOffset uint32) *GeoImage {
	n := float64(tilesAt(zoom))
	return &GeoImage{
		Size:       size,
		Zoom:       zoom,
		XOffset:    xOffset,
		YOffset:    yOffset,
		X0:         float64(xOffset) / n,
		Y0:         float64(yOffset) / n,
		PixelScale: 1 / float64(size) / n,
	}
}

func tilesAt(zoom uint32) uint64 {
	return uint64(1) << zoom
}

func (img *GeoImage) NumChannels() int {
	return len(img.Channels)
}

func (img *GeoImage) Value(channel int, x, y uint32) float64 {
	return img.Channels[channel][x+y*img.Size]
}

func (img *GeoImage) SetPixelValue(channel int, x, y uint32, value float64) error {
	if x >= img.Size || y >= img.Size {
		return fatal.Preconditionf("raster.SetPixelValue", "pixel (%d, %d) outside %dx%d image", x, y, img.Size, img.Size)
	}
	if channel < 0 || channel >= len(img.Channels) {
		return fatal.Preconditionf("raster.SetPixelValue", "channel %d of %d", channel, len(img.Channels))
	}
	img.Channels[channel][x+y*img.Size] = value
	return nil
}

// Clone returns a deep copy.
func (img *GeoImage) Clone() *GeoImage {
	c := *img
	c.FillValues = append([]float64(nil), img.FillValues...)
	c.Channels = make([][]float64, len(img.Channels))
	for i := range img.Channels {
		c.Channels[i] = append([]float64(nil), img.Channels[i]...)
	}
	return &c
}

func (img *GeoImage) String() string {
	return tileName(img.Zoom, img.XOffset, img.YOffset, img.Size)
}
