package raster

import (
	"math/bits"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
)

// ExtractSubtile copies the tileSize window at grid position (dx, dy). The
// window is a tile of its own, log2(Size/tileSize) zoom levels deeper.
func (img *GeoImage) ExtractSubtile(dx, dy, tileSize uint32) (*GeoImage, error) {
	dz, err := img.subdivision(tileSize)
	if err != nil {
		return nil, err
	}
	if img.Zoom+dz > MaxZoom {
		return nil, fatal.Preconditionf("raster.ExtractSubtile", "subtiles of %s would be at zoom %d", img, img.Zoom+dz)
	}
	n := uint32(1) << dz
	if dx >= n || dy >= n {
		return nil, fatal.Preconditionf("raster.ExtractSubtile", "subtile (%d, %d) outside %dx%d grid", dx, dy, n, n)
	}

	out := newHeader(tileSize, img.Zoom+dz, img.XOffset*n+dx, img.YOffset*n+dy)
	out.FillValues = append([]float64(nil), img.FillValues...)
	out.Channels = make([][]float64, len(img.Channels))
	for c, src := range img.Channels {
		dst := make([]float64, int(tileSize)*int(tileSize))
		for y := uint32(0); y < tileSize; y++ {
			i0 := dx*tileSize + (dy*tileSize+y)*img.Size
			copy(dst[y*tileSize:(y+1)*tileSize], src[i0:i0+tileSize])
		}
		out.Channels[c] = dst
	}
	return out, nil
}

// subdivision returns dz with tileSize << dz == Size.
func (img *GeoImage) subdivision(tileSize uint32) (uint32, error) {
	if tileSize == 0 || img.Size%tileSize != 0 {
		return 0, fatal.Preconditionf("raster.ExtractSubtile", "tile size %d does not divide %d", tileSize, img.Size)
	}
	n := img.Size / tileSize
	if bits.OnesCount32(n) != 1 {
		return 0, fatal.Preconditionf("raster.ExtractSubtile", "%d tiles per side is not a power of two", n)
	}
	return uint32(bits.TrailingZeros32(n)), nil
}

// ExportTileTree emits every tileSize subtile of img, then the subtiles of
// each half resolution reduction until one tile is left. Tiles are emitted
// deepest zoom first.
func (img *GeoImage) ExportTileTree(tileSize uint32, emit func(tile *GeoImage) error) error {
	dz, err := img.subdivision(tileSize)
	if err != nil {
		return err
	}
	n := uint32(1) << dz
	for dy := uint32(0); dy < n; dy++ {
		for dx := uint32(0); dx < n; dx++ {
			tile, err := img.ExtractSubtile(dx, dy, tileSize)
			if err != nil {
				return err
			}
			if err := emit(tile); err != nil {
				return err
			}
		}
	}
	if img.Size <= tileSize {
		return nil
	}
	half, err := img.ScaledDownClone(img.Size / 2)
	if err != nil {
		return err
	}
	return half.ExportTileTree(tileSize, emit)
}
