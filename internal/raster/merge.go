package raster

import (
	"github.com/ecopia-map/sdf_tiler/internal/fatal"
)

// Quadrant places child Index of a merge at (DX, DY) in units of half the
// parent size.
type Quadrant struct {
	Index  int
	DX, DY uint32
}

// Layout is the child order of Merge: top left, top right, bottom left,
// bottom right.
var Layout = [4]Quadrant{
	{0, 0, 0},
	{1, 1, 0},
	{2, 0, 1},
	{3, 1, 1},
}

// Merge assembles tile (zoom, x, y) of size pixels from its four children
// at zoom+1, each size/2 pixels. Missing children are nil and leave their
// quadrant at fill.
func Merge(children [4]*GeoImage, size, zoom, x, y uint32, fill []float64) (*GeoImage, error) {
	if size < 2 || size%2 != 0 {
		return nil, fatal.Preconditionf("raster.Merge", "size %d is not even", size)
	}
	out, err := NewGeoImage(size, zoom, x, y, fill...)
	if err != nil {
		return nil, err
	}

	half := size / 2
	for _, q := range Layout {
		child := children[q.Index]
		if child == nil {
			continue
		}
		if err := validateChild(child, q, half, zoom, x, y, len(fill)); err != nil {
			return nil, err
		}
		offset := q.DX*half + q.DY*half*size
		for c := range out.Channels {
			dst := out.Channels[c]
			src := child.Channels[c]
			for row := uint32(0); row < half; row++ {
				copy(dst[offset+row*size:offset+row*size+half], src[row*half:(row+1)*half])
			}
		}
	}
	return out, nil
}

func validateChild(child *GeoImage, q Quadrant, half, zoom, x, y uint32, channels int) error {
	switch {
	case child.Size != half:
		return fatal.Structuref("raster.Merge", "child %d has size %d, want %d", q.Index, child.Size, half)
	case child.Zoom != zoom+1:
		return fatal.Structuref("raster.Merge", "child %d has zoom %d, want %d", q.Index, child.Zoom, zoom+1)
	case child.XOffset != x*2+q.DX || child.YOffset != y*2+q.DY:
		return fatal.Structuref("raster.Merge", "child %d is tile %d/%d, want %d/%d", q.Index, child.XOffset, child.YOffset, x*2+q.DX, y*2+q.DY)
	case child.NumChannels() != channels:
		return fatal.Structuref("raster.Merge", "child %d has %d channels, want %d", q.Index, child.NumChannels(), channels)
	}
	return nil
}
