package raster

import "github.com/ecopia-map/sdf_tiler/internal/fatal"

// ScaledDownClone box filters img to newSize pixels per side. The clone
// covers the same tile, so zoom and offsets are unchanged.
func (img *GeoImage) ScaledDownClone(newSize uint32) (*GeoImage, error) {
	if newSize == 0 || newSize >= img.Size {
		return nil, fatal.Preconditionf("raster.ScaledDownClone", "new size %d must be below %d", newSize, img.Size)
	}
	if img.Size%newSize != 0 {
		return nil, fatal.Preconditionf("raster.ScaledDownClone", "new size %d does not divide %d", newSize, img.Size)
	}

	f := img.Size / newSize
	norm := 1 / float64(f*f)

	out := newHeader(newSize, img.Zoom, img.XOffset, img.YOffset)
	out.FillValues = append([]float64(nil), img.FillValues...)
	out.Channels = make([][]float64, len(img.Channels))
	for c, src := range img.Channels {
		dst := make([]float64, int(newSize)*int(newSize))
		for y := uint32(0); y < newSize; y++ {
			for x := uint32(0); x < newSize; x++ {
				sum := 0.0
				for yi := y * f; yi < (y+1)*f; yi++ {
					row := src[yi*img.Size:]
					for xi := x * f; xi < (x+1)*f; xi++ {
						sum += row[xi]
					}
				}
				dst[x+y*newSize] = sum * norm
			}
		}
		out.Channels[c] = dst
	}
	return out, nil
}
