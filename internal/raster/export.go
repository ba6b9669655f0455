package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
)

type Encoding string

const (
	// Distance as uint16 split over red (low byte) and green (high byte).
	EncodingPacked Encoding = "packed"
	// Distance as 16 bit grayscale.
	EncodingGray16 Encoding = "gray16"
	// Channel 0 and 1 as red and green, each from [0, 1].
	EncodingRG Encoding = "rg"
)

func ParseEncoding(value string) (Encoding, error) {
	switch e := Encoding(value); e {
	case EncodingPacked, EncodingGray16, EncodingRG:
		return e, nil
	}
	return "", fmt.Errorf("unknown encoding %q, expected one of packed, gray16, rg", value)
}

// DefaultEncoding is the natural image encoding of a render mode.
func DefaultEncoding(mode Mode) Encoding {
	if mode == ModeField {
		return EncodingRG
	}
	return EncodingPacked
}

type ExportOptions struct {
	Encoding Encoding
	// Distance clamp before packing
	MaxDistance float64
	// Packed units per meter
	Scale float64
}

const DefaultDistanceScale = 10

// Image renders img into an 8 bit RGBA or 16 bit gray image.
func (img *GeoImage) Image(opts ExportOptions) (image.Image, error) {
	if opts.MaxDistance == 0 {
		opts.MaxDistance = MaxDistance
	}
	if opts.Scale == 0 {
		opts.Scale = DefaultDistanceScale
	}
	size := int(img.Size)
	bounds := image.Rect(0, 0, size, size)

	switch opts.Encoding {
	case EncodingPacked:
		out := image.NewRGBA(bounds)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				v := packDistance(img.Channels[0][x+y*size], opts)
				out.SetRGBA(x, y, color.RGBA{R: uint8(v), G: uint8(v >> 8), A: 255})
			}
		}
		return out, nil

	case EncodingGray16:
		out := image.NewGray16(bounds)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				out.SetGray16(x, y, color.Gray16{Y: packDistance(img.Channels[0][x+y*size], opts)})
			}
		}
		return out, nil

	case EncodingRG:
		if img.NumChannels() < 2 {
			return nil, fatal.Preconditionf("raster.Image", "rg encoding needs 2 channels, image has %d", img.NumChannels())
		}
		out := image.NewRGBA(bounds)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				i := x + y*size
				out.SetRGBA(x, y, color.RGBA{
					R: unitToByte(img.Channels[0][i]),
					G: unitToByte(img.Channels[1][i]),
					A: 255,
				})
			}
		}
		return out, nil
	}
	return nil, fatal.Preconditionf("raster.Image", "unknown encoding %q", opts.Encoding)
}

func packDistance(d float64, opts ExportOptions) uint16 {
	d = math.Max(-opts.MaxDistance, math.Min(opts.MaxDistance, d))
	v := math.Round(d*opts.Scale) + 32768
	return uint16(math.Max(0, math.Min(65535, v)))
}

// UnpackDistance inverts the packed and gray16 encodings.
func UnpackDistance(v uint16, scale float64) float64 {
	if scale == 0 {
		scale = DefaultDistanceScale
	}
	return (float64(v) - 32768) / scale
}

func unitToByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
