package raster

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
)

const (
	codecVersion = 1
	maxCodecSize = 1 << 15
	maxChannels  = 16
)

var codecMagic = [4]byte{'S', 'D', 'F', 'T'}

// on disk header, little endian, followed per channel by its fill value and
// Size*Size samples
type header struct {
	Magic      [4]byte
	Version    uint16
	Size       uint32
	Zoom       uint32
	XOffset    uint32
	YOffset    uint32
	X0         float64
	Y0         float64
	PixelScale float64
	Channels   uint32
}

func (img *GeoImage) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	h := header{
		Magic:      codecMagic,
		Version:    codecVersion,
		Size:       img.Size,
		Zoom:       img.Zoom,
		XOffset:    img.XOffset,
		YOffset:    img.YOffset,
		X0:         img.X0,
		Y0:         img.Y0,
		PixelScale: img.PixelScale,
		Channels:   uint32(len(img.Channels)),
	}
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return fatal.IO("raster.Save", err)
	}
	for c, data := range img.Channels {
		if err := binary.Write(bw, binary.LittleEndian, img.FillValues[c]); err != nil {
			return fatal.IO("raster.Save", err)
		}
		if err := binary.Write(bw, binary.LittleEndian, data); err != nil {
			return fatal.IO("raster.Save", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fatal.IO("raster.Save", err)
	}
	return nil
}

func Load(r io.Reader) (*GeoImage, error) {
	br := bufio.NewReader(r)
	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, truncated("header", err)
	}
	if h.Magic != codecMagic {
		return nil, fatal.Inputf("raster.Load", "bad magic %q", h.Magic[:])
	}
	if h.Version != codecVersion {
		return nil, fatal.Inputf("raster.Load", "unsupported version %d", h.Version)
	}
	if h.Size == 0 || h.Size > maxCodecSize || h.Channels == 0 || h.Channels > maxChannels {
		return nil, fatal.Inputf("raster.Load", "implausible size %d with %d channels", h.Size, h.Channels)
	}
	if h.Zoom > MaxZoom || uint64(h.XOffset) >= tilesAt(h.Zoom) || uint64(h.YOffset) >= tilesAt(h.Zoom) {
		return nil, fatal.Inputf("raster.Load", "tile %d/%d/%d outside the grid", h.Zoom, h.XOffset, h.YOffset)
	}

	img := &GeoImage{
		Size:       h.Size,
		Zoom:       h.Zoom,
		XOffset:    h.XOffset,
		YOffset:    h.YOffset,
		X0:         h.X0,
		Y0:         h.Y0,
		PixelScale: h.PixelScale,
		FillValues: make([]float64, h.Channels),
		Channels:   make([][]float64, h.Channels),
	}
	for c := range img.Channels {
		if err := binary.Read(br, binary.LittleEndian, &img.FillValues[c]); err != nil {
			return nil, truncated("channel fill", err)
		}
		data := make([]float64, int(h.Size)*int(h.Size))
		if err := binary.Read(br, binary.LittleEndian, data); err != nil {
			return nil, truncated("channel data", err)
		}
		img.Channels[c] = data
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fatal.Inputf("raster.Load", "trailing data after %d channels", h.Channels)
	}
	return img, nil
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fatal.Inputf("raster.Load", "truncated %s", what)
	}
	return fatal.IO("raster.Load", err)
}

func (img *GeoImage) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fatal.IO("raster.SaveFile", err)
	}
	if err := img.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fatal.IO("raster.SaveFile", err)
	}
	return nil
}

func LoadFile(path string) (*GeoImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fatal.IO("raster.LoadFile", err)
	}
	defer f.Close()
	return Load(f)
}

// Equal reports whether a and b hold bit identical headers and samples.
func Equal(a, b *GeoImage) bool {
	if a.Size != b.Size || a.Zoom != b.Zoom || a.XOffset != b.XOffset || a.YOffset != b.YOffset ||
		!sameBits(a.X0, b.X0) || !sameBits(a.Y0, b.Y0) || !sameBits(a.PixelScale, b.PixelScale) ||
		len(a.Channels) != len(b.Channels) {
		return false
	}
	for c := range a.Channels {
		if !sameBits(a.FillValues[c], b.FillValues[c]) || len(a.Channels[c]) != len(b.Channels[c]) {
			return false
		}
		for i, v := range a.Channels[c] {
			if !sameBits(v, b.Channels[c][i]) {
				return false
			}
		}
	}
	return true
}

func sameBits(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}
