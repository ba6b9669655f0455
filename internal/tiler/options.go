package tiler

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/ecopia-map/sdf_tiler/internal/raster"
)

type ContainmentStrategy string
type ImageFormat string

const (
	// Containment tested against the geometry clipped to each quadrant of
	// the recursive fill.
	ContainmentClip ContainmentStrategy = "CLIP"

	// Containment answered by a lookup grid over the rendered area.
	ContainmentGrid ContainmentStrategy = "GRID"
)

const (
	FormatPNG  ImageFormat = "png"
	FormatTIFF ImageFormat = "tiff"
)

func ParseContainmentStrategy(value string) ContainmentStrategy {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	if normalizedValue == "CLIP" {
		return ContainmentClip
	} else if normalizedValue == "GRID" {
		return ContainmentGrid
	}
	return ""
}

func ParseImageFormat(value string) ImageFormat {
	normalizedValue := strings.Trim(strings.ToLower(value), " ")
	switch normalizedValue {
	case "png":
		return FormatPNG
	case "tif", "tiff":
		return FormatTIFF
	}
	return ""
}

func (f ImageFormat) Extension() string {
	return string(f)
}

const BinExtension = "bin"

var (
	ErrTileSize    = errors.New("tile-size must be an even power of two")
	ErrSubdivision = errors.New("n must be a power of two")
	ErrDistance    = errors.New("max-distance must be positive and above min-distance")
	ErrOutOfGrid   = errors.New("tile offset outside the grid at this zoom")
	ErrSubtileZoom = errors.New("subtiles would be deeper than the last zoom level")
	ErrStrategy    = errors.New("containment must be either CLIP or GRID")
	ErrFormat      = errors.New("format must be either png or tiff")
	ErrMode        = errors.New("mode must be either sdf or field")
	ErrEncoding    = errors.New("encoding does not fit the mode")
)

// Contains the options needed for the tiling algorithm
type TilerOptions struct {
	Input            string  // Input GeoJSON file/folder
	Srid             int     // EPSG code for SRID of input coordinates
	FolderProcessing bool    // Enables the processing of all GeoJSON files in folder
	Recursive        bool    // Recursive lookup of GeoJSON files in subfolders
	Zoom             uint32  // Zoom of the rendered tile, or of the merged parent
	X                uint32  // Tile column
	Y                uint32  // Tile row
	N                uint32  // Subtiles per side rendered in one pass
	TileSize         uint32  // Pixels per side of exported tiles
	MaxDistance      float64 // Distance clamp in meters
	MinDistance      float64 // Lower bound of normalization in field mode
	Buffer           float64 // Buffer radius in meters subtracted from distances
	Mode             raster.Mode
	Encoding         raster.Encoding
	Format           ImageFormat
	DistanceScale    float64 // Packed units per meter
	Containment      ContainmentStrategy
	GridResolution   int    // Cells per side of the containment lookup grid
	ClipThreshold    uint32 // Smallest region width that still gets clipped geometry
	Supersampling    int    // Occupancy samples per pixel axis
	MaxLeafSize      int    // Max segments per segment tree leaf
	NumWorkers       int    // Concurrent fill and export workers
	FolderPNG        string // Root folder of exported images
	FolderBin        string // Root folder of binary tiles used for merging
	MetricsFile      string // Optional prometheus textfile written at the end

	Command             string
	TilerRenderOptions  *TilerRenderOptions
	TilerMergeOptions   *TilerMergeOptions
	TilerPyramidOptions *TilerPyramidOptions
	TilerVerifyOptions  *TilerVerifyOptions
}

type TilerRenderOptions struct {
	SkipBin bool // Do not save the binary thumb of the rendered tile
}

type TilerMergeOptions struct {
	AllowEmpty bool // Write a tile even if none of the children exist
}

type TilerPyramidOptions struct {
	BBox    [4]float64 // minLon, minLat, maxLon, maxLat
	MinZoom uint32     // Merge up to this zoom level
	Force   bool       // Rebuild tiles that already exist
}

type TilerVerifyOptions struct {
	Strict bool // Fail on the first invalid tile instead of reporting all
}

// Size of the rendered raster in pixels per side
func (opt *TilerOptions) RenderSize() uint32 {
	return opt.TileSize * opt.N
}

// Size of the binary thumbs exchanged between merge levels
func (opt *TilerOptions) ThumbSize() uint32 {
	return opt.TileSize / 2
}

func (opt *TilerOptions) FillOptions() raster.FillOptions {
	return raster.FillOptions{
		Mode:          opt.Mode,
		MaxDistance:   opt.MaxDistance,
		MinDistance:   opt.MinDistance,
		ClipThreshold: opt.ClipThreshold,
		Supersampling: opt.Supersampling,
		Workers:       opt.NumWorkers,
		SearchMargin:  opt.Buffer,
	}
}

func (opt *TilerOptions) ExportOptions() raster.ExportOptions {
	return raster.ExportOptions{
		Encoding:    opt.Encoding,
		MaxDistance: opt.MaxDistance,
		Scale:       opt.DistanceScale,
	}
}

func (opt *TilerOptions) FillValues() []float64 {
	return opt.Mode.FillValues(opt.FillOptions())
}

// Validate checks the options shared by all commands.
func (opt *TilerOptions) Validate() error {
	if opt.TileSize < 2 || opt.TileSize&(opt.TileSize-1) != 0 {
		return ErrTileSize
	}
	if opt.N == 0 || opt.N&(opt.N-1) != 0 {
		return ErrSubdivision
	}
	if !(opt.MaxDistance > 0) || !(opt.MaxDistance > opt.MinDistance) {
		return ErrDistance
	}
	if opt.Zoom > raster.MaxZoom || uint64(opt.X) >= uint64(1)<<opt.Zoom || uint64(opt.Y) >= uint64(1)<<opt.Zoom {
		return fmt.Errorf("%w: %d/%d/%d", ErrOutOfGrid, opt.Zoom, opt.X, opt.Y)
	}
	if opt.Mode != raster.ModeDistance && opt.Mode != raster.ModeField {
		return ErrMode
	}
	if opt.Containment == "" {
		return ErrStrategy
	}
	if opt.Format == "" {
		return ErrFormat
	}
	if (opt.Mode == raster.ModeField) != (opt.Encoding == raster.EncodingRG) {
		return fmt.Errorf("%w: %s with %s", ErrEncoding, opt.Mode, opt.Encoding)
	}
	return nil
}

// ValidateRender also checks that the subtiles of a rendered tile are
// still addressable.
func (opt *TilerOptions) ValidateRender() error {
	if err := opt.Validate(); err != nil {
		return err
	}
	if opt.Zoom+uint32(bits.TrailingZeros32(opt.N)) > raster.MaxZoom {
		return fmt.Errorf("%w: %d subtiles per side below zoom %d", ErrSubtileZoom, opt.N, opt.Zoom)
	}
	return nil
}

func (opt *TilerOptions) Copy() *TilerOptions {
	newOpt := *opt
	newOpt.TilerRenderOptions = nil
	newOpt.TilerMergeOptions = nil
	newOpt.TilerPyramidOptions = nil
	newOpt.TilerVerifyOptions = nil

	if opt.TilerRenderOptions != nil {
		renderOpt := *opt.TilerRenderOptions
		newOpt.TilerRenderOptions = &renderOpt
	}

	if opt.TilerMergeOptions != nil {
		mergeOpt := *opt.TilerMergeOptions
		newOpt.TilerMergeOptions = &mergeOpt
	}

	if opt.TilerPyramidOptions != nil {
		pyramidOpt := *opt.TilerPyramidOptions
		newOpt.TilerPyramidOptions = &pyramidOpt
	}

	if opt.TilerVerifyOptions != nil {
		verifyOpt := *opt.TilerVerifyOptions
		newOpt.TilerVerifyOptions = &verifyOpt
	}

	return &newOpt
}

// At returns a copy of the options targeting another tile.
func (opt *TilerOptions) At(zoom, x, y uint32) *TilerOptions {
	newOpt := opt.Copy()
	newOpt.Zoom = zoom
	newOpt.X = x
	newOpt.Y = y
	return newOpt
}
