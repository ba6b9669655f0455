package raster

import (
	"math"
	"runtime"

	"github.com/ecopia-map/sdf_tiler/internal/converters"
	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/ecopia-map/sdf_tiler/internal/index"
	"golang.org/x/sync/errgroup"
)

type Mode string

const (
	// One channel with the clamped signed distance in meters, negative
	// inside. Values are not normalized, see ModeField for that.
	ModeDistance Mode = "sdf"

	// Two channels: the signed distance normalized from [MinDistance,
	// MaxDistance] to [0, 1], and the covered fraction of the pixel.
	ModeField Mode = "field"
)

func (m Mode) Channels() int {
	if m == ModeField {
		return 2
	}
	return 1
}

// FillValues returns the fill value per channel of an image rendered in
// this mode.
func (m Mode) FillValues(opts FillOptions) []float64 {
	opts = opts.withDefaults()
	if m == ModeField {
		return []float64{opts.normalize(opts.MaxDistance), 0}
	}
	return []float64{opts.MaxDistance}
}

const DefaultClipThreshold = 128

type FillOptions struct {
	Mode        Mode
	MaxDistance float64
	MinDistance float64
	// Regions at least this many pixels wide get the geometry clipped to
	// their quadrants before descending.
	ClipThreshold uint32
	// Occupancy samples per pixel and axis in ModeField
	Supersampling int
	// Concurrent region fills, defaults to the number of CPUs
	Workers int
	// Optional, applied to the signed distance before clamping
	Corrector converters.DistanceCorrector
	// Extra search radius beyond MaxDistance, needed when the corrector
	// shrinks distances
	SearchMargin float64
}

func (opts FillOptions) withDefaults() FillOptions {
	if opts.Mode == "" {
		opts.Mode = ModeDistance
	}
	if opts.MaxDistance == 0 {
		opts.MaxDistance = MaxDistance
	}
	if opts.MinDistance == 0 {
		opts.MinDistance = -opts.MaxDistance
	}
	if opts.ClipThreshold == 0 {
		opts.ClipThreshold = DefaultClipThreshold
	}
	if opts.Supersampling < 1 {
		opts.Supersampling = 4
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	return opts
}

func (opts FillOptions) normalize(d float64) float64 {
	return (d - opts.MinDistance) / (opts.MaxDistance - opts.MinDistance)
}

type region struct {
	geometry      *geometry.Geometry
	x, y          uint32
	width, height uint32
}

// Fill computes every pixel of img from the boundary distance index and
// the geometry it was built from.
//
// If contains is nil, containment is tested against g clipped down to the
// quadrant being filled. Otherwise contains answers for every pixel and g
// is only used for its bbox.
//
// Leaf regions are pixel disjoint and filled concurrently.
func (img *GeoImage) Fill(g *geometry.Geometry, distances index.DistanceIndex, contains index.ContainmentIndex, opts FillOptions) error {
	opts = opts.withDefaults()
	if img.NumChannels() != opts.Mode.Channels() {
		return fatal.Preconditionf("raster.Fill", "mode %s needs %d channels, image has %d", opts.Mode, opts.Mode.Channels(), img.NumChannels())
	}
	if !(opts.MaxDistance > opts.MinDistance) {
		return fatal.Preconditionf("raster.Fill", "max distance %v not above min distance %v", opts.MaxDistance, opts.MinDistance)
	}

	var regions []region
	img.split(region{geometry: g, width: img.Size, height: img.Size}, opts.ClipThreshold, contains == nil, &regions)

	var eg errgroup.Group
	eg.SetLimit(opts.Workers)
	for _, r := range regions {
		eg.Go(func() (err error) {
			defer fatal.Recover(&err)
			var inside index.ContainmentIndex = r.geometry
			if contains != nil {
				inside = contains
			}
			return img.fillRegion(r, distances, inside, opts)
		})
	}
	return eg.Wait()
}

// split quarters r until it is narrower than threshold. The quadrant
// geometry is clipped at the midlines when clip is set.
func (img *GeoImage) split(r region, threshold uint32, clip bool, out *[]region) {
	if r.width < threshold || r.height < threshold || r.width < 2 || r.height < 2 {
		*out = append(*out, r)
		return
	}

	hw := r.width / 2
	hh := r.height / 2
	mid := img.PixelToPoint(float64(r.x+hw), float64(r.y+hh))

	quadrants := [4]struct {
		x, y, w, h uint32
		cuts       [2]geometry.Cut
	}{
		{r.x, r.y, hw, hh, [2]geometry.Cut{geometry.CutRight(mid.X), geometry.CutBottom(mid.Y)}},
		{r.x + hw, r.y, r.width - hw, hh, [2]geometry.Cut{geometry.CutLeft(mid.X), geometry.CutBottom(mid.Y)}},
		{r.x, r.y + hh, hw, r.height - hh, [2]geometry.Cut{geometry.CutRight(mid.X), geometry.CutTop(mid.Y)}},
		{r.x + hw, r.y + hh, r.width - hw, r.height - hh, [2]geometry.Cut{geometry.CutLeft(mid.X), geometry.CutTop(mid.Y)}},
	}
	for _, q := range quadrants {
		g := r.geometry
		if clip {
			g = g.Clip(q.cuts[0]).Clip(q.cuts[1])
		}
		img.split(region{geometry: g, x: q.x, y: q.y, width: q.w, height: q.h}, threshold, clip, out)
	}
}

func (img *GeoImage) fillRegion(r region, distances index.DistanceIndex, inside index.ContainmentIndex, opts FillOptions) error {
	for py := r.y; py < r.y+r.height; py++ {
		for px := r.x; px < r.x+r.width; px++ {
			p := img.PixelToPoint(float64(px)+0.5, float64(py)+0.5)

			d := distances.MinDistance(p, opts.MaxDistance+opts.SearchMargin)
			if inside.ContainsPoint(p) {
				d = -d
			}
			if opts.Corrector != nil {
				d = opts.Corrector.CorrectDistance(p.X, p.Y, d)
			}
			d = math.Max(-opts.MaxDistance, math.Min(opts.MaxDistance, d))

			if opts.Mode == ModeDistance {
				if err := img.SetPixelValue(0, px, py, d); err != nil {
					return err
				}
				continue
			}

			if err := img.SetPixelValue(0, px, py, opts.normalize(d)); err != nil {
				return err
			}
			if err := img.SetPixelValue(1, px, py, img.occupancy(px, py, inside, opts.Supersampling)); err != nil {
				return err
			}
		}
	}
	return nil
}

// occupancy is the share of an n x n grid of sample points in the pixel
// that lie inside.
func (img *GeoImage) occupancy(px, py uint32, inside index.ContainmentIndex, n int) float64 {
	count := 0
	step := 1 / float64(n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			p := img.PixelToPoint(float64(px)+(float64(i)+0.5)*step, float64(py)+(float64(j)+0.5)*step)
			if inside.ContainsPoint(p) {
				count++
			}
		}
	}
	return float64(count) / float64(n*n)
}

// NearbyGeometry drops the parts of g farther than maxDistance from the
// image. Distances below maxDistance and containment inside the image are
// the same for the result as for g.
func (img *GeoImage) NearbyGeometry(g *geometry.Geometry, maxDistance float64) *geometry.Geometry {
	b := img.Bounds()
	dy := maxDistance / geometry.Deg2Meters
	// a degree of longitude is shortest on the poleward edge
	lat := math.Max(math.Abs(b.LLy), math.Abs(b.URy))
	dx := dy / math.Max(math.Cos(lat*math.Pi/180), 1e-6)
	return g.
		Clip(geometry.CutLeft(b.LLx - dx)).
		Clip(geometry.CutRight(b.URx + dx)).
		Clip(geometry.CutBottom(b.LLy - dy)).
		Clip(geometry.CutTop(b.URy + dy))
}
