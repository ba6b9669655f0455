package pkg

import (
	"sort"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
	"github.com/ecopia-map/sdf_tiler/pkg/algorithm_manager"
	"github.com/ecopia-map/sdf_tiler/tools"
	"github.com/golang/glog"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

type TilerPyramid struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewTilerPyramid(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) tiler.ITiler {
	return &TilerPyramid{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Renders every tile over the bbox at the render zoom, then merges their parents level by level up to MinZoom
func (tilerPyramid *TilerPyramid) RunTiler(opts *tiler.TilerOptions) error {
	defer tilerPyramid.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()

	pyramidOpts := opts.TilerPyramidOptions
	if pyramidOpts == nil {
		pyramidOpts = &tiler.TilerPyramidOptions{MinZoom: opts.Zoom}
	}
	if pyramidOpts.MinZoom > opts.Zoom {
		return fatal.Preconditionf("pyramid", "min zoom %d above render zoom %d", pyramidOpts.MinZoom, opts.Zoom)
	}

	g, err := loadGeometry(tilerPyramid.fileFinder, tilerPyramid.algorithmManager, opts)
	if err != nil {
		return err
	}

	bound, err := pyramidBound(pyramidOpts.BBox, g)
	if err != nil {
		return err
	}
	tiles := TilesInBound(bound, opts.Zoom)
	tools.LogOutput("> rendering", len(tiles), "tiles at zoom", opts.Zoom)

	rebuilt := make(map[maptile.Tile]bool)
	present := make([]maptile.Tile, 0, len(tiles))
	for i, t := range tiles {
		tileOpts := opts.At(opts.Zoom, t.X, t.Y)
		tileOpts.TilerRenderOptions = nil
		if !pyramidOpts.Force && tilesExist(tileOpts) {
			glog.V(1).Infof("skipping existing tile %d/%d/%d", t.Z, t.X, t.Y)
			present = append(present, t)
			continue
		}
		tools.LogOutput("Rendering tile", i+1, "/", len(tiles))
		if err := renderTile(tilerPyramid.algorithmManager, g, tileOpts); err != nil {
			return err
		}
		rebuilt[t] = true
		present = append(present, t)
	}

	for zoom := opts.Zoom; zoom > pyramidOpts.MinZoom; zoom-- {
		parents := parentTiles(present)
		tools.LogOutput("> merging", len(parents), "tiles at zoom", zoom-1)

		present = present[:0]
		for _, p := range parents {
			parentOpts := opts.At(zoom-1, p.X, p.Y)
			parentOpts.TilerMergeOptions = &tiler.TilerMergeOptions{AllowEmpty: true}
			if !pyramidOpts.Force && !childRebuilt(p, rebuilt) && tilesExist(parentOpts) {
				present = append(present, p)
				continue
			}
			if err := mergeTile(tilerPyramid.fileFinder, tilerPyramid.algorithmManager, parentOpts); err != nil {
				return err
			}
			rebuilt[p] = true
			present = append(present, p)
		}
	}

	tools.LogOutput("> done building pyramid", pyramidOpts.MinZoom, "-", opts.Zoom)
	return nil
}

// Area of the pyramid, the bbox option if set or else the bbox of g
func pyramidBound(bbox [4]float64, g *geometry.Geometry) (orb.Bound, error) {
	if bbox != [4]float64{} {
		return orb.Bound{Min: orb.Point{bbox[0], bbox[1]}, Max: orb.Point{bbox[2], bbox[3]}}, nil
	}
	if g.BBox.IsEmpty() {
		return orb.Bound{}, fatal.Inputf("pyramid", "input has no polygons, set -bbox to render empty tiles")
	}
	return orb.Bound{Min: orb.Point{g.BBox.XMin, g.BBox.YMin}, Max: orb.Point{g.BBox.XMax, g.BBox.YMax}}, nil
}

const maxMercatorLat = 85.05112878

// TilesInBound lists the tiles at zoom covering bound, row by row.
func TilesInBound(bound orb.Bound, zoom uint32) []maptile.Tile {
	if bound.Min[0] > bound.Max[0] || bound.Min[1] > bound.Max[1] {
		return nil
	}
	bound.Min[1] = max(bound.Min[1], -maxMercatorLat)
	bound.Max[1] = min(bound.Max[1], maxMercatorLat)
	z := maptile.Zoom(zoom)
	minTile := maptile.At(bound.Min, z)
	maxTile := maptile.At(bound.Max, z)

	minX, maxX := minTile.X, maxTile.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := minTile.Y, maxTile.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	last := uint32(1)<<zoom - 1
	maxX = min(maxX, last)
	maxY = min(maxY, last)

	var tiles []maptile.Tile
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			tiles = append(tiles, maptile.New(x, y, z))
		}
	}
	return tiles
}

func parentTiles(tiles []maptile.Tile) []maptile.Tile {
	seen := make(map[maptile.Tile]bool)
	var parents []maptile.Tile
	for _, t := range tiles {
		p := t.Parent()
		if !seen[p] {
			seen[p] = true
			parents = append(parents, p)
		}
	}
	sort.Slice(parents, func(i, j int) bool {
		if parents[i].Y != parents[j].Y {
			return parents[i].Y < parents[j].Y
		}
		return parents[i].X < parents[j].X
	})
	return parents
}

func childRebuilt(p maptile.Tile, rebuilt map[maptile.Tile]bool) bool {
	for _, q := range raster.Layout {
		if rebuilt[maptile.New(p.X*2+q.DX, p.Y*2+q.DY, p.Z+1)] {
			return true
		}
	}
	return false
}

// Reports whether the image and the binary thumb of the tile of opts are both on disk
func tilesExist(opts *tiler.TilerOptions) bool {
	return tools.FileExists(raster.CalcPath(opts.FolderPNG, opts.Zoom, opts.X, opts.Y, opts.Format.Extension())) &&
		tools.FileExists(raster.CalcPath(opts.FolderBin, opts.Zoom, opts.X, opts.Y, tiler.BinExtension))
}
