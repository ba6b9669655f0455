package lookup_grid

import (
	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/ecopia-map/sdf_tiler/internal/index"
	"seehuhn.de/go/geom/rect"
)

// LookupGrid is a resolution x resolution grid over a lon/lat region that
// answers most containment queries without touching a polygon.
type LookupGrid struct {
	geometry   *geometry.Geometry
	region     rect.Rect
	resolution int
	cellWidth  float64
	cellHeight float64
	cells      []cell
}

var _ index.ContainmentIndex = (*LookupGrid)(nil)

// NewLookupGrid classifies every cell of the grid against every polygon of g
// whose bbox reaches into the region.
func NewLookupGrid(g *geometry.Geometry, region rect.Rect, resolution int) (*LookupGrid, error) {
	if resolution < 1 {
		return nil, fatal.Preconditionf("lookup_grid.NewLookupGrid", "resolution %d", resolution)
	}
	if !(region.URx > region.LLx && region.URy > region.LLy) {
		return nil, fatal.Preconditionf("lookup_grid.NewLookupGrid", "empty region %v", region)
	}

	grid := &LookupGrid{
		geometry:   g,
		region:     region,
		resolution: resolution,
		cellWidth:  (region.URx - region.LLx) / float64(resolution),
		cellHeight: (region.URy - region.LLy) / float64(resolution),
		cells:      make([]cell, resolution*resolution),
	}
	for i := range g.Polygons {
		grid.addPolygon(i)
	}
	return grid, nil
}

func (grid *LookupGrid) addPolygon(i int) {
	polygon := &grid.geometry.Polygons[i]
	bbox := polygon.BBox
	if bbox.XMax < grid.region.LLx || bbox.XMin > grid.region.URx ||
		bbox.YMax < grid.region.LLy || bbox.YMin > grid.region.URy {
		return
	}

	cx0, cy0 := grid.cellIndex(bbox.XMin, bbox.YMin)
	cx1, cy1 := grid.cellIndex(bbox.XMax, bbox.YMax)
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			c := &grid.cells[cx+cy*grid.resolution]
			if c.covered {
				continue
			}
			switch classify(polygon, grid.cellBBox(cx, cy)) {
			case relationCovers:
				c.covered = true
				c.candidates = nil
			case relationTouches:
				c.candidates = append(c.candidates, i)
			}
		}
	}
}

// cellIndex clamps to the grid, so a coordinate on the upper region edge
// falls into the last cell.
func (grid *LookupGrid) cellIndex(x, y float64) (int, int) {
	cx := int((x - grid.region.LLx) / grid.cellWidth)
	cy := int((y - grid.region.LLy) / grid.cellHeight)
	return clamp(cx, grid.resolution-1), clamp(cy, grid.resolution-1)
}

func (grid *LookupGrid) cellBBox(cx, cy int) geometry.BBox {
	// derive edges from the same expression for neighbouring cells so that
	// they share their edges exactly
	return geometry.BBox{
		XMin: grid.region.LLx + float64(cx)*grid.cellWidth,
		YMin: grid.region.LLy + float64(cy)*grid.cellHeight,
		XMax: grid.region.LLx + float64(cx+1)*grid.cellWidth,
		YMax: grid.region.LLy + float64(cy+1)*grid.cellHeight,
	}
}

// ContainsPoint gives the same answer as the geometry it was built from for
// any point of the region. Points outside the region are a caller error.
func (grid *LookupGrid) ContainsPoint(p geometry.Point) bool {
	if !(p.X >= grid.region.LLx && p.X <= grid.region.URx && p.Y >= grid.region.LLy && p.Y <= grid.region.URy) {
		panic(fatal.Preconditionf("lookup_grid.ContainsPoint", "point (%v, %v) outside grid region %v", p.X, p.Y, grid.region))
	}
	cx, cy := grid.cellIndex(p.X, p.Y)
	c := &grid.cells[cx+cy*grid.resolution]
	if c.covered {
		return true
	}
	for _, i := range c.candidates {
		if grid.geometry.Polygons[i].ContainsPoint(p) {
			return true
		}
	}
	return false
}

// Stats returns the number of empty, covered and candidate cells.
func (grid *LookupGrid) Stats() (empty, covered, candidates int) {
	for i := range grid.cells {
		switch {
		case grid.cells[i].covered:
			covered++
		case len(grid.cells[i].candidates) > 0:
			candidates++
		default:
			empty++
		}
	}
	return
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
