package raster

import (
	"fmt"
	"math"

	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"seehuhn.de/go/geom/rect"
)

// PixelToPoint maps fractional pixel coordinates to lon/lat. Pixel (x, y)
// spans [x, x+1) x [y, y+1), so its center is at (x+0.5, y+0.5).
func (img *GeoImage) PixelToPoint(px, py float64) geometry.Point {
	return geometry.NewPoint(
		mercatorXToLon(px*img.PixelScale+img.X0),
		mercatorYToLat(py*img.PixelScale+img.Y0),
	)
}

// PointToPixel is the inverse of PixelToPoint.
func (img *GeoImage) PointToPixel(lon, lat float64) (float64, float64) {
	return (lonToMercatorX(lon) - img.X0) / img.PixelScale,
		(latToMercatorY(lat) - img.Y0) / img.PixelScale
}

// Bounds returns the lon/lat extent of the outer pixel edges.
func (img *GeoImage) Bounds() rect.Rect {
	nw := img.PixelToPoint(0, 0)
	se := img.PixelToPoint(float64(img.Size), float64(img.Size))
	return rect.Rect{LLx: nw.X, LLy: se.Y, URx: se.X, URy: nw.Y}
}

func mercatorXToLon(x float64) float64 {
	return x*360 - 180
}

func mercatorYToLat(y float64) float64 {
	return (math.Atan(math.Exp((1-2*y)*math.Pi))*4/math.Pi - 1) * 90
}

func lonToMercatorX(lon float64) float64 {
	return (lon + 180) / 360
}

func latToMercatorY(lat float64) float64 {
	return (1 - math.Log(math.Tan((lat/90+1)*math.Pi/4))/math.Pi) / 2
}

func tileName(zoom, x, y, size uint32) string {
	return fmt.Sprintf("%d/%d/%d@%d", zoom, x, y, size)
}
