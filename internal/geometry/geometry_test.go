package geometry

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var square = [][][][2]float64{{{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}}}

func mustGeometry(t *testing.T, coords [][][][2]float64) *Geometry {
	t.Helper()
	g, err := New(coords)
	require.NoError(t, err)
	return g
}

func TestNewComputesBBoxes(t *testing.T) {
	g := mustGeometry(t, [][][][2]float64{
		{{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}},
		{{{20, -5}, {25, -5}, {25, 3}, {20, -5}}},
	})

	assert.Equal(t, BBox{XMin: 0, YMin: 0, XMax: 10, YMax: 10}, g.Polygons[0].BBox)
	assert.Equal(t, BBox{XMin: 20, YMin: -5, XMax: 25, YMax: 3}, g.Polygons[1].BBox)
	assert.Equal(t, BBox{XMin: 0, YMin: -5, XMax: 25, YMax: 10}, g.BBox)
	assert.Equal(t, Stats{Polygons: 2, Rings: 2, Points: 9}, g.Stats())
}

func TestNewClosesOpenRings(t *testing.T) {
	g := mustGeometry(t, [][][][2]float64{{{{0, 0}, {0, 1}, {1, 1}}}})

	ring := g.Polygons[0].Rings[0]
	require.Len(t, ring.Points, 4)
	assert.True(t, ring.Points[0].Equals(ring.Points[3]))
}

func TestNewRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		coords [][][][2]float64
	}{
		{"polygon without rings", [][][][2]float64{{}}},
		{"ring with one point", [][][][2]float64{{{{1, 1}}}}},
		{"nan coordinate", [][][][2]float64{{{{0, 0}, {math.NaN(), 1}, {1, 1}}}}},
		{"infinite coordinate", [][][][2]float64{{{{0, 0}, {1, math.Inf(1)}, {1, 1}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.coords)
			require.Error(t, err)
			assert.True(t, errors.Is(err, fatal.ErrInput))
		})
	}
}

func TestSquareContainsPoint(t *testing.T) {
	g := mustGeometry(t, square)

	assert.True(t, g.ContainsPoint(NewPoint(5, 5)))
	assert.False(t, g.ContainsPoint(NewPoint(15, 5)))
	assert.False(t, g.ContainsPoint(NewPoint(5, -1)))
}

func TestHoleIsOutside(t *testing.T) {
	g := mustGeometry(t, [][][][2]float64{{
		{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}})

	polygon := &g.Polygons[0]
	require.Len(t, polygon.Holes(), 1)
	assert.True(t, polygon.Outer().ContainsPoint(NewPoint(5, 5)))
	assert.True(t, polygon.Holes()[0].ContainsPoint(NewPoint(5, 5)))
	assert.False(t, g.ContainsPoint(NewPoint(5, 5)))
	assert.True(t, g.ContainsPoint(NewPoint(2, 5)))
}

func TestEmptyGeometry(t *testing.T) {
	g := mustGeometry(t, nil)

	assert.True(t, g.IsEmpty())
	assert.True(t, g.BBox.IsEmpty())
	assert.False(t, g.ContainsPoint(NewPoint(0, 0)))
	assert.False(t, mustGeometry(t, square).BBox.IsEmpty())
	assert.True(t, Merge().IsEmpty())
}

func TestContainsPointMatchesPlanar(t *testing.T) {
	coords := [][][][2]float64{
		{
			{{0, 0}, {3, 8}, {6, 1}, {9, 9}, {12, 0}, {6, -4}, {0, 0}},
			{{5, 0}, {7, 0}, {6, -2}, {5, 0}},
		},
		{{{20, 20}, {24, 21}, {22, 26}, {20, 20}}},
	}
	g := mustGeometry(t, coords)

	var mp orb.MultiPolygon
	for _, polygon := range coords {
		var op orb.Polygon
		for _, ring := range polygon {
			var or orb.Ring
			for _, c := range ring {
				or = append(or, orb.Point{c[0], c[1]})
			}
			op = append(op, or)
		}
		mp = append(mp, op)
	}

	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		x := rnd.Float64()*30 - 3
		y := rnd.Float64()*35 - 6
		want := planar.MultiPolygonContains(mp, orb.Point{x, y})
		assert.Equal(t, want, g.ContainsPoint(NewPoint(x, y)), "point (%v, %v)", x, y)
	}
}

func TestClipDropsFarVertices(t *testing.T) {
	// square with extra vertices along the top edge
	g := mustGeometry(t, [][][][2]float64{{{
		{0, 0}, {0, 10}, {3, 10}, {6, 10}, {10, 10}, {10, 0}, {0, 0},
	}}})

	clipped := g.Clip(CutTop(5))

	require.Len(t, clipped.Polygons, 1)
	ring := clipped.Polygons[0].Rings[0]
	// (3,10) and (6,10) have outside neighbours only
	assert.Len(t, ring.Points, 5)
	assert.True(t, ring.Points[0].Equals(ring.Points[len(ring.Points)-1]))
	assert.Equal(t, 10.0, ring.BBox.YMax)
	// the source is untouched
	assert.Len(t, g.Polygons[0].Rings[0].Points, 7)
}

func TestClipRemovesFullyOutsidePolygons(t *testing.T) {
	g := mustGeometry(t, [][][][2]float64{
		{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}},
		{{{5, 0}, {5, 1}, {6, 1}, {6, 0}, {5, 0}}},
	})

	tests := []struct {
		cut  Cut
		want int
	}{
		{CutRight(2), 1},
		{CutLeft(2), 1},
		{CutTop(-1), 0},
		{CutBottom(-1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.cut.String(), func(t *testing.T) {
			assert.Len(t, g.Clip(tt.cut).Polygons, tt.want)
		})
	}
}

func TestClipPreservesContainmentOnKeptSide(t *testing.T) {
	g := mustGeometry(t, [][][][2]float64{{
		{{0, 0}, {1, 7}, {2, 3}, {4, 9}, {5, 2}, {7, 8}, {9, 1}, {8, -3}, {3, -2}, {0, 0}},
		{{3, 1}, {4, 1}, {4, 2}, {3, 1}},
	}})
	cuts := []Cut{CutTop(4), CutBottom(1.5), CutLeft(3.5), CutRight(6)}

	rnd := rand.New(rand.NewSource(7))
	for _, c := range cuts {
		clipped := g.Clip(c)
		for i := 0; i < 3000; i++ {
			p := NewPoint(rnd.Float64()*10-0.5, rnd.Float64()*13-3.5)
			if c.Outside(p) {
				continue
			}
			assert.Equal(t, g.ContainsPoint(p), clipped.ContainsPoint(p), "%s at (%v, %v)", c, p.X, p.Y)
		}
	}
}

func TestSegmentsCoverEveryEdge(t *testing.T) {
	g := mustGeometry(t, [][][][2]float64{{
		{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 4}},
	}})

	segments := g.Segments()
	require.Len(t, segments, 7)
	assert.Equal(t, NewPoint(10, 0), segments[3].P0)
	assert.Equal(t, NewPoint(0, 0), segments[3].P1)
}
