package segment_tree

import (
	"container/heap"
	"errors"
	"sync/atomic"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/ecopia-map/sdf_tiler/internal/index"
	"github.com/golang/glog"
)

const DefaultMaxLeafSize = 8

// Nodes are kept in a flat arena and refer to each other by index. A leaf
// owns the range [start, end) of the tree's segment slice; internal nodes
// keep the range of their whole subtree.
type node struct {
	bbox        geometry.BBox
	left, right int32
	start, end  int32
}

func (n *node) isLeaf() bool {
	return n.left < 0
}

// SegmentTree answers nearest boundary distance queries over a static set
// of segments with best-first branch and bound search.
type SegmentTree struct {
	nodes       []node
	segments    []geometry.Segment
	maxLeafSize int
	built       bool
	visited     atomic.Int64
}

// QueryStats counts the work done by one or more queries.
type QueryStats struct {
	Nodes    int
	Segments int
}

var _ index.ITree = (*SegmentTree)(nil)
var _ index.DistanceIndex = (*SegmentTree)(nil)

func NewSegmentTree(segments []geometry.Segment, maxLeafSize int) *SegmentTree {
	if maxLeafSize < 1 {
		maxLeafSize = DefaultMaxLeafSize
	}
	return &SegmentTree{
		segments:    append([]geometry.Segment(nil), segments...),
		maxLeafSize: maxLeafSize,
	}
}

// Builds the node arena. The segment slice is reordered in place so that
// every leaf covers a contiguous range.
func (tree *SegmentTree) Build() error {
	if tree.built {
		return errors.New("segment tree already built")
	}
	if len(tree.segments) > 0 {
		tree.nodes = make([]node, 0, 2*len(tree.segments)/tree.maxLeafSize+1)
		tree.build(0, len(tree.segments))
	}
	tree.built = true

	glog.V(1).Infof("segment tree: %d segments, %d nodes", len(tree.segments), len(tree.nodes))
	return nil
}

func (tree *SegmentTree) IsBuilt() bool {
	return tree.built
}

func (tree *SegmentTree) Clear() bool {
	tree.nodes = nil
	tree.segments = nil
	tree.built = false
	return true
}

func (tree *SegmentTree) NumSegments() int {
	return len(tree.segments)
}

func (tree *SegmentTree) NumNodes() int {
	return len(tree.nodes)
}

// VisitedNodes is the number of nodes scored by all queries so far.
func (tree *SegmentTree) VisitedNodes() int64 {
	return tree.visited.Load()
}

func (tree *SegmentTree) build(start, end int) int32 {
	bbox := geometry.NewBBox()
	for i := start; i < end; i++ {
		bbox.AddBBox(tree.segments[i].BBox)
	}

	id := int32(len(tree.nodes))
	tree.nodes = append(tree.nodes, node{bbox: bbox, left: -1, right: -1, start: int32(start), end: int32(end)})
	if end-start <= tree.maxLeafSize {
		return id
	}

	split := tree.partition(start, end, bbox)
	if split == start || split == end {
		// all midpoints on one side, no split possible
		return id
	}

	left := tree.build(start, split)
	right := tree.build(split, end)
	tree.nodes[id].left = left
	tree.nodes[id].right = right
	return id
}

// partition moves every segment whose midpoint is below the center of the
// longer bbox side to the front and returns the first index of the rest.
func (tree *SegmentTree) partition(start, end int, bbox geometry.BBox) int {
	cx, cy := bbox.Center()
	splitX := bbox.Width() > bbox.Height()

	i := start
	for j := start; j < end; j++ {
		mid := tree.segments[j].Mid
		var below bool
		if splitX {
			below = mid.X < cx
		} else {
			below = mid.Y < cy
		}
		if below {
			tree.segments[i], tree.segments[j] = tree.segments[j], tree.segments[i]
			i++
		}
	}
	return i
}

func (tree *SegmentTree) MinDistance(p geometry.Point, maxDistance float64) float64 {
	return tree.MinDistanceStats(p, maxDistance, nil)
}

// MinDistanceStats is MinDistance that also adds its work to stats, which
// may be nil.
func (tree *SegmentTree) MinDistanceStats(p geometry.Point, maxDistance float64, stats *QueryStats) float64 {
	if !tree.built {
		panic(fatal.Preconditionf("segment_tree.MinDistance", "tree not built"))
	}
	if len(tree.nodes) == 0 {
		return maxDistance
	}

	var local QueryStats
	best := maxDistance
	q := make(queue, 0, 16)
	heap.Push(&q, tree.score(0, p, &local))

	for q.Len() > 0 {
		e := heap.Pop(&q).(entry)
		if e.key > best {
			break
		}
		n := &tree.nodes[e.node]
		if n.isLeaf() {
			if e.key < best {
				best = e.key
			}
			continue
		}
		for _, child := range [2]int32{n.left, n.right} {
			if c := tree.score(child, p, &local); c.key <= best {
				heap.Push(&q, c)
			}
		}
	}

	tree.visited.Add(int64(local.Nodes))
	if stats != nil {
		stats.Nodes += local.Nodes
		stats.Segments += local.Segments
	}
	return best
}

// score keys an internal node by the distance to its bbox and a leaf by the
// exact distance to its nearest segment.
func (tree *SegmentTree) score(id int32, p geometry.Point, stats *QueryStats) entry {
	n := &tree.nodes[id]
	stats.Nodes++
	if !n.isLeaf() {
		return entry{node: id, key: n.bbox.DistanceTo(p)}
	}
	stats.Segments += int(n.end - n.start)
	key := tree.segments[n.start].Distance(p)
	for i := n.start + 1; i < n.end; i++ {
		if d := tree.segments[i].Distance(p); d < key {
			key = d
		}
	}
	return entry{node: id, key: key}
}
