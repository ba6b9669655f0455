package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics owns a private registry so that several runs in one process, as
// in tests, do not collide. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	PixelsFilled    prometheus.Counter
	TilesWritten    *prometheus.CounterVec
	TilesMerged     prometheus.Counter
	ChildrenMissing prometheus.Counter
	SegmentNodes    prometheus.Counter
	FillDurationSec prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PixelsFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdf_tiler_pixels_filled_total",
			Help: "Total number of pixels computed by the recursive fill",
		}),
		TilesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sdf_tiler_tiles_written_total",
			Help: "Total number of tile images written, by zoom",
		}, []string{"zoom"}),
		TilesMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdf_tiler_tiles_merged_total",
			Help: "Total number of parent tiles assembled from children",
		}),
		ChildrenMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdf_tiler_merge_children_missing_total",
			Help: "Total number of absent children during merges",
		}),
		SegmentNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sdf_tiler_segment_nodes_visited_total",
			Help: "Total number of segment tree nodes scored by distance queries",
		}),
		FillDurationSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sdf_tiler_fill_duration_seconds",
			Help:    "Duration of one raster fill",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		}),
	}
	m.Registry.MustRegister(m.PixelsFilled)
	m.Registry.MustRegister(m.TilesWritten)
	m.Registry.MustRegister(m.TilesMerged)
	m.Registry.MustRegister(m.ChildrenMissing)
	m.Registry.MustRegister(m.SegmentNodes)
	m.Registry.MustRegister(m.FillDurationSec)
	return m
}

func (m *Metrics) TileWritten(zoom uint32) {
	if m == nil {
		return
	}
	m.TilesWritten.WithLabelValues(strconv.FormatUint(uint64(zoom), 10)).Inc()
}

func (m *Metrics) Filled(pixels int, segmentNodes int64, d time.Duration) {
	if m == nil {
		return
	}
	m.PixelsFilled.Add(float64(pixels))
	m.SegmentNodes.Add(float64(segmentNodes))
	m.FillDurationSec.Observe(d.Seconds())
}

func (m *Metrics) Merged(missing int) {
	if m == nil {
		return
	}
	m.TilesMerged.Inc()
	m.ChildrenMissing.Add(float64(missing))
}

// WriteToTextfile dumps the registry in the node exporter textfile format.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
