package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.TileWritten(11)
	m.TileWritten(11)
	m.TileWritten(12)
	m.Filled(65536, 1200, 2*time.Second)
	m.Merged(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TilesWritten.WithLabelValues("11")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TilesWritten.WithLabelValues("12")))
	assert.Equal(t, 65536.0, testutil.ToFloat64(m.PixelsFilled))
	assert.Equal(t, 1200.0, testutil.ToFloat64(m.SegmentNodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TilesMerged))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ChildrenMissing))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	m.TileWritten(1)
	m.Filled(1, 1, time.Second)
	m.Merged(1)
	assert.NoError(t, m.WriteToTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.Merged(0)
	path := filepath.Join(t.TempDir(), "sdf_tiler.prom")

	require.NoError(t, m.WriteToTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sdf_tiler_tiles_merged_total 1")
}
