package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terralens/spatialval/internal/eval"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTable() eval.MetricsTable {
	return eval.MetricsTable{
		{
			Layer:            "z_layer",
			UA:               eval.Metric(0.6),
			PA:               eval.Metric(0.75),
			F1:               eval.Metric(2.0 / 3.0),
			SCR:              eval.Metric(0.6),
			AreaInsideM2:     300,
			AreaOutsideM2:    200,
			PercentInPolygon: 75,
			PixelsInside:     3,
			PixelsOutside:    2,
		},
		{
			Layer: "a_layer",
			UA:    eval.UndefinedMetric(),
			PA:    eval.Metric(0),
			F1:    eval.UndefinedMetric(),
			SCR:   eval.UndefinedMetric(),
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)

	id, err := s.SaveRun(`"ASM"`, "sites.geojson", sampleTable())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := s.GetRun(id)
	require.NoError(t, err)

	assert.Equal(t, id, run.ID)
	assert.Equal(t, `"ASM"`, run.TargetClass)
	assert.Equal(t, "sites.geojson", run.PolygonSource)
	assert.WithinDuration(t, time.Now(), run.CreatedAt, time.Minute)

	require.Len(t, run.Metrics, 2)
	assert.Equal(t, "z_layer", run.Metrics[0].Layer, "layer order survives storage")
	assert.Equal(t, "a_layer", run.Metrics[1].Layer)

	first := run.Metrics[0]
	assert.InDelta(t, 0.6, first.UA.Value(), 1e-9)
	assert.InDelta(t, 300.0, first.AreaInsideM2, 1e-9)
	assert.Equal(t, 3, first.PixelsInside)

	// Undefined metrics round-trip through SQL NULL.
	second := run.Metrics[1]
	assert.False(t, second.UA.Defined())
	assert.False(t, second.F1.Defined())
	assert.False(t, second.SCR.Defined())
	assert.True(t, second.PA.Defined())
	assert.Equal(t, 0.0, second.PA.Value())
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)

	runs, err := s.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	id1, err := s.SaveRun(`"ASM"`, "a.geojson", sampleTable())
	require.NoError(t, err)
	id2, err := s.SaveRun("code 2", "b.geojson", sampleTable())
	require.NoError(t, err)

	runs, err = s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	ids := []string{runs[0].ID, runs[1].ID}
	assert.Contains(t, ids, id1)
	assert.Contains(t, ids, id2)
	assert.Empty(t, runs[0].Metrics, "listing returns headers only")
}

func TestCorruptTimestampSurfaces(t *testing.T) {
	s := openTestStore(t)

	id, err := s.SaveRun(`"ASM"`, "a.geojson", sampleTable())
	require.NoError(t, err)

	_, err = s.db.Exec(`UPDATE runs SET created_at = 'yesterday' WHERE id = ?`, id)
	require.NoError(t, err)

	_, err = s.GetRun(id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yesterday")

	_, err = s.ListRuns()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yesterday")
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun("no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
