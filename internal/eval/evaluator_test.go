package eval

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terralens/spatialval/internal/geom"
	"github.com/terralens/spatialval/internal/raster"
)

func TestEvaluateEndToEnd(t *testing.T) {
	layer := testLayer4x4()
	polygons := geom.NewPolygonSet("EPSG:32629", square(0, 20, 20, 40))

	e := &LayerEvaluator{}
	m, err := e.Evaluate(layer, polygons, raster.ByLabel("ASM"))
	require.NoError(t, err)

	// Inside the polygon: 3 ASM cells and 1 Non.ASM cell. Outside: 2 ASM
	// cells among 12.
	assert.Equal(t, "cls2020", m.Layer)
	assert.InDelta(t, 0.6, m.UA.Value(), 1e-9)
	assert.InDelta(t, 0.75, m.PA.Value(), 1e-9)
	assert.InDelta(t, 2.0/3.0, m.F1.Value(), 1e-9)
	assert.InDelta(t, 0.6, m.SCR.Value(), 1e-9)
	assert.Equal(t, 3, m.PixelsInside)
	assert.Equal(t, 2, m.PixelsOutside)
	assert.InDelta(t, 300, m.AreaInsideM2, 1e-9)
	assert.InDelta(t, 200, m.AreaOutsideM2, 1e-9)
	assert.InDelta(t, 75, m.PercentInPolygon, 1e-9)
}

func TestEvaluateMostlyTargetGrid(t *testing.T) {
	layer := testLayer4x4()
	// Everything is ASM except the south-east corner.
	for i := range layer.Cells {
		layer.Cells[i] = 1
	}
	layer.Cells[15] = 2
	polygons := geom.NewPolygonSet("EPSG:32629", square(0, 20, 20, 40))

	e := &LayerEvaluator{}
	m, err := e.Evaluate(layer, polygons, raster.ByLabel("ASM"))
	require.NoError(t, err)

	// tp=4, fn=0, fp=11.
	assert.InDelta(t, 4.0/15.0, m.UA.Value(), 1e-9)
	assert.InDelta(t, 1, m.PA.Value(), 1e-9)
	assert.InDelta(t, 8.0/19.0, m.F1.Value(), 1e-9)
	assert.InDelta(t, 4.0/15.0, m.SCR.Value(), 1e-9)
	assert.InDelta(t, 100, m.PercentInPolygon, 1e-9)
}

func TestEvaluateByCodeMatchesByLabel(t *testing.T) {
	layer := testLayer4x4()
	polygons := geom.NewPolygonSet("EPSG:32629", square(0, 20, 20, 40))

	e := &LayerEvaluator{}
	byLabel, err := e.Evaluate(layer, polygons, raster.ByLabel("ASM"))
	require.NoError(t, err)
	byCode, err := e.Evaluate(layer, polygons, raster.ByCode(1))
	require.NoError(t, err)

	assert.Equal(t, byLabel, byCode)
}

func TestEvaluateReprojectsPolygons(t *testing.T) {
	// Web mercator layer around the equator: 2x2 grid of 100m cells
	// centered on (0,0). The WGS84 polygon spans roughly +-111m after
	// projection, covering all four cell centers.
	layer := &raster.Layer{
		Name:       "mercator",
		Cells:      []int{1, 1, 1, 1},
		Cols:       2,
		Rows:       2,
		CellWidth:  100,
		CellHeight: 100,
		Origin:     orb.Point{-100, 100},
		CRS:        "EPSG:3857",
		Categories: raster.CategoryTable{{Code: 1, Label: "ASM"}},
	}
	polygons := geom.NewPolygonSet("EPSG:4326", square(-0.001, -0.001, 0.001, 0.001))

	e := &LayerEvaluator{}
	m, err := e.Evaluate(layer, polygons, raster.ByLabel("ASM"))
	require.NoError(t, err)
	assert.Equal(t, 4, m.PixelsInside)
	assert.Equal(t, 0, m.PixelsOutside)
	assert.InDelta(t, 1, m.UA.Value(), 1e-9)
	assert.InDelta(t, 1, m.PA.Value(), 1e-9)
}

func TestEvaluateUnsupportedReprojection(t *testing.T) {
	layer := testLayer4x4() // EPSG:32629
	polygons := geom.NewPolygonSet("EPSG:4326", square(0, 20, 20, 40))

	e := &LayerEvaluator{}
	_, err := e.Evaluate(layer, polygons, raster.ByLabel("ASM"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported reprojection")
}

func TestEvaluateStackPreservesOrder(t *testing.T) {
	zLayer := testLayer4x4()
	zLayer.Name = "z_layer"
	aLayer := testLayer4x4()
	aLayer.Name = "a_layer"

	polygons := geom.NewPolygonSet("EPSG:32629", square(0, 20, 20, 40))
	stack := raster.NewStack(zLayer, aLayer)

	for _, workers := range []int{0, 4} {
		b := &BatchEvaluator{Workers: workers}
		table, err := b.EvaluateStack(stack, polygons, raster.ByLabel("ASM"))
		require.NoError(t, err)
		require.Len(t, table, 2)
		assert.Equal(t, "z_layer", table[0].Layer, "workers=%d", workers)
		assert.Equal(t, "a_layer", table[1].Layer, "workers=%d", workers)
	}
}

func TestEvaluateStackFailsFast(t *testing.T) {
	good := testLayer4x4()
	bad := testLayer4x4()
	bad.Categories = nil // not categorical

	polygons := geom.NewPolygonSet("EPSG:32629", square(0, 20, 20, 40))
	stack := raster.NewStack(good, bad)

	b := &BatchEvaluator{}
	table, err := b.EvaluateStack(stack, polygons, raster.ByLabel("ASM"))
	require.Error(t, err)
	assert.Nil(t, table)

	var notCat *NotCategoricalError
	assert.ErrorAs(t, err, &notCat)
}

func TestEvaluateStackEmpty(t *testing.T) {
	polygons := geom.NewPolygonSet("EPSG:32629", square(0, 20, 20, 40))

	b := &BatchEvaluator{}
	var invalid *InvalidInputTypeError

	_, err := b.EvaluateStack(nil, polygons, raster.ByLabel("ASM"))
	require.ErrorAs(t, err, &invalid)

	_, err = b.EvaluateStack(raster.NewStack(), polygons, raster.ByLabel("ASM"))
	require.ErrorAs(t, err, &invalid)
}

// The single-layer area report must agree with the batch metrics for the
// same inputs: same pixel counts, areas and SCR.
func TestCalculateAreaConsistentWithEvaluate(t *testing.T) {
	layer := testLayer4x4()
	polygons := geom.NewPolygonSet("EPSG:32629", square(0, 20, 20, 40))

	e := &LayerEvaluator{}
	m, err := e.Evaluate(layer, polygons, raster.ByLabel("ASM"))
	require.NoError(t, err)
	report, err := e.CalculateArea(layer, polygons, raster.ByLabel("ASM"))
	require.NoError(t, err)

	assert.Equal(t, "ASM", report.TargetClass)
	assert.Equal(t, m.PixelsInside, report.PixelsInside)
	assert.Equal(t, m.PixelsOutside, report.PixelsOutside)
	assert.Equal(t, m.AreaInsideM2, report.AreaInsideM2)
	assert.Equal(t, m.AreaOutsideM2, report.AreaOutsideM2)
	assert.Equal(t, m.PercentInPolygon, report.PercentInPolygon)
	assert.Equal(t, m.SCR.Value(), report.SCR.Value())
	assert.InDelta(t, 400, report.TotalPolygonAreaM2, 1e-9)
	assert.InDelta(t, 100, report.PixelSizeM2, 1e-9)
}
