package raster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGrid = `ncols 4
nrows 4
xllcorner 500000
yllcorner 830000
cellsize 10
nodata_value -9999
1 1 2 2
1 2 2 2
2 2 1 2
2 2 2 -9999
`

const testCategories = `{
  "crs": "EPSG:32629",
  "categories": [
    {"code": 1, "label": "ASM"},
    {"code": 2, "label": "Non.ASM"}
  ]
}`

func writeTestLayer(t *testing.T) (gridPath, catsPath string) {
	t.Helper()
	dir := t.TempDir()
	gridPath = filepath.Join(dir, "cls2020.asc")
	catsPath = filepath.Join(dir, "cls2020.json")
	require.NoError(t, os.WriteFile(gridPath, []byte(testGrid), 0o644))
	require.NoError(t, os.WriteFile(catsPath, []byte(testCategories), 0o644))
	return gridPath, catsPath
}

func TestLoadLayer(t *testing.T) {
	gridPath, catsPath := writeTestLayer(t)

	l, err := LoadLayer(gridPath, catsPath)
	require.NoError(t, err)

	assert.Equal(t, "cls2020", l.Name)
	assert.Equal(t, 4, l.Cols)
	assert.Equal(t, 4, l.Rows)
	assert.Equal(t, 10.0, l.CellWidth)
	assert.Equal(t, 10.0, l.CellHeight)
	assert.Equal(t, "EPSG:32629", l.CRS)
	assert.Equal(t, orb.Point{500000, 830040}, l.Origin)
	assert.True(t, l.HasNoData)
	assert.Equal(t, -9999, l.NoData)
	assert.True(t, l.IsCategorical())
	assert.Equal(t, []string{"ASM", "Non.ASM"}, l.Categories.Labels())

	v, ok := l.At(0, 0)
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = l.At(3, 3)
	assert.False(t, ok, "nodata from the grid header applies")
}

func TestLoadLayerWithoutCategories(t *testing.T) {
	gridPath, _ := writeTestLayer(t)

	l, err := LoadLayer(gridPath, "")
	require.NoError(t, err)
	assert.False(t, l.IsCategorical())
}

func TestLoadLayerCenterRegistered(t *testing.T) {
	dir := t.TempDir()
	gridPath := filepath.Join(dir, "centered.asc")
	grid := `ncols 2
nrows 2
xllcenter 105
yllcenter 205
cellsize 10
1 2
3 4
`
	require.NoError(t, os.WriteFile(gridPath, []byte(grid), 0o644))

	l, err := LoadLayer(gridPath, "")
	require.NoError(t, err)
	// Center registration shifts the corner by half a cell.
	assert.Equal(t, orb.Point{100, 220}, l.Origin)
}

func TestLoadLayerErrors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	t.Run("missing grid file", func(t *testing.T) {
		_, err := LoadLayer(filepath.Join(dir, "absent.asc"), "")
		assert.Error(t, err)
	})

	t.Run("missing header keys", func(t *testing.T) {
		p := write("nohdr.asc", "1 2 3 4\n")
		_, err := LoadLayer(p, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "incomplete grid header")
	})

	t.Run("cell count mismatch", func(t *testing.T) {
		p := write("short.asc", "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 10\n1 2 3\n")
		_, err := LoadLayer(p, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 4 cells")
	})

	t.Run("non-integer cell", func(t *testing.T) {
		p := write("float.asc", "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 10\n1 2 3 4.5\n")
		_, err := LoadLayer(p, "")
		assert.Error(t, err)
	})

	t.Run("bad category sidecar", func(t *testing.T) {
		g := write("ok.asc", "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 10\n1 2 3 4\n")
		c := write("bad.json", "{not json")
		_, err := LoadLayer(g, c)
		assert.Error(t, err)
	})
}

func TestStackCache(t *testing.T) {
	gridPath, catsPath := writeTestLayer(t)
	cache := NewStackCache()

	first, err := cache.Load(gridPath, catsPath)
	require.NoError(t, err)
	second, err := cache.Load(gridPath, catsPath)
	require.NoError(t, err)
	assert.Same(t, first, second, "second load hits the cache")

	cache.Evict(gridPath, catsPath)
	third, err := cache.Load(gridPath, catsPath)
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	cache.Clear()
	fourth, err := cache.Load(gridPath, catsPath)
	require.NoError(t, err)
	assert.NotSame(t, third, fourth)
}

func TestInfo(t *testing.T) {
	gridPath, catsPath := writeTestLayer(t)
	l, err := LoadLayer(gridPath, catsPath)
	require.NoError(t, err)

	info := Info(l)
	assert.Equal(t, "cls2020", info.Name)
	assert.Equal(t, 4, info.Cols)
	assert.Equal(t, 2, info.Classes)
	assert.Equal(t, "ASM, Non.ASM", info.ClassList)
	assert.True(t, info.HasNoData)
}
