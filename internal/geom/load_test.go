package geom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const featureCollectionJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "site-a"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "site-b"},
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[20, 20], [30, 20], [30, 30], [20, 30], [20, 20]]],
          [[[40, 40], [50, 40], [50, 50], [40, 50], [40, 40]]]
        ]
      }
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "Point", "coordinates": [1, 1]}
    }
  ]
}`

func TestLoadGeoJSONFeatureCollection(t *testing.T) {
	ps, err := LoadGeoJSON([]byte(featureCollectionJSON), "")
	require.NoError(t, err)

	assert.Equal(t, "EPSG:4326", ps.CRS, "RFC 7946 default")
	assert.Equal(t, 3, ps.Len(), "multipolygon members are flattened; points skipped")
}

func TestLoadGeoJSONSingleFeature(t *testing.T) {
	data := `{
		"type": "Feature",
		"geometry": {
			"type": "Polygon",
			"coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]
		},
		"properties": {}
	}`
	ps, err := LoadGeoJSON([]byte(data), "EPSG:32629")
	require.NoError(t, err)
	assert.Equal(t, "EPSG:32629", ps.CRS)
	assert.Equal(t, 1, ps.Len())
}

func TestLoadGeoJSONBareGeometry(t *testing.T) {
	data := `{"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]}`
	ps, err := LoadGeoJSON([]byte(data), "4326")
	require.NoError(t, err)
	assert.Equal(t, "EPSG:4326", ps.CRS)
	assert.Equal(t, 1, ps.Len())
}

func TestLoadGeoJSONErrors(t *testing.T) {
	_, err := LoadGeoJSON([]byte("{not geojson"), "")
	assert.Error(t, err)

	noPolys := `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [0, 0]}}
	]}`
	_, err = LoadGeoJSON([]byte(noPolys), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no polygon geometries")
}

func TestLoadGeoJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sites.geojson")
	require.NoError(t, os.WriteFile(path, []byte(featureCollectionJSON), 0o644))

	ps, err := LoadGeoJSONFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, 3, ps.Len())

	_, err = LoadGeoJSONFile(filepath.Join(dir, "absent.geojson"), "")
	assert.Error(t, err)
}
