package geom

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSON parses GeoJSON data into a PolygonSet. Polygon and
// MultiPolygon geometries are collected in document order; other geometry
// types are skipped. The crs parameter labels the result; GeoJSON itself
// does not carry a CRS, and per RFC 7946 defaults to EPSG:4326.
func LoadGeoJSON(data []byte, crs string) (*PolygonSet, error) {
	if crs == "" {
		crs = "EPSG:4326"
	}

	ps := &PolygonSet{CRS: NormalizeCRS(crs)}

	collect := func(g orb.Geometry) {
		switch geom := g.(type) {
		case orb.Polygon:
			ps.Polygons = append(ps.Polygons, geom)
		case orb.MultiPolygon:
			ps.Polygons = append(ps.Polygons, geom...)
		}
	}

	fc, fcErr := geojson.UnmarshalFeatureCollection(data)
	if fcErr == nil {
		for _, f := range fc.Features {
			collect(f.Geometry)
		}
	} else if f, err := geojson.UnmarshalFeature(data); err == nil {
		collect(f.Geometry)
	} else if g, err := geojson.UnmarshalGeometry(data); err == nil {
		collect(g.Geometry())
	} else {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", fcErr)
	}

	if len(ps.Polygons) == 0 {
		return nil, fmt.Errorf("no polygon geometries in GeoJSON input")
	}
	return ps, nil
}

// LoadGeoJSONFile reads and parses a GeoJSON file into a PolygonSet.
func LoadGeoJSONFile(path, crs string) (*PolygonSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read polygons: %w", err)
	}
	ps, err := LoadGeoJSON(data, crs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}
