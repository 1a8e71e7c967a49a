package geom

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Reprojector converts a polygon set to a target coordinate reference
// system. Implementations must return the input set unchanged (same pointer)
// when the CRS already matches.
type Reprojector interface {
	Reproject(ps *PolygonSet, targetCRS string) (*PolygonSet, error)
}

// NormalizeCRS canonicalizes a CRS identifier: "epsg:4326", "4326" and
// "WGS84" all normalize to "EPSG:4326". Unrecognized identifiers are
// upper-cased and returned as-is.
func NormalizeCRS(crs string) string {
	s := strings.ToUpper(strings.TrimSpace(crs))
	switch s {
	case "WGS84", "WGS 84", "CRS84", "OGC:CRS84":
		return "EPSG:4326"
	case "WEB MERCATOR", "WEBMERCATOR", "EPSG:900913":
		return "EPSG:3857"
	}
	if s != "" && !strings.Contains(s, ":") {
		return "EPSG:" + s
	}
	return s
}

// SameCRS reports whether two identifiers name the same CRS after
// normalization.
func SameCRS(a, b string) bool {
	return NormalizeCRS(a) == NormalizeCRS(b)
}

// WebMercatorReprojector reprojects between EPSG:4326 (WGS84 lon/lat) and
// EPSG:3857 (spherical web mercator) using orb's projections. Any other CRS
// pair is an error: projected rasters in other systems must be paired with
// polygons already in the raster's CRS, or with a caller-supplied
// Reprojector.
type WebMercatorReprojector struct{}

// Reproject implements Reprojector.
func (WebMercatorReprojector) Reproject(ps *PolygonSet, targetCRS string) (*PolygonSet, error) {
	if ps == nil {
		return nil, fmt.Errorf("nil polygon set")
	}
	from := NormalizeCRS(ps.CRS)
	to := NormalizeCRS(targetCRS)
	if from == to {
		return ps, nil
	}

	var proj orb.Projection
	switch {
	case from == "EPSG:4326" && to == "EPSG:3857":
		proj = project.WGS84.ToMercator
	case from == "EPSG:3857" && to == "EPSG:4326":
		proj = project.Mercator.ToWGS84
	default:
		return nil, fmt.Errorf("unsupported reprojection %s -> %s", from, to)
	}

	out := &PolygonSet{CRS: to, Polygons: make([]orb.Polygon, len(ps.Polygons))}
	for i, poly := range ps.Polygons {
		projected := make(orb.Polygon, len(poly))
		for j, ring := range poly {
			r := make(orb.Ring, len(ring))
			for k, pt := range ring {
				r[k] = proj(pt)
			}
			projected[j] = r
		}
		out.Polygons[i] = projected
	}
	return out, nil
}
