package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PolygonSet is an ordered collection of reference polygons sharing one
// coordinate reference system. It is immutable after construction;
// reprojection produces a new set.
type PolygonSet struct {
	Polygons []orb.Polygon
	CRS      string
}

// NewPolygonSet creates a polygon set in the given CRS.
func NewPolygonSet(crs string, polygons ...orb.Polygon) *PolygonSet {
	return &PolygonSet{Polygons: polygons, CRS: crs}
}

// Len returns the number of polygons.
func (p *PolygonSet) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Polygons)
}

// Area returns the total planar area of the set in squared CRS linear units.
// Ring orientation does not matter; hole areas are subtracted.
func (p *PolygonSet) Area() float64 {
	if p == nil {
		return 0
	}
	var total float64
	for _, poly := range p.Polygons {
		total += math.Abs(planar.Area(poly))
	}
	return total
}

// Contains reports whether pt falls inside the union of the polygons.
// Points on a boundary count as inside.
func (p *PolygonSet) Contains(pt orb.Point) bool {
	if p == nil {
		return false
	}
	for _, poly := range p.Polygons {
		if planar.PolygonContains(poly, pt) {
			return true
		}
	}
	return false
}

// Bound returns the bounding box of the whole set. Useful for skipping
// containment tests on cells far outside the polygons.
func (p *PolygonSet) Bound() orb.Bound {
	var b orb.Bound
	for i, poly := range p.Polygons {
		if i == 0 {
			b = poly.Bound()
			continue
		}
		b = b.Union(poly.Bound())
	}
	return b
}
