// Package geom provides the vector side of an evaluation: reference polygon
// sets, planar area computation, point containment, GeoJSON loading, and the
// reprojection capability used to reconcile polygon and raster coordinate
// systems.
//
// Geometries are orb types throughout. Polygon validity is assumed, not
// enforced; inputs are expected to be pre-validated simple polygons.
package geom
