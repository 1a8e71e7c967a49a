// Package eval implements the per-layer accuracy and area computation core:
// class resolution against a layer's category table, inside/outside masking
// of cell values against reference polygons, confusion-count derivation, and
// the metric formulas (user's accuracy, producer's accuracy, F1, and the
// spatially correct ratio).
//
// # Undefined Metrics
//
// A metric whose denominator is zero is undefined, not zero. Undefined values
// are represented as IEEE NaN behind the Metric type and propagate through
// arithmetic: an F1 built from an undefined UA or PA is itself undefined.
// Exporters render undefined metrics as NA (CSV) or null (JSON); they are
// never silently replaced with 0.
//
// # Error Semantics
//
// Evaluation fails fast. Any failure in a sub-step (missing category table,
// unknown or ambiguous class, unsupported reprojection) aborts the layer, and
// a failed layer aborts the whole batch with the first error encountered. CRS
// mismatches between raster and polygons are not errors; they are recovered
// by reprojecting the polygons to the layer's CRS.
package eval
