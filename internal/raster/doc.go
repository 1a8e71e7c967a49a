// Package raster defines the categorical raster data model used throughout
// spatialval: 2D integer grids with an ordered category table, a cell
// resolution, and a coordinate reference system identifier.
//
// # Coordinate System
//
// Grid indices are 0-based with (col 0, row 0) at the top-left cell; columns
// increase eastward and rows increase southward, matching the row order of
// ESRI ASCII grids. Geographic coordinates are derived from the layer origin
// (west edge, north edge) and the cell size, so CellCenter(0, 0) is half a
// cell south-east of the origin.
//
// # Missing Values
//
// A layer may declare a nodata code. Cells holding that code are "missing"
// and are excluded from every count, mask, and metric. Cell values that are
// not in the category table are tolerated and treated as unclassified rather
// than rejected.
//
// # Thread Safety
//
// Layers and stacks are read-only after construction and safe for concurrent
// use. The StackCache type is safe for concurrent use by multiple goroutines.
package raster
