// Package render builds faceted comparison maps from an evaluated raster
// stack: one facet per layer in metrics-table order, cells colored by class,
// an optional reference-polygon overlay, and a strip label derived from the
// layer's metrics.
//
// The package separates assembly from drawing. The long-form (x, y, class,
// facet) cell table is the single source for both BuildFacetTable and the
// facet drawing itself; the Renderer interface turns it plus styling
// parameters into an encoded image. The default PNGRenderer draws with the
// standard image packages plus imaging, bild and basicfont.
package render
