package eval

import (
	"fmt"

	"github.com/terralens/spatialval/internal/geom"
	"github.com/terralens/spatialval/internal/raster"
)

// MaskResult partitions a layer's non-missing cell values by polygon
// membership. Inside holds the values of cells whose center falls within the
// union of the polygons; Outside holds the rest. Missing cells appear in
// neither collection.
type MaskResult struct {
	Inside  []int
	Outside []int
}

// Mask partitions the layer's cell values against the polygon set using the
// cell-center convention: a cell belongs to Inside when its center point is
// contained in (or on the boundary of) any polygon.
//
// The polygon set must already be in the layer's CRS; callers reconcile
// coordinate systems via a Reprojector before masking. The layer is not
// mutated.
func Mask(layer *raster.Layer, polygons *geom.PolygonSet) (*MaskResult, error) {
	if layer == nil {
		return nil, &InvalidInputTypeError{Argument: "layer", Want: "categorical raster layer"}
	}
	if polygons == nil {
		return nil, &InvalidInputTypeError{Argument: "polygons", Want: "polygon set"}
	}
	if err := layer.Validate(); err != nil {
		return nil, &InvalidInputTypeError{Argument: "layer", Want: "categorical raster layer", Detail: err.Error()}
	}
	if !geom.SameCRS(layer.CRS, polygons.CRS) {
		return nil, fmt.Errorf("CRS mismatch: layer %s vs polygons %s (reproject first)",
			layer.CRS, polygons.CRS)
	}

	res := &MaskResult{}

	// Cells whose center is outside the set's bounding box cannot be inside
	// any polygon, so the containment test is skipped for them.
	bound := polygons.Bound()
	for row := 0; row < layer.Rows; row++ {
		for col := 0; col < layer.Cols; col++ {
			v, ok := layer.At(col, row)
			if !ok {
				continue
			}
			center := layer.CellCenter(col, row)
			if bound.Contains(center) && polygons.Contains(center) {
				res.Inside = append(res.Inside, v)
			} else {
				res.Outside = append(res.Outside, v)
			}
		}
	}
	return res, nil
}
