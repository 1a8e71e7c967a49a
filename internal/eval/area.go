package eval

import (
	"github.com/terralens/spatialval/internal/geom"
	"github.com/terralens/spatialval/internal/raster"
)

// AreaReport is the single-record area summary for one layer and target
// class.
type AreaReport struct {
	TargetClass        string  `json:"target_class"`
	PixelsInside       int     `json:"pixels_inside"`
	PixelsOutside      int     `json:"pixels_outside"`
	AreaInsideM2       float64 `json:"area_inside_m2"`
	AreaOutsideM2      float64 `json:"area_outside_m2"`
	TotalPolygonAreaM2 float64 `json:"total_polygon_area_m2"`
	PercentInPolygon   float64 `json:"percentage_in_polygon"`
	PixelSizeM2        float64 `json:"pixel_size_m2"`
	SCR                Metric  `json:"scr"`
}

// CalculateArea computes the area statistics for the target class on one
// layer. It runs the same reproject/resolve/mask/accumulate/compute pipeline
// as Evaluate, so its pixel counts and SCR cannot drift from the batch
// metrics.
func (e *LayerEvaluator) CalculateArea(layer *raster.Layer, polygons *geom.PolygonSet, target raster.ClassRef) (AreaReport, error) {
	if layer == nil {
		return AreaReport{}, &InvalidInputTypeError{Argument: "layer", Want: "categorical raster layer"}
	}

	polygons, err := e.preparePolygons(layer, polygons)
	if err != nil {
		return AreaReport{}, err
	}

	code, err := ResolveClass(layer, target)
	if err != nil {
		return AreaReport{}, err
	}

	masked, err := Mask(layer, polygons)
	if err != nil {
		return AreaReport{}, err
	}

	counts := Accumulate(masked, code)
	m := ComputeMetrics(counts, layer.PixelArea(), polygons.Area())

	label := layer.Categories.LabelFor(code)
	if label == "" {
		label = target.String()
	}

	return AreaReport{
		TargetClass:        label,
		PixelsInside:       m.PixelsInside,
		PixelsOutside:      m.PixelsOutside,
		AreaInsideM2:       m.AreaInsideM2,
		AreaOutsideM2:      m.AreaOutsideM2,
		TotalPolygonAreaM2: polygons.Area(),
		PercentInPolygon:   m.PercentInPolygon,
		PixelSizeM2:        layer.PixelArea(),
		SCR:                m.SCR,
	}, nil
}
