package eval

import (
	"encoding/json"
	"math"
	"strconv"
)

// Metric is an accuracy metric in [0,1] that may be undefined. Undefined is
// represented as NaN so that arithmetic on metrics propagates undefinedness
// the way the formulas require: any expression touching an undefined value
// is undefined.
type Metric float64

// UndefinedMetric returns the undefined metric value.
func UndefinedMetric() Metric { return Metric(math.NaN()) }

// Defined reports whether the metric holds a real value.
func (m Metric) Defined() bool { return !math.IsNaN(float64(m)) }

// Value returns the underlying float. NaN when undefined.
func (m Metric) Value() float64 { return float64(m) }

// String renders the metric, "NA" when undefined.
func (m Metric) String() string {
	if !m.Defined() {
		return "NA"
	}
	return strconv.FormatFloat(float64(m), 'g', -1, 64)
}

// MarshalJSON encodes undefined metrics as null; encoding/json rejects NaN.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(m))
}

// UnmarshalJSON decodes null as undefined.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = UndefinedMetric()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Metric(f)
	return nil
}

// LayerMetrics is the metrics record for one evaluated layer.
type LayerMetrics struct {
	Layer string `json:"layer"`

	UA  Metric `json:"ua"`
	PA  Metric `json:"pa"`
	F1  Metric `json:"f1"`
	SCR Metric `json:"scr"`

	AreaInsideM2     float64 `json:"inside_m2"`
	AreaOutsideM2    float64 `json:"outside_m2"`
	PercentInPolygon float64 `json:"percentage_in_polygon"`

	PixelsInside  int `json:"n_pixels_inside"`
	PixelsOutside int `json:"n_pixels_outside"`
}

// MetricsTable is the ordered sequence of per-layer metrics. Row order is the
// caller's layer order and is semantic: facet display follows it.
type MetricsTable []LayerMetrics

// ComputeMetrics evaluates the metric formulas for one layer from its
// confusion counts, the pixel area (cell width x height, m2), and the total
// polygon area (m2). The layer name is left to the caller.
//
// Conventions, matching the reference arithmetic exactly:
//   - UA = tp/(tp+fp), undefined when tp+fp == 0
//   - PA = tp/(tp+fn), undefined when tp+fn == 0
//   - F1 = 2*UA*PA/(UA+PA), undefined when UA+PA is not > 0 or when either
//     input is undefined
//   - SCR = area_in/(area_in+area_out), undefined when both areas are 0
//   - percentage_in_polygon = 100*area_in/polygon_area, 0 (not undefined)
//     when the polygon area is 0
func ComputeMetrics(c ConfusionCounts, pixelArea, polygonArea float64) LayerMetrics {
	tp := float64(c.TruePositive)
	fn := float64(c.FalseNegative)
	fp := float64(c.FalsePositive)

	ua := UndefinedMetric()
	if tp+fp > 0 {
		ua = Metric(tp / (tp + fp))
	}
	pa := UndefinedMetric()
	if tp+fn > 0 {
		pa = Metric(tp / (tp + fn))
	}

	// NaN comparisons are false, so an undefined UA or PA falls through to
	// undefined F1 without a separate check.
	f1 := UndefinedMetric()
	if s := ua.Value() + pa.Value(); s > 0 {
		f1 = Metric(2 * ua.Value() * pa.Value() / s)
	}

	areaIn := tp * pixelArea
	areaOut := fp * pixelArea

	scr := UndefinedMetric()
	if areaIn+areaOut > 0 {
		scr = Metric(areaIn / (areaIn + areaOut))
	}

	pct := 0.0
	if polygonArea > 0 {
		pct = 100 * areaIn / polygonArea
	}

	return LayerMetrics{
		UA:               ua,
		PA:               pa,
		F1:               f1,
		SCR:              scr,
		AreaInsideM2:     areaIn,
		AreaOutsideM2:    areaOut,
		PercentInPolygon: pct,
		PixelsInside:     c.TruePositive,
		PixelsOutside:    c.FalsePositive,
	}
}
