package render

import (
	"fmt"

	"github.com/terralens/spatialval/internal/eval"
	"github.com/terralens/spatialval/internal/raster"
)

// LabelMode selects what metrics appear in each facet's strip label.
type LabelMode string

const (
	// LabelAccuracy shows UA, PA and F1 as percentages.
	LabelAccuracy LabelMode = "accuracy"
	// LabelSCR shows the spatially correct ratio.
	LabelSCR LabelMode = "scr"
	// LabelBoth shows F1 and SCR.
	LabelBoth LabelMode = "both"
)

// ParseLabelMode validates a label mode string.
func ParseLabelMode(s string) (LabelMode, error) {
	switch LabelMode(s) {
	case LabelAccuracy, LabelSCR, LabelBoth:
		return LabelMode(s), nil
	}
	return "", fmt.Errorf("invalid label mode %q: use accuracy, scr or both", s)
}

// pct formats a metric as a one-decimal percentage, "NA" when undefined.
func pct(m eval.Metric) string {
	if !m.Defined() {
		return "NA"
	}
	return fmt.Sprintf("%.1f%%", m.Value()*100)
}

// ratio formats a metric with two decimals, "NA" when undefined.
func ratio(m eval.Metric) string {
	if !m.Defined() {
		return "NA"
	}
	return fmt.Sprintf("%.2f", m.Value())
}

// FacetLabel renders the strip label for one layer's metrics. The first line
// is the layer name, the second the metrics selected by mode.
func FacetLabel(m eval.LayerMetrics, mode LabelMode) string {
	switch mode {
	case LabelSCR:
		return fmt.Sprintf("%s\nSCR=%s", m.Layer, ratio(m.SCR))
	case LabelBoth:
		return fmt.Sprintf("%s\nF1=%s | SCR=%s", m.Layer, pct(m.F1), ratio(m.SCR))
	default:
		return fmt.Sprintf("%s\nUA=%s | PA=%s | F1=%s", m.Layer, pct(m.UA), pct(m.PA), pct(m.F1))
	}
}

// PixelRow is one row of the long-form facet table: a cell center, its class
// label, and the facet the cell belongs to.
type PixelRow struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Class string  `json:"class"`
	Facet string  `json:"facet"`
}

// UnclassifiedLabel is the class assigned to cell values missing from a
// layer's category table.
const UnclassifiedLabel = "NA"

// BuildFacetTable produces the long-form pixel table for the stack, one row
// per non-missing cell per layer. Facet labels follow the metrics table,
// which itself follows input layer order; the i-th layer of the stack pairs
// with the i-th metrics row.
func BuildFacetTable(stack *raster.Stack, table eval.MetricsTable, mode LabelMode) ([]PixelRow, error) {
	if stack == nil || stack.Len() == 0 {
		return nil, fmt.Errorf("empty raster stack")
	}
	if stack.Len() != len(table) {
		return nil, fmt.Errorf("stack has %d layers but metrics table has %d rows", stack.Len(), len(table))
	}

	var rows []PixelRow
	for i, layer := range stack.Layers() {
		rows = append(rows, layerRows(layer, FacetLabel(table[i], mode))...)
	}
	return rows, nil
}

// layerRows lists one layer's non-missing cells as pixel rows, row-major.
func layerRows(layer *raster.Layer, facet string) []PixelRow {
	var rows []PixelRow
	for row := 0; row < layer.Rows; row++ {
		for col := 0; col < layer.Cols; col++ {
			v, ok := layer.At(col, row)
			if !ok {
				continue
			}
			label := layer.Categories.LabelFor(v)
			if label == "" {
				label = UnclassifiedLabel
			}
			center := layer.CellCenter(col, row)
			rows = append(rows, PixelRow{
				X:     center[0],
				Y:     center[1],
				Class: label,
				Facet: facet,
			})
		}
	}
	return rows
}
