// Package export writes evaluation results as delimited tabular files.
// Undefined metrics are written as "NA", never as 0.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/terralens/spatialval/internal/eval"
)

func formatMetric(m eval.Metric) string {
	if !m.Defined() {
		return "NA"
	}
	return strconv.FormatFloat(m.Value(), 'f', 6, 64)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// WriteMetricsCSV writes a metrics table in input layer order with the
// column set of the batch entry point.
func WriteMetricsCSV(w io.Writer, table eval.MetricsTable) error {
	cw := csv.NewWriter(w)
	header := []string{"UA", "PA", "F1", "inside_m2", "outside_m2",
		"percentage_in_polygon", "n_pixels_inside", "n_pixels_outside", "SCR", "Layer"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, m := range table {
		record := []string{
			formatMetric(m.UA),
			formatMetric(m.PA),
			formatMetric(m.F1),
			formatFloat(m.AreaInsideM2),
			formatFloat(m.AreaOutsideM2),
			formatFloat(m.PercentInPolygon),
			strconv.Itoa(m.PixelsInside),
			strconv.Itoa(m.PixelsOutside),
			formatMetric(m.SCR),
			m.Layer,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAreaCSV writes a single-record area report.
func WriteAreaCSV(w io.Writer, report eval.AreaReport) error {
	cw := csv.NewWriter(w)
	header := []string{"target_class", "pixels_inside", "pixels_outside",
		"area_inside_m2", "area_outside_m2", "total_polygon_area_m2",
		"percentage_in_polygon", "pixel_size_m2", "SCR"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	record := []string{
		report.TargetClass,
		strconv.Itoa(report.PixelsInside),
		strconv.Itoa(report.PixelsOutside),
		formatFloat(report.AreaInsideM2),
		formatFloat(report.AreaOutsideM2),
		formatFloat(report.TotalPolygonAreaM2),
		formatFloat(report.PercentInPolygon),
		formatFloat(report.PixelSizeM2),
		formatMetric(report.SCR),
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("failed to write CSV record: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsCSVFile writes the metrics table to the given path.
func WriteMetricsCSVFile(path string, table eval.MetricsTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteMetricsCSV(f, table); err != nil {
		return err
	}
	return f.Close()
}

// WriteAreaCSVFile writes the area report to the given path.
func WriteAreaCSVFile(path string, report eval.AreaReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteAreaCSV(f, report); err != nil {
		return err
	}
	return f.Close()
}
