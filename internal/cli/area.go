package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/terralens/spatialval/internal/eval"
	"github.com/terralens/spatialval/internal/export"
	"github.com/terralens/spatialval/internal/geom"
	"github.com/terralens/spatialval/internal/raster"
)

var areaCmd = &cobra.Command{
	Use:   "area",
	Short: "Compute area statistics for one layer's target class",
	Long: `Compute how much of a layer's target class falls inside versus outside the
reference polygons, reporting pixel counts, areas in square meters, the
percentage of the polygon area covered, and the spatially correct ratio.`,
	RunE: runArea,
}

var (
	areaLayer       string
	areaPolygons    string
	areaPolygonsCRS string
	areaTarget      string
	areaOutCSV      string
	areaJSON        bool
)

func init() {
	rootCmd.AddCommand(areaCmd)

	areaCmd.Flags().StringVarP(&areaLayer, "layer", "l", "", "layer as GRID,CATEGORIES[,NAME]")
	areaCmd.Flags().StringVarP(&areaPolygons, "polygons", "p", "", "reference polygons (GeoJSON)")
	areaCmd.Flags().StringVar(&areaPolygonsCRS, "polygons-crs", "", "CRS of the polygon file (defaults to EPSG:4326)")
	areaCmd.Flags().StringVarP(&areaTarget, "target", "t", "", "target class label, or code:N for a cell code")
	areaCmd.Flags().StringVar(&areaOutCSV, "out-csv", "", "write the area report CSV to this path")
	areaCmd.Flags().BoolVar(&areaJSON, "json", false, "print the area report as JSON")

	_ = areaCmd.MarkFlagRequired("layer")
	_ = areaCmd.MarkFlagRequired("polygons")
	_ = areaCmd.MarkFlagRequired("target")
}

func runArea(cmd *cobra.Command, args []string) error {
	target, err := raster.ParseClassRef(areaTarget)
	if err != nil {
		return err
	}

	grid, cats, name, err := parseLayerFlag(areaLayer)
	if err != nil {
		return err
	}
	layer, err := raster.LoadLayer(grid, cats)
	if err != nil {
		return err
	}
	if name != "" {
		layer.Name = name
	}

	polygons, err := geom.LoadGeoJSONFile(areaPolygons, areaPolygonsCRS)
	if err != nil {
		return err
	}

	evaluator := &eval.LayerEvaluator{}
	report, err := evaluator.CalculateArea(layer, polygons, target)
	if err != nil {
		return err
	}

	if areaJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printAreaReport(cmd, report)
	}

	if areaOutCSV != "" {
		if err := export.WriteAreaCSVFile(areaOutCSV, report); err != nil {
			return err
		}
		slog.Info("wrote area CSV", "path", areaOutCSV)
	}
	return nil
}

func printAreaReport(cmd *cobra.Command, r eval.AreaReport) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "target class\t%s\n", r.TargetClass)
	fmt.Fprintf(w, "pixels inside\t%d\n", r.PixelsInside)
	fmt.Fprintf(w, "pixels outside\t%d\n", r.PixelsOutside)
	fmt.Fprintf(w, "area inside (m2)\t%.2f\n", r.AreaInsideM2)
	fmt.Fprintf(w, "area outside (m2)\t%.2f\n", r.AreaOutsideM2)
	fmt.Fprintf(w, "polygon area (m2)\t%.2f\n", r.TotalPolygonAreaM2)
	fmt.Fprintf(w, "pct in polygon\t%.2f\n", r.PercentInPolygon)
	fmt.Fprintf(w, "pixel size (m2)\t%.2f\n", r.PixelSizeM2)
	fmt.Fprintf(w, "SCR\t%s\n", r.SCR)
	w.Flush()
}
