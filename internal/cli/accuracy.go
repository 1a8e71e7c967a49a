package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/terralens/spatialval/internal/eval"
	"github.com/terralens/spatialval/internal/export"
	"github.com/terralens/spatialval/internal/geom"
	"github.com/terralens/spatialval/internal/history"
	"github.com/terralens/spatialval/internal/raster"
	"github.com/terralens/spatialval/internal/render"
)

var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "Evaluate raster layers against reference polygons",
	Long: `Evaluate one or more categorical raster layers against a set of reference
polygons, reporting UA, PA, F1 and SCR per layer. Layers are given as
GRID,CATEGORIES[,NAME] triples and evaluated in the order passed.`,
	RunE: runAccuracy,
}

var (
	accLayers      []string
	accPolygons    string
	accPolygonsCRS string
	accTarget      string
	accLabelMode   string
	accOutMap      string
	accOutCSV      string
	accSaveRun     bool
	accDBPath      string
	accWorkers     int
	accJSON        bool

	accOverlay      bool
	accOverlayColor string
	accOverlayFill  bool
	accOutlineWidth int
	accOpacity      float64
	accFacetCols    int
	accCellPixels   int
	accTextScale    int
)

func init() {
	rootCmd.AddCommand(accuracyCmd)

	accuracyCmd.Flags().StringArrayVarP(&accLayers, "layer", "l", nil, "layer as GRID,CATEGORIES[,NAME] (repeatable)")
	accuracyCmd.Flags().StringVarP(&accPolygons, "polygons", "p", "", "reference polygons (GeoJSON)")
	accuracyCmd.Flags().StringVar(&accPolygonsCRS, "polygons-crs", "", "CRS of the polygon file (defaults to EPSG:4326)")
	accuracyCmd.Flags().StringVarP(&accTarget, "target", "t", "", "target class label, or code:N for a cell code")
	accuracyCmd.Flags().StringVar(&accLabelMode, "label-mode", "accuracy", "facet label mode: accuracy, scr or both")
	accuracyCmd.Flags().StringVar(&accOutMap, "out-map", "", "write the facet comparison map PNG to this path")
	accuracyCmd.Flags().StringVar(&accOutCSV, "out-csv", "", "write the metrics table CSV to this path")
	accuracyCmd.Flags().BoolVar(&accSaveRun, "save-run", false, "record this run in the history database")
	accuracyCmd.Flags().StringVar(&accDBPath, "db", "spatialval.db", "run history database path")
	accuracyCmd.Flags().IntVar(&accWorkers, "workers", 0, "parallel layer workers (0 = sequential)")
	accuracyCmd.Flags().BoolVar(&accJSON, "json", false, "print the metrics table as JSON")

	accuracyCmd.Flags().BoolVar(&accOverlay, "polygon-overlay", true, "draw the polygon outlines on the map")
	accuracyCmd.Flags().StringVar(&accOverlayColor, "polygon-color", "#222222", "polygon outline color (#RRGGBB or #RRGGBBAA)")
	accuracyCmd.Flags().BoolVar(&accOverlayFill, "polygon-fill", false, "fill the polygon interiors")
	accuracyCmd.Flags().IntVar(&accOutlineWidth, "outline-width", 2, "polygon outline width in pixels")
	accuracyCmd.Flags().Float64Var(&accOpacity, "opacity", 0.8, "polygon overlay opacity (0 = invisible, 1 = opaque)")
	accuracyCmd.Flags().IntVar(&accFacetCols, "facet-cols", 2, "facet grid columns")
	accuracyCmd.Flags().IntVar(&accCellPixels, "cell-pixels", 24, "pixels per raster cell")
	accuracyCmd.Flags().IntVar(&accTextScale, "strip-text-scale", 1, "label strip text scale factor")

	_ = accuracyCmd.MarkFlagRequired("layer")
	_ = accuracyCmd.MarkFlagRequired("polygons")
	_ = accuracyCmd.MarkFlagRequired("target")
}

// configKeys are the flag names that config files and SPATIALVAL_*
// environment variables may supply defaults for. Explicit flags still win.
var configKeys = []string{
	"label-mode", "polygon-overlay", "polygon-color", "polygon-fill",
	"outline-width", "opacity", "facet-cols", "cell-pixels",
	"strip-text-scale", "workers", "db",
}

// bindConfigKeys backs the styling, worker and history flags with viper so
// values read from the config file take effect as defaults.
func bindConfigKeys() error {
	flags := accuracyCmd.Flags()
	for _, name := range configKeys {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// parseLayerFlag splits a GRID,CATEGORIES[,NAME] flag value.
func parseLayerFlag(s string) (grid, categories, name string, err error) {
	parts := strings.Split(s, ",")
	switch len(parts) {
	case 2:
		return parts[0], parts[1], "", nil
	case 3:
		return parts[0], parts[1], parts[2], nil
	default:
		return "", "", "", fmt.Errorf("invalid --layer value %q: want GRID,CATEGORIES[,NAME]", s)
	}
}

// loadLayerStack loads the --layer flag values into a stack, in order.
func loadLayerStack(specs []string) (*raster.Stack, error) {
	stack := raster.NewStack()
	for _, spec := range specs {
		grid, cats, name, err := parseLayerFlag(spec)
		if err != nil {
			return nil, err
		}
		l, err := raster.LoadLayer(grid, cats)
		if err != nil {
			return nil, err
		}
		if name != "" {
			l.Name = name
		}
		stack.Append(l)
	}
	return stack, nil
}

// styleFromFlags resolves the effective style through viper: an explicit
// flag wins, then the config file or environment, then the flag default.
func styleFromFlags() render.Style {
	st := render.DefaultStyle()
	st.PolygonOverlay = viper.GetBool("polygon-overlay")
	st.PolygonFill = viper.GetBool("polygon-fill")
	if c := viper.GetString("polygon-color"); c != "" {
		st.PolygonColor = c
	}
	if w := viper.GetInt("outline-width"); w > 0 {
		st.OutlineWidth = w
	}
	st.Opacity = viper.GetFloat64("opacity")
	if c := viper.GetInt("facet-cols"); c > 0 {
		st.FacetCols = c
	}
	if p := viper.GetInt("cell-pixels"); p > 0 {
		st.CellPixels = p
	}
	if s := viper.GetInt("strip-text-scale"); s > 0 {
		st.StripTextScale = s
	}
	return st
}

func runAccuracy(cmd *cobra.Command, args []string) error {
	target, err := raster.ParseClassRef(accTarget)
	if err != nil {
		return err
	}

	stack, err := loadLayerStack(accLayers)
	if err != nil {
		return err
	}
	polygons, err := geom.LoadGeoJSONFile(accPolygons, accPolygonsCRS)
	if err != nil {
		return err
	}

	batch := &eval.BatchEvaluator{Workers: viper.GetInt("workers")}
	table, err := batch.EvaluateStack(stack, polygons, target)
	if err != nil {
		return err
	}

	if accJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(table); err != nil {
			return err
		}
	} else {
		printMetricsTable(cmd, table)
	}

	if accOutCSV != "" {
		if err := export.WriteMetricsCSVFile(accOutCSV, table); err != nil {
			return err
		}
		slog.Info("wrote metrics CSV", "path", accOutCSV)
	}

	if accOutMap != "" {
		mode, err := render.ParseLabelMode(viper.GetString("label-mode"))
		if err != nil {
			return err
		}
		renderer := &render.PNGRenderer{}
		m, err := renderer.RenderFacetMap(stack, table, mode, polygons, styleFromFlags())
		if err != nil {
			return err
		}
		if err := m.WritePNG(accOutMap); err != nil {
			return err
		}
		slog.Info("wrote facet map", "path", accOutMap, "width", m.Width, "height", m.Height)
	}

	if accSaveRun {
		dbPath := viper.GetString("db")
		store, err := history.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.SaveRun(target.String(), accPolygons, table)
		if err != nil {
			return err
		}
		slog.Info("saved run", "id", id, "db", dbPath)
	}

	return nil
}

func printMetricsTable(cmd *cobra.Command, table eval.MetricsTable) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LAYER\tUA\tPA\tF1\tSCR\tINSIDE_M2\tOUTSIDE_M2\tPCT_IN")
	for _, m := range table {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t%.2f\n",
			m.Layer, m.UA, m.PA, m.F1, m.SCR,
			m.AreaInsideM2, m.AreaOutsideM2, m.PercentInPolygon)
	}
	w.Flush()
}
