package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/terralens/spatialval/internal/history"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect saved evaluation runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the metrics table of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var (
	runsDBPath string
	runsJSON   bool
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd)

	runsCmd.PersistentFlags().StringVar(&runsDBPath, "db", "spatialval.db", "run history database path")
	runsCmd.PersistentFlags().BoolVar(&runsJSON, "json", false, "print as JSON")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := history.Open(runsDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}

	if runsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTARGET\tPOLYGONS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.TargetClass, r.PolygonSource)
	}
	return w.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := history.Open(runsDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(args[0])
	if err != nil {
		return err
	}

	if runsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s (%s) target=%s polygons=%s\n\n",
		run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"),
		run.TargetClass, run.PolygonSource)
	printMetricsTable(cmd, run.Metrics)
	return nil
}
