package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wsnsim/internal/config"
	"wsnsim/internal/sim"
)

var (
	reportDB    string
	reportRunID string
	reportOut   = outputFlags{format: formatTable, printOnly: true}
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print stored comparison results",
	Long:  "report reads the results of one run from a SQLite database written with --sqlite and prints them as a table or JSON. The latest run is used unless --run-id is given. --log-file also exports the rows as JSONL.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportOut.format == formatTUI {
			return fmt.Errorf("format %q is not supported by report", formatTUI)
		}
		ctx := cmd.Context()
		store, err := sim.NewSQLiteWriter(ctx, reportDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runID := reportRunID
		if runID == "" {
			if runID, err = store.LatestRunID(ctx); err != nil {
				return err
			}
			if runID == "" {
				return fmt.Errorf("no results stored in %s", reportDB)
			}
		}
		rows, err := store.Results(ctx, runID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("run %s not found in %s", runID, reportDB)
		}
		if reportOut.format == formatTable {
			fmt.Fprintf(cmd.OutOrStdout(), "run %s\n", runID)
		}
		cfg := config.Default()
		out, err := newOutput(&cfg, reportOut)
		if err != nil {
			return err
		}
		if err := sim.WriteResultBatch(out.results, rows); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportDB, "sqlite", "wsnsim.db", "SQLite database written by --sqlite")
	reportCmd.Flags().StringVar(&reportRunID, "run-id", "", "Run to report (default: latest)")
	reportCmd.Flags().StringVar(&reportOut.format, "format", formatTable, "Output format: table or json")
	reportCmd.Flags().StringVar(&reportOut.logFile, "log-file", "", "Also export the results to <path>.results")
}
