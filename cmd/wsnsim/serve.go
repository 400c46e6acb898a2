package main

import (
	"github.com/spf13/cobra"

	"wsnsim/internal/admin"
)

var (
	serveAddr string
	serveOut  outputFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve protocol comparisons over HTTP",
	Long:  "serve exposes GET /compare, /config and /healthz. Comparison results are also sent to GreptimeDB or the log file when configured.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		serveOut.format = formatJSON
		out, err := newOutput(&cfg, serveOut)
		if err != nil {
			return err
		}
		defer out.Close()
		return admin.NewServer(cfg, out.results).Start(cmd.Context(), serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().BoolVar(&serveOut.printOnly, "print-only", false, "Skip GreptimeDB and MQTT even when their env vars are set")
	serveCmd.Flags().StringVar(&serveOut.logFile, "log-file", "", "Export results to <path>.results")
	serveCmd.Flags().StringVar(&serveOut.sqlitePath, "sqlite", "", "Store results in this SQLite database")
}
