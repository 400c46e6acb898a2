package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wsnsim/internal/logging"
	"wsnsim/internal/sim"
)

var (
	replayInput string
	replaySpeed float64
	replayOut   outputFlags
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded round log",
	Long:  "replay feeds round rows from a JSONL log file back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		replayOut.emitRounds = true
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, err := newOutput(&cfg, replayOut)
		if err != nil {
			return err
		}
		defer out.Close()
		if out.rounds == nil {
			return fmt.Errorf("format %q does not accept round rows", replayOut.format)
		}
		n, err := sim.ReplayLogFile(replayInput, out.rounds, replaySpeed)
		logging.FromContext(cmd.Context()).Info("replay finished", "rows", n)
		return err
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to round log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().StringVar(&replayOut.format, "format", formatJSON, "Output format for replayed rows: json, color or tui")
	replayCmd.Flags().BoolVar(&replayOut.printOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.Flags().IntVar(&replayOut.every, "every", 1, "Print every Nth round in color output")
	replayCmd.MarkFlagRequired("input")
}
