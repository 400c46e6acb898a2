package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"wsnsim/internal/logging"
	"wsnsim/internal/sim"
)

var compareOut outputFlags

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run all four protocols on one configuration",
	Long:  "compare runs AODV, LEACH, PEGASIS and SECURE_ML concurrently on identical copies of the field and reports their metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, err := newOutput(&cfg, compareOut)
		if err != nil {
			return err
		}
		defer out.Close()

		ctx := cmd.Context()
		if _, err := sim.CompareAll(ctx, cfg, out.options(uuid.New().String(), "compare")); err != nil {
			return err
		}
		waitTUI(ctx, out)
		return nil
	},
}

// waitTUI keeps the TUI on screen until the user quits it.
func waitTUI(ctx context.Context, out *output) {
	if !out.tui {
		return
	}
	logging.FromContext(ctx).Info("runs finished, press q to exit")
	<-ctx.Done()
}

func init() {
	addOutputFlags(compareCmd, &compareOut)
}
