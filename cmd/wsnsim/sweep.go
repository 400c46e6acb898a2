package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"wsnsim/internal/logging"
	"wsnsim/internal/scenario"
	"wsnsim/internal/sim"
)

var (
	sweepScenario string
	sweepOut      outputFlags
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare all protocols across a scenario sweep",
	Long:  "sweep runs a full comparison for every run of a built-in (attack-sweep, density-sweep, scale-sweep) or YAML scenario. All runs share one run id and are labeled by run name.",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sc, err := scenario.Resolve(sweepScenario)
		if err != nil {
			return err
		}
		runs, err := sc.Configs(base)
		if err != nil {
			return err
		}
		out, err := newOutput(&base, sweepOut)
		if err != nil {
			return err
		}
		defer out.Close()

		ctx := cmd.Context()
		log := logging.FromContext(ctx)
		runID := uuid.New().String()
		for i, r := range runs {
			log.Info("sweep run", "scenario", sc.Name, "run", r.Name, "index", i+1, "of", len(runs))
			if _, err := sim.CompareAll(ctx, r.Config, out.options(runID, r.Name)); err != nil {
				return err
			}
		}
		waitTUI(ctx, out)
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepScenario, "scenario", "attack-sweep", "Built-in sweep name or path to a scenario YAML")
	addOutputFlags(sweepCmd, &sweepOut)
}
