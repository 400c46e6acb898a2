package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wsnsim/internal/config"
	"wsnsim/internal/logging"
	"wsnsim/internal/scenario"
)

var (
	configPath string
	schemaPath string
	logLevel   string

	flagSeed            int64
	flagNodes           int
	flagRounds          int
	flagPacketsPerRound int
	flagAttackFraction  float64
	flagCommRange       float64
	flagUtilityModel    string
)

var rootCmd = &cobra.Command{
	Use:   "wsnsim",
	Short: "Secure WSN routing simulator",
	Long:  "wsnsim compares AODV, LEACH, PEGASIS and a trust-aware learned routing protocol on a simulated sensor field under selective-forwarding attack.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(logLevel)
		slog.SetDefault(log)
		cmd.SetContext(logging.NewContext(cmd.Context(), log))
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig returns the reference configuration or the validated file at
// configPath, with the override flags set on cmd applied on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath, schemaPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}
	cfg = flagOverrides(cmd).Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func flagOverrides(cmd *cobra.Command) scenario.Overrides {
	var o scenario.Overrides
	f := cmd.Flags()
	if f.Changed("seed") {
		o.Seed = &flagSeed
	}
	if f.Changed("nodes") {
		o.Nodes = &flagNodes
	}
	if f.Changed("rounds") {
		o.Rounds = &flagRounds
	}
	if f.Changed("packets-per-round") {
		o.PacketsPerRound = &flagPacketsPerRound
	}
	if f.Changed("attack-fraction") {
		o.AttackFraction = &flagAttackFraction
	}
	if f.Changed("comm-range") {
		o.CommRange = &flagCommRange
	}
	if f.Changed("utility-model") {
		o.UtilityModel = &flagUtilityModel
	}
	return o
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to simulation configuration YAML (default: built-in reference scenario)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Path to CUE schema file (default: embedded schema)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	addOverrideFlags(rootCmd)

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(reportCmd)
}

// addOverrideFlags registers the persistent config override flags on cmd.
func addOverrideFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.Int64Var(&flagSeed, "seed", 0, "Override the configured seed")
	pf.IntVar(&flagNodes, "nodes", 0, "Override the number of nodes")
	pf.IntVar(&flagRounds, "rounds", 0, "Override the number of rounds")
	pf.IntVar(&flagPacketsPerRound, "packets-per-round", 0, "Override packets generated per round")
	pf.Float64Var(&flagAttackFraction, "attack-fraction", 0, "Override the malicious node fraction")
	pf.Float64Var(&flagCommRange, "comm-range", 0, "Override the communication range")
	pf.StringVar(&flagUtilityModel, "utility-model", "", "Override the utility model: linear or forest")
}
