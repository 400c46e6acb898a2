package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"wsnsim/internal/routing"
	"wsnsim/internal/sim"
)

var (
	simProtocol string
	simOut      outputFlags
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a single routing protocol",
	Long:  "simulate runs one protocol on the configured field and reports its round rows and final metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out, err := newOutput(&cfg, simOut)
		if err != nil {
			return err
		}
		defer out.Close()

		ctx := cmd.Context()
		if _, err := sim.RunProtocol(ctx, cfg, simProtocol, out.options(uuid.New().String(), "simulate")); err != nil {
			return err
		}
		waitTUI(ctx, out)
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simProtocol, "protocol", routing.ProtocolSecureML, "Protocol to run: aodv, leach, pegasis or secure_ml")
	addOutputFlags(simulateCmd, &simOut)
}
