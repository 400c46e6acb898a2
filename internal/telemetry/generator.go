package telemetry

import (
	"time"

	"wsnsim/internal/metrics"
)

// Snapshot is the network state observed at the end of a round.
type Snapshot struct {
	Round       int
	Generated   int
	Delivered   int
	AliveNodes  int
	EnergySpent float64
	MeanTrust   float64
}

// Generator stamps output rows with the run identity.
type Generator struct {
	RunID string
	Label string
	now   func() time.Time
}

// NewGenerator creates a generator for one comparison run.
func NewGenerator(runID, label string) *Generator {
	return &Generator{RunID: runID, Label: label, now: func() time.Time { return time.Now().UTC() }}
}

// RoundRow builds the row for a round snapshot of protocol.
func (g *Generator) RoundRow(protocol string, s Snapshot) RoundRow {
	return RoundRow{
		RunID:       g.RunID,
		Label:       g.Label,
		Protocol:    protocol,
		Round:       s.Round,
		Generated:   s.Generated,
		Delivered:   s.Delivered,
		AliveNodes:  s.AliveNodes,
		EnergySpent: s.EnergySpent,
		MeanTrust:   s.MeanTrust,
		Timestamp:   g.now(),
	}
}

// ResultRow builds the row for the finalized metrics of protocol.
func (g *Generator) ResultRow(protocol string, seed int64, res metrics.Result, outcomes map[metrics.Outcome]int) ResultRow {
	return ResultRow{
		RunID:           g.RunID,
		Label:           g.Label,
		Protocol:        protocol,
		Seed:            seed,
		PDR:             res.PDR,
		AvgDelay:        res.AvgDelay,
		EnergyPerPacket: res.EnergyPerPacket,
		RoutingOverhead: res.RoutingOverhead,
		FNDRound:        res.FNDRound,
		Delivered:       outcomes[metrics.Delivered],
		DroppedNoPath:   outcomes[metrics.DroppedNoPath],
		DroppedTTL:      outcomes[metrics.DroppedTTL],
		DroppedDead:     outcomes[metrics.DroppedDead],
		DroppedAttack:   outcomes[metrics.DroppedAttack],
		Timestamp:       g.now(),
	}
}
