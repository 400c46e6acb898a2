// Simulation output rows with greptime tags
package telemetry

import (
	"os"
	"time"

	"wsnsim/internal/metrics"
)

// RoundRow summarizes the network after one simulated round.
type RoundRow struct {
	RunID       string    `json:"run_id"`       // TAG
	Label       string    `json:"label"`        // TAG
	Protocol    string    `json:"protocol"`     // TAG
	Round       int       `json:"round"`        // FIELD
	Generated   int       `json:"generated"`    // FIELD, cumulative
	Delivered   int       `json:"delivered"`    // FIELD, cumulative
	AliveNodes  int       `json:"alive_nodes"`  // FIELD
	EnergySpent float64   `json:"energy_spent"` // FIELD, cumulative
	MeanTrust   float64   `json:"mean_trust"`   // FIELD
	Timestamp   time.Time `json:"ts"`           // TIME INDEX
}

// ResultRow carries the finalized metrics of one protocol run.
type ResultRow struct {
	RunID           string        `json:"run_id"`   // TAG
	Label           string        `json:"label"`    // TAG
	Protocol        string        `json:"protocol"` // TAG
	Seed            int64         `json:"seed"`
	PDR             float64       `json:"pdr"`
	AvgDelay        metrics.Ratio `json:"avg_delay"`
	EnergyPerPacket metrics.Ratio `json:"energy_per_packet"`
	RoutingOverhead metrics.Ratio `json:"routing_overhead"`
	FNDRound        float64       `json:"fnd_round"`
	Delivered       int           `json:"delivered"`
	DroppedNoPath   int           `json:"dropped_no_path"`
	DroppedTTL      int           `json:"dropped_ttl"`
	DroppedDead     int           `json:"dropped_dead"`
	DroppedAttack   int           `json:"dropped_attack"`
	Timestamp       time.Time     `json:"ts"` // TIME INDEX
}

// Result rebuilds the metrics result carried by the row.
func (r ResultRow) Result() metrics.Result {
	return metrics.Result{
		PDR:             r.PDR,
		AvgDelay:        r.AvgDelay,
		EnergyPerPacket: r.EnergyPerPacket,
		RoutingOverhead: r.RoutingOverhead,
		FNDRound:        r.FNDRound,
	}
}

// RoundTableName holds the table name used for round rows in GreptimeDB.
// It defaults to "wsn_rounds" and can be overridden via GREPTIMEDB_ROUND_TABLE.
var RoundTableName = envOr("GREPTIMEDB_ROUND_TABLE", "wsn_rounds")

// ResultTableName holds the table name used for result rows in GreptimeDB.
// It defaults to "wsn_results" and can be overridden via GREPTIMEDB_RESULT_TABLE.
var ResultTableName = envOr("GREPTIMEDB_RESULT_TABLE", "wsn_results")

func (RoundRow) TableName() string  { return RoundTableName }
func (ResultRow) TableName() string { return ResultTableName }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
