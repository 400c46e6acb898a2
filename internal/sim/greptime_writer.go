package sim

import (
	"context"
	"log/slog"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"wsnsim/internal/telemetry"
)

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes round and result rows to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client      greptimeClient
	roundTable  string
	resultTable string
	log         *slog.Logger
}

// NewGreptimeDBWriter connects to the gRPC endpoint host:port and writes into database.
func NewGreptimeDBWriter(host string, port int, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{
		client:      client,
		roundTable:  telemetry.RoundTableName,
		resultTable: telemetry.ResultTableName,
		log:         slog.Default(),
	}, nil
}

func (w *GreptimeDBWriter) logger() *slog.Logger {
	if w.log == nil {
		return slog.Default()
	}
	return w.log
}

// WriteRound inserts a single round row.
func (w *GreptimeDBWriter) WriteRound(row telemetry.RoundRow) error {
	return w.WriteRounds([]telemetry.RoundRow{row})
}

// WriteRounds inserts multiple round rows.
func (w *GreptimeDBWriter) WriteRounds(rows []telemetry.RoundRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.roundTable)
	if err != nil {
		return err
	}
	for _, c := range []string{"run_id", "label", "protocol"} {
		if err := tbl.AddTagColumn(c, types.STRING); err != nil {
			return err
		}
	}
	for _, c := range []struct {
		name string
		typ  types.ColumnType
	}{
		{"round", types.INT64},
		{"generated", types.INT64},
		{"delivered", types.INT64},
		{"alive_nodes", types.INT64},
		{"energy_spent", types.FLOAT64},
		{"mean_trust", types.FLOAT64},
	} {
		if err := tbl.AddFieldColumn(c.name, c.typ); err != nil {
			return err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID, r.Label, r.Protocol,
			int64(r.Round), int64(r.Generated), int64(r.Delivered), int64(r.AliveNodes),
			r.EnergySpent, r.MeanTrust,
			r.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(tbl, w.roundTable, len(rows))
}

// WriteResult inserts a single result row.
func (w *GreptimeDBWriter) WriteResult(row telemetry.ResultRow) error {
	return w.WriteResults([]telemetry.ResultRow{row})
}

// WriteResults inserts multiple result rows. Undefined ratios are stored as
// nulls.
func (w *GreptimeDBWriter) WriteResults(rows []telemetry.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.resultTable)
	if err != nil {
		return err
	}
	for _, c := range []string{"run_id", "label", "protocol"} {
		if err := tbl.AddTagColumn(c, types.STRING); err != nil {
			return err
		}
	}
	for _, c := range []struct {
		name string
		typ  types.ColumnType
	}{
		{"seed", types.INT64},
		{"pdr", types.FLOAT64},
		{"avg_delay", types.FLOAT64},
		{"energy_per_packet", types.FLOAT64},
		{"routing_overhead", types.FLOAT64},
		{"fnd_round", types.FLOAT64},
		{"delivered", types.INT64},
		{"dropped_no_path", types.INT64},
		{"dropped_ttl", types.INT64},
		{"dropped_dead", types.INT64},
		{"dropped_attack", types.INT64},
	} {
		if err := tbl.AddFieldColumn(c.name, c.typ); err != nil {
			return err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		if err := tbl.AddRow(
			r.RunID, r.Label, r.Protocol,
			r.Seed, r.PDR,
			nullable(float64(r.AvgDelay), r.AvgDelay.Defined()),
			nullable(float64(r.EnergyPerPacket), r.EnergyPerPacket.Defined()),
			nullable(float64(r.RoutingOverhead), r.RoutingOverhead.Defined()),
			r.FNDRound,
			int64(r.Delivered), int64(r.DroppedNoPath), int64(r.DroppedTTL), int64(r.DroppedDead), int64(r.DroppedAttack),
			r.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(tbl, w.resultTable, len(rows))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, name string, n int) error {
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		w.logger().Error("greptimedb write failed", "table", name, "err", err)
		return err
	}
	w.logger().Debug("greptimedb rows written", "table", name, "rows", n)
	return nil
}

func nullable(v float64, ok bool) any {
	if !ok {
		return nil
	}
	return v
}
