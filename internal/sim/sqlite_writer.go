package sim

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"wsnsim/internal/metrics"
	"wsnsim/internal/telemetry"
)

// SQLiteWriter stores round and result rows in a local SQLite database so
// comparisons can be reported on later.
type SQLiteWriter struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteWriter opens (or creates) the database at path and its tables.
func NewSQLiteWriter(ctx context.Context, path string) (*SQLiteWriter, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes the four concurrent protocol runs.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteWriter{path: path, db: db}, nil
}

// WriteRound inserts a single round row.
func (w *SQLiteWriter) WriteRound(row telemetry.RoundRow) error {
	return w.WriteRounds([]telemetry.RoundRow{row})
}

// WriteRounds inserts multiple round rows in one transaction.
func (w *SQLiteWriter) WriteRounds(rows []telemetry.RoundRow) error {
	return w.tx(func(tx *sql.Tx) error {
		for _, r := range rows {
			_, err := tx.Exec(`
				INSERT INTO rounds (run_id, label, protocol, round, generated, delivered, alive_nodes, energy_spent, mean_trust, ts)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, r.RunID, r.Label, r.Protocol, r.Round, r.Generated, r.Delivered, r.AliveNodes, r.EnergySpent, r.MeanTrust, r.Timestamp.UnixMilli())
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteResult inserts a single result row.
func (w *SQLiteWriter) WriteResult(row telemetry.ResultRow) error {
	return w.WriteResults([]telemetry.ResultRow{row})
}

// WriteResults inserts multiple result rows. Undefined ratios are stored as
// NULL. A repeated (run_id, label, protocol) replaces the earlier row.
func (w *SQLiteWriter) WriteResults(rows []telemetry.ResultRow) error {
	return w.tx(func(tx *sql.Tx) error {
		for _, r := range rows {
			_, err := tx.Exec(`
				INSERT INTO results (run_id, label, protocol, seed, pdr, avg_delay, energy_per_packet, routing_overhead, fnd_round,
					delivered, dropped_no_path, dropped_ttl, dropped_dead, dropped_attack, ts)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(run_id, label, protocol) DO UPDATE SET
					seed = excluded.seed,
					pdr = excluded.pdr,
					avg_delay = excluded.avg_delay,
					energy_per_packet = excluded.energy_per_packet,
					routing_overhead = excluded.routing_overhead,
					fnd_round = excluded.fnd_round,
					delivered = excluded.delivered,
					dropped_no_path = excluded.dropped_no_path,
					dropped_ttl = excluded.dropped_ttl,
					dropped_dead = excluded.dropped_dead,
					dropped_attack = excluded.dropped_attack,
					ts = excluded.ts
			`, r.RunID, r.Label, r.Protocol, r.Seed, r.PDR,
				nullable(float64(r.AvgDelay), r.AvgDelay.Defined()),
				nullable(float64(r.EnergyPerPacket), r.EnergyPerPacket.Defined()),
				nullable(float64(r.RoutingOverhead), r.RoutingOverhead.Defined()),
				r.FNDRound, r.Delivered, r.DroppedNoPath, r.DroppedTTL, r.DroppedDead, r.DroppedAttack,
				r.Timestamp.UnixMilli())
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LatestRunID returns the run id of the most recently stored result, or ""
// when the database holds none.
func (w *SQLiteWriter) LatestRunID(ctx context.Context) (string, error) {
	db, err := w.getDB()
	if err != nil {
		return "", err
	}
	var id string
	err = db.QueryRowContext(ctx, `SELECT run_id FROM results ORDER BY ts DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// Results returns the stored result rows of runID ordered by label and
// protocol. NULL ratios come back undefined.
func (w *SQLiteWriter) Results(ctx context.Context, runID string) ([]telemetry.ResultRow, error) {
	db, err := w.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, label, protocol, seed, pdr, avg_delay, energy_per_packet, routing_overhead, fnd_round,
			delivered, dropped_no_path, dropped_ttl, dropped_dead, dropped_attack, ts
		FROM results WHERE run_id = ? ORDER BY label, protocol
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []telemetry.ResultRow
	for rows.Next() {
		var r telemetry.ResultRow
		var delay, energy, overhead sql.NullFloat64
		var ts int64
		if err := rows.Scan(&r.RunID, &r.Label, &r.Protocol, &r.Seed, &r.PDR, &delay, &energy, &overhead, &r.FNDRound,
			&r.Delivered, &r.DroppedNoPath, &r.DroppedTTL, &r.DroppedDead, &r.DroppedAttack, &ts); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		r.AvgDelay = ratio(delay)
		r.EnergyPerPacket = ratio(energy)
		r.RoutingOverhead = ratio(overhead)
		r.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// RoundCount returns how many round rows runID has stored.
func (w *SQLiteWriter) RoundCount(ctx context.Context, runID string) (int, error) {
	db, err := w.getDB()
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rounds WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return nil
	}
	err := w.db.Close()
	w.db = nil
	return err
}

func (w *SQLiteWriter) getDB() (*sql.DB, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.db == nil {
		return nil, errors.New("sqlite store is closed")
	}
	return w.db, nil
}

func (w *SQLiteWriter) tx(fn func(*sql.Tx) error) error {
	db, err := w.getDB()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func ratio(v sql.NullFloat64) metrics.Ratio {
	if !v.Valid {
		return metrics.Ratio(metrics.Undefined)
	}
	return metrics.Ratio(v.Float64)
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS rounds (
			run_id TEXT NOT NULL,
			label TEXT NOT NULL,
			protocol TEXT NOT NULL,
			round INTEGER NOT NULL,
			generated INTEGER NOT NULL,
			delivered INTEGER NOT NULL,
			alive_nodes INTEGER NOT NULL,
			energy_spent REAL NOT NULL,
			mean_trust REAL NOT NULL,
			ts INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS rounds_run ON rounds (run_id, protocol, round);
		CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL,
			label TEXT NOT NULL,
			protocol TEXT NOT NULL,
			seed INTEGER NOT NULL,
			pdr REAL NOT NULL,
			avg_delay REAL,
			energy_per_packet REAL,
			routing_overhead REAL,
			fnd_round REAL NOT NULL,
			delivered INTEGER NOT NULL,
			dropped_no_path INTEGER NOT NULL,
			dropped_ttl INTEGER NOT NULL,
			dropped_dead INTEGER NOT NULL,
			dropped_attack INTEGER NOT NULL,
			ts INTEGER NOT NULL,
			PRIMARY KEY (run_id, label, protocol)
		);
	`)
	return err
}
