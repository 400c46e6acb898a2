package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"wsnsim/internal/telemetry"
)

type collectWriter struct {
	rows    []telemetry.RoundRow
	results []telemetry.ResultRow
}

func (c *collectWriter) WriteRound(r telemetry.RoundRow) error {
	c.rows = append(c.rows, r)
	return nil
}

func (c *collectWriter) WriteResult(r telemetry.ResultRow) error {
	c.results = append(c.results, r)
	return nil
}

func TestReplayLog(t *testing.T) {
	rows := []telemetry.RoundRow{
		{RunID: "r1", Protocol: "aodv", Round: 0, Timestamp: time.Unix(0, 0)},
		{RunID: "r1", Protocol: "aodv", Round: 1, Timestamp: time.Unix(1, 0)},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &collectWriter{}
	n, err := ReplayLog(&buf, cw, 0)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if n != len(rows) || len(cw.rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.rows))
	}
	for i, r := range rows {
		if cw.rows[i].Round != r.Round {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.rows[i], r)
		}
	}
}

func TestReplayLogMalformed(t *testing.T) {
	cw := &collectWriter{}
	n, err := ReplayLog(strings.NewReader("{\"round\":0}\nnot-json\n"), cw, 0)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if n != 1 {
		t.Fatalf("expected 1 row before the error, got %d", n)
	}
}

func encodeRows(t *testing.T, rows []telemetry.RoundRow) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	return &buf
}

func TestReplayLogBatches(t *testing.T) {
	rows := make([]telemetry.RoundRow, 300)
	for i := range rows {
		rows[i] = telemetry.RoundRow{RunID: "r1", Protocol: "leach", Round: i, Timestamp: time.Unix(int64(i), 0)}
	}
	bw := &batchCollectWriter{}
	n, err := ReplayLog(encodeRows(t, rows), bw, 0)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if n != 300 || len(bw.rows) != 300 {
		t.Fatalf("expected 300 rows, got n=%d rows=%d", n, len(bw.rows))
	}
	if bw.batches != 2 {
		t.Fatalf("expected 2 batches, got %d", bw.batches)
	}
	for i, r := range bw.rows {
		if r.Round != i {
			t.Fatalf("row %d out of order: round %d", i, r.Round)
		}
	}
}

func TestReplayLogGroupsSameInstant(t *testing.T) {
	t0 := time.Unix(100, 0)
	t1 := t0.Add(time.Millisecond)
	rows := []telemetry.RoundRow{
		{Protocol: "aodv", Round: 0, Timestamp: t0},
		{Protocol: "leach", Round: 0, Timestamp: t0},
		{Protocol: "pegasis", Round: 0, Timestamp: t0},
		{Protocol: "aodv", Round: 1, Timestamp: t1},
		{Protocol: "leach", Round: 1, Timestamp: t1},
	}
	bw := &batchCollectWriter{}
	n, err := ReplayLog(encodeRows(t, rows), bw, 1000)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if n != len(rows) || bw.batches != 2 {
		t.Fatalf("expected %d rows in 2 batches, got %d rows in %d", len(rows), n, bw.batches)
	}
}
