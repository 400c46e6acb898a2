package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"wsnsim/internal/config"
	"wsnsim/internal/metrics"
	"wsnsim/internal/telemetry"
)

func TestJSONStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &JSONStdoutWriter{out: buf}
	if err := w.WriteRound(telemetry.RoundRow{Protocol: "aodv", Round: 2, Timestamp: time.Unix(0, 0).UTC()}); err != nil {
		t.Fatalf("WriteRound: %v", err)
	}
	if err := w.WriteResult(telemetry.ResultRow{Protocol: "aodv", EnergyPerPacket: metrics.Ratio(metrics.Undefined)}); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	var row map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, ok := row["energy_per_packet"]; !ok || v != nil {
		t.Fatalf("expected null energy_per_packet, got %v", v)
	}
}

func TestTableWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &TableWriter{out: buf}
	_ = w.WriteResult(telemetry.ResultRow{Label: "dense", Protocol: "secure_ml", PDR: 0.9, AvgDelay: 3, EnergyPerPacket: 0.02, RoutingOverhead: 0, FNDRound: -1})
	_ = w.WriteResult(telemetry.ResultRow{Label: "dense", Protocol: "aodv", PDR: 0.8, AvgDelay: metrics.Ratio(metrics.Undefined), FNDRound: 12})
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"dense", "protocol", "aodv", "secure_ml", "0.9000", "undefined"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "aodv") > strings.Index(out, "secure_ml") {
		t.Fatalf("protocols should follow canonical order:\n%s", out)
	}
	buf.Reset()
	if err := w.Flush(); err != nil || buf.Len() != 0 {
		t.Fatalf("second flush should print nothing, got %q", buf.String())
	}
}

func TestColorStdoutWriter(t *testing.T) {
	cfg := config.Default()
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{cfg: &cfg, out: buf, every: 2, width: 80}
	for r := 0; r < 4; r++ {
		if err := w.WriteRound(telemetry.RoundRow{Protocol: "pegasis", Round: r, Generated: 10, Delivered: 5}); err != nil {
			t.Fatalf("WriteRound: %v", err)
		}
	}
	out := buf.String()
	if strings.Count(out, "Simulation Configuration:") != 1 {
		t.Fatalf("overview should print once: %q", out)
	}
	if strings.Count(out, "round=") != 2 {
		t.Fatalf("expected every second round, got %q", out)
	}
	if !strings.Contains(out, "\x1b[") || !strings.Contains(out, "pdr=0.500") {
		t.Fatalf("expected colored pdr line: %q", out)
	}
	if err := w.WriteResult(telemetry.ResultRow{Protocol: "pegasis", AvgDelay: metrics.Ratio(metrics.Undefined)}); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if !strings.Contains(buf.String(), "delay=undefined") {
		t.Fatalf("undefined delay not rendered: %q", buf.String())
	}
}

func TestRenderConfigWraps(t *testing.T) {
	cfg := config.Default()
	wide := RenderConfig(cfg, 0)
	if !strings.Contains(wide, "Utility Model:") || !strings.Contains(wide, "forest") {
		t.Fatalf("unexpected config rendering: %q", wide)
	}
	narrow := RenderConfig(cfg, 12)
	if strings.Count(narrow, "\n") <= strings.Count(wide, "\n") {
		t.Fatalf("expected narrow rendering to wrap")
	}
}
