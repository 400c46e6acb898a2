package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"wsnsim/internal/config"
	"wsnsim/internal/logging"
	"wsnsim/internal/routing"
	"wsnsim/internal/telemetry"
)

type resultCollector struct {
	mu   sync.Mutex
	rows []telemetry.ResultRow
}

func (c *resultCollector) WriteResult(r telemetry.ResultRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append(c.rows, r)
	return nil
}

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Nodes = 20
	cfg.Width, cfg.Height = 250, 250
	cfg.Rounds = 5
	cfg.PacketsPerRound = 4
	cfg.UtilityModel = config.UtilityLinear
	return cfg
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(smallConfig(), nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body %q", w.Body.String())
	}
}

func TestHandleConfig(t *testing.T) {
	srv := NewServer(smallConfig(), nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))
	var got config.Config
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != smallConfig() {
		t.Fatalf("unexpected config %+v", got)
	}
}

func TestHandleCompare(t *testing.T) {
	results := &resultCollector{}
	srv := NewServer(smallConfig(), results)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/compare?seed=5&attack_fraction=0.2&rounds=3", nil)
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got struct {
		RunID   string                     `json:"run_id"`
		Config  config.Config              `json:"config"`
		Results map[string]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID == "" {
		t.Fatalf("missing run id")
	}
	if got.Config.Seed != 5 || got.Config.AttackFraction != 0.2 || got.Config.Rounds != 3 {
		t.Fatalf("query overrides not applied: %+v", got.Config)
	}
	for _, p := range routing.Protocols {
		if _, ok := got.Results[p]; !ok {
			t.Fatalf("missing result for %s", p)
		}
	}
	if len(results.rows) != len(routing.Protocols) {
		t.Fatalf("expected %d result rows, got %d", len(routing.Protocols), len(results.rows))
	}
	for _, r := range results.rows {
		if r.RunID != got.RunID || r.Label != "http" {
			t.Fatalf("unexpected result row %+v", r)
		}
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	body := w.Body.String()
	if !strings.Contains(body, got.RunID) || !strings.Contains(body, routing.ProtocolSecureML) {
		t.Fatalf("index should show the last comparison:\n%s", body)
	}
}

func TestHandleCompareRejectsBadQuery(t *testing.T) {
	srv := NewServer(smallConfig(), nil)
	for _, q := range []string{
		"nodes=abc", "attack_fraction=2", "utility_model=svm", "seed=x",
		"nodes=100000", "rounds=1000000", "packets_per_round=5000",
	} {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/compare?"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestIndexWithoutComparison(t *testing.T) {
	srv := NewServer(smallConfig(), nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(w.Body.String(), "No comparison yet") {
		t.Fatalf("unexpected index:\n%s", w.Body.String())
	}
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestApplyQueryAcceptsLimits(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/compare?nodes=1000&rounds=5000", nil)
	cfg, err := applyQuery(smallConfig(), r)
	if err != nil {
		t.Fatalf("applyQuery: %v", err)
	}
	if cfg.Nodes != MaxQueryNodes || cfg.Rounds != MaxQueryRounds {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
}

func TestWriteJSONLogsEncodeError(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.NewContext(context.Background(), logging.NewWithWriter(&buf, "debug"))
	r := httptest.NewRequest(http.MethodGet, "/config", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	writeJSON(w, r, map[string]any{"bad": make(chan int)})
	if !strings.Contains(buf.String(), "encode response failed") {
		t.Fatalf("expected encode failure to be logged, got %q", buf.String())
	}
}
