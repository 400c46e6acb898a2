package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"wsnsim/internal/config"
	"wsnsim/internal/logging"
	"wsnsim/internal/metrics"
	"wsnsim/internal/routing"
	"wsnsim/internal/sim"
)

// Comparison is the response body of /compare.
type Comparison struct {
	RunID   string                    `json:"run_id"`
	Config  config.Config             `json:"config"`
	Results map[string]metrics.Result `json:"results"`
}

// Server exposes protocol comparisons over HTTP.
type Server struct {
	Base    config.Config
	Results sim.ResultWriter
	tpl     *template.Template

	mu   sync.Mutex
	last *Comparison
}

//go:embed templates/index.html
var content embed.FS

// NewServer returns a server whose comparisons start from base. results may
// be nil.
func NewServer(base config.Config, results sim.ResultWriter) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{Base: base, Results: results, tpl: tpl}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/compare", s.handleCompare)
	mux.HandleFunc("/config", s.handleConfig)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("admin server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("admin server stopping")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type resultRow struct {
	Protocol string
	Result   metrics.Result
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	var rows []resultRow
	if last != nil {
		for _, p := range routing.Protocols {
			if res, ok := last.Results[p]; ok {
				rows = append(rows, resultRow{Protocol: p, Result: res})
			}
		}
	}
	data := struct {
		Config config.Config
		Last   *Comparison
		Rows   []resultRow
	}{Config: s.Base, Last: last, Rows: rows}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index failed", "err", err)
	}
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	cfg, err := applyQuery(s.Base, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	runID := uuid.New().String()
	results, err := sim.CompareAll(r.Context(), cfg, sim.Options{RunID: runID, Label: "http", Results: s.Results})
	if err != nil {
		logging.FromContext(r.Context()).Error("comparison failed", "run_id", runID, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cmp := &Comparison{RunID: runID, Config: cfg, Results: results}
	s.mu.Lock()
	s.last = cmp
	s.mu.Unlock()
	writeJSON(w, r, cmp)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.Base)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("encode response failed", "path", r.URL.Path, "err", err)
	}
}

// Upper bounds for query overrides. The adjacency build is quadratic in nodes.
const (
	MaxQueryNodes           = 1000
	MaxQueryRounds          = 5000
	MaxQueryPacketsPerRound = 1000
)

// applyQuery overrides base with the numeric query parameters of r.
func applyQuery(base config.Config, r *http.Request) (config.Config, error) {
	q := r.URL.Query()
	cfg := base
	ints := map[string]struct {
		dst *int
		max int
	}{
		"nodes":             {&cfg.Nodes, MaxQueryNodes},
		"rounds":            {&cfg.Rounds, MaxQueryRounds},
		"packets_per_round": {&cfg.PacketsPerRound, MaxQueryPacketsPerRound},
	}
	for key, p := range ints {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("%s: %w", key, err)
			}
			if n > p.max {
				return cfg, fmt.Errorf("%s: %d exceeds the limit of %d", key, n, p.max)
			}
			*p.dst = n
		}
	}
	if v := q.Get("attack_fraction"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("attack_fraction: %w", err)
		}
		cfg.AttackFraction = f
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = n
	}
	if v := q.Get("utility_model"); v != "" {
		cfg.UtilityModel = v
	}
	return cfg, cfg.Validate()
}
