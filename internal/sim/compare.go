package sim

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wsnsim/internal/config"
	"wsnsim/internal/logging"
	"wsnsim/internal/metrics"
	"wsnsim/internal/routing"
)

// RunProtocol simulates a single protocol under cfg.
func RunProtocol(ctx context.Context, cfg config.Config, protocol string, opts Options) (metrics.Result, error) {
	s, err := NewSimulator(cfg, protocol, opts)
	if err != nil {
		return metrics.Result{}, err
	}
	return s.Run(ctx)
}

// CompareAll runs every protocol in routing.Protocols concurrently over its
// own copy of the field and returns the results keyed by protocol id.
// An empty opts.RunID is replaced by a fresh UUID.
func CompareAll(ctx context.Context, cfg config.Config, opts Options) (map[string]metrics.Result, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	log := logging.FromContext(ctx)
	log.Info("comparing protocols", "run_id", opts.RunID, "label", opts.Label, "seed", cfg.Seed)

	var mu sync.Mutex
	results := make(map[string]metrics.Result, len(routing.Protocols))
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range routing.Protocols {
		g.Go(func() error {
			res, err := RunProtocol(gctx, cfg, p, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			results[p] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
