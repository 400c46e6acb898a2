// Simulator running one routing protocol over a sensor field
package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"wsnsim/internal/attack"
	"wsnsim/internal/config"
	"wsnsim/internal/learn"
	"wsnsim/internal/metrics"
	"wsnsim/internal/routing"
	"wsnsim/internal/telemetry"
	"wsnsim/internal/topology"
)

// Packet and radio constants.
const (
	MaxTTL   = 15
	EnergyTX = 0.004
	EnergyRX = 0.002
)

// ErrUnknownProtocol is returned for a protocol id outside routing.Protocols.
var ErrUnknownProtocol = errors.New("unknown protocol")

// RoundWriter receives one row per simulated round.
type RoundWriter interface {
	WriteRound(telemetry.RoundRow) error
}

// ResultWriter receives the finalized metrics of a protocol run.
type ResultWriter interface {
	WriteResult(telemetry.ResultRow) error
}

// Optional: round writers may support batch mode
type batchRoundWriter interface {
	WriteRounds([]telemetry.RoundRow) error
}

// Optional: result writers may support batch mode
type batchResultWriter interface {
	WriteResults([]telemetry.ResultRow) error
}

// Packet is one forwarding attempt. It lives only within the round it was
// created in.
type Packet struct {
	Source int
	TTL    int
	Round  int
	Hops   int
}

// Options control run identity and output. Nil writers are skipped.
type Options struct {
	RunID   string
	Label   string
	Rounds  RoundWriter
	Results ResultWriter
}

// Simulator owns every piece of mutable state of one protocol run.
type Simulator struct {
	cfg        config.Config
	protocol   string
	rng        *rand.Rand
	nodes      []*topology.Node
	graph      topology.Graph
	attack     *attack.Engine
	policy     routing.Policy
	reinforcer routing.Reinforcer
	metrics    *metrics.Metrics
	gen        *telemetry.Generator
	rounds     RoundWriter
	results    ResultWriter
	samples    int
}

// NewSimulator builds the field, the attack profile and the routing policy
// for protocol. The run's generator is reseeded with cfg.Seed before
// placement and before role assignment.
func NewSimulator(cfg config.Config, protocol string, opts Options) (*Simulator, error) {
	if !isProtocol(protocol) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, protocol)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	rng.Seed(cfg.Seed)
	nodes := topology.Generate(topology.Field{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Nodes:         cfg.Nodes,
		InitialEnergy: cfg.InitialEnergy,
		SinkID:        cfg.SinkID,
	}, rng)
	graph := topology.Adjacency(nodes, cfg.CommRange)

	rng.Seed(cfg.Seed)
	eng := attack.NewEngine(cfg.Nodes, cfg.AttackFraction, cfg.SinkID, rng)

	s := &Simulator{
		cfg:      cfg,
		protocol: protocol,
		rng:      rng,
		nodes:    nodes,
		graph:    graph,
		attack:   eng,
		metrics:  metrics.New(),
		gen:      telemetry.NewGenerator(opts.RunID, opts.Label),
		rounds:   opts.Rounds,
		results:  opts.Results,
	}
	if err := s.buildPolicy(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulator) buildPolicy() error {
	net := routing.Network{Nodes: s.nodes, Graph: s.graph, SinkID: s.cfg.SinkID}
	switch s.protocol {
	case routing.ProtocolAODV:
		s.policy = routing.NewGreedy(net)
	case routing.ProtocolLEACH:
		s.policy = routing.NewEnergyWeighted(net)
	case routing.ProtocolPEGASIS:
		s.policy = routing.NewChain(net)
	case routing.ProtocolSecureML:
		model, err := learn.NewUtilityModel(s.cfg.UtilityModel, learn.DefaultUtilitySeed)
		if err != nil {
			return err
		}
		secure := routing.NewSecure(net, s.attack, model, learn.NewQLearner(s.rng))
		s.samples = secure.Train()
		s.policy = secure
		s.reinforcer = secure
	}
	return nil
}

func isProtocol(p string) bool {
	for _, known := range routing.Protocols {
		if p == known {
			return true
		}
	}
	return false
}

// Protocol returns the protocol id of the run.
func (s *Simulator) Protocol() string { return s.protocol }

// Nodes exposes the node set of the run.
func (s *Simulator) Nodes() []*topology.Node { return s.nodes }

// Attack exposes the attack engine of the run.
func (s *Simulator) Attack() *attack.Engine { return s.attack }

// Metrics exposes the raw accumulators of the run.
func (s *Simulator) Metrics() *metrics.Metrics { return s.metrics }

// TrainingSamples reports the warm-up batch size of the secure router, or 0.
func (s *Simulator) TrainingSamples() int { return s.samples }
