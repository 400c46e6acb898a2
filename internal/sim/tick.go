package sim

import (
	"context"

	"wsnsim/internal/logging"
	"wsnsim/internal/metrics"
	"wsnsim/internal/telemetry"
)

// Run reseeds the generator, plays every round and returns the finalized
// metrics. It stops early with the context error when ctx is done.
func (s *Simulator) Run(ctx context.Context) (metrics.Result, error) {
	log := logging.FromContext(ctx).With("protocol", s.protocol, "run_id", s.gen.RunID)
	log.Info("starting protocol run",
		"nodes", s.cfg.Nodes,
		"rounds", s.cfg.Rounds,
		"malicious", s.attack.Profile().Size(),
		"training_samples", s.samples)

	s.rng.Seed(s.cfg.Seed)
	for r := 0; r < s.cfg.Rounds; r++ {
		if err := ctx.Err(); err != nil {
			log.Warn("protocol run cancelled", "round", r)
			return metrics.Result{}, err
		}
		s.round(r)
		if s.rounds != nil {
			if err := s.rounds.WriteRound(s.gen.RoundRow(s.protocol, s.snapshot(r))); err != nil {
				log.Error("round write failed", "round", r, "err", err)
			}
		}
	}

	res := s.metrics.Finalize()
	if s.results != nil {
		if err := s.results.WriteResult(s.gen.ResultRow(s.protocol, s.cfg.Seed, res, s.metrics.Outcomes)); err != nil {
			log.Error("result write failed", "err", err)
		}
	}
	log.Info("protocol run finished",
		"pdr", res.PDR,
		"avg_delay", res.AvgDelay.String(),
		"fnd_round", res.FNDRound)
	return res, nil
}

// round sends one packet from each selected source, then checks for the
// first node death.
func (s *Simulator) round(r int) {
	for _, src := range s.sources() {
		s.send(src, r)
	}
	if s.metrics.FNDRound == nil && s.anyDead() {
		s.metrics.ObserveDeath(r)
	}
}

// send generates one packet at src and records its outcome.
func (s *Simulator) send(src, r int) metrics.Outcome {
	s.metrics.Generated++
	p := &Packet{Source: src, TTL: MaxTTL, Round: r}
	o := s.forward(p)
	s.metrics.Record(o, p.Hops)
	return o
}

// sources returns up to PacketsPerRound alive non-sink nodes in random order.
func (s *Simulator) sources() []int {
	var ids []int
	for _, n := range s.nodes {
		if n.ID != s.cfg.SinkID && n.Alive {
			ids = append(ids, n.ID)
		}
	}
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if len(ids) > s.cfg.PacketsPerRound {
		ids = ids[:s.cfg.PacketsPerRound]
	}
	return ids
}

// forward walks p hop by hop until it reaches a terminal state.
func (s *Simulator) forward(p *Packet) metrics.Outcome {
	current := p.Source
	for p.TTL > 0 && current != s.cfg.SinkID && s.nodes[current].Alive {
		p.TTL--
		p.Hops++
		s.metrics.ControlPackets += s.policy.ControlCost()

		next, ok := s.policy.Next(current)
		if !ok {
			return metrics.DroppedNoPath
		}
		if s.attack.ShouldDrop(next) {
			// The transmission still happens.
			s.transmit(current, next)
			s.attack.ObserveForward(next, false)
			return metrics.DroppedAttack
		}
		s.transmit(current, next)
		s.attack.ObserveForward(next, true)
		if s.reinforcer != nil {
			s.reinforcer.Reinforce(current, next)
		}
		current = next
	}

	switch {
	case current == s.cfg.SinkID:
		return metrics.Delivered
	case !s.nodes[current].Alive:
		return metrics.DroppedDead
	default:
		return metrics.DroppedTTL
	}
}

func (s *Simulator) transmit(from, to int) {
	s.nodes[from].Drain(EnergyTX)
	s.nodes[to].Drain(EnergyRX)
	s.metrics.TotalEnergy += EnergyTX + EnergyRX
}

func (s *Simulator) anyDead() bool {
	for _, n := range s.nodes {
		if n.ID != s.cfg.SinkID && !n.Alive {
			return true
		}
	}
	return false
}

func (s *Simulator) snapshot(r int) telemetry.Snapshot {
	alive := 0
	for _, n := range s.nodes {
		if n.Alive {
			alive++
		}
	}
	return telemetry.Snapshot{
		Round:       r,
		Generated:   s.metrics.Generated,
		Delivered:   s.metrics.Delivered,
		AliveNodes:  alive,
		EnergySpent: s.metrics.TotalEnergy,
		MeanTrust:   s.attack.MeanTrust(),
	}
}
