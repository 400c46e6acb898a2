package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"wsnsim/internal/attack"
	"wsnsim/internal/config"
	"wsnsim/internal/metrics"
	"wsnsim/internal/routing"
)

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Nodes = 35
	cfg.Rounds = 40
	cfg.PacketsPerRound = 8
	cfg.AttackFraction = 0.1
	cfg.Seed = 3
	return cfg
}

func checkResult(t *testing.T, name string, res metrics.Result, rounds int) {
	t.Helper()
	if res.PDR < 0 || res.PDR > 1 {
		t.Errorf("%s: pdr %v out of range", name, res.PDR)
	}
	for key, r := range map[string]metrics.Ratio{
		metrics.KeyAvgDelay:        res.AvgDelay,
		metrics.KeyEnergyPerPacket: res.EnergyPerPacket,
		metrics.KeyRoutingOverhead: res.RoutingOverhead,
	} {
		if r.Defined() && float64(r) < 0 {
			t.Errorf("%s: %s = %v is negative", name, key, r)
		}
	}
	if res.FNDRound != metrics.NeverObserved && (res.FNDRound < 0 || res.FNDRound >= float64(rounds)) {
		t.Errorf("%s: fnd_round %v outside [0,%d)", name, res.FNDRound, rounds)
	}
}

func TestCompareAllScenario(t *testing.T) {
	cfg := smallConfig()
	results, err := CompareAll(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("CompareAll: %v", err)
	}
	if len(results) != len(routing.Protocols) {
		t.Fatalf("expected %d protocols, got %d", len(routing.Protocols), len(results))
	}
	for _, p := range routing.Protocols {
		res, ok := results[p]
		if !ok {
			t.Fatalf("missing protocol %s", p)
		}
		checkResult(t, p, res, cfg.Rounds)
		if len(res.Map()) != 5 {
			t.Errorf("%s: expected 5 metric keys", p)
		}
	}
}

func TestRunProtocolDeterministic(t *testing.T) {
	cfg := smallConfig()
	for _, p := range routing.Protocols {
		a, err := RunProtocol(context.Background(), cfg, p, Options{})
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		b, err := RunProtocol(context.Background(), cfg, p, Options{})
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if fmt.Sprintf("%#v", a) != fmt.Sprintf("%#v", b) {
			t.Fatalf("%s: runs differ: %+v vs %+v", p, a, b)
		}
	}
}

func TestCompareAllMatchesSequentialRuns(t *testing.T) {
	cfg := smallConfig()
	cfg.Rounds = 15
	results, err := CompareAll(context.Background(), cfg, Options{RunID: "fixed"})
	if err != nil {
		t.Fatalf("CompareAll: %v", err)
	}
	for _, p := range routing.Protocols {
		single, err := RunProtocol(context.Background(), cfg, p, Options{})
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if fmt.Sprintf("%#v", single) != fmt.Sprintf("%#v", results[p]) {
			t.Fatalf("%s: concurrent run differs from sequential run", p)
		}
	}
}

func TestUnknownProtocol(t *testing.T) {
	_, err := RunProtocol(context.Background(), smallConfig(), "ospf", Options{})
	if !errors.Is(err, ErrUnknownProtocol) {
		t.Fatalf("expected ErrUnknownProtocol, got %v", err)
	}
}

func TestNoAttackKeepsTrust(t *testing.T) {
	cfg := smallConfig()
	cfg.AttackFraction = 0
	for _, p := range routing.Protocols {
		s, err := NewSimulator(cfg, p, Options{})
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if n := s.Attack().Profile().Size(); n != 0 {
			t.Fatalf("%s: expected no malicious nodes, got %d", p, n)
		}
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if d := s.Metrics().Outcomes[metrics.DroppedAttack]; d != 0 {
			t.Fatalf("%s: %d selective drops without attackers", p, d)
		}
		for id := 0; id < cfg.Nodes; id++ {
			if tr := s.Attack().TrustScore(id); tr != 1 {
				t.Fatalf("%s: trust of %d dropped to %v", p, id, tr)
			}
		}
	}
}

func TestEnergyBookkeeping(t *testing.T) {
	cfg := smallConfig()
	for _, p := range routing.Protocols {
		s, err := NewSimulator(cfg, p, Options{})
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		spent := 0.0
		for _, n := range s.Nodes() {
			spent += cfg.InitialEnergy - n.Energy
			if n.Energy <= 0 && n.Alive {
				t.Fatalf("%s: node %d alive without energy", p, n.ID)
			}
		}
		if math.Abs(spent-s.Metrics().TotalEnergy) > 1e-9 {
			t.Fatalf("%s: nodes lost %v, metrics recorded %v", p, spent, s.Metrics().TotalEnergy)
		}
		m := s.Metrics()
		total := 0
		for _, c := range m.Outcomes {
			total += c
		}
		if total != m.Generated {
			t.Fatalf("%s: %d outcomes for %d packets", p, total, m.Generated)
		}
	}
}

func TestControlPackets(t *testing.T) {
	cfg := smallConfig()
	for p, wantControl := range map[string]bool{
		routing.ProtocolAODV:     true,
		routing.ProtocolLEACH:    true,
		routing.ProtocolPEGASIS:  false,
		routing.ProtocolSecureML: false,
	} {
		s, err := NewSimulator(cfg, p, Options{})
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if _, err := s.Run(context.Background()); err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if got := s.Metrics().ControlPackets > 0; got != wantControl {
			t.Fatalf("%s: control packets = %d", p, s.Metrics().ControlPackets)
		}
	}
}

func TestSecureRunTrainsAndLearns(t *testing.T) {
	s, err := NewSimulator(smallConfig(), routing.ProtocolSecureML, Options{})
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	if s.TrainingSamples() == 0 {
		t.Fatalf("expected warm-up samples")
	}
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Metrics().Delivered > 0 {
		secure := s.policy.(*routing.Secure)
		if secure.Learner().Len() == 0 {
			t.Fatalf("expected q-values after deliveries")
		}
	}
}

func TestRunEmitsRows(t *testing.T) {
	cfg := smallConfig()
	cw := &collectWriter{}
	s, err := NewSimulator(cfg, routing.ProtocolLEACH, Options{RunID: "r1", Label: "test", Rounds: cw, Results: cw})
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(cw.rows) != cfg.Rounds {
		t.Fatalf("expected %d round rows, got %d", cfg.Rounds, len(cw.rows))
	}
	for i := 1; i < len(cw.rows); i++ {
		if cw.rows[i].Generated < cw.rows[i-1].Generated || cw.rows[i].Round != i {
			t.Fatalf("round rows out of order at %d", i)
		}
	}
	if len(cw.results) != 1 {
		t.Fatalf("expected one result row, got %d", len(cw.results))
	}
	got := cw.results[0]
	if got.RunID != "r1" || got.Label != "test" || got.Protocol != routing.ProtocolLEACH || got.PDR != res.PDR {
		t.Fatalf("unexpected result row %+v", got)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunProtocol(ctx, smallConfig(), routing.ProtocolAODV, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := CompareAll(ctx, smallConfig(), Options{}); err == nil {
		t.Fatalf("expected error from cancelled comparison")
	}
}

func TestSelectiveDropChargesEnergyAndTrust(t *testing.T) {
	cfg := smallConfig()
	cfg.AttackFraction = 0
	s, err := NewSimulator(cfg, routing.ProtocolAODV, Options{})
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	src, hop := -1, -1
	for _, n := range s.Nodes() {
		if n.ID == cfg.SinkID {
			continue
		}
		if next, ok := s.policy.Next(n.ID); ok && next != cfg.SinkID {
			src, hop = n.ID, next
			break
		}
	}
	if src < 0 {
		t.Fatalf("no source with a relay hop in the field")
	}
	s.attack = attack.NewEngineWithProfile(cfg.Nodes,
		attack.Profile{Selective: map[int]struct{}{hop: {}}},
		func() float64 { return 0 })

	srcEnergy, hopEnergy := s.nodes[src].Energy, s.nodes[hop].Energy
	if o := s.send(src, 0); o != metrics.DroppedAttack {
		t.Fatalf("expected %s, got %s", metrics.DroppedAttack, o)
	}
	m := s.Metrics()
	if m.Generated != 1 || m.Outcomes[metrics.DroppedAttack] != 1 || m.Delivered != 0 {
		t.Fatalf("unexpected counters %+v", m)
	}
	if math.Abs(m.TotalEnergy-(EnergyTX+EnergyRX)) > 1e-12 {
		t.Fatalf("dropped hop must still be charged, got %v", m.TotalEnergy)
	}
	if math.Abs(srcEnergy-s.nodes[src].Energy-EnergyTX) > 1e-12 {
		t.Fatalf("sender drained %v, want %v", srcEnergy-s.nodes[src].Energy, EnergyTX)
	}
	if math.Abs(hopEnergy-s.nodes[hop].Energy-EnergyRX) > 1e-12 {
		t.Fatalf("dropper drained %v, want %v", hopEnergy-s.nodes[hop].Energy, EnergyRX)
	}
	if got := s.Attack().TrustScore(hop); math.Abs(got-(attack.InitialTrust-attack.DropPenalty)) > 1e-12 {
		t.Fatalf("dropper trust %v, want %v", got, attack.InitialTrust-attack.DropPenalty)
	}
	if s.Attack().TrustScore(src) != attack.InitialTrust {
		t.Fatalf("sender trust changed to %v", s.Attack().TrustScore(src))
	}
}
