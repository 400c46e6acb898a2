package attack

import (
	"math/rand"
	"testing"
)

func TestEngine_PartitionSizes(t *testing.T) {
	cases := []struct {
		count                          int
		fraction                       float64
		sybil, sinkhole, selective, k int
	}{
		{count: 80, fraction: 0.1, sybil: 2, sinkhole: 2, selective: 4, k: 8},
		{count: 35, fraction: 0.1, sybil: 1, sinkhole: 1, selective: 1, k: 3},
		{count: 10, fraction: 0.01, sybil: 1, sinkhole: 0, selective: 0, k: 1},
		{count: 20, fraction: 0.1, sybil: 1, sinkhole: 1, selective: 0, k: 2},
		{count: 40, fraction: 0.1, sybil: 1, sinkhole: 1, selective: 2, k: 4},
		{count: 50, fraction: 0, sybil: 0, sinkhole: 0, selective: 0, k: 0},
	}
	for _, tc := range cases {
		e := NewEngine(tc.count, tc.fraction, 0, rand.New(rand.NewSource(3)))
		p := e.Profile()
		if len(p.Sybil) != tc.sybil || len(p.Sinkhole) != tc.sinkhole || len(p.Selective) != tc.selective {
			t.Fatalf("count=%d fraction=%g: got %d/%d/%d, want %d/%d/%d", tc.count, tc.fraction,
				len(p.Sybil), len(p.Sinkhole), len(p.Selective), tc.sybil, tc.sinkhole, tc.selective)
		}
		if p.Size() != tc.k {
			t.Fatalf("count=%d: partition size %d, want %d", tc.count, p.Size(), tc.k)
		}
		if p.RoleOf(0) != RoleHonest {
			t.Fatalf("sink assigned role %s", p.RoleOf(0))
		}
	}
}

func TestEngine_Disjoint(t *testing.T) {
	e := NewEngine(100, 0.3, 0, rand.New(rand.NewSource(11)))
	p := e.Profile()
	seen := map[int]bool{}
	for _, set := range []map[int]struct{}{p.Sybil, p.Sinkhole, p.Selective} {
		for id := range set {
			if seen[id] {
				t.Fatalf("node %d in more than one role", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != 30 {
		t.Fatalf("expected 30 malicious nodes, got %d", len(seen))
	}
}

func TestEngine_TrustBounds(t *testing.T) {
	e := NewEngine(30, 0.5, 0, rand.New(rand.NewSource(5)))
	r := rand.New(rand.NewSource(8))
	for i := 0; i < 5000; i++ {
		id := r.Intn(30)
		e.ObserveForward(id, r.Intn(2) == 0)
		if tr := e.TrustScore(id); tr < 0 || tr > 1 {
			t.Fatalf("trust out of bounds: %v", tr)
		}
	}
}

func TestEngine_ObserveForward(t *testing.T) {
	e := &Engine{
		profile: Profile{Sybil: map[int]struct{}{2: {}}},
		count:   3,
		trust:   map[int]float64{0: 1, 1: 0.5, 2: 0.5},
	}
	e.ObserveForward(1, true)
	if got := e.TrustScore(1); got < 0.5199 || got > 0.5201 {
		t.Fatalf("honest forward: got %v", got)
	}
	e.ObserveForward(1, false)
	if got := e.TrustScore(1); got < 0.4399 || got > 0.4401 {
		t.Fatalf("honest drop: got %v", got)
	}
	e.ObserveForward(2, true)
	if got := e.TrustScore(2); got < 0.4999 || got > 0.5001 {
		t.Fatalf("sybil forward should net zero: got %v", got)
	}
	e.ObserveForward(0, true)
	if e.TrustScore(0) != 1 {
		t.Fatalf("trust must clamp at 1")
	}
}

func TestEngine_ShouldDrop(t *testing.T) {
	e := &Engine{
		profile:   Profile{Selective: map[int]struct{}{4: {}}},
		randFloat: func() float64 { return 0.44 },
	}
	if !e.ShouldDrop(4) {
		t.Fatalf("selective forwarder should drop below threshold")
	}
	if e.ShouldDrop(3) {
		t.Fatalf("honest node must never drop")
	}
	e.randFloat = func() float64 { return 0.45 }
	if e.ShouldDrop(4) {
		t.Fatalf("selective forwarder should forward at threshold")
	}
}

func TestEngine_AdvertisedMultiplier(t *testing.T) {
	e := &Engine{profile: Profile{Sinkhole: map[int]struct{}{7: {}}}}
	if e.AdvertisedMultiplier(7) != SinkholeMultiplier || e.AdvertisedMultiplier(8) != 1 {
		t.Fatalf("unexpected multipliers")
	}
}

func TestEngine_NoAttackTrustOnlyRises(t *testing.T) {
	e := NewEngine(20, 0, 0, rand.New(rand.NewSource(1)))
	for id := 0; id < 20; id++ {
		before := e.TrustScore(id)
		if e.ShouldDrop(id) {
			t.Fatalf("no node may drop without attackers")
		}
		e.ObserveForward(id, true)
		if e.TrustScore(id) < before {
			t.Fatalf("trust decreased for %d", id)
		}
	}
	if e.MeanTrust() != 1 {
		t.Fatalf("expected mean trust 1, got %v", e.MeanTrust())
	}
}

func TestEngine_Deterministic(t *testing.T) {
	a := NewEngine(60, 0.2, 0, rand.New(rand.NewSource(42))).Profile()
	b := NewEngine(60, 0.2, 0, rand.New(rand.NewSource(42))).Profile()
	for id := 0; id < 60; id++ {
		if a.RoleOf(id) != b.RoleOf(id) {
			t.Fatalf("role of %d differs", id)
		}
	}
}

func TestEngine_WithProfile(t *testing.T) {
	e := NewEngineWithProfile(5, Profile{Selective: map[int]struct{}{3: {}}}, func() float64 { return 0 })
	if e.Profile().RoleOf(3) != RoleSelective || e.Profile().Size() != 1 {
		t.Fatalf("unexpected profile %+v", e.Profile())
	}
	if !e.ShouldDrop(3) || e.ShouldDrop(2) {
		t.Fatalf("only node 3 should drop")
	}
	if e.MeanTrust() != InitialTrust {
		t.Fatalf("expected initial trust, got %v", e.MeanTrust())
	}
}
