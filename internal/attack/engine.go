package attack

import (
	"math"
	"math/rand"
)

// Engine assigns malicious roles and keeps the trust table for one run.
// It is not safe for concurrent use; every run owns its own engine.
type Engine struct {
	profile   Profile
	count     int
	trust     map[int]float64
	randFloat func() float64
}

// NewEngine shuffles every non-sink node id with rng and assigns the first
// k = max(1, floor(count*fraction)) of them to the sybil, sinkhole and
// selective-forwarding groups. rng is kept for drop decisions.
func NewEngine(count int, fraction float64, sinkID int, rng *rand.Rand) *Engine {
	candidates := make([]int, 0, count)
	for i := 0; i < count; i++ {
		if i != sinkID {
			candidates = append(candidates, i)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	k := 0
	if fraction > 0 {
		k = max(minMaliciousPerGroup, int(math.Floor(float64(count)*fraction)))
	}
	chosen := candidates[:min(k, len(candidates))]
	split := 0
	if k > 0 {
		split = max(minMaliciousPerGroup, k/3)
	}

	return NewEngineWithProfile(count, Profile{
		Sybil:     toSet(window(chosen, 0, split)),
		Sinkhole:  toSet(window(chosen, split, 2*split)),
		Selective: toSet(window(chosen, 2*split, len(chosen))),
	}, rng.Float64)
}

// NewEngineWithProfile returns an engine with a fixed role assignment over
// count nodes. drop supplies the uniform draws behind ShouldDrop.
func NewEngineWithProfile(count int, profile Profile, drop func() float64) *Engine {
	e := &Engine{
		profile:   profile,
		count:     count,
		trust:     make(map[int]float64, count),
		randFloat: drop,
	}
	for i := 0; i < count; i++ {
		e.trust[i] = InitialTrust
	}
	return e
}

func window(ids []int, lo, hi int) []int {
	lo = min(lo, len(ids))
	hi = min(hi, len(ids))
	return ids[lo:hi]
}

func toSet(ids []int) map[int]struct{} {
	s := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Profile returns the role assignment.
func (e *Engine) Profile() Profile {
	return e.profile
}

// AdvertisedMultiplier is the route attractiveness a node advertises.
// Sinkholes inflate it; no routing score consumes it yet.
func (e *Engine) AdvertisedMultiplier(id int) float64 {
	if _, ok := e.profile.Sinkhole[id]; ok {
		return SinkholeMultiplier
	}
	return 1.0
}

// ShouldDrop reports whether id discards the packet it was handed.
// Only selective forwarders drop, each call independently.
func (e *Engine) ShouldDrop(id int) bool {
	if _, ok := e.profile.Selective[id]; !ok {
		return false
	}
	return e.randFloat() < SelectiveDropProb
}

// ObserveForward updates the trust score of id after a forward or drop.
func (e *Engine) ObserveForward(id int, forwarded bool) {
	delta := ForwardReward
	if !forwarded {
		delta = -DropPenalty
	}
	if _, ok := e.profile.Sybil[id]; ok {
		delta -= SybilPenalty
	}
	e.trust[id] = clamp(e.trust[id]+delta, 0, 1)
}

// TrustScore returns the current trust of id.
func (e *Engine) TrustScore(id int) float64 {
	return e.trust[id]
}

// MeanTrust returns the average trust over every node, summed in id order.
func (e *Engine) MeanTrust() float64 {
	if e.count == 0 {
		return 0
	}
	sum := 0.0
	for id := 0; id < e.count; id++ {
		sum += e.trust[id]
	}
	return sum / float64(e.count)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
