package routing

import (
	"wsnsim/internal/learn"
	"wsnsim/internal/topology"
)

// Secure router weights and thresholds.
const (
	SecureEnergyMin = 0.15
	SecureTrustMin  = 0.3

	utilityWeight = 0.6 // q-value weight is 1-utilityWeight
	riskWeight    = 0.6
	balanceWeight = 0.3

	rewardBase        = 1.0
	rewardEnergy      = 0.5
	rewardTrust       = 0.8
	rewardSinkBonus   = 2.0
	warmupEnergy      = 0.5
	warmupProgress    = 0.2
	warmupTrustWeight = 0.3
)

// Secure combines a learned utility, tabular q-values and trust filtering.
type Secure struct {
	net     Network
	trust   TrustSource
	model   learn.UtilityModel
	learner *learn.QLearner
}

// NewSecure returns the secure learned router.
func NewSecure(net Network, trust TrustSource, model learn.UtilityModel, learner *learn.QLearner) *Secure {
	return &Secure{net: net, trust: trust, model: model, learner: learner}
}

func (s *Secure) Name() string     { return ProtocolSecureML }
func (s *Secure) ControlCost() int { return 0 }

// Features describes candidate j as seen from current:
// [energy, degree, progress, 1/(1+distance), trust].
func (s *Secure) Features(current, j int) []float64 {
	nodes := s.net.Nodes
	dist := topology.Distance(nodes[current], nodes[j])
	return []float64{
		nodes[j].Energy,
		float64(s.net.Graph.Degree(j)),
		s.net.Progress(current, j),
		1.0 / (1.0 + dist),
		s.trust.TrustScore(j),
	}
}

// Train fits the utility model on every edge leaving a non-sink node,
// targeting 0.5*energy + 0.2*progress + 0.3*trust. It returns the number
// of samples.
func (s *Secure) Train() int {
	var x [][]float64
	var y []float64
	for _, n := range s.net.Nodes {
		if n.ID == s.net.SinkID {
			continue
		}
		for _, j := range s.net.Graph[n.ID] {
			f := s.Features(n.ID, j)
			x = append(x, f)
			y = append(y, warmupEnergy*f[0]+warmupProgress*f[2]+warmupTrustWeight*f[4])
		}
	}
	s.model.Fit(x, y)
	return len(x)
}

// Candidates returns the neighbors of current that are alive, hold more
// than the minimum energy and are trusted enough.
func (s *Secure) Candidates(current int) []int {
	var out []int
	for _, j := range s.net.Graph[current] {
		n := s.net.Nodes[j]
		if !n.Alive || n.Energy <= SecureEnergyMin {
			continue
		}
		if s.trust.TrustScore(j) < SecureTrustMin {
			continue
		}
		out = append(out, j)
	}
	return out
}

// Score rates forwarding from current to j.
func (s *Secure) Score(current, j int) float64 {
	trust := s.trust.TrustScore(j)
	u := s.model.Predict(s.Features(current, j))
	qv := s.learner.Value(current, j)
	return utilityWeight*u + (1-utilityWeight)*qv - riskWeight*(1-trust) + balanceWeight*s.net.Nodes[j].Energy
}

// Next implements Policy.
func (s *Secure) Next(current int) (int, bool) {
	return argmax(s.Candidates(current), func(j int) float64 {
		return s.Score(current, j)
	})
}

// Reinforce rewards the successful hop from -> to.
func (s *Secure) Reinforce(from, to int) {
	reward := rewardBase + rewardEnergy*s.net.Nodes[to].Energy + rewardTrust*s.trust.TrustScore(to)
	if to == s.net.SinkID {
		reward += rewardSinkBonus
	}
	s.learner.Update(from, to, reward, to, s.net.Graph[to])
}

// Learner exposes the action-value table.
func (s *Secure) Learner() *learn.QLearner {
	return s.learner
}
