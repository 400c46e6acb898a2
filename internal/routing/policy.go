// Next-hop selection strategies
package routing

import "wsnsim/internal/topology"

// Protocol identifiers.
const (
	ProtocolAODV     = "aodv"
	ProtocolLEACH    = "leach"
	ProtocolPEGASIS  = "pegasis"
	ProtocolSecureML = "secure_ml"
)

// Protocols lists every protocol in reporting order.
var Protocols = []string{ProtocolAODV, ProtocolLEACH, ProtocolPEGASIS, ProtocolSecureML}

// Network is the read-only view of one run that policies route over.
// Node energy and liveness change between calls; the graph does not.
type Network struct {
	Nodes  []*topology.Node
	Graph  topology.Graph
	SinkID int
}

// Progress returns how much closer to the sink b is than a.
func (n Network) Progress(a, b int) float64 {
	sink := n.Nodes[n.SinkID]
	return topology.Distance(n.Nodes[a], sink) - topology.Distance(n.Nodes[b], sink)
}

// usableNeighbors returns the neighbors of current that are alive with
// positive energy.
func (n Network) usableNeighbors(current int) []int {
	var out []int
	for _, j := range n.Graph[current] {
		if n.Nodes[j].Usable() {
			out = append(out, j)
		}
	}
	return out
}

// Policy chooses the next hop for a packet held by current.
type Policy interface {
	Name() string
	// Next returns the chosen hop, or false when no candidate qualifies.
	Next(current int) (int, bool)
	// ControlCost is the number of control packets one decision emits.
	ControlCost() int
}

// Reinforcer is implemented by policies that learn from successful hops.
type Reinforcer interface {
	Reinforce(from, to int)
}

// TrustSource exposes per-node trust scores.
type TrustSource interface {
	TrustScore(id int) float64
}

// argmax returns the first candidate with the highest score.
func argmax(cands []int, score func(int) float64) (int, bool) {
	if len(cands) == 0 {
		return 0, false
	}
	best := cands[0]
	bestScore := score(best)
	for _, c := range cands[1:] {
		if s := score(c); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, true
}
