package routing

// Greedy forwards to the neighbor making the most geographic progress toward
// the sink, in the manner of on-demand distance-vector routing.
type Greedy struct {
	net Network
}

// NewGreedy returns the greedy-progress policy.
func NewGreedy(net Network) *Greedy {
	return &Greedy{net: net}
}

func (g *Greedy) Name() string     { return ProtocolAODV }
func (g *Greedy) ControlCost() int { return 1 }

// Next implements Policy.
func (g *Greedy) Next(current int) (int, bool) {
	return argmax(g.net.usableNeighbors(current), func(j int) float64 {
		return g.net.Progress(current, j)
	})
}

// Energy weights used by EnergyWeighted.
const (
	energyWeight   = 0.6
	progressWeight = 0.4
)

// EnergyWeighted prefers neighbors with remaining energy, trading it off
// against progress, in the manner of cluster-rotation protocols.
type EnergyWeighted struct {
	net Network
}

// NewEnergyWeighted returns the energy-weighted policy.
func NewEnergyWeighted(net Network) *EnergyWeighted {
	return &EnergyWeighted{net: net}
}

func (e *EnergyWeighted) Name() string     { return ProtocolLEACH }
func (e *EnergyWeighted) ControlCost() int { return 1 }

// Next implements Policy.
func (e *EnergyWeighted) Next(current int) (int, bool) {
	return argmax(e.net.usableNeighbors(current), func(j int) float64 {
		return energyWeight*e.net.Nodes[j].Energy + progressWeight*e.net.Progress(current, j)
	})
}
