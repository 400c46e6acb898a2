package routing

import "wsnsim/internal/topology"

// BuildChain links every non-sink node into one greedy nearest-neighbor
// chain. It starts at the node nearest the sink, repeatedly extends to the
// nearest unvisited node, and links the last node to the sink. Ties go to
// the lower id.
func BuildChain(nodes []*topology.Node, sinkID int) map[int]int {
	unvisited := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		if n.ID != sinkID {
			unvisited[n.ID] = true
		}
	}
	chain := make(map[int]int, len(unvisited))
	if len(unvisited) == 0 {
		return chain
	}

	nearest := func(from int) int {
		best, bestDist := -1, 0.0
		for _, n := range nodes {
			if !unvisited[n.ID] {
				continue
			}
			d := topology.Distance(nodes[from], n)
			if best < 0 || d < bestDist {
				best, bestDist = n.ID, d
			}
		}
		return best
	}

	cur := nearest(sinkID)
	for {
		delete(unvisited, cur)
		if len(unvisited) == 0 {
			chain[cur] = sinkID
			return chain
		}
		next := nearest(cur)
		chain[cur] = next
		cur = next
	}
}

// Chain forwards along a fixed chain computed once per run. It exchanges
// no control packets.
type Chain struct {
	net  Network
	next map[int]int
}

// NewChain builds the chain over net.
func NewChain(net Network) *Chain {
	return &Chain{net: net, next: BuildChain(net.Nodes, net.SinkID)}
}

func (c *Chain) Name() string     { return ProtocolPEGASIS }
func (c *Chain) ControlCost() int { return 0 }

// Next implements Policy. The successor must be alive with energy left.
func (c *Chain) Next(current int) (int, bool) {
	succ, ok := c.next[current]
	if !ok || !c.net.Nodes[succ].Usable() {
		return 0, false
	}
	return succ, true
}

// Successors returns a copy of the chain links.
func (c *Chain) Successors() map[int]int {
	out := make(map[int]int, len(c.next))
	for k, v := range c.next {
		out[k] = v
	}
	return out
}
