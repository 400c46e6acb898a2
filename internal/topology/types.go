package topology

import "math"

// Position is a point on the deployment field.
type Position struct {
	X float64
	Y float64
}

// Node holds runtime state for one sensor node.
type Node struct {
	ID       int
	Position Position
	Energy   float64
	Alive    bool
}

// Usable reports whether the node can take part in forwarding.
func (n *Node) Usable() bool {
	return n.Alive && n.Energy > 0
}

// Drain removes amount from the node's energy and marks it dead once the
// energy reaches zero. A dead node never comes back.
func (n *Node) Drain(amount float64) {
	n.Energy -= amount
	if n.Energy <= 0 {
		n.Alive = false
	}
}

// Distance returns the Euclidean distance between two nodes.
func Distance(a, b *Node) float64 {
	return math.Hypot(a.Position.X-b.Position.X, a.Position.Y-b.Position.Y)
}

// Graph maps a node id to its neighbors within communication range,
// in ascending id order.
type Graph map[int][]int

// Degree returns the neighbor count of id.
func (g Graph) Degree(id int) int {
	return len(g[id])
}
