package topology

import "math/rand"

// Field describes the deployment rectangle.
type Field struct {
	Width         float64
	Height        float64
	Nodes         int
	InitialEnergy float64
	SinkID        int
}

// Generate places every node uniformly at random inside the field using rng,
// then moves the sink to the center of the field.
func Generate(f Field, rng *rand.Rand) []*Node {
	nodes := make([]*Node, 0, f.Nodes)
	for i := 0; i < f.Nodes; i++ {
		x := rng.Float64() * f.Width
		y := rng.Float64() * f.Height
		nodes = append(nodes, &Node{
			ID:       i,
			Position: Position{X: x, Y: y},
			Energy:   f.InitialEnergy,
			Alive:    true,
		})
	}
	if f.SinkID >= 0 && f.SinkID < len(nodes) {
		nodes[f.SinkID].Position = Position{X: f.Width / 2, Y: f.Height / 2}
	}
	return nodes
}

// Adjacency links every ordered pair of distinct nodes whose distance is
// within commRange. The result is symmetric.
func Adjacency(nodes []*Node, commRange float64) Graph {
	g := make(Graph, len(nodes))
	for _, a := range nodes {
		g[a.ID] = []int{}
	}
	for _, a := range nodes {
		for _, b := range nodes {
			if a.ID == b.ID {
				continue
			}
			if Distance(a, b) <= commRange {
				g[a.ID] = append(g[a.ID], b.ID)
			}
		}
	}
	return g
}
