package learn

import (
	"math/rand"
	"sort"
)

// Forest parameters.
const (
	forestEstimators = 80
	forestMaxDepth   = 16
	forestMinSplit   = 2
)

// ForestRegressor is an ensemble of regression trees, each grown on a
// bootstrap sample of the training batch. Predictions are the tree mean.
type ForestRegressor struct {
	seed  int64
	trees []*regressionTree
}

// NewForestRegressor returns an untrained ensemble whose bootstrap draws
// are seeded with seed.
func NewForestRegressor(seed int64) *ForestRegressor {
	return &ForestRegressor{seed: seed}
}

// Fit implements UtilityModel.
func (f *ForestRegressor) Fit(x [][]float64, y []float64) {
	if len(x) == 0 {
		return
	}
	rng := rand.New(rand.NewSource(f.seed))
	trees := make([]*regressionTree, 0, forestEstimators)
	for i := 0; i < forestEstimators; i++ {
		idx := make([]int, len(x))
		for j := range idx {
			idx[j] = rng.Intn(len(x))
		}
		trees = append(trees, growTree(x, y, idx))
	}
	f.trees = trees
}

// Predict implements UtilityModel.
func (f *ForestRegressor) Predict(x []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

// Size returns the number of trained trees.
func (f *ForestRegressor) Size() int {
	return len(f.trees)
}

type treeNode struct {
	feature     int
	threshold   float64
	left, right int // child indexes; -1 on leaves
	value       float64
}

type regressionTree struct {
	nodes []treeNode
}

func (t *regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.left < 0 {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

func growTree(x [][]float64, y []float64, idx []int) *regressionTree {
	t := &regressionTree{}
	t.build(x, y, idx, 0)
	return t
}

// build appends the subtree for idx and returns its node index.
func (t *regressionTree) build(x [][]float64, y []float64, idx []int, depth int) int {
	self := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{left: -1, right: -1, value: mean(y, idx)})
	if depth >= forestMaxDepth || len(idx) < forestMinSplit {
		return self
	}
	feature, threshold, ok := bestSplit(x, y, idx)
	if !ok {
		return self
	}
	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := t.build(x, y, left, depth+1)
	r := t.build(x, y, right, depth+1)
	t.nodes[self].feature = feature
	t.nodes[self].threshold = threshold
	t.nodes[self].left = l
	t.nodes[self].right = r
	return self
}

// bestSplit finds the feature and threshold with the lowest summed squared
// error over both children. ok is false when no split reduces the error.
func bestSplit(x [][]float64, y []float64, idx []int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	bestErr := totalSq - total*total/float64(n)
	if bestErr <= 1e-12 {
		return 0, 0, false
	}

	order := make([]int, n)
	for f := 0; f < len(x[idx[0]]); f++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool { return x[order[a]][f] < x[order[b]][f] })
		var lSum, lSq float64
		for k := 0; k < n-1; k++ {
			v := y[order[k]]
			lSum += v
			lSq += v * v
			cur, next := x[order[k]][f], x[order[k+1]][f]
			if cur == next {
				continue
			}
			ln := float64(k + 1)
			rn := float64(n - k - 1)
			rSum := total - lSum
			rSq := totalSq - lSq
			err := (lSq - lSum*lSum/ln) + (rSq - rSum*rSum/rn)
			if err < bestErr-1e-12 {
				bestErr = err
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func mean(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	s := 0.0
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}
