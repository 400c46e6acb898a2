package learn

import (
	"errors"
	"math/rand"
)

// ErrEmptyActionSet is returned by Pick when no candidate actions exist.
// Routing policies filter candidates first, so this signals a caller bug.
var ErrEmptyActionSet = errors.New("learn: empty action set")

// Default learning parameters.
const (
	DefaultAlpha   = 0.2
	DefaultGamma   = 0.85
	DefaultEpsilon = 0.2
)

type stateAction struct {
	state, action int
}

// QLearner is a tabular action-value learner over (node, next hop) pairs.
type QLearner struct {
	Alpha   float64
	Gamma   float64
	Epsilon float64

	q         map[stateAction]float64
	randFloat func() float64
	randIntn  func(int) int
}

// NewQLearner returns a learner with the default parameters drawing its
// exploration decisions from rng.
func NewQLearner(rng *rand.Rand) *QLearner {
	return &QLearner{
		Alpha:     DefaultAlpha,
		Gamma:     DefaultGamma,
		Epsilon:   DefaultEpsilon,
		q:         make(map[stateAction]float64),
		randFloat: rng.Float64,
		randIntn:  rng.Intn,
	}
}

// Value returns Q(state, action), 0 for unseen pairs.
func (l *QLearner) Value(state, action int) float64 {
	return l.q[stateAction{state, action}]
}

// Pick selects an action epsilon-greedily. Exploitation returns the first
// action with the highest value.
func (l *QLearner) Pick(state int, actions []int) (int, error) {
	if len(actions) == 0 {
		return 0, ErrEmptyActionSet
	}
	if l.randFloat() < l.Epsilon {
		return actions[l.randIntn(len(actions))], nil
	}
	best := actions[0]
	bestVal := l.Value(state, best)
	for _, a := range actions[1:] {
		if v := l.Value(state, a); v > bestVal {
			best, bestVal = a, v
		}
	}
	return best, nil
}

// Update applies the temporal-difference rule
// Q(s,a) += alpha * (reward + gamma*max Q(s',a') - Q(s,a)).
// The max term is 0 when nextActions is empty.
func (l *QLearner) Update(state, action int, reward float64, nextState int, nextActions []int) {
	maxNext := 0.0
	for i, a := range nextActions {
		v := l.Value(nextState, a)
		if i == 0 || v > maxNext {
			maxNext = v
		}
	}
	key := stateAction{state, action}
	old := l.q[key]
	l.q[key] = old + l.Alpha*(reward+l.Gamma*maxNext-old)
}

// Len returns the number of learned pairs.
func (l *QLearner) Len() int {
	return len(l.q)
}
