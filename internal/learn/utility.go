package learn

import "fmt"

// UtilityModel predicts the desirability of forwarding to a neighbor from
// its feature vector.
type UtilityModel interface {
	// Fit trains the model. An empty batch leaves the model untrained.
	Fit(x [][]float64, y []float64)
	// Predict returns the prediction for x, or 0 when untrained.
	Predict(x []float64) float64
}

// Utility backends.
const (
	BackendLinear = "linear"
	BackendForest = "forest"
)

// DefaultUtilitySeed seeds the ensemble bootstrap.
const DefaultUtilitySeed = 7

// NewUtilityModel returns the backend named by kind. The choice is fixed for
// the model's lifetime. An empty kind selects the forest.
func NewUtilityModel(kind string, seed int64) (UtilityModel, error) {
	switch kind {
	case BackendLinear:
		return NewLinearRegressor(), nil
	case "", BackendForest:
		return NewForestRegressor(seed), nil
	default:
		return nil, fmt.Errorf("unknown utility model %q", kind)
	}
}
