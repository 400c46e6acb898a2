package learn

// Linear regressor training schedule.
const (
	linearEpochs    = 120
	linearRate      = 0.03
	linearRateDecay = 0.99
)

// LinearRegressor is a bias plus one weight per feature, trained with
// per-sample squared-error gradient steps.
type LinearRegressor struct {
	w []float64 // w[0] is the bias
}

// NewLinearRegressor returns an untrained regressor.
func NewLinearRegressor() *LinearRegressor {
	return &LinearRegressor{}
}

// Fit runs 120 epochs over the batch, decaying the learning rate by 0.99
// after each epoch.
func (m *LinearRegressor) Fit(x [][]float64, y []float64) {
	if len(x) == 0 {
		return
	}
	dim := len(x[0])
	w := make([]float64, dim+1)
	lr := linearRate
	for epoch := 0; epoch < linearEpochs; epoch++ {
		for i, xi := range x {
			err := dot(w, xi) - y[i]
			w[0] -= lr * err
			for k, xk := range xi {
				w[k+1] -= lr * err * xk
			}
		}
		lr *= linearRateDecay
	}
	m.w = w
}

// Predict implements UtilityModel.
func (m *LinearRegressor) Predict(x []float64) float64 {
	if m.w == nil {
		return 0
	}
	return dot(m.w, x)
}

// Weights returns a copy of the trained weights, bias first.
func (m *LinearRegressor) Weights() []float64 {
	if m.w == nil {
		return nil
	}
	out := make([]float64, len(m.w))
	copy(out, m.w)
	return out
}

func dot(w, x []float64) float64 {
	s := w[0]
	for k, xk := range x {
		if k+1 >= len(w) {
			break
		}
		s += w[k+1] * xk
	}
	return s
}
