package prox

import "math"

// L1 is the lasso penalty strength * Σ|x_j|, whose prox is soft-thresholding.
type L1 struct {
	base
}

// NewL1 creates an L1 operator.
func NewL1(strength float64, options ...Option) (*L1, error) {
	b, err := newBase(strength, options)
	if err != nil {
		return nil, err
	}
	return &L1{base: b}, nil
}

func (l *L1) Call(x []float64, step float64, out []float64) {
	l.callSeparable(x, step, out, l.CallSingle)
}

func (l *L1) CallSingle(x, step float64) float64 {
	return l.project(softThreshold(x, step*l.strength))
}

// CallSingleDelayed thresholds once by n times the step threshold, which is
// exactly n consecutive soft-thresholds.
func (l *L1) CallSingleDelayed(x, step float64, n int) float64 {
	if n <= 0 {
		return x
	}
	return l.project(softThreshold(x, float64(n)*step*l.strength))
}

func (l *L1) Value(x []float64) float64 {
	start, end := l.bounds(len(x))
	sum := 0.0
	for _, v := range x[start:end] {
		sum += math.Abs(v)
	}
	return l.strength * sum
}

func (l *L1) IsSeparable() bool { return true }
