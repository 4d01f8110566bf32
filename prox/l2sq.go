package prox

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// L2Sq is the ridge penalty strength/2 * ‖x‖².
type L2Sq struct {
	base
}

// NewL2Sq creates a squared L2 operator.
func NewL2Sq(strength float64, options ...Option) (*L2Sq, error) {
	b, err := newBase(strength, options)
	if err != nil {
		return nil, err
	}
	return &L2Sq{base: b}, nil
}

func (l *L2Sq) Call(x []float64, step float64, out []float64) {
	l.callSeparable(x, step, out, l.CallSingle)
}

func (l *L2Sq) CallSingle(x, step float64) float64 {
	return l.project(x / (1 + step*l.strength))
}

func (l *L2Sq) CallSingleDelayed(x, step float64, n int) float64 {
	if n <= 0 {
		return x
	}
	return l.project(x / math.Pow(1+step*l.strength, float64(n)))
}

func (l *L2Sq) Value(x []float64) float64 {
	start, end := l.bounds(len(x))
	return 0.5 * l.strength * floats.Dot(x[start:end], x[start:end])
}

func (l *L2Sq) IsSeparable() bool { return true }
