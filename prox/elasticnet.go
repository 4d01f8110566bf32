package prox

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ElasticNet mixes L1 and squared L2:
// strength * (ratio*Σ|x_j| + (1-ratio)/2 * ‖x‖²).
type ElasticNet struct {
	base
	ratio float64
}

// NewElasticNet creates an elastic-net operator. ratio must lie in [0, 1].
func NewElasticNet(strength, ratio float64, options ...Option) (*ElasticNet, error) {
	if ratio < 0 || ratio > 1 || math.IsNaN(ratio) {
		return nil, fmt.Errorf("ratio must be in [0, 1], got %v", ratio)
	}
	b, err := newBase(strength, options)
	if err != nil {
		return nil, err
	}
	return &ElasticNet{base: b, ratio: ratio}, nil
}

// Ratio returns the L1 share of the penalty.
func (e *ElasticNet) Ratio() float64 { return e.ratio }

func (e *ElasticNet) Call(x []float64, step float64, out []float64) {
	e.callSeparable(x, step, out, e.CallSingle)
}

func (e *ElasticNet) CallSingle(x, step float64) float64 {
	x = softThreshold(x, step*e.strength*e.ratio)
	x /= 1 + step*e.strength*(1-e.ratio)
	return e.project(x)
}

func (e *ElasticNet) CallSingleDelayed(x, step float64, n int) float64 {
	return repeat(e.CallSingle, x, step, n)
}

func (e *ElasticNet) Value(x []float64) float64 {
	start, end := e.bounds(len(x))
	v := x[start:end]
	l1 := 0.0
	for _, xj := range v {
		l1 += math.Abs(xj)
	}
	return e.strength * (e.ratio*l1 + 0.5*(1-e.ratio)*floats.Dot(v, v))
}

func (e *ElasticNet) IsSeparable() bool { return true }
