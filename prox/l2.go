package prox

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// L2 is the (non-squared) group norm strength * sqrt(d) * ‖x‖ over the
// range. Its prox shrinks the whole block at once, so it is not separable.
type L2 struct {
	base
}

// NewL2 creates an L2 norm operator.
func NewL2(strength float64, options ...Option) (*L2, error) {
	b, err := newBase(strength, options)
	if err != nil {
		return nil, err
	}
	return &L2{base: b}, nil
}

func (l *L2) Call(x []float64, step float64, out []float64) {
	if len(out) != len(x) {
		panic(fmt.Sprintf("prox: output length %d != input length %d", len(out), len(x)))
	}
	if len(x) == 0 {
		return
	}
	start, end := l.bounds(len(x))
	if &out[0] != &x[0] {
		copy(out, x)
	}
	block := out[start:end]
	if len(block) == 0 {
		return
	}
	thresh := step * l.strength * math.Sqrt(float64(len(block)))
	norm := floats.Norm(block, 2)
	if norm <= thresh {
		for j := range block {
			block[j] = 0
		}
		return
	}
	floats.Scale(1-thresh/norm, block)
	for j := range block {
		block[j] = l.project(block[j])
	}
}

func (l *L2) Value(x []float64) float64 {
	start, end := l.bounds(len(x))
	return l.strength * math.Sqrt(float64(end-start)) * floats.Norm(x[start:end], 2)
}

func (l *L2) IsSeparable() bool { return false }
