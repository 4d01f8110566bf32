// Package prox implements proximal operators for the penalties used by the
// stochastic solvers: separable ones (L1, squared L2, elastic net, positivity)
// that can be applied one coordinate at a time, and the non-separable L2 norm.
package prox

import (
	"fmt"
	"math"
)

// Operator is a proximal operator over a coefficient vector.
type Operator interface {
	// Call writes prox_{step*g}(x) into out. x and out may alias.
	Call(x []float64, step float64, out []float64)
	// Value returns the penalty g(x).
	Value(x []float64) float64
	// IsSeparable reports whether the operator also implements Separable.
	IsSeparable() bool
}

// Separable is an Operator that acts independently on each coordinate.
type Separable interface {
	Operator
	// CallSingle applies one proximal step to a single coordinate.
	CallSingle(x, step float64) float64
	// CallSingleDelayed is equivalent to n consecutive CallSingle steps.
	CallSingleDelayed(x, step float64, n int) float64
}

// Option configures an operator
type Option func(*base)

// WithRange restricts the operator to coefficients [start, end).
// Coefficients outside the range are copied through unchanged. A zero end
// means "up to the end of the vector".
func WithRange(start, end int) Option {
	return func(b *base) {
		b.start = start
		b.end = end
	}
}

// WithPositive projects the result onto the non-negative orthant after the
// shrinkage step.
func WithPositive() Option {
	return func(b *base) {
		b.positive = true
	}
}

// base holds what every operator shares: strength, range and positivity.
type base struct {
	strength float64
	start    int
	end      int
	positive bool
}

func newBase(strength float64, options []Option) (base, error) {
	b := base{strength: strength}
	for _, opt := range options {
		opt(&b)
	}
	if strength < 0 || math.IsNaN(strength) || math.IsInf(strength, 0) {
		return b, fmt.Errorf("strength must be finite and non-negative, got %v", strength)
	}
	if b.start < 0 || (b.end != 0 && b.end < b.start) {
		return b, fmt.Errorf("invalid range [%d, %d)", b.start, b.end)
	}
	return b, nil
}

// bounds resolves the range against a vector of length n.
func (b *base) bounds(n int) (int, int) {
	end := b.end
	if end == 0 || end > n {
		end = n
	}
	start := b.start
	if start > end {
		start = end
	}
	return start, end
}

// Strength returns the regularization strength.
func (b *base) Strength() float64 { return b.strength }

func (b *base) project(x float64) float64 {
	if b.positive && x < 0 {
		return 0
	}
	return x
}

// callSeparable applies single to each in-range coordinate of x.
func (b *base) callSeparable(x []float64, step float64, out []float64, single func(x, step float64) float64) {
	if len(out) != len(x) {
		panic(fmt.Sprintf("prox: output length %d != input length %d", len(out), len(x)))
	}
	start, end := b.bounds(len(x))
	for j := range x {
		if j >= start && j < end {
			out[j] = single(x[j], step)
		} else {
			out[j] = x[j]
		}
	}
}

// repeat is the generic delayed form: n sequential single steps.
func repeat(single func(x, step float64) float64, x, step float64, n int) float64 {
	for k := 0; k < n; k++ {
		x = single(x, step)
	}
	return x
}

func softThreshold(x, thresh float64) float64 {
	switch {
	case x > thresh:
		return x - thresh
	case x < -thresh:
		return x + thresh
	default:
		return 0
	}
}
