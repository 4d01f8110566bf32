package prox

// Zero is the identity operator (no penalty). With WithPositive it becomes a
// projection onto the non-negative orthant.
type Zero struct {
	base
}

// NewZero creates the identity operator.
func NewZero(options ...Option) (*Zero, error) {
	b, err := newBase(0, options)
	if err != nil {
		return nil, err
	}
	return &Zero{base: b}, nil
}

// NewPositive creates the projection onto non-negative coefficients.
func NewPositive(options ...Option) (*Zero, error) {
	return NewZero(append(options, WithPositive())...)
}

func (z *Zero) Call(x []float64, step float64, out []float64) {
	z.callSeparable(x, step, out, z.CallSingle)
}

func (z *Zero) CallSingle(x, _ float64) float64 {
	return z.project(x)
}

// CallSingleDelayed is a single projection; it is idempotent.
func (z *Zero) CallSingleDelayed(x, step float64, n int) float64 {
	if n <= 0 {
		return x
	}
	return z.CallSingle(x, step)
}

func (z *Zero) Value([]float64) float64 { return 0 }

func (z *Zero) IsSeparable() bool { return true }
