package svrg

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-svrg/model"
	"github.com/n0madic/go-svrg/prox"
)

// scriptedSampler replays a fixed index sequence and always draws the same
// Random snapshot index.
type scriptedSampler struct {
	indices []int
	pos     int
	draw    int
}

func (s *scriptedSampler) Next() int {
	i := s.indices[s.pos%len(s.indices)]
	s.pos++
	return i
}

func (s *scriptedSampler) Intn(n int) int {
	return s.draw % n
}

func script(indices ...int) *scriptedSampler {
	return &scriptedSampler{indices: indices}
}

// pivotGLM is a sparse least-squares-like GLM whose gradient factor depends
// on the pivot coordinate (and the intercept) only:
// factor_i(w) = w[pivot] + b - y_i. When every sample contains the pivot,
// no coordinate the factor reads is ever stale, so the exact delayed routine
// must coincide with a dense per-iteration reference.
type pivotGLM struct {
	x            *model.CSR
	y            []float64
	pivot        int
	fitIntercept bool
	nnzCalls     int
}

var _ model.GLM = (*pivotGLM)(nil)

func newPivotGLM(t *testing.T, dense [][]float64, y []float64, pivot int, intercept bool) *pivotGLM {
	t.Helper()
	rows, cols := len(dense), len(dense[0])
	m := mat.NewDense(rows, cols, nil)
	for i, row := range dense {
		m.SetRow(i, row)
	}
	return &pivotGLM{x: model.CSRFromDense(m), y: y, pivot: pivot, fitIntercept: intercept}
}

func (p *pivotGLM) NFeatures() int { _, c := p.x.Dims(); return c }
func (p *pivotGLM) NSamples() int  { r, _ := p.x.Dims(); return r }
func (p *pivotGLM) NCoeffs() int {
	if p.fitIntercept {
		return p.NFeatures() + 1
	}
	return p.NFeatures()
}
func (p *pivotGLM) UseIntercept() bool { return p.fitIntercept }
func (p *pivotGLM) IsSparse() bool     { return true }

func (p *pivotGLM) GradIFactor(i int, w []float64) float64 {
	z := w[p.pivot] - p.y[i]
	if p.fitIntercept {
		z += w[p.NFeatures()]
	}
	return z
}

func (p *pivotGLM) Features(i int) ([]int, []float64) { return p.x.Row(i) }

func (p *pivotGLM) ColumnNonZeros(out []int) {
	p.nnzCalls++
	p.x.ColumnNonZeros(out)
}

func (p *pivotGLM) GradI(i int, w, out []float64) {
	for j := range out {
		out[j] = 0
	}
	f := p.GradIFactor(i, w)
	idx, vals := p.x.Row(i)
	for k, j := range idx {
		out[j] = f * vals[k]
	}
	if p.fitIntercept {
		out[p.NFeatures()] = f
	}
}

func (p *pivotGLM) Grad(w, out []float64) {
	gi := make([]float64, len(out))
	for j := range out {
		out[j] = 0
	}
	for i := 0; i < p.NSamples(); i++ {
		p.GradI(i, w, gi)
		for j := range out {
			out[j] += gi[j]
		}
	}
	for j := range out {
		out[j] /= float64(p.NSamples())
	}
}

func (p *pivotGLM) Loss(w []float64) float64 {
	sum := 0.0
	for i := 0; i < p.NSamples(); i++ {
		f := p.GradIFactor(i, w)
		sum += 0.5 * f * f
	}
	return sum / float64(p.NSamples())
}

// sparseNotGLM claims sparsity without exposing the GLM methods.
type sparseNotGLM struct {
	model.Model
}

func (sparseNotGLM) IsSparse() bool { return true }

// opaqueSeparable claims separability without the single-coordinate form.
type opaqueSeparable struct {
	prox.Operator
}

func (opaqueSeparable) IsSeparable() bool { return true }

func randomDesign(rng *rand.Rand, rows, cols int, density float64, normalize bool) *mat.Dense {
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if density >= 1 || rng.Float64() < density {
				m.Set(i, j, rng.NormFloat64())
			}
		}
	}
	for j := 0; j < cols; j++ {
		empty := true
		for i := 0; i < rows; i++ {
			if m.At(i, j) != 0 {
				empty = false
				break
			}
		}
		if empty {
			m.Set(rng.Intn(rows), j, 1)
		}
	}
	if normalize {
		for i := 0; i < rows; i++ {
			row := m.RawRowView(i)
			norm := 0.0
			for _, v := range row {
				norm += v * v
			}
			if norm == 0 {
				row[rng.Intn(cols)] = 1
				continue
			}
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
	}
	return m
}

func randomVector(rng *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	return v
}

func newSolver(t *testing.T, step float64, m model.Model, p prox.Operator, options ...Option) *SVRG {
	t.Helper()
	s, err := New(step, options...)
	require.NoError(t, err)
	require.NoError(t, s.SetModel(m))
	require.NoError(t, s.SetProx(p))
	return s
}

func mustZero(t *testing.T, options ...prox.Option) *prox.Zero {
	t.Helper()
	p, err := prox.NewZero(options...)
	require.NoError(t, err)
	return p
}
