package model

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Option configures a model
type Option func(*glm)

// WithIntercept enables or disables the intercept coefficient
func WithIntercept(fitIntercept bool) Option {
	return func(g *glm) {
		g.fitIntercept = fitIntercept
	}
}

// loss is the per-sample loss of a GLM as a function of the linear
// predictor z and the label y.
type loss interface {
	value(z, y float64) float64
	deriv(z, y float64) float64
}

// glm implements GLM for any loss over dense or CSR features.
type glm struct {
	dense        *mat.Dense // nil when features are sparse
	csr          *CSR       // nil when features are dense
	allIndices   []int      // 0..nFeatures-1, the support of a dense row
	labels       []float64
	nSamples     int
	nFeatures    int
	fitIntercept bool
	loss         loss
}

func newGLM(features mat.Matrix, labels []float64, l loss, options []Option) (*glm, error) {
	if features == nil {
		return nil, fmt.Errorf("features must not be nil")
	}
	rows, cols := features.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("features must be non-empty, got %dx%d", rows, cols)
	}
	if len(labels) != rows {
		return nil, fmt.Errorf("labels length %d != number of samples %d", len(labels), rows)
	}

	g := &glm{
		labels:       make([]float64, rows),
		nSamples:     rows,
		nFeatures:    cols,
		fitIntercept: true,
		loss:         l,
	}
	copy(g.labels, labels)

	for _, opt := range options {
		opt(g)
	}

	switch f := features.(type) {
	case *CSR:
		g.csr = f
	case *sparse.CSR:
		csr, err := FromSparse(f)
		if err != nil {
			return nil, err
		}
		g.csr = csr
	default:
		g.dense = mat.DenseCopyOf(features)
		g.allIndices = make([]int, cols)
		for j := range g.allIndices {
			g.allIndices[j] = j
		}
	}
	return g, nil
}

func (g *glm) NFeatures() int     { return g.nFeatures }
func (g *glm) NSamples() int      { return g.nSamples }
func (g *glm) UseIntercept() bool { return g.fitIntercept }
func (g *glm) IsSparse() bool     { return g.csr != nil }

func (g *glm) NCoeffs() int {
	if g.fitIntercept {
		return g.nFeatures + 1
	}
	return g.nFeatures
}

// Labels returns the sample labels.
func (g *glm) Labels() []float64 { return g.labels }

func (g *glm) Features(i int) ([]int, []float64) {
	if g.csr != nil {
		return g.csr.Row(i)
	}
	return g.allIndices, g.dense.RawRowView(i)
}

func (g *glm) ColumnNonZeros(out []int) {
	if len(out) != g.nFeatures {
		panic(mat.ErrShape)
	}
	if g.csr != nil {
		g.csr.ColumnNonZeros(out)
		return
	}
	for j := range out {
		out[j] = 0
	}
	for i := 0; i < g.nSamples; i++ {
		for j, v := range g.dense.RawRowView(i) {
			if v != 0 {
				out[j]++
			}
		}
	}
}

func (g *glm) checkCoeffs(w []float64) {
	if len(w) != g.NCoeffs() {
		panic(fmt.Sprintf("model: coefficient length %d != %d", len(w), g.NCoeffs()))
	}
}

// innerProd returns the linear predictor x_i·w (+ intercept).
func (g *glm) innerProd(i int, w []float64) float64 {
	idx, vals := g.Features(i)
	z := 0.0
	if g.csr == nil {
		z = floats.Dot(vals, w[:g.nFeatures])
	} else {
		for k, j := range idx {
			z += vals[k] * w[j]
		}
	}
	if g.fitIntercept {
		z += w[g.nFeatures]
	}
	return z
}

func (g *glm) GradIFactor(i int, w []float64) float64 {
	g.checkCoeffs(w)
	return g.loss.deriv(g.innerProd(i, w), g.labels[i])
}

// addScaledFeatures performs out += alpha * x_i (and the intercept slot).
func (g *glm) addScaledFeatures(i int, alpha float64, out []float64) {
	idx, vals := g.Features(i)
	if g.csr == nil {
		floats.AddScaled(out[:g.nFeatures], alpha, vals)
	} else {
		for k, j := range idx {
			out[j] += alpha * vals[k]
		}
	}
	if g.fitIntercept {
		out[g.nFeatures] += alpha
	}
}

func (g *glm) GradI(i int, w, out []float64) {
	g.checkCoeffs(w)
	g.checkCoeffs(out)
	for j := range out {
		out[j] = 0
	}
	g.addScaledFeatures(i, g.GradIFactor(i, w), out)
}

func (g *glm) Grad(w, out []float64) {
	g.checkCoeffs(w)
	g.checkCoeffs(out)
	for j := range out {
		out[j] = 0
	}
	for i := 0; i < g.nSamples; i++ {
		g.addScaledFeatures(i, g.GradIFactor(i, w), out)
	}
	floats.Scale(1/float64(g.nSamples), out)
}

func (g *glm) Loss(w []float64) float64 {
	g.checkCoeffs(w)
	sum := 0.0
	for i := 0; i < g.nSamples; i++ {
		sum += g.loss.value(g.innerProd(i, w), g.labels[i])
	}
	return sum / float64(g.nSamples)
}

// checkFinite rejects NaN and infinite labels.
func checkFinite(labels []float64) error {
	for i, y := range labels {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return fmt.Errorf("label %d is not finite: %v", i, y)
		}
	}
	return nil
}
