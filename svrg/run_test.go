package svrg

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/n0madic/go-svrg/model"
	"github.com/n0madic/go-svrg/prox"
	"github.com/n0madic/go-svrg/sampler"
)

// ridgeSolution solves (XᵀX/n + λI) w = Xᵀy/n.
func ridgeSolution(t *testing.T, x *mat.Dense, y []float64, lambda float64) []float64 {
	t.Helper()
	n, d := x.Dims()
	var a mat.Dense
	a.Mul(x.T(), x)
	a.Scale(1/float64(n), &a)
	for j := 0; j < d; j++ {
		a.Set(j, j, a.At(j, j)+lambda)
	}
	var b mat.VecDense
	b.MulVec(x.T(), mat.NewVecDense(n, y))
	b.ScaleVec(1/float64(n), &b)

	var w mat.VecDense
	require.NoError(t, w.SolveVec(&a, &b))
	return append([]float64(nil), w.RawVector().Data...)
}

func linearData(rng *rand.Rand, n, d int, density float64) (*mat.Dense, []float64) {
	x := randomDesign(rng, n, d, density, true)
	truth := randomVector(rng, d)
	y := make([]float64, n)
	for i := range y {
		y[i] = floats.Dot(x.RawRowView(i), truth) + 0.1*rng.NormFloat64()
	}
	return x, y
}

func TestRunRidgeMatchesClosedForm(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	const lambda = 0.1
	x, y := linearData(rng, 60, 4, 0.5)
	want := ridgeSolution(t, x, y, lambda)

	dense, err := model.NewLinReg(x, y, model.WithIntercept(false))
	require.NoError(t, err)
	sparse, err := model.NewLinReg(model.CSRFromDense(x), y, model.WithIntercept(false))
	require.NoError(t, err)
	ridge, err := prox.NewL2Sq(lambda)
	require.NoError(t, err)

	cases := []struct {
		name    string
		m       model.Model
		delayed DelayedUpdates
	}{
		{"dense", dense, Exact},
		{"sparse proba", sparse, Proba},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSolver(t, 0.1, tc.m, ridge, WithDelayedUpdates(tc.delayed), WithRandomSeed(22))
			h, err := s.Run(context.Background(), 1000, 1e-12)
			require.NoError(t, err)
			assert.True(t, h.Converged)
			assert.Len(t, h.Objectives, s.Epochs())
			assert.True(t, floats.EqualApprox(want, s.Iterate(), 1e-6), "got %v, want %v", s.Iterate(), want)
		})
	}
}

func TestRunLassoSparseRoutinesAgreeWithDense(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	x, y := linearData(rng, 80, 5, 0.4)

	dense, err := model.NewLinReg(x, y)
	require.NoError(t, err)
	sparse, err := model.NewLinReg(model.CSRFromDense(x), y)
	require.NoError(t, err)
	lasso, err := prox.NewL1(0.02, prox.WithRange(0, 5))
	require.NoError(t, err)

	solve := func(m model.Model, delayed DelayedUpdates) []float64 {
		s := newSolver(t, 0.1, m, lasso, WithDelayedUpdates(delayed), WithRandomSeed(24))
		h, err := s.Run(context.Background(), 2000, 1e-13)
		require.NoError(t, err)
		require.True(t, h.Converged)
		return s.Iterate()
	}

	want := solve(dense, Exact)
	assert.True(t, floats.EqualApprox(want, solve(sparse, Exact), 1e-6))
	assert.True(t, floats.EqualApprox(want, solve(sparse, Proba), 1e-6))
}

func TestRunLogisticDecreasesObjective(t *testing.T) {
	rng := rand.New(rand.NewSource(25))
	x := randomDesign(rng, 100, 6, 0.3, true)
	truth := randomVector(rng, 6)
	y := make([]float64, 100)
	for i := range y {
		if model.Sigmoid(3*floats.Dot(x.RawRowView(i), truth)) > rng.Float64() {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}
	m, err := model.NewLogReg(model.CSRFromDense(x), y)
	require.NoError(t, err)
	ridge, err := prox.NewL2Sq(0.05, prox.WithRange(0, 6))
	require.NoError(t, err)

	s := newSolver(t, 0.25, m, ridge, WithDelayedUpdates(Proba), WithRandomSeed(26), WithRandType(sampler.Perm))
	start, err := s.Objective(s.Iterate())
	require.NoError(t, err)

	h, err := s.Run(context.Background(), 500, 1e-8)
	require.NoError(t, err)
	assert.True(t, h.Converged)
	assert.Less(t, h.Objectives[len(h.Objectives)-1], start)
	assert.Equal(t, len(h.Objectives), len(h.Changes))
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	rng := rand.New(rand.NewSource(27))
	x, y := linearData(rng, 10, 2, 1)
	m, err := model.NewLinReg(x, y)
	require.NoError(t, err)
	s := newSolver(t, 0.1, m, mustZero(t), WithRandomSeed(28))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h, err := s.Run(ctx, 10, 0)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, h.Objectives)
	assert.Zero(t, s.Epochs())
}

func TestRunWithoutModel(t *testing.T) {
	s, err := New(0.1)
	require.NoError(t, err)
	_, err = s.Run(context.Background(), 1, 0)
	assert.True(t, errors.Is(err, ErrNoModel))
}
