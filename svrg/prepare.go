package svrg

import "github.com/pkg/errors"

// routine picks the update routine for the bound model and policies.
func (s *SVRG) routine() (func(), error) {
	if s.model == nil {
		return nil, errors.WithStack(ErrNoModel)
	}
	if s.prox == nil {
		return nil, errors.WithStack(ErrNoProx)
	}
	if n := s.model.NCoeffs(); len(s.iterate) != n || len(s.nextIterate) != n {
		return nil, errors.Wrapf(ErrDimensionMismatch, "iterate has %d coefficients, model has %d", len(s.iterate), n)
	}

	switch {
	case !s.sparse:
		return s.solveDense, nil
	case s.delayedUpdates == Exact:
		return s.solveSparseExact, nil
	case s.delayedUpdates == Proba:
		return s.solveSparseProba, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedMode, "sparse model with delayed updates %v", s.delayedUpdates)
}

// prepareSolve sets up the epoch: the reference point is the iterate chosen
// at the end of the previous epoch, and the full gradient is computed there.
func (s *SVRG) prepareSolve() error {
	if s.sparse && s.delayedUpdates == Proba {
		if err := s.computeStepCorrections(); err != nil {
			return err
		}
	}

	n := s.model.NCoeffs()
	s.fixedW = resize(s.fixedW, n)
	s.fullGradient = resize(s.fullGradient, n)
	copy(s.fixedW, s.nextIterate)
	s.model.Grad(s.fixedW, s.fullGradient)

	if s.sparse {
		s.lastTime = resizeInt(s.lastTime, s.nFeatures)
		for j := range s.lastTime {
			s.lastTime[j] = 0
		}
	} else {
		s.gradI = resize(s.gradI, n)
		s.gradIFixedW = resize(s.gradIFixedW, n)
	}

	s.randIndex = 0
	if s.varianceReduction == Random || s.varianceReduction == Average {
		for j := range s.nextIterate {
			s.nextIterate[j] = 0
		}
	}
	if s.varianceReduction == Random {
		s.randIndex = s.sampler.Intn(s.epochSize)
	}
	return nil
}

// computeStepCorrections caches n_samples / nnz_j for every feature. It runs
// at most once per bound model.
func (s *SVRG) computeStepCorrections() error {
	if s.stepCorrectionsReady {
		return nil
	}
	counts := make([]int, s.nFeatures)
	s.glm.ColumnNonZeros(counts)

	nSamples := float64(s.model.NSamples())
	corrections := make([]float64, s.nFeatures)
	for j, c := range counts {
		if c == 0 {
			return errors.Wrapf(ErrEmptyColumn, "feature %d", j)
		}
		corrections[j] = nSamples / float64(c)
	}
	s.stepCorrections = corrections
	s.stepCorrectionsReady = true
	return nil
}

func resize(v []float64, n int) []float64 {
	if cap(v) < n {
		return make([]float64, n)
	}
	return v[:n]
}

func resizeInt(v []int, n int) []int {
	if cap(v) < n {
		return make([]int, n)
	}
	return v[:n]
}
