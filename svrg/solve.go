package svrg

// Solve runs one epoch. The caller checks convergence between calls.
func (s *SVRG) Solve() error {
	run, err := s.routine()
	if err != nil {
		return err
	}
	if err := s.prepareSolve(); err != nil {
		return err
	}
	run()
	s.finishEpoch()
	s.iterations += s.epochSize
	s.epochs++
	return nil
}

func (s *SVRG) solveDense() {
	for t := 0; t < s.epochSize; t++ {
		i := s.sampler.Next()
		s.model.GradI(i, s.iterate, s.gradI)
		s.model.GradI(i, s.fixedW, s.gradIFixedW)
		for j := range s.iterate {
			s.iterate[j] -= s.step * (s.gradI[j] - s.gradIFixedW[j] + s.fullGradient[j])
		}
		s.prox.Call(s.iterate, s.step, s.iterate)
		s.selectSnapshot(t)
	}
}

// solveSparseExact updates only the support of each sample. A coordinate
// skipped for d iterations gets the d missed full-gradient steps (and d
// prox steps when the prox is separable) in one go when it is next visited,
// and every coordinate is caught up at the end of the epoch.
func (s *SVRG) solveSparseExact() {
	for t := 0; t < s.epochSize; t++ {
		i := s.sampler.Next()
		indices, values := s.glm.Features(i)
		gradIDiff := s.glm.GradIFactor(i, s.iterate) - s.glm.GradIFactor(i, s.fixedW)

		for k, j := range indices {
			fullGradientJ := s.fullGradient[j]
			if delay := t - s.lastTime[j]; delay > 0 {
				s.catchUp(j, delay)
			}
			s.iterate[j] -= s.step * (values[k]*gradIDiff + fullGradientJ)
			if s.isProxSeparable {
				s.iterate[j] = s.separable.CallSingle(s.iterate[j], s.step)
			}
			s.lastTime[j] = t + 1
		}
		if !s.isProxSeparable {
			s.prox.Call(s.iterate, s.step, s.iterate)
		}
		// The intercept is dense: updated every iteration, never penalized.
		if s.useIntercept {
			s.iterate[s.nFeatures] -= s.step * (gradIDiff + s.fullGradient[s.nFeatures])
		}
		s.selectSnapshot(t)
	}

	// lastTime is left as is; it is reset by the next prepareSolve.
	for j := 0; j < s.nFeatures; j++ {
		if delay := s.epochSize - s.lastTime[j]; delay > 0 {
			s.catchUp(j, delay)
		}
	}
}

// catchUp applies delay skipped iterations to coordinate j.
func (s *SVRG) catchUp(j, delay int) {
	s.iterate[j] -= s.step * float64(delay) * s.fullGradient[j]
	if s.isProxSeparable {
		s.iterate[j] = s.separable.CallSingleDelayed(s.iterate[j], s.step, delay)
	}
}

// solveSparseProba updates only the support of each sample, scaling the
// full-gradient and prox steps of coordinate j by n_samples/nnz_j so that
// their expected total over the epoch matches the dense routine.
func (s *SVRG) solveSparseProba() {
	for t := 0; t < s.epochSize; t++ {
		i := s.sampler.Next()
		indices, values := s.glm.Features(i)
		gradIDiff := s.glm.GradIFactor(i, s.iterate) - s.glm.GradIFactor(i, s.fixedW)

		for k, j := range indices {
			correction := s.stepCorrections[j]
			s.iterate[j] -= s.step * (values[k]*gradIDiff + correction*s.fullGradient[j])
			if s.isProxSeparable {
				s.iterate[j] = s.separable.CallSingle(s.iterate[j], s.step*correction)
			}
		}
		if !s.isProxSeparable {
			s.prox.Call(s.iterate, s.step, s.iterate)
		}
		if s.useIntercept {
			s.iterate[s.nFeatures] -= s.step * (gradIDiff + s.fullGradient[s.nFeatures])
		}
		s.selectSnapshot(t)
	}
}
