package svrg

import "gonum.org/v1/gonum/floats"

// selectSnapshot runs the variance-reduction policy after iteration t.
// With the exact sparse routine the iterate may still owe delayed updates on
// coordinates outside the recent supports; the snapshot is taken as is.
func (s *SVRG) selectSnapshot(t int) {
	switch s.varianceReduction {
	case Random:
		if t == s.randIndex {
			copy(s.nextIterate, s.iterate)
		}
	case Average:
		floats.AddScaled(s.nextIterate, 1/float64(s.epochSize), s.iterate)
	}
	if s.hook != nil {
		s.hook(t, s.iterate)
	}
}

// finishEpoch runs the end-of-epoch part of the policy.
func (s *SVRG) finishEpoch() {
	if s.varianceReduction == Last {
		copy(s.nextIterate, s.iterate)
	}
}
