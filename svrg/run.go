package svrg

import (
	"context"
	"log/slog"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// History records the progress of Run, one entry per epoch.
type History struct {
	Objectives []float64 // objective at the end of each epoch
	Changes    []float64 // relative iterate change over each epoch
	Converged  bool
}

// Run calls Solve until the relative change of the iterate over an epoch,
// ‖w_k − w_{k−1}‖ / max(‖w_k‖, 1), drops to tol or maxEpochs epochs have
// run. ctx is checked between epochs only.
func (s *SVRG) Run(ctx context.Context, maxEpochs int, tol float64) (*History, error) {
	if s.model == nil {
		return nil, errors.WithStack(ErrNoModel)
	}
	h := &History{}
	prev := make([]float64, len(s.iterate))

	for k := 0; k < maxEpochs; k++ {
		if err := ctx.Err(); err != nil {
			return h, err
		}
		prev = append(prev[:0], s.iterate...)
		if err := s.Solve(); err != nil {
			return h, err
		}

		obj, err := s.Objective(s.iterate)
		if err != nil {
			return h, err
		}
		change := floats.Distance(s.iterate, prev, 2) / math.Max(floats.Norm(s.iterate, 2), 1)
		h.Objectives = append(h.Objectives, obj)
		h.Changes = append(h.Changes, change)

		s.logger.Debug("epoch done",
			slog.Int("epoch", s.epochs),
			slog.Float64("objective", obj),
			slog.Float64("rel_change", change),
		)

		if change <= tol {
			h.Converged = true
			break
		}
	}
	return h, nil
}
