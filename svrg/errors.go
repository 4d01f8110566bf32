package svrg

import "github.com/pkg/errors"

// All errors are fatal for the current solve: an epoch that fails may have
// left the iterate partially updated and the solver state must be discarded.
var (
	// ErrNoModel is returned when Solve is called before SetModel.
	ErrNoModel = errors.New("svrg: no model set")
	// ErrNoProx is returned when Solve is called before SetProx.
	ErrNoProx = errors.New("svrg: no proximal operator set")
	// ErrUnsupportedMode reports an unknown policy value or an invalid
	// combination of model sparsity, prox and delayed-update policy.
	ErrUnsupportedMode = errors.New("svrg: unsupported mode")
	// ErrDimensionMismatch reports an iterate whose length differs from the
	// model's number of coefficients.
	ErrDimensionMismatch = errors.New("svrg: dimension mismatch")
	// ErrEmptyColumn reports a feature with no nonzero value in any sample,
	// for which no step correction exists.
	ErrEmptyColumn = errors.New("svrg: feature column has no nonzero value")
)
