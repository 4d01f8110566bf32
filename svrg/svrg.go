// Package svrg implements the Stochastic Variance-Reduced Gradient solver
// for finite sums of smooth losses plus a proximal penalty.
//
// Each call to Solve runs one epoch: the full gradient is computed at a
// fixed reference point, then epoch-size sampled iterations combine it with
// per-sample gradients. Sparse generalized linear models are updated on the
// sampled support only, either with exact delayed updates or with
// probabilistic step corrections.
package svrg

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/n0madic/go-svrg/model"
	"github.com/n0madic/go-svrg/prox"
	"github.com/n0madic/go-svrg/sampler"
)

// VarianceReduction selects how the next epoch's reference point is taken.
type VarianceReduction int

const (
	// Last uses the iterate at the end of the epoch.
	Last VarianceReduction = iota
	// Average uses the mean of the epoch's iterates. It is noisy with the
	// sparse routines but still supported.
	Average
	// Random uses the iterate at one iteration drawn uniformly per epoch.
	Random
)

func (v VarianceReduction) String() string {
	switch v {
	case Last:
		return "last"
	case Average:
		return "avg"
	case Random:
		return "rand"
	default:
		return fmt.Sprintf("VarianceReduction(%d)", int(v))
	}
}

// ParseVarianceReduction converts "last", "avg" or "rand".
func ParseVarianceReduction(s string) (VarianceReduction, error) {
	for _, v := range []VarianceReduction{Last, Average, Random} {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedMode, "variance reduction %q", s)
}

// DelayedUpdates selects the sparse update strategy.
type DelayedUpdates int

const (
	// Exact tracks when each coordinate was last updated and catches up the
	// skipped iterations when it is next visited.
	Exact DelayedUpdates = iota
	// Proba rescales the full-gradient and prox steps of each visited
	// coordinate by the inverse of its feature frequency.
	Proba
)

func (d DelayedUpdates) String() string {
	switch d {
	case Exact:
		return "exact"
	case Proba:
		return "proba"
	default:
		return fmt.Sprintf("DelayedUpdates(%d)", int(d))
	}
}

// ParseDelayedUpdates converts "exact" or "proba".
func ParseDelayedUpdates(s string) (DelayedUpdates, error) {
	for _, d := range []DelayedUpdates{Exact, Proba} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, errors.Wrapf(ErrUnsupportedMode, "delayed updates %q", s)
}

// IndexSampler supplies sample indices and the uniform draw used by the
// Random variance-reduction policy.
type IndexSampler interface {
	Next() int
	Intn(n int) int
}

// IterationHook is called after every iteration with the iteration index
// within the epoch and the live iterate, which must not be retained.
type IterationHook func(t int, iterate []float64)

// SVRG is a stochastic variance-reduced gradient solver.
// It is not safe for concurrent use; calls to Solve must be serialized.
type SVRG struct {
	step              float64
	epochSizeOpt      int // as configured, 0 means one pass over the samples
	epochSize         int // effective, resolved when a model is bound
	varianceReduction VarianceReduction
	delayedUpdates    DelayedUpdates
	randType          sampler.RandType
	seed              int64
	sampler           IndexSampler
	customSampler     bool
	hook              IterationHook
	logger            *slog.Logger

	model     model.Model
	glm       model.GLM // set when the model is sparse
	prox      prox.Operator
	separable prox.Separable // set when the prox is separable

	// Flags captured when the model and prox are bound
	sparse          bool
	useIntercept    bool
	nFeatures       int
	isProxSeparable bool

	iterate      []float64
	nextIterate  []float64
	fixedW       []float64
	fullGradient []float64

	// Dense scratch buffers
	gradI       []float64
	gradIFixedW []float64

	// Sparse bookkeeping. lastTime[j] is the number of iterations of the
	// current epoch already applied to coordinate j, not the index of its
	// last touch: a touch at t stores t+1 and the delay at t is
	// t - lastTime[j].
	lastTime             []int
	stepCorrections      []float64
	stepCorrectionsReady bool

	randIndex  int
	iterations int
	epochs     int
}

// Option defines a functional option for configuring SVRG
type Option func(*SVRG)

// WithEpochSize sets the number of iterations per epoch. Zero (the default)
// uses the number of samples of the bound model.
func WithEpochSize(n int) Option {
	return func(s *SVRG) {
		if n < 0 {
			n = 0
		}
		s.epochSizeOpt = n
	}
}

// WithVarianceReduction sets the reference point policy
func WithVarianceReduction(v VarianceReduction) Option {
	return func(s *SVRG) {
		s.varianceReduction = v
	}
}

// WithDelayedUpdates sets the update strategy for sparse models
func WithDelayedUpdates(d DelayedUpdates) Option {
	return func(s *SVRG) {
		s.delayedUpdates = d
	}
}

// WithRandType sets how the built-in sampler draws indices
func WithRandType(r sampler.RandType) Option {
	return func(s *SVRG) {
		s.randType = r
	}
}

// WithRandomSeed sets the seed of the built-in sampler. Zero seeds from the
// clock.
func WithRandomSeed(seed int64) Option {
	return func(s *SVRG) {
		s.seed = seed
	}
}

// WithSampler replaces the built-in sampler.
func WithSampler(is IndexSampler) Option {
	return func(s *SVRG) {
		s.sampler = is
		s.customSampler = is != nil
	}
}

// WithIterationHook registers a callback run after every iteration.
func WithIterationHook(hook IterationHook) Option {
	return func(s *SVRG) {
		s.hook = hook
	}
}

// WithLogger sets the logger used by Run
func WithLogger(logger *slog.Logger) Option {
	return func(s *SVRG) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an SVRG solver with the given step size.
func New(step float64, options ...Option) (*SVRG, error) {
	s := &SVRG{
		step:              step,
		varianceReduction: Last,
		delayedUpdates:    Exact,
		randType:          sampler.Unif,
		seed:              time.Now().UnixNano(),
		logger:            slog.Default().With(slog.String("component", "svrg")),
	}

	for _, opt := range options {
		opt(s)
	}

	switch s.varianceReduction {
	case Last, Average, Random:
	default:
		return nil, errors.Wrapf(ErrUnsupportedMode, "variance reduction %v", s.varianceReduction)
	}
	switch s.delayedUpdates {
	case Exact, Proba:
	default:
		return nil, errors.Wrapf(ErrUnsupportedMode, "delayed updates %v", s.delayedUpdates)
	}
	return s, nil
}

// SetModel binds the model. Sparse models must implement model.GLM. Step
// corrections computed for a previous model are discarded. If no starting
// point has been set, the iterate starts at zero.
func (s *SVRG) SetModel(m model.Model) error {
	if m == nil {
		return errors.WithStack(ErrNoModel)
	}
	var glm model.GLM
	if m.IsSparse() {
		var ok bool
		if glm, ok = m.(model.GLM); !ok {
			return errors.Wrapf(ErrUnsupportedMode, "sparse model %T is not a GLM", m)
		}
	}

	if !s.customSampler {
		smp, err := sampler.New(m.NSamples(),
			sampler.WithRandType(s.randType),
			sampler.WithRandomSeed(s.seed),
		)
		if err != nil {
			return errors.Wrap(err, "svrg: create sampler")
		}
		s.sampler = smp
	}

	s.model = m
	s.glm = glm
	s.sparse = m.IsSparse()
	s.useIntercept = m.UseIntercept()
	s.nFeatures = m.NFeatures()
	s.epochSize = s.epochSizeOpt
	if s.epochSize == 0 {
		s.epochSize = m.NSamples()
	}

	s.stepCorrectionsReady = false
	s.stepCorrections = nil
	s.lastTime = nil
	s.gradI = nil
	s.gradIFixedW = nil
	s.fixedW = nil
	s.fullGradient = nil

	if s.iterate == nil {
		s.iterate = make([]float64, m.NCoeffs())
		s.nextIterate = make([]float64, m.NCoeffs())
	}
	return nil
}

// SetProx binds the proximal operator. An operator reporting IsSeparable
// must implement prox.Separable.
func (s *SVRG) SetProx(p prox.Operator) error {
	if p == nil {
		return errors.WithStack(ErrNoProx)
	}
	var sep prox.Separable
	if p.IsSeparable() {
		var ok bool
		if sep, ok = p.(prox.Separable); !ok {
			return errors.Wrapf(ErrUnsupportedMode, "prox %T reports separable but has no single-coordinate form", p)
		}
	}
	s.prox = p
	s.separable = sep
	s.isProxSeparable = sep != nil
	return nil
}

// SetStartingPoint copies w into the iterate and into the point the next
// epoch will use as reference.
func (s *SVRG) SetStartingPoint(w []float64) error {
	if s.model != nil && len(w) != s.model.NCoeffs() {
		return errors.Wrapf(ErrDimensionMismatch, "starting point has %d coefficients, model has %d", len(w), s.model.NCoeffs())
	}
	s.iterate = append(s.iterate[:0], w...)
	s.nextIterate = append(s.nextIterate[:0], w...)
	return nil
}

// Iterate returns a copy of the current iterate.
func (s *SVRG) Iterate() []float64 {
	return append([]float64(nil), s.iterate...)
}

// NextIterate returns a copy of the reference point the next epoch will use.
func (s *SVRG) NextIterate() []float64 {
	return append([]float64(nil), s.nextIterate...)
}

// FullGradient returns a copy of the full gradient of the last epoch.
func (s *SVRG) FullGradient() []float64 {
	return append([]float64(nil), s.fullGradient...)
}

// StepCorrections returns a copy of the cached probabilistic step
// corrections, or nil if they have not been computed.
func (s *SVRG) StepCorrections() []float64 {
	if !s.stepCorrectionsReady {
		return nil
	}
	return append([]float64(nil), s.stepCorrections...)
}

// Step returns the step size.
func (s *SVRG) Step() float64 { return s.step }

// EpochSize returns the effective number of iterations per epoch.
func (s *SVRG) EpochSize() int { return s.epochSize }

// Iterations returns the total number of iterations run.
func (s *SVRG) Iterations() int { return s.iterations }

// Epochs returns the number of completed epochs.
func (s *SVRG) Epochs() int { return s.epochs }

// Objective returns the model loss plus the penalty at w.
func (s *SVRG) Objective(w []float64) (float64, error) {
	if s.model == nil {
		return 0, errors.WithStack(ErrNoModel)
	}
	if s.prox == nil {
		return 0, errors.WithStack(ErrNoProx)
	}
	if len(w) != s.model.NCoeffs() {
		return 0, errors.Wrapf(ErrDimensionMismatch, "point has %d coefficients, model has %d", len(w), s.model.NCoeffs())
	}
	return s.model.Loss(w) + s.prox.Value(w), nil
}
