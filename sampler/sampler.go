// Package sampler generates the sample indices visited by stochastic
// solvers.
package sampler

import (
	"fmt"
	"math/rand"
	"time"
)

// RandType selects how sample indices are drawn.
type RandType int

const (
	// Unif draws indices uniformly with replacement.
	Unif RandType = iota
	// Perm walks a fresh random permutation of all indices, reshuffling
	// each time it is exhausted.
	Perm
)

func (r RandType) String() string {
	switch r {
	case Unif:
		return "unif"
	case Perm:
		return "perm"
	default:
		return fmt.Sprintf("RandType(%d)", int(r))
	}
}

// ParseRandType converts "unif" or "perm" to a RandType.
func ParseRandType(s string) (RandType, error) {
	switch s {
	case "unif":
		return Unif, nil
	case "perm":
		return Perm, nil
	}
	return 0, fmt.Errorf("unknown rand type %q", s)
}

// Sampler draws sample indices in [0, n) from a seeded RNG.
// It is not safe for concurrent use.
type Sampler struct {
	n        int
	randType RandType
	rng      *rand.Rand
	perm     []int
	pos      int
}

// Option configures a Sampler
type Option func(*Sampler)

// WithRandType sets the sampling strategy
func WithRandType(randType RandType) Option {
	return func(s *Sampler) {
		s.randType = randType
	}
}

// WithRandomSeed sets the random seed for reproducibility. A zero seed
// seeds from the clock.
func WithRandomSeed(seed int64) Option {
	return func(s *Sampler) {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// New creates a sampler over n samples.
func New(n int, options ...Option) (*Sampler, error) {
	if n <= 0 {
		return nil, fmt.Errorf("number of samples must be positive, got %d", n)
	}
	s := &Sampler{
		n:        n,
		randType: Unif,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.randType != Unif && s.randType != Perm {
		return nil, fmt.Errorf("unknown rand type %v", s.randType)
	}
	return s, nil
}

// N returns the number of samples indices are drawn from.
func (s *Sampler) N() int { return s.n }

// RandType returns the sampling strategy.
func (s *Sampler) RandType() RandType { return s.randType }

// Next returns the next sample index.
func (s *Sampler) Next() int {
	if s.randType == Unif {
		return s.rng.Intn(s.n)
	}
	if s.perm == nil || s.pos == len(s.perm) {
		s.shuffle()
	}
	i := s.perm[s.pos]
	s.pos++
	return i
}

// Intn draws uniformly from [0, k) using the sampler's RNG.
func (s *Sampler) Intn(k int) int {
	return s.rng.Intn(k)
}

func (s *Sampler) shuffle() {
	if s.perm == nil {
		s.perm = make([]int, s.n)
		for i := range s.perm {
			s.perm[i] = i
		}
	}
	s.rng.Shuffle(len(s.perm), func(i, j int) {
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
	})
	s.pos = 0
}
