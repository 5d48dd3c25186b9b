package qhamming

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// MaxErrorProbability is the largest p for which P(I) = 1 - 3p stays non-negative.
const MaxErrorProbability = 1.0 / 3.0

// RandomSource is the only thing the noise model needs from a generator.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a seeded PCG stream, so a fixed seed gives a fixed trial sequence.
func NewRandomSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func ValidateProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > MaxErrorProbability {
		return fmt.Errorf("error probability %v outside [0, 1/3]: %w", p, ErrInvalidParameter)
	}
	return nil
}

/*
SamplePauli draws one outcome of the single-qubit channel where X, Y and Z
each occur with probability p and I with 1-3p. The interval [0, 3p) is cut
into three equal parts for X, Y and Z.
*/
func SamplePauli(p float64, rng RandomSource) Pauli {
	u := rng.Float64()
	switch {
	case u < p:
		return PauliX
	case u < 2*p:
		return PauliY
	case u < 3*p:
		return PauliZ
	default:
		return PauliI
	}
}

// SampleError draws an independent Pauli for each of n qubits.
func SampleError(p float64, n int, rng RandomSource) (ErrorVector, error) {
	if err := ValidateProbability(p); err != nil {
		return ErrorVector{}, err
	}
	if n < 0 {
		return ErrorVector{}, fmt.Errorf("qubit count %d: %w", n, ErrIndex)
	}

	e := NewErrorVector(n)
	for i := 0; i < n; i++ {
		pauli := SamplePauli(p, rng)
		e.X[i] = boolBit(pauli.HasX())
		e.Z[i] = boolBit(pauli.HasZ())
	}
	return e, nil
}

/*
Sampler produces the error for one trial on n qubits. Implementations
differ only in when they draw their randomness.
*/
type Sampler interface {
	Sample(n int) (ErrorVector, error)
}

// SamplerKind names a Sampler implementation in configuration.
type SamplerKind string

const (
	SamplerPerDraw      SamplerKind = "per-draw"
	SamplerConstruction SamplerKind = "construction"
)

func NewSampler(kind SamplerKind, p float64, rng RandomSource) (Sampler, error) {
	if err := ValidateProbability(p); err != nil {
		return nil, err
	}

	switch kind {
	case SamplerPerDraw, "":
		return &PerDrawSampler{p: p, rng: rng}, nil
	case SamplerConstruction:
		return &NoiseCircuit{p: p, rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown sampler %q: %w", kind, ErrInvalidParameter)
	}
}

// PerDrawSampler draws a fresh outcome for every qubit on every call.
type PerDrawSampler struct {
	p   float64
	rng RandomSource
}

func NewPerDrawSampler(p float64, rng RandomSource) (*PerDrawSampler, error) {
	if err := ValidateProbability(p); err != nil {
		return nil, err
	}
	return &PerDrawSampler{p: p, rng: rng}, nil
}

func (s *PerDrawSampler) Sample(n int) (ErrorVector, error) {
	return SampleError(s.p, n, s.rng)
}

/*
NoiseCircuit draws its outcomes once, when the circuit is built, and then
replays them. Replaying the same built circuit therefore yields the same
error on every call. Independent trials need Resample before each one.
*/
type NoiseCircuit struct {
	p     float64
	rng   RandomSource
	built ErrorVector
	ready bool
}

func NewNoiseCircuit(p float64, rng RandomSource) (*NoiseCircuit, error) {
	if err := ValidateProbability(p); err != nil {
		return nil, err
	}
	return &NoiseCircuit{p: p, rng: rng}, nil
}

// Build draws the per-qubit outcomes for an n-qubit circuit.
func (c *NoiseCircuit) Build(n int) error {
	e, err := SampleError(c.p, n, c.rng)
	if err != nil {
		return err
	}
	c.built = e
	c.ready = true
	return nil
}

// Ready reports whether Build has run.
func (c *NoiseCircuit) Ready() bool {
	return c.ready
}

// Resample redraws every outcome of the built circuit.
func (c *NoiseCircuit) Resample() error {
	if !c.ready {
		return fmt.Errorf("resample before build: %w", ErrInvalidParameter)
	}
	return c.Build(c.built.Len())
}

// Sample replays the built outcomes, building first if needed.
func (c *NoiseCircuit) Sample(n int) (ErrorVector, error) {
	if !c.ready || c.built.Len() != n {
		if err := c.Build(n); err != nil {
			return ErrorVector{}, err
		}
	}
	return c.built.Clone(), nil
}
