package qhamming

import (
	"fmt"
	"math"
)

/*
TrialResult is the outcome of one encode, error, decode, correct cycle.
Residual is the net error left after the correction was applied.
*/
type TrialResult struct {
	Success  bool
	P        float64
	Seed     uint64
	Residual ErrorVector
}

// Resampler is implemented by samplers that must be redrawn between trials.
type Resampler interface {
	Ready() bool
	Resample() error
}

/*
Trial runs one cycle against a fixed code and codeword set. The logical-zero
state is measured in the computational basis, so the outcome is the
codeword shifted by the net X error. The trial succeeds when that shifted
string is still a codeword. The codeword set is a group, so checking the
net X error itself is enough. After correction the net Z error always has
zero syndrome, which makes it act trivially on logical zero; it is kept in
Residual but does not affect success.
*/
type Trial struct {
	code      *Code
	codewords *CodewordSet
	sampler   Sampler
	p         float64
	seed      uint64
}

// NewTrial binds a sampler to a code. p and seed only label the results.
func NewTrial(code *Code, codewords *CodewordSet, sampler Sampler, p float64, seed uint64) *Trial {
	return &Trial{code: code, codewords: codewords, sampler: sampler, p: p, seed: seed}
}

func (t *Trial) Run() (TrialResult, error) {
	if r, ok := t.sampler.(Resampler); ok && r.Ready() {
		if err := r.Resample(); err != nil {
			return TrialResult{}, err
		}
	}

	e, err := t.sampler.Sample(t.code.N)
	if err != nil {
		return TrialResult{}, err
	}

	return t.correct(e)
}

func (t *Trial) correct(e ErrorVector) (TrialResult, error) {
	sx, sz, err := ExtractSyndromes(t.code, e)
	if err != nil {
		return TrialResult{}, err
	}

	residual, err := e.Compose(t.code.Decoder().Correct(sx, sz))
	if err != nil {
		return TrialResult{}, err
	}

	return TrialResult{
		Success:  t.codewords.Contains(residual.X),
		P:        t.p,
		Seed:     t.seed,
		Residual: residual,
	}, nil
}

// RunTrial runs a single trial, drawing its error from sampler.
func RunTrial(code *Code, codewords *CodewordSet, sampler Sampler, p float64) (TrialResult, error) {
	return NewTrial(code, codewords, sampler, p, 0).Run()
}

/*
RunTrials runs n sequential trials with a per-draw sampler on rng and
returns the fraction that succeeded.
*/
func RunTrials(code *Code, p float64, n int, rng RandomSource) (float64, error) {
	if n < 1 {
		return 0, fmt.Errorf("trial count %d: %w", n, ErrInvalidParameter)
	}

	_, codewords, err := BuildEncoder(code)
	if err != nil {
		return 0, err
	}

	sampler, err := NewPerDrawSampler(p, rng)
	if err != nil {
		return 0, err
	}

	trial := NewTrial(code, codewords, sampler, p, 0)
	successes := 0
	for i := 0; i < n; i++ {
		res, err := trial.Run()
		if err != nil {
			return 0, err
		}
		if res.Success {
			successes++
		}
	}

	return float64(successes) / float64(n), nil
}

/*
ExactSuccessRate is the probability that a trial succeeds, computed by
enumerating every X-error pattern. Each qubit carries an X component with
probability 2p (an X or a Y), independently, and the decoder is
deterministic, so the success probability is a finite weighted sum.
*/
func ExactSuccessRate(code *Code, p float64) (float64, error) {
	if err := ValidateProbability(p); err != nil {
		return 0, err
	}
	if code.N > 20 {
		return 0, fmt.Errorf("exact enumeration over %d qubits: %w", code.N, ErrIndex)
	}

	_, codewords, err := BuildEncoder(code)
	if err != nil {
		return 0, err
	}

	q := 2 * p
	decoder := code.Decoder()
	e := NewBitVector(code.N)
	total := 0.0

	for pattern := 0; pattern < 1<<uint(code.N); pattern++ {
		w := 0
		for i := range e {
			e[i] = uint8(pattern >> uint(i) & 1)
			w += int(e[i])
		}

		s, err := ComputeSyndrome(code.H, e)
		if err != nil {
			return 0, err
		}
		if qubit, ok := decoder.Decode(s); ok {
			e[qubit] ^= 1
		}
		if codewords.Contains(e) {
			total += math.Pow(q, float64(w)) * math.Pow(1-q, float64(code.N-w))
		}
	}

	return total, nil
}
