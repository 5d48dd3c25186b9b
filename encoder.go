package qhamming

import (
	"fmt"
	"sort"
	"strings"
)

// OpKind is an elementary Clifford operation of the encoding circuit.
type OpKind uint8

const (
	OpInit OpKind = iota
	OpHadamard
	OpCNOT
	OpSwap
)

func (k OpKind) String() string {
	switch k {
	case OpInit:
		return "reset"
	case OpHadamard:
		return "h"
	case OpCNOT:
		return "cx"
	case OpSwap:
		return "swap"
	default:
		return "?"
	}
}

/*
Operation is one step of the encoder. Single-qubit operations use Target
only; CNOT and swap also use Control (the first qubit of a swap).
*/
type Operation struct {
	Kind    OpKind
	Control int
	Target  int
}

func (op Operation) String() string {
	switch op.Kind {
	case OpCNOT, OpSwap:
		return fmt.Sprintf("%s %d %d", op.Kind, op.Control, op.Target)
	default:
		return fmt.Sprintf("%s %d", op.Kind, op.Target)
	}
}

// Operations is an ordered encoding circuit.
type Operations []Operation

func (ops Operations) String() string {
	lines := make([]string, len(ops))
	for i, op := range ops {
		lines[i] = op.String()
	}
	return strings.Join(lines, "\n")
}

/*
Support runs the circuit on |0...0> classically and returns the basis states
of the result. Every Hadamard acts on a qubit that is still |0>, so its
output is an equal superposition that is tracked as a free bit; CNOT and
swap then act on bit strings. Enumerating all assignments of the free bits
gives the support of the prepared stabilizer state.
*/
func (ops Operations) Support(n int) ([]BitVector, error) {
	free := 0
	for _, op := range ops {
		if err := op.check(n); err != nil {
			return nil, err
		}
		if op.Kind == OpHadamard {
			free++
		}
	}
	if free > 20 {
		return nil, fmt.Errorf("%d hadamards is too many to enumerate: %w", free, ErrIndex)
	}

	out := make([]BitVector, 0, 1<<uint(free))
	for assignment := 0; assignment < 1<<uint(free); assignment++ {
		state := NewBitVector(n)
		h := 0
		for _, op := range ops {
			switch op.Kind {
			case OpInit:
				state[op.Target] = 0
			case OpHadamard:
				state[op.Target] = uint8(assignment >> uint(h) & 1)
				h++
			case OpCNOT:
				state[op.Target] ^= state[op.Control]
			case OpSwap:
				state[op.Control], state[op.Target] = state[op.Target], state[op.Control]
			}
		}
		out = append(out, state)
	}
	return out, nil
}

func (op Operation) check(n int) error {
	if op.Target < 0 || op.Target >= n {
		return fmt.Errorf("%s targets qubit %d of %d: %w", op, op.Target, n, ErrIndex)
	}
	if (op.Kind == OpCNOT || op.Kind == OpSwap) && (op.Control < 0 || op.Control >= n) {
		return fmt.Errorf("%s uses qubit %d of %d: %w", op, op.Control, n, ErrIndex)
	}
	return nil
}

/*
CodewordSet is the support of the logical-zero state: the 2^k bit strings
that appear with equal amplitude. It is computed once and only read.
*/
type CodewordSet struct {
	n     int
	words map[string]BitVector
}

func newCodewordSet(n int, words []BitVector) *CodewordSet {
	set := &CodewordSet{n: n, words: make(map[string]BitVector, len(words))}
	for _, w := range words {
		set.words[w.String()] = w.Clone()
	}
	return set
}

func (set *CodewordSet) Len() int {
	return len(set.words)
}

func (set *CodewordSet) Contains(v BitVector) bool {
	if len(v) != set.n {
		return false
	}
	_, ok := set.words[v.String()]
	return ok
}

// Words returns a sorted copy of the set.
func (set *CodewordSet) Words() []BitVector {
	keys := make([]string, 0, len(set.words))
	for k := range set.words {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]BitVector, len(keys))
	for i, k := range keys {
		out[i] = set.words[k].Clone()
	}
	return out
}

/*
BuildEncoder derives the encoding circuit for the logical-zero state from
the standard form [I | A]: every pivot qubit i gets a Hadamard followed by
a CNOT onto each non-pivot qubit j with A[i][j] set. The column swaps made
during reduction are then undone in reverse order so qubit labels match H.

The codeword set is computed independently of the circuit, as the row space
of HStd mapped back through the inverse permutation.
*/
func BuildEncoder(code *Code) (Operations, *CodewordSet, error) {
	if code == nil || code.HStd == nil || code.Reduction == nil {
		return nil, nil, fmt.Errorf("encoder needs a defined code: %w", ErrInvalidCode)
	}

	ops := make(Operations, 0, code.N+code.K*code.N)
	for q := 0; q < code.N; q++ {
		ops = append(ops, Operation{Kind: OpInit, Target: q})
	}

	for i := 0; i < code.K; i++ {
		ops = append(ops, Operation{Kind: OpHadamard, Target: i})
		for j := code.K; j < code.N; j++ {
			if code.HStd.At(i, j) == 1 {
				ops = append(ops, Operation{Kind: OpCNOT, Control: i, Target: j})
			}
		}
	}

	swaps := code.Reduction.ColumnSwaps
	for i := len(swaps) - 1; i >= 0; i-- {
		ops = append(ops, Operation{Kind: OpSwap, Control: swaps[i].A, Target: swaps[i].B})
	}

	inverse := code.Reduction.Permutation.Inverse()
	span := code.HStd.RowSpace()
	words := make([]BitVector, len(span))
	for w, reduced := range span {
		word := NewBitVector(code.N)
		for orig := range word {
			word[orig] = reduced[inverse[orig]]
		}
		words[w] = word
	}

	return ops, newCodewordSet(code.N, words), nil
}
