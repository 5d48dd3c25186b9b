package qhamming

import "fmt"

// Pauli is a single-qubit Pauli operator, up to global phase.
type Pauli uint8

const (
	PauliI Pauli = iota
	PauliX
	PauliY
	PauliZ
)

func (p Pauli) String() string {
	switch p {
	case PauliI:
		return "I"
	case PauliX:
		return "X"
	case PauliY:
		return "Y"
	case PauliZ:
		return "Z"
	default:
		return "?"
	}
}

// HasX reports whether the operator flips the computational basis (X or Y).
func (p Pauli) HasX() bool {
	return p == PauliX || p == PauliY
}

// HasZ reports whether the operator flips the phase (Z or Y).
func (p Pauli) HasZ() bool {
	return p == PauliZ || p == PauliY
}

func pauliFromBits(x, z uint8) Pauli {
	switch {
	case x == 1 && z == 1:
		return PauliY
	case x == 1:
		return PauliX
	case z == 1:
		return PauliZ
	default:
		return PauliI
	}
}

// Compose multiplies two Paulis, dropping the phase.
func (p Pauli) Compose(other Pauli) Pauli {
	x := boolBit(p.HasX()) ^ boolBit(other.HasX())
	z := boolBit(p.HasZ()) ^ boolBit(other.HasZ())
	return pauliFromBits(x, z)
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

/*
ErrorVector is the binary symplectic form of an n-qubit Pauli error.
X[i] is set when qubit i suffered X or Y, Z[i] when it suffered Z or Y.
*/
type ErrorVector struct {
	X BitVector
	Z BitVector
}

func NewErrorVector(n int) ErrorVector {
	return ErrorVector{X: NewBitVector(n), Z: NewBitVector(n)}
}

func (e ErrorVector) Len() int {
	return len(e.X)
}

// Apply composes p onto qubit i.
func (e ErrorVector) Apply(i int, p Pauli) error {
	if i < 0 || i >= len(e.X) || len(e.X) != len(e.Z) {
		return fmt.Errorf("qubit %d of %d: %w", i, len(e.X), ErrIndex)
	}
	e.X[i] ^= boolBit(p.HasX())
	e.Z[i] ^= boolBit(p.HasZ())
	return nil
}

// At returns the Pauli acting on qubit i.
func (e ErrorVector) At(i int) Pauli {
	return pauliFromBits(e.X[i], e.Z[i])
}

// Compose multiplies two errors qubit by qubit.
func (e ErrorVector) Compose(other ErrorVector) (ErrorVector, error) {
	x, err := e.X.Xor(other.X)
	if err != nil {
		return ErrorVector{}, err
	}
	z, err := e.Z.Xor(other.Z)
	if err != nil {
		return ErrorVector{}, err
	}
	return ErrorVector{X: x, Z: z}, nil
}

// Weight counts the qubits carrying a non-identity Pauli.
func (e ErrorVector) Weight() int {
	w := 0
	for i := range e.X {
		if e.X[i]|e.Z[i] == 1 {
			w++
		}
	}
	return w
}

func (e ErrorVector) Paulis() []Pauli {
	out := make([]Pauli, len(e.X))
	for i := range out {
		out[i] = e.At(i)
	}
	return out
}

func (e ErrorVector) Clone() ErrorVector {
	return ErrorVector{X: e.X.Clone(), Z: e.Z.Clone()}
}

func (e ErrorVector) String() string {
	buf := make([]byte, len(e.X))
	for i := range buf {
		buf[i] = e.At(i).String()[0]
	}
	return string(buf)
}
