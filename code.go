package qhamming

import (
	"fmt"
	"sync"

	"github.com/theapemachine/errnie"
)

/*
Code is the immutable description of a self-dual CSS code. H serves as both
the X-type and the Z-type parity-check matrix. HStd is H brought into
standard form [I | A], and Reduction records the row and column swaps that
got it there, in particular the column permutation that must be undone to
map qubit labels in the reduced frame back onto H.

A Code is built once and then shared read-only by the encoder, the
syndrome extractor, the decoder and every trial.
*/
type Code struct {
	H         *Matrix
	HStd      *Matrix
	Reduction *Reduction
	N         int
	K         int
	Distance  int
	decoder   *Decoder
}

// HammingMatrix builds the r x (2^r - 1) matrix whose column i is the binary encoding of i+1.
func HammingMatrix(r int) (*Matrix, error) {
	if r < 2 || r > 16 {
		return nil, fmt.Errorf("hamming matrix with %d rows: %w", r, ErrInvalidParameter)
	}

	n := 1<<uint(r) - 1
	h := NewMatrix(r, n)
	for i := 0; i < n; i++ {
		for row := 0; row < r; row++ {
			h.data[row][i] = uint8((i + 1) >> uint(row) & 1)
		}
	}
	return h, nil
}

/*
DefineCode validates h and derives the standard form. It fails with
ErrInvalidCode when h is empty, not of full row rank, or has columns that
do not give a unique single-qubit syndrome.
*/
func DefineCode(h *Matrix) (*Code, error) {
	if h == nil || h.Rows() == 0 || h.Cols() <= h.Rows() {
		return nil, fmt.Errorf("generator matrix must have more columns than rows: %w", ErrInvalidCode)
	}

	std := h.Clone()
	red, err := std.RowReduce()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}

	for i := 0; i < red.Rank; i++ {
		for j := 0; j < red.Rank; j++ {
			want := uint8(0)
			if i == j {
				want = 1
			}
			if std.At(i, j) != want {
				return nil, fmt.Errorf("reduction did not reach identity block at (%d,%d): %w", i, j, ErrInvalidCode)
			}
		}
	}

	decoder, err := NewDecoder(h)
	if err != nil {
		return nil, err
	}

	code := &Code{
		H:         h.Clone(),
		HStd:      std,
		Reduction: red,
		N:         h.Cols(),
		K:         h.Rows(),
		Distance:  minimumDistance(h),
		decoder:   decoder,
	}

	errnie.Info(
		"DefineCode - n %d, k %d, distance %d, column swaps %v",
		code.N, code.K, code.Distance, red.ColumnSwaps,
	)

	return code, nil
}

// Decoder returns the lookup decoder derived from H.
func (code *Code) Decoder() *Decoder {
	return code.decoder
}

// LogicalQubits is n - 2k for a self-dual CSS code.
func (code *Code) LogicalQubits() int {
	return code.N - 2*code.K
}

func (code *Code) String() string {
	return fmt.Sprintf("[[%d,%d,%d]]", code.N, code.LogicalQubits(), code.Distance)
}

/*
minimumDistance is the smallest weight of a nonzero vector in the kernel of h.
Any such vector is an undetectable error. Since the distance of the codes
used here is small, it searches by increasing weight instead of enumerating
the whole kernel.
*/
func minimumDistance(h *Matrix) int {
	cols := make([]uint64, h.Cols())
	for j := range cols {
		for i := 0; i < h.Rows(); i++ {
			cols[j] |= uint64(h.At(i, j)) << uint(i)
		}
	}

	for w := 1; w <= len(cols); w++ {
		if kernelHasWeight(cols, w, 0, 0) {
			return w
		}
	}
	return 0
}

func kernelHasWeight(cols []uint64, remaining, start int, acc uint64) bool {
	if remaining == 0 {
		return acc == 0
	}
	for j := start; j <= len(cols)-remaining; j++ {
		if kernelHasWeight(cols, remaining-1, j+1, acc^cols[j]) {
			return true
		}
	}
	return false
}

var (
	referenceOnce sync.Once
	referenceCode *Code
)

// Reference returns the process-wide [[15,7,3]] quantum Hamming code.
func Reference() *Code {
	referenceOnce.Do(func() {
		h, err := HammingMatrix(4)
		if err != nil {
			panic(err)
		}
		if referenceCode, err = DefineCode(h); err != nil {
			panic(err)
		}
	})
	return referenceCode
}
