package qhamming

import (
	"fmt"
	"strings"
)

/*
BitVector is a vector over GF(2). Every entry is 0 or 1, addition is XOR and
multiplication is AND.
*/
type BitVector []uint8

func NewBitVector(n int) BitVector {
	return make(BitVector, n)
}

func (v BitVector) Len() int {
	return len(v)
}

// Weight counts the set bits.
func (v BitVector) Weight() int {
	w := 0
	for _, b := range v {
		w += int(b)
	}
	return w
}

// Xor returns v + other over GF(2).
func (v BitVector) Xor(other BitVector) (BitVector, error) {
	if len(v) != len(other) {
		return nil, fmt.Errorf("xor of %d and %d bits: %w", len(v), len(other), ErrIndex)
	}

	out := make(BitVector, len(v))
	for i := range v {
		out[i] = v[i] ^ other[i]
	}
	return out, nil
}

func (v BitVector) Equal(other BitVector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

func (v BitVector) Clone() BitVector {
	out := make(BitVector, len(v))
	copy(out, v)
	return out
}

func (v BitVector) String() string {
	var sb strings.Builder
	sb.Grow(len(v))
	for _, b := range v {
		sb.WriteByte('0' + b)
	}
	return sb.String()
}

/*
Permutation records where columns ended up after a reduction:
Permutation[j] is the original column index now sitting at position j.
*/
type Permutation []int

func identityPermutation(n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Inverse returns the permutation mapping original positions to new ones.
func (p Permutation) Inverse() Permutation {
	inv := make(Permutation, len(p))
	for j, orig := range p {
		inv[orig] = j
	}
	return inv
}

// Swap is an ordered pair of exchanged row or column indices.
type Swap struct {
	A, B int
}

/*
Reduction is the record of a RowReduce call. Applying RowSwaps and the
implied XOR operations to the original rows, then ColumnSwaps in order,
gives the reduced matrix. Permutation is the net effect of ColumnSwaps.
*/
type Reduction struct {
	Rank        int
	Pivots      []int
	RowSwaps    []Swap
	ColumnSwaps []Swap
	Permutation Permutation
}

/*
Matrix is a dense rows x cols matrix over GF(2). All mutating operations act
in place; callers that need the original must Clone first.
*/
type Matrix struct {
	rows int
	cols int
	data [][]uint8
}

func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		rows, cols = 0, 0
	}

	data := make([][]uint8, rows)
	for i := range data {
		data[i] = make([]uint8, cols)
	}

	return &Matrix{rows: rows, cols: cols, data: data}
}

// MatrixFromRows copies rows into a new matrix, rejecting ragged or non-binary input.
func MatrixFromRows(rows [][]uint8) (*Matrix, error) {
	if len(rows) == 0 {
		return NewMatrix(0, 0), nil
	}

	m := NewMatrix(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != m.cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), m.cols, ErrIndex)
		}
		for j, b := range row {
			if b > 1 {
				return nil, fmt.Errorf("entry (%d,%d)=%d is not a bit: %w", i, j, b, ErrInvalidCode)
			}
			m.data[i][j] = b
		}
	}

	return m, nil
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

/*
At, Row and Column are the unchecked read paths used by the hot loops.
Indices must be in range; they panic otherwise. Use Set or the checked
mutators when indices come from outside.
*/
func (m *Matrix) At(i, j int) uint8 {
	return m.data[i][j]
}

func (m *Matrix) Set(i, j int, b uint8) error {
	if err := m.checkRow(i); err != nil {
		return err
	}
	if err := m.checkCol(j); err != nil {
		return err
	}
	m.data[i][j] = b & 1
	return nil
}

// Row returns a copy of row i. It panics when i is out of range.
func (m *Matrix) Row(i int) BitVector {
	return BitVector(m.data[i]).Clone()
}

// Column returns a copy of column j. It panics when j is out of range.
func (m *Matrix) Column(j int) BitVector {
	col := make(BitVector, m.rows)
	for i := range m.data {
		col[i] = m.data[i][j]
	}
	return col
}

func (m *Matrix) Clone() *Matrix {
	out := NewMatrix(m.rows, m.cols)
	for i := range m.data {
		copy(out.data[i], m.data[i])
	}
	return out
}

func (m *Matrix) Equal(other *Matrix) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i := range m.data {
		if !BitVector(m.data[i]).Equal(other.data[i]) {
			return false
		}
	}
	return true
}

func (m *Matrix) String() string {
	lines := make([]string, m.rows)
	for i := range m.data {
		lines[i] = BitVector(m.data[i]).String()
	}
	return strings.Join(lines, "\n")
}

func (m *Matrix) checkRow(i int) error {
	if i < 0 || i >= m.rows {
		return fmt.Errorf("row %d of %d: %w", i, m.rows, ErrIndex)
	}
	return nil
}

func (m *Matrix) checkCol(j int) error {
	if j < 0 || j >= m.cols {
		return fmt.Errorf("column %d of %d: %w", j, m.cols, ErrIndex)
	}
	return nil
}

func (m *Matrix) SwapRows(i, j int) error {
	if err := m.checkRow(i); err != nil {
		return err
	}
	if err := m.checkRow(j); err != nil {
		return err
	}
	m.data[i], m.data[j] = m.data[j], m.data[i]
	return nil
}

func (m *Matrix) SwapColumns(i, j int) error {
	if err := m.checkCol(i); err != nil {
		return err
	}
	if err := m.checkCol(j); err != nil {
		return err
	}
	for _, row := range m.data {
		row[i], row[j] = row[j], row[i]
	}
	return nil
}

// XorRowInto adds row src into row dst (dst ^= src).
func (m *Matrix) XorRowInto(src, dst int) error {
	if err := m.checkRow(src); err != nil {
		return err
	}
	if err := m.checkRow(dst); err != nil {
		return err
	}
	s, d := m.data[src], m.data[dst]
	for j := range d {
		d[j] ^= s[j]
	}
	return nil
}

// PermuteColumns returns a new matrix whose column j is column p[j] of m.
func (m *Matrix) PermuteColumns(p Permutation) (*Matrix, error) {
	if len(p) != m.cols {
		return nil, fmt.Errorf("permutation of %d for %d columns: %w", len(p), m.cols, ErrIndex)
	}

	out := NewMatrix(m.rows, m.cols)
	for i, row := range m.data {
		for j, src := range p {
			out.data[i][j] = row[src]
		}
	}
	return out, nil
}

/*
RowReduce brings the matrix into standard form [I | A] with Gauss-Jordan
elimination. When the current pivot column has no usable 1 below the pivot
row, the first later column that does is swapped in, so the identity block
always occupies columns 0..rank-1. Every swap is recorded so the caller can
undo the column permutation later.
*/
func (m *Matrix) RowReduce() (*Reduction, error) {
	red := &Reduction{Permutation: identityPermutation(m.cols)}

	for r := 0; r < m.rows; r++ {
		pivotRow, pivotCol := m.findPivot(r)
		if pivotRow < 0 {
			return red, fmt.Errorf("no pivot for row %d of %d: %w", r, m.rows, ErrRankDeficient)
		}

		if pivotRow != r {
			m.data[r], m.data[pivotRow] = m.data[pivotRow], m.data[r]
			red.RowSwaps = append(red.RowSwaps, Swap{A: r, B: pivotRow})
		}

		if pivotCol != r {
			for _, row := range m.data {
				row[r], row[pivotCol] = row[pivotCol], row[r]
			}
			red.ColumnSwaps = append(red.ColumnSwaps, Swap{A: r, B: pivotCol})
			red.Permutation[r], red.Permutation[pivotCol] = red.Permutation[pivotCol], red.Permutation[r]
		}

		for i := 0; i < m.rows; i++ {
			if i != r && m.data[i][r] == 1 {
				// Indices are known to be in range here.
				_ = m.XorRowInto(r, i)
			}
		}

		red.Rank++
	}

	red.Pivots = make([]int, red.Rank)
	copy(red.Pivots, red.Permutation[:red.Rank])

	return red, nil
}

// findPivot scans columns from c onward for the first 1 at or below row c.
func (m *Matrix) findPivot(c int) (int, int) {
	for col := c; col < m.cols; col++ {
		for row := c; row < m.rows; row++ {
			if m.data[row][col] == 1 {
				return row, col
			}
		}
	}
	return -1, -1
}

// MulVec computes m·v over GF(2).
func (m *Matrix) MulVec(v BitVector) (BitVector, error) {
	if len(v) != m.cols {
		return nil, fmt.Errorf("multiplying %dx%d matrix into %d-dim vector: %w", m.rows, m.cols, len(v), ErrIndex)
	}

	out := make(BitVector, m.rows)
	for i, row := range m.data {
		var acc uint8
		for j, b := range row {
			acc ^= b & v[j]
		}
		out[i] = acc
	}
	return out, nil
}

/*
Combine returns the GF(2) sum of the rows selected by the low bits of
coefficients: bit i of coefficients picks row i.
*/
func (m *Matrix) Combine(coefficients uint64) BitVector {
	out := make(BitVector, m.cols)
	for i, row := range m.data {
		if coefficients>>uint(i)&1 == 1 {
			for j, b := range row {
				out[j] ^= b
			}
		}
	}
	return out
}

// RowSpace enumerates all 2^rows combinations of the rows, in coefficient order.
func (m *Matrix) RowSpace() []BitVector {
	if m.rows >= 63 {
		return nil
	}

	span := make([]BitVector, 0, 1<<uint(m.rows))
	for c := uint64(0); c < 1<<uint(m.rows); c++ {
		span = append(span, m.Combine(c))
	}
	return span
}
