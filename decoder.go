package qhamming

import "fmt"

/*
Decode maps a syndrome straight to a qubit index. It relies on column i of
the Hamming matrix being the binary encoding of i+1, so syndrome v points at
qubit v-1 and syndrome 0 means no correction.
*/
func Decode(s Syndrome) (int, bool) {
	if s == 0 {
		return 0, false
	}
	return int(s) - 1, true
}

/*
Decoder is the lookup table form of Decode for any check matrix whose
columns are distinct and nonzero: every single-qubit error then has its own
syndrome, which makes the table the maximum-likelihood decoder for weight-1
errors. Syndromes that match no column decode to no correction.
*/
type Decoder struct {
	n     int
	table map[Syndrome]int
}

func NewDecoder(h *Matrix) (*Decoder, error) {
	d := &Decoder{n: h.Cols(), table: make(map[Syndrome]int, h.Cols())}

	for j := 0; j < h.Cols(); j++ {
		e := NewBitVector(h.Cols())
		e[j] = 1

		s, err := ComputeSyndrome(h, e)
		if err != nil {
			return nil, err
		}
		if s == 0 {
			return nil, fmt.Errorf("column %d is zero, error on qubit %d is undetectable: %w", j, j, ErrInvalidCode)
		}
		if prev, ok := d.table[s]; ok {
			return nil, fmt.Errorf("columns %d and %d share syndrome %d: %w", prev, j, s, ErrInvalidCode)
		}
		d.table[s] = j
	}

	return d, nil
}

func (d *Decoder) Decode(s Syndrome) (int, bool) {
	q, ok := d.table[s]
	return q, ok
}

/*
Correct turns a pair of syndromes into the Pauli correction. An X flip and a
Z flip on the same qubit together form a Y correction up to global phase.
*/
func (d *Decoder) Correct(sx, sz Syndrome) ErrorVector {
	c := NewErrorVector(d.n)
	if q, ok := d.Decode(sx); ok {
		c.X[q] = 1
	}
	if q, ok := d.Decode(sz); ok {
		c.Z[q] = 1
	}
	return c
}
