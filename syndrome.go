package qhamming

import "fmt"

/*
Syndrome packs the parity-check results of one error type into an integer:
bit r holds the parity of row r of H. Zero means no detectable error.
*/
type Syndrome uint

// ComputeSyndrome multiplies h by the error bits over GF(2).
func ComputeSyndrome(h *Matrix, e BitVector) (Syndrome, error) {
	if h.Rows() > 63 {
		return 0, fmt.Errorf("syndrome of %d checks does not fit: %w", h.Rows(), ErrIndex)
	}

	bits, err := h.MulVec(e)
	if err != nil {
		return 0, err
	}

	var s Syndrome
	for r, b := range bits {
		s |= Syndrome(b) << uint(r)
	}
	return s, nil
}

/*
ExtractSyndromes computes the X-syndrome from the X-error bits and the
Z-syndrome from the Z-error bits. Self-duality means both use H.
*/
func ExtractSyndromes(code *Code, e ErrorVector) (Syndrome, Syndrome, error) {
	sx, err := ComputeSyndrome(code.H, e.X)
	if err != nil {
		return 0, 0, fmt.Errorf("x syndrome: %w", err)
	}

	sz, err := ComputeSyndrome(code.H, e.Z)
	if err != nil {
		return 0, 0, fmt.Errorf("z syndrome: %w", err)
	}

	return sx, sz, nil
}
