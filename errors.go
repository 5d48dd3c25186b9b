package qhamming

import "errors"

var (
	// ErrInvalidCode is returned when a generator matrix cannot define a CSS code.
	ErrInvalidCode = errors.New("invalid code")

	// ErrInvalidParameter is returned for an error probability outside [0, 1/3].
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrIndex is returned for out-of-range indices and length mismatches.
	ErrIndex = errors.New("index out of range")

	// ErrRankDeficient is returned by RowReduce when the rows are not independent.
	ErrRankDeficient = errors.New("matrix is rank deficient")
)
