package qhamming

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildEncoder(t *testing.T) {
	Convey("Given the reference code", t, func() {
		code := Reference()
		ops, codewords, err := BuildEncoder(code)
		So(err, ShouldBeNil)

		Convey("The circuit should reset every qubit first", func() {
			for q := 0; q < code.N; q++ {
				So(ops[q], ShouldResemble, Operation{Kind: OpInit, Target: q})
			}
		})

		Convey("Every pivot row should get one Hadamard followed by its CNOTs", func() {
			hadamards := 0
			for i, op := range ops {
				switch op.Kind {
				case OpHadamard:
					So(op.Target, ShouldEqual, hadamards)
					hadamards++
				case OpCNOT:
					So(op.Control, ShouldEqual, hadamards-1)
					So(op.Target, ShouldBeGreaterThanOrEqualTo, code.K)
					So(code.HStd.At(op.Control, op.Target), ShouldEqual, uint8(1))
					So(ops[i-1].Kind == OpHadamard || ops[i-1].Kind == OpCNOT, ShouldBeTrue)
				}
			}
			So(hadamards, ShouldEqual, code.K)
		})

		Convey("The circuit should end by undoing the column swaps", func() {
			tail := ops[len(ops)-2:]
			So(tail[0].String(), ShouldEqual, "swap 3 7")
			So(tail[1].String(), ShouldEqual, "swap 2 3")
		})

		Convey("The codeword set should be the row space of H", func() {
			So(codewords.Len(), ShouldEqual, 16)
			for _, w := range code.H.RowSpace() {
				So(codewords.Contains(w), ShouldBeTrue)
			}
		})

		Convey("The codeword set should contain zero and be closed under addition", func() {
			So(codewords.Contains(NewBitVector(code.N)), ShouldBeTrue)

			words := codewords.Words()
			for _, a := range words {
				for _, b := range words {
					sum, err := a.Xor(b)
					So(err, ShouldBeNil)
					So(codewords.Contains(sum), ShouldBeTrue)
				}
			}
		})

		Convey("Every codeword should have zero X and Z syndrome", func() {
			for _, w := range codewords.Words() {
				sx, sz, err := ExtractSyndromes(code, ErrorVector{X: w, Z: w})
				So(err, ShouldBeNil)
				So(sx, ShouldEqual, Syndrome(0))
				So(sz, ShouldEqual, Syndrome(0))
			}
		})

		Convey("Every nonzero codeword should have weight eight", func() {
			for _, w := range codewords.Words() {
				if w.Weight() > 0 {
					So(w.Weight(), ShouldEqual, 8)
				}
			}
		})

		Convey("Running the circuit should prepare exactly the codeword set", func() {
			support, err := ops.Support(code.N)
			So(err, ShouldBeNil)
			So(len(support), ShouldEqual, 16)

			seen := make(map[string]bool)
			for _, v := range support {
				So(codewords.Contains(v), ShouldBeTrue)
				seen[v.String()] = true
			}
			So(len(seen), ShouldEqual, 16)
		})

		Convey("Words should come back sorted and as copies", func() {
			words := codewords.Words()
			So(words[0].Weight(), ShouldEqual, 0)
			for i := 1; i < len(words); i++ {
				So(words[i-1].String() < words[i].String(), ShouldBeTrue)
			}

			words[0][0] = 1
			So(codewords.Contains(NewBitVector(code.N)), ShouldBeTrue)
		})
	})

	Convey("Given the Steane code", t, func() {
		h, _ := HammingMatrix(3)
		code, err := DefineCode(h)
		So(err, ShouldBeNil)

		ops, codewords, err := BuildEncoder(code)
		So(err, ShouldBeNil)

		Convey("The circuit and the codeword set should agree", func() {
			support, err := ops.Support(code.N)
			So(err, ShouldBeNil)
			So(codewords.Len(), ShouldEqual, 8)
			for _, v := range support {
				So(codewords.Contains(v), ShouldBeTrue)
			}
		})
	})

	Convey("Given no code", t, func() {
		_, _, err := BuildEncoder(nil)
		So(errors.Is(err, ErrInvalidCode), ShouldBeTrue)
	})

	Convey("Given a circuit that touches a missing qubit", t, func() {
		ops := Operations{{Kind: OpHadamard, Target: 0}, {Kind: OpCNOT, Control: 0, Target: 9}}
		_, err := ops.Support(4)
		So(errors.Is(err, ErrIndex), ShouldBeTrue)
	})
}
