package qhamming

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestComputeSyndrome(t *testing.T) {
	Convey("Given the reference parity-check matrix", t, func() {
		code := Reference()

		Convey("The zero error should have syndrome zero and need no correction", func() {
			s, err := ComputeSyndrome(code.H, NewBitVector(code.N))
			So(err, ShouldBeNil)
			So(s, ShouldEqual, Syndrome(0))

			_, ok := Decode(s)
			So(ok, ShouldBeFalse)
		})

		Convey("A single flip on qubit i should have syndrome i+1", func() {
			for i := 0; i < code.N; i++ {
				e := NewBitVector(code.N)
				e[i] = 1

				s, err := ComputeSyndrome(code.H, e)
				So(err, ShouldBeNil)
				So(s, ShouldEqual, Syndrome(i+1))

				q, ok := Decode(s)
				So(ok, ShouldBeTrue)
				So(q, ShouldEqual, i)
			}
		})

		Convey("A length mismatch should fail with an index error", func() {
			_, err := ComputeSyndrome(code.H, NewBitVector(code.N-1))
			So(errors.Is(err, ErrIndex), ShouldBeTrue)

			_, _, err = ExtractSyndromes(code, ErrorVector{X: NewBitVector(code.N), Z: NewBitVector(3)})
			So(errors.Is(err, ErrIndex), ShouldBeTrue)
		})

		Convey("A Y error should show up in both syndromes", func() {
			e := NewErrorVector(code.N)
			So(e.Apply(4, PauliY), ShouldBeNil)

			sx, sz, err := ExtractSyndromes(code, e)
			So(err, ShouldBeNil)
			So(sx, ShouldEqual, Syndrome(5))
			So(sz, ShouldEqual, Syndrome(5))
		})
	})
}

func TestDecoder(t *testing.T) {
	Convey("Given the lookup decoder of the reference code", t, func() {
		code := Reference()
		decoder := code.Decoder()

		Convey("It should agree with the closed form on every syndrome", func() {
			for s := Syndrome(0); s < 16; s++ {
				q1, ok1 := Decode(s)
				q2, ok2 := decoder.Decode(s)
				So(ok2, ShouldEqual, ok1)
				if ok1 {
					So(q2, ShouldEqual, q1)
				}
			}
		})

		Convey("Every single-qubit Pauli should be undone exactly", func() {
			for q := 0; q < code.N; q++ {
				for _, p := range []Pauli{PauliX, PauliY, PauliZ} {
					e := NewErrorVector(code.N)
					So(e.Apply(q, p), ShouldBeNil)

					sx, sz, err := ExtractSyndromes(code, e)
					So(err, ShouldBeNil)

					residual, err := e.Compose(decoder.Correct(sx, sz))
					So(err, ShouldBeNil)
					So(residual.Weight(), ShouldEqual, 0)
				}
			}
		})

		Convey("A weight-two error should be miscorrected into a weight-three one", func() {
			e := NewErrorVector(code.N)
			So(e.Apply(0, PauliX), ShouldBeNil)
			So(e.Apply(1, PauliX), ShouldBeNil)

			sx, sz, err := ExtractSyndromes(code, e)
			So(err, ShouldBeNil)
			So(sx, ShouldEqual, Syndrome(3))
			So(sz, ShouldEqual, Syndrome(0))

			correction := decoder.Correct(sx, sz)
			So(correction.At(2), ShouldEqual, PauliX)

			residual, err := e.Compose(correction)
			So(err, ShouldBeNil)
			So(residual.X.String(), ShouldEqual, "111000000000000")
		})
	})

	Convey("Given a check matrix whose columns are not in binary order", t, func() {
		h, _ := MatrixFromRows([][]uint8{
			{0, 1, 1},
			{1, 1, 0},
		})
		decoder, err := NewDecoder(h)
		So(err, ShouldBeNil)

		Convey("The table should follow the columns", func() {
			q, ok := decoder.Decode(2)
			So(ok, ShouldBeTrue)
			So(q, ShouldEqual, 0)

			q, ok = decoder.Decode(3)
			So(ok, ShouldBeTrue)
			So(q, ShouldEqual, 1)

			_, ok = decoder.Decode(0)
			So(ok, ShouldBeFalse)
		})
	})
}
