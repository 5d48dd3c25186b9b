package qhamming

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHammingMatrix(t *testing.T) {
	Convey("Given r = 3", t, func() {
		h, err := HammingMatrix(3)
		So(err, ShouldBeNil)

		Convey("Column i should encode i+1 with bit r on row r", func() {
			So(h.Rows(), ShouldEqual, 3)
			So(h.Cols(), ShouldEqual, 7)
			for i := 0; i < 7; i++ {
				value := 0
				for r := 0; r < 3; r++ {
					value |= int(h.At(r, i)) << r
				}
				So(value, ShouldEqual, i+1)
			}
		})
	})

	Convey("Given a row count out of range", t, func() {
		_, err := HammingMatrix(1)
		So(errors.Is(err, ErrInvalidParameter), ShouldBeTrue)
	})
}

func TestDefineCode(t *testing.T) {
	Convey("Given the reference code", t, func() {
		code := Reference()

		Convey("It should be the [[15,7,3]] code", func() {
			So(code.N, ShouldEqual, 15)
			So(code.K, ShouldEqual, 4)
			So(code.Distance, ShouldEqual, 3)
			So(code.LogicalQubits(), ShouldEqual, 7)
			So(code.String(), ShouldEqual, "[[15,7,3]]")
		})

		Convey("It should be constructed once", func() {
			So(Reference(), ShouldPointTo, code)
		})

		Convey("Its decoder should cover every qubit", func() {
			So(code.Decoder(), ShouldNotBeNil)
			for q := 0; q < code.N; q++ {
				got, ok := code.Decoder().Decode(Syndrome(q + 1))
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, q)
			}
		})
	})

	Convey("Given a rank-deficient matrix", t, func() {
		h, _ := MatrixFromRows([][]uint8{
			{1, 0, 1, 1},
			{0, 1, 1, 0},
			{1, 1, 0, 1},
		})

		_, err := DefineCode(h)
		So(errors.Is(err, ErrInvalidCode), ShouldBeTrue)
		So(errors.Is(err, ErrRankDeficient), ShouldBeTrue)
	})

	Convey("Given a matrix with a repeated column", t, func() {
		h, _ := MatrixFromRows([][]uint8{
			{1, 0, 1},
			{0, 1, 0},
		})

		_, err := DefineCode(h)
		So(errors.Is(err, ErrInvalidCode), ShouldBeTrue)
	})

	Convey("Given a matrix with a zero column", t, func() {
		h, _ := MatrixFromRows([][]uint8{
			{1, 0, 0},
			{0, 1, 0},
		})

		_, err := DefineCode(h)
		So(errors.Is(err, ErrInvalidCode), ShouldBeTrue)
	})

	Convey("Given degenerate shapes", t, func() {
		_, err := DefineCode(nil)
		So(errors.Is(err, ErrInvalidCode), ShouldBeTrue)

		square, _ := MatrixFromRows([][]uint8{{1, 0}, {0, 1}})
		_, err = DefineCode(square)
		So(errors.Is(err, ErrInvalidCode), ShouldBeTrue)
	})

	Convey("Given the [7,4] Hamming matrix", t, func() {
		h, _ := HammingMatrix(3)
		code, err := DefineCode(h)
		So(err, ShouldBeNil)

		Convey("It should give the [[7,1,3]] Steane code", func() {
			So(code.String(), ShouldEqual, "[[7,1,3]]")
		})
	})
}
