package spatialmath

import (
	"math"
	"testing"

	"go.viam.com/test"
)

var allRotationOrders = []RotationOrder{OrderXYZ, OrderZYX, OrderZYZ, OrderZXZ}

func TestEulerRoundTrip(t *testing.T) {
	// B stays inside the non-degenerate range of every convention
	ea := EulerAngles{A: 0.3, B: 0.4, C: -0.5}
	for _, order := range allRotationOrders {
		t.Run(order.String(), func(t *testing.T) {
			m := EulerToMatrix(ea, order)
			out := MatrixToEuler(m.Mat3(), order)
			if order == OrderZYZ || order == OrderZXZ {
				// repeated-axis conventions keep B non-negative
				test.That(t, out.B, test.ShouldAlmostEqual, math.Abs(ea.B), 1e-12)
			} else {
				test.That(t, out.B, test.ShouldAlmostEqual, ea.B, 1e-12)
			}
			matricesAlmostEqual(t, EulerToMatrix(out, order), m, 1e-12)
		})
	}
}

func TestEulerRoundTripNegativeB(t *testing.T) {
	ea := EulerAngles{A: -1.2, B: -0.4, C: 2.1}
	for _, order := range allRotationOrders {
		t.Run(order.String(), func(t *testing.T) {
			m := EulerToMatrix(ea, order)
			out := MatrixToEuler(m.Mat3(), order)
			matricesAlmostEqual(t, EulerToMatrix(out, order), m, 1e-12)
		})
	}
}

func TestEulerGimbalLock(t *testing.T) {
	cases := []struct {
		name  string
		order RotationOrder
		ea    EulerAngles
	}{
		{"xyz up", OrderXYZ, EulerAngles{A: 0.3, B: math.Pi / 2, C: 0.2}},
		{"xyz down", OrderXYZ, EulerAngles{A: 0.3, B: -math.Pi / 2, C: 0.2}},
		{"zyx up", OrderZYX, EulerAngles{A: 0.4, B: math.Pi / 2, C: -0.1}},
		{"zyx down", OrderZYX, EulerAngles{A: 0.4, B: -math.Pi / 2, C: -0.1}},
		{"zyz aligned", OrderZYZ, EulerAngles{A: 0.3, B: 0, C: 0.2}},
		{"zyz antiparallel", OrderZYZ, EulerAngles{A: 0.3, B: math.Pi, C: 0.1}},
		{"zxz aligned", OrderZXZ, EulerAngles{A: -0.2, B: 0, C: 0.5}},
		{"zxz antiparallel", OrderZXZ, EulerAngles{A: -0.2, B: math.Pi, C: 0.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// the individual angles collapse in gimbal lock, but the
			// extracted set must still reproduce the rotation
			m := EulerToMatrix(tc.ea, tc.order)
			out := MatrixToEuler(m.Mat3(), tc.order)
			matricesAlmostEqual(t, EulerToMatrix(out, tc.order), m, 1e-9)
		})
	}
}

func TestParseRotationOrder(t *testing.T) {
	order, err := ParseRotationOrder("ZYX")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, order, test.ShouldEqual, OrderZYX)

	order, err = ParseRotationOrder("xyz")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, order, test.ShouldEqual, OrderXYZ)

	_, err = ParseRotationOrder("yzy")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRotationOrderForBrand(t *testing.T) {
	test.That(t, RotationOrderForBrand("kuka"), test.ShouldEqual, OrderZYX)
	test.That(t, RotationOrderForBrand("KUKA"), test.ShouldEqual, OrderZYX)
	test.That(t, RotationOrderForBrand("abb"), test.ShouldEqual, OrderXYZ)
	test.That(t, RotationOrderForBrand(""), test.ShouldEqual, OrderXYZ)
}
