package kinematics

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestJacobianWorldPlanar(t *testing.T) {
	chain := NewOffsetChain(planar3Geometry())
	jac, err := JacobianWorld(chain, []float64{0, 0, 0})
	test.That(t, err, test.ShouldBeNil)

	rows, cols := jac.Dims()
	test.That(t, rows, test.ShouldEqual, 6)
	test.That(t, cols, test.ShouldEqual, 3)

	// stretched flat along x, the last joint origin is at (0.7, 0, 0):
	// every joint moves the end along y, proportionally to its distance
	expected := [6][3]float64{
		{0, 0, 0},
		{0.7, 0.3, 0},
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
		{1, 1, 1},
	}
	for r := 0; r < 6; r++ {
		for c := 0; c < 3; c++ {
			test.That(t, jac.At(r, c), test.ShouldAlmostEqual, expected[r][c], 1e-12)
		}
	}
}

func TestJacobianEndEffector(t *testing.T) {
	chain := NewOffsetChain(planar3Geometry())
	q := []float64{math.Pi / 2, 0, 0}
	jw, err := JacobianWorld(chain, q)
	test.That(t, err, test.ShouldBeNil)

	m, err := chain.Transform(q)
	test.That(t, err, test.ShouldBeNil)
	je := JacobianEndEffector(jw, m.Mat3())

	// rotating the whole arm by 90 degrees about z leaves the Jacobian in
	// tool coordinates identical to the flat-arm world Jacobian
	expected := [6][3]float64{
		{0, 0, 0},
		{0.7, 0.3, 0},
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
		{1, 1, 1},
	}
	for r := 0; r < 6; r++ {
		for c := 0; c < 3; c++ {
			test.That(t, je.At(r, c), test.ShouldAlmostEqual, expected[r][c], 1e-12)
		}
	}
}
