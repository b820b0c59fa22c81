package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestDegRadConversion(t *testing.T) {
	test.That(t, DegToRad(0), test.ShouldEqual, 0)
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, DegToRad(-90), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, RadToDeg(math.Pi), test.ShouldAlmostEqual, 180)
	test.That(t, RadToDeg(DegToRad(123.4)), test.ShouldAlmostEqual, 123.4)
}

func TestFloat64AlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(1.0, 1.0+1e-9, 1e-8), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1.0, 1.1, 1e-8), test.ShouldBeFalse)
}

func TestAngleDiff(t *testing.T) {
	test.That(t, AngleDiff(0.1, 0.3), test.ShouldAlmostEqual, 0.2)
	test.That(t, AngleDiff(0.3, 0.1), test.ShouldAlmostEqual, 0.2)
	// wraps across the -pi/pi seam
	test.That(t, AngleDiff(-math.Pi+0.05, math.Pi-0.05), test.ShouldAlmostEqual, 0.1)
	test.That(t, AngleDiff(-3, 3), test.ShouldAlmostEqual, 2*math.Pi-6)
	test.That(t, AngleDiff(1.5, 1.5), test.ShouldAlmostEqual, 0)
}
