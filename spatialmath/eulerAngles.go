package spatialmath

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// RotationOrder identifies the Euler-angle convention a robot brand reports
// its poses in.
type RotationOrder int

// The supported Euler-angle sequences.
const (
	OrderXYZ RotationOrder = iota
	OrderZYX
	OrderZYZ
	OrderZXZ
)

// String implements fmt.Stringer.
func (o RotationOrder) String() string {
	switch o {
	case OrderXYZ:
		return "xyz"
	case OrderZYX:
		return "zyx"
	case OrderZYZ:
		return "zyz"
	case OrderZXZ:
		return "zxz"
	}
	return "unknown"
}

// ParseRotationOrder converts a rotation-order name into a RotationOrder.
func ParseRotationOrder(s string) (RotationOrder, error) {
	switch strings.ToLower(s) {
	case "xyz":
		return OrderXYZ, nil
	case "zyx":
		return OrderZYX, nil
	case "zyz":
		return OrderZYZ, nil
	case "zxz":
		return OrderZXZ, nil
	}
	return OrderXYZ, errors.Errorf("unsupported rotation order %q, supported orders are xyz, zyx, zyz and zxz", s)
}

// RotationOrderForBrand returns the Euler convention a manufacturer uses for
// its pose readouts. KUKA controllers report ZYX angles; everything else in
// the supported fleet reports XYZ.
func RotationOrderForBrand(brand string) RotationOrder {
	if strings.EqualFold(brand, "kuka") {
		return OrderZYX
	}
	return OrderXYZ
}

// EulerAngles holds the three rotation angles of a pose in radians. For the
// XYZ and ZYX orders A, B and C are the rotation amounts about the x, y and z
// axes respectively. For the repeated-axis orders (ZYZ, ZXZ) they are the
// successive rotation amounts of the sequence.
type EulerAngles struct {
	A, B, C float64
}

// EulerToMatrix composes the 4x4 rotation matrix of the given Euler angles in
// the given order.
func EulerToMatrix(ea EulerAngles, order RotationOrder) mgl64.Mat4 {
	switch order {
	case OrderZYX:
		return RotationZ(ea.C).Mul4(RotationY(ea.B)).Mul4(RotationX(ea.A))
	case OrderZYZ:
		return RotationZ(ea.A).Mul4(RotationY(ea.B)).Mul4(RotationZ(ea.C))
	case OrderZXZ:
		return RotationZ(ea.A).Mul4(RotationX(ea.B)).Mul4(RotationZ(ea.C))
	default: // OrderXYZ
		return RotationX(ea.A).Mul4(RotationY(ea.B)).Mul4(RotationZ(ea.C))
	}
}

// MatrixToEuler extracts Euler angles in the given order from a rotation
// matrix. Gimbal-lock configurations collapse the redundant degree of freedom
// into the first angle, with the last angle reported as zero.
func MatrixToEuler(m mgl64.Mat3, order RotationOrder) EulerAngles {
	switch order {
	case OrderZYX:
		return eulerZYX(m)
	case OrderZYZ:
		return eulerZYZ(m)
	case OrderZXZ:
		return eulerZXZ(m)
	default:
		return eulerXYZ(m)
	}
}

func eulerXYZ(m mgl64.Mat3) EulerAngles {
	switch {
	case m.At(0, 2) < 1 && m.At(0, 2) > -1:
		return EulerAngles{
			A: math.Atan2(-m.At(1, 2), m.At(2, 2)),
			B: math.Asin(m.At(0, 2)),
			C: math.Atan2(-m.At(0, 1), m.At(0, 0)),
		}
	case m.At(0, 2) <= -1:
		return EulerAngles{A: -math.Atan2(m.At(1, 0), m.At(1, 1)), B: -math.Pi / 2}
	default:
		return EulerAngles{A: math.Atan2(m.At(1, 0), m.At(1, 1)), B: math.Pi / 2}
	}
}

func eulerZYX(m mgl64.Mat3) EulerAngles {
	switch {
	case m.At(2, 0) < 1 && m.At(2, 0) > -1:
		return EulerAngles{
			A: math.Atan2(m.At(2, 1), m.At(2, 2)),
			B: math.Asin(-m.At(2, 0)),
			C: math.Atan2(m.At(1, 0), m.At(0, 0)),
		}
	case m.At(2, 0) <= -1:
		return EulerAngles{B: math.Pi / 2, C: -math.Atan2(-m.At(1, 2), m.At(1, 1))}
	default:
		return EulerAngles{B: -math.Pi / 2, C: math.Atan2(-m.At(1, 2), m.At(1, 1))}
	}
}

func eulerZYZ(m mgl64.Mat3) EulerAngles {
	switch {
	case m.At(2, 2) < 1 && m.At(2, 2) > -1:
		return EulerAngles{
			A: math.Atan2(m.At(1, 2), m.At(0, 2)),
			B: math.Acos(m.At(2, 2)),
			C: math.Atan2(m.At(2, 1), -m.At(2, 0)),
		}
	case m.At(2, 2) <= -1:
		return EulerAngles{A: math.Atan2(-m.At(1, 0), m.At(1, 1)), B: math.Pi}
	default:
		return EulerAngles{A: math.Atan2(m.At(1, 0), m.At(1, 1))}
	}
}

func eulerZXZ(m mgl64.Mat3) EulerAngles {
	switch {
	case m.At(2, 2) < 1 && m.At(2, 2) > -1:
		return EulerAngles{
			A: math.Atan2(m.At(0, 2), -m.At(1, 2)),
			B: math.Acos(m.At(2, 2)),
			C: math.Atan2(m.At(2, 0), m.At(2, 1)),
		}
	case m.At(2, 2) <= -1:
		return EulerAngles{A: -math.Atan2(-m.At(0, 1), m.At(0, 0)), B: math.Pi}
	default:
		return EulerAngles{A: math.Atan2(-m.At(0, 1), m.At(0, 0))}
	}
}
