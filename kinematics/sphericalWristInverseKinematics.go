package kinematics

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/artebotics/armkin/config"
	"github.com/artebotics/armkin/spatialmath"
)

const (
	// acosClampTolerance is how far outside [-1, 1] an arc-cosine argument
	// may fall before the pose is declared unreachable rather than clamped.
	acosClampTolerance = 1e-9
	// wristSingularityThreshold is the axis-5 angle below which axes 4 and
	// 6 are collinear and the wrist orientation must be resolved
	// differently.
	wristSingularityThreshold = 1e-6
)

// ShoulderBranch tells whether the arm reaches the wrist center forward over
// the base or folded back over it.
type ShoulderBranch int

// ElbowBranch tells whether the elbow sits above or below the shoulder-wrist
// line.
type ElbowBranch int

// WristBranch tells whether axis 5 bends positive or is flipped through the
// wrist.
type WristBranch int

// The branch values.
const (
	ShoulderFront ShoulderBranch = iota
	ShoulderBack
)

const (
	ElbowUp ElbowBranch = iota
	ElbowDown
)

const (
	WristNoFlip WristBranch = iota
	WristFlip
)

func (b ShoulderBranch) String() string {
	if b == ShoulderBack {
		return "back"
	}
	return "front"
}

func (b ElbowBranch) String() string {
	if b == ElbowDown {
		return "down"
	}
	return "up"
}

func (b WristBranch) String() string {
	if b == WristFlip {
		return "flip"
	}
	return "noflip"
}

// Branch identifies one of the eight closed-form solution families of a
// spherical-wrist manipulator.
type Branch struct {
	Shoulder ShoulderBranch
	Elbow    ElbowBranch
	Wrist    WristBranch
}

func (b Branch) String() string {
	return b.Shoulder.String() + "/" + b.Elbow.String() + "/" + b.Wrist.String()
}

// branchTable fixes the output order of Solve: the four shoulder/elbow
// postures without a wrist flip, then the same four flipped.
var branchTable = [8]Branch{
	{ShoulderFront, ElbowUp, WristNoFlip},
	{ShoulderFront, ElbowDown, WristNoFlip},
	{ShoulderBack, ElbowUp, WristNoFlip},
	{ShoulderBack, ElbowDown, WristNoFlip},
	{ShoulderFront, ElbowUp, WristFlip},
	{ShoulderFront, ElbowDown, WristFlip},
	{ShoulderBack, ElbowUp, WristFlip},
	{ShoulderBack, ElbowDown, WristFlip},
}

// BranchSolution is one closed-form solution with the branch it belongs to.
// Q holds the six joint positions in radians, bounded into (-pi, pi], with
// the geometry's per-axis signs and offsets applied.
type BranchSolution struct {
	Branch Branch
	Q      []float64
}

// SphericalWristIK is the closed-form inverse solver for six-axis
// ortho-parallel-wrist manipulators. A single solve yields all eight branch
// solutions in the fixed branchTable order. The solver is stateless and safe
// for concurrent use.
type SphericalWristIK struct {
	geom   *config.RobotGeometry
	opw    *config.OPWParams
	logger golog.Logger
}

// NewSphericalWristIK builds the closed-form solver for geom. It fails with
// ErrNoOPWParameters when the geometry carries no ortho-parallel-wrist
// description.
func NewSphericalWristIK(geom *config.RobotGeometry, logger golog.Logger) (*SphericalWristIK, error) {
	if geom.OPW == nil {
		return nil, ErrNoOPWParameters
	}
	return &SphericalWristIK{geom: geom, opw: geom.OPW, logger: logger}, nil
}

// Solve computes all eight branch solutions reaching the target tool pose.
// Targets whose wrist center cannot be reached return ErrUnreachablePose.
func (ik *SphericalWristIK) Solve(target mgl64.Mat4) ([]BranchSolution, error) {
	p := ik.opw
	r := target.Mat3()

	// wrist center: back off the tool length along the approach axis
	approach := r.Col(2)
	wx := target.At(0, 3) - p.L4*approach.X()
	wy := target.At(1, 3) - p.L4*approach.Y()
	wz := target.At(2, 3) - p.L4*approach.Z()

	nx1Sq := wx*wx + wy*wy - p.Oy*p.Oy
	if nx1Sq < 0 {
		if nx1Sq < -acosClampTolerance {
			return nil, ErrUnreachablePose
		}
		nx1Sq = 0
	}
	nx1 := math.Sqrt(nx1Sq) - p.O1

	s1Sq := nx1*nx1 + (wz-p.L1)*(wz-p.L1)
	s2Sq := (nx1+2*p.O1)*(nx1+2*p.O1) + (wz-p.L1)*(wz-p.L1)
	kSq := p.O2*p.O2 + p.L3*p.L3
	k := math.Sqrt(kSq)

	var theta1, theta2, theta3 [4]float64

	t1Front := math.Atan2(wy, wx) - math.Atan2(p.Oy, nx1+p.O1)
	t1Back := math.Atan2(wy, wx) + math.Atan2(p.Oy, nx1+p.O1) - math.Pi
	theta1 = [4]float64{t1Front, t1Front, t1Back, t1Back}

	a1, err := acosClamped((s1Sq + p.L2*p.L2 - kSq) / (2 * math.Sqrt(s1Sq) * p.L2))
	if err != nil {
		return nil, err
	}
	a2, err := acosClamped((s2Sq + p.L2*p.L2 - kSq) / (2 * math.Sqrt(s2Sq) * p.L2))
	if err != nil {
		return nil, err
	}
	elevFront := math.Atan2(nx1, wz-p.L1)
	elevBack := math.Atan2(nx1+2*p.O1, wz-p.L1)
	theta2 = [4]float64{-a1 + elevFront, a1 + elevFront, -a2 - elevBack, a2 - elevBack}

	b1, err := acosClamped((s1Sq - p.L2*p.L2 - kSq) / (2 * k * p.L2))
	if err != nil {
		return nil, err
	}
	b2, err := acosClamped((s2Sq - p.L2*p.L2 - kSq) / (2 * k * p.L2))
	if err != nil {
		return nil, err
	}
	wristOffset := math.Atan2(p.O2, p.L3)
	theta3 = [4]float64{b1 - wristOffset, -b1 - wristOffset, b2 - wristOffset, -b2 - wristOffset}

	var theta4, theta5, theta6 [8]float64
	for i := 0; i < 4; i++ {
		c1, s1 := math.Cos(theta1[i]), math.Sin(theta1[i])
		c23, s23 := math.Cos(theta2[i]+theta3[i]), math.Sin(theta2[i]+theta3[i])

		m := r.At(0, 2)*s23*c1 + r.At(1, 2)*s23*s1 + r.At(2, 2)*c23
		switch {
		case m > 1 && m-1 < acosClampTolerance:
			m = 1
		case m < -1 && -1-m < acosClampTolerance:
			m = -1
		case m > 1 || m < -1:
			return nil, ErrUnreachablePose
		}
		theta5[i] = math.Atan2(math.Sqrt(1-m*m), m)
		theta5[i+4] = -theta5[i]

		if math.Abs(theta5[i]) < wristSingularityThreshold {
			// axes 4 and 6 are collinear; pin axis 4 and give the
			// whole rotation about the approach axis to axis 6
			theta4[i] = 0
			xe := r.Col(0)
			yc := mgl64.Vec3{-s1, c1, 0}
			zc := r.Col(2)
			xc := yc.Cross(zc)
			rc := mgl64.Mat3FromCols(xc, yc, zc)
			xec := rc.Transpose().Mul3x1(xe)
			theta6[i] = math.Atan2(xec.Y(), xec.X())
		} else {
			theta4[i] = math.Atan2(
				r.At(1, 2)*c1-r.At(0, 2)*s1,
				r.At(0, 2)*c23*c1+r.At(1, 2)*c23*s1-r.At(2, 2)*s23,
			)
			theta6[i] = math.Atan2(
				r.At(0, 1)*s23*c1+r.At(1, 1)*s23*s1+r.At(2, 1)*c23,
				-r.At(0, 0)*s23*c1-r.At(1, 0)*s23*s1-r.At(2, 0)*c23,
			)
		}
		theta4[i+4] = theta4[i] + math.Pi
		theta6[i+4] = theta6[i] - math.Pi
	}

	solutions := make([]BranchSolution, 0, len(branchTable))
	for idx, branch := range branchTable {
		posIdx := idx % 4
		wristIdx := posIdx
		if branch.Wrist == WristFlip {
			wristIdx += 4
		}
		raw := [6]float64{
			theta1[posIdx], theta2[posIdx], theta3[posIdx],
			theta4[wristIdx], theta5[wristIdx], theta6[wristIdx],
		}
		q := make([]float64, 6)
		for j := range q {
			bounded := spatialmath.BoundAngle(raw[j])
			q[j] = spatialmath.BoundAngle(p.Signs[j] * (p.Offsets[j] + bounded))
		}
		solutions = append(solutions, BranchSolution{Branch: branch, Q: q})
	}
	return solutions, nil
}

// acosClamped is acos with a tolerance band: arguments within
// acosClampTolerance outside [-1, 1] are treated as exactly on the boundary,
// anything further out means the pose is unreachable.
func acosClamped(v float64) (float64, error) {
	switch {
	case v > 1 && v-1 < acosClampTolerance:
		v = 1
	case v < -1 && -1-v < acosClampTolerance:
		v = -1
	case v > 1 || v < -1 || math.IsNaN(v):
		return 0, ErrUnreachablePose
	}
	return math.Acos(v), nil
}
