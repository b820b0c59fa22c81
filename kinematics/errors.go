package kinematics

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoOPWParameters is returned when a closed-form solve is requested
	// for a geometry that carries no ortho-parallel-wrist parameters.
	ErrNoOPWParameters = errors.New("geometry has no opw parameters, analytical solve unavailable")

	// ErrUnreachablePose is returned when a target lies outside the
	// manipulator workspace.
	ErrUnreachablePose = errors.New("target pose is outside the reachable workspace")

	// ErrNoMatchingSolution is returned when no closed-form branch
	// reproduces the requested pose.
	ErrNoMatchingSolution = errors.New("no solution matches the requested pose")

	// ErrJointCountMismatch is returned when a joint vector does not match
	// the degrees of freedom of the chain it is applied to.
	ErrJointCountMismatch = errors.New("joint position count does not match the chain degrees of freedom")

	errSVDFailed = errors.New("svd factorization of the jacobian failed")
)

// ConvergenceError reports a numerical solve that ran out of iterations and
// restarts without meeting the residual tolerance. LastQ holds the best
// iterate so a caller can inspect or reseed from it.
type ConvergenceError struct {
	LastQ      []float64
	Iterations int
	Searches   int
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf(
		"inverse kinematics did not converge after %d iterations and %d searches, residual %g",
		e.Iterations, e.Searches, e.Residual,
	)
}

// LimitViolationError reports which axes of an otherwise valid solution fall
// outside their configured position limits.
type LimitViolationError struct {
	Axes []int
}

func (e *LimitViolationError) Error() string {
	return fmt.Sprintf("solution exceeds position limits on axes %v", e.Axes)
}
