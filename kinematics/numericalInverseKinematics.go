package kinematics

import (
	"context"
	"math"
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/artebotics/armkin/config"
	"github.com/artebotics/armkin/spatialmath"
)

// Method selects the iteration rule of the numerical inverse solver.
type Method int

// The supported iteration rules.
const (
	// NewtonRaphson updates with the pseudoinverse of the Jacobian applied
	// to the raw pose error.
	NewtonRaphson Method = iota
	// GaussNewton updates with the pseudoinverse of the weighted normal
	// matrix applied to the weighted gradient.
	GaussNewton
)

const (
	// DefaultIterationLimit caps the iterations of a single descent.
	DefaultIterationLimit = 30
	// DefaultSearchLimit caps how many reseeded descents a solve attempts.
	DefaultSearchLimit = 100
	// DefaultTolerance is the residual below which a solve is converged.
	DefaultTolerance = 1e-6
	// DefaultDOFWeight weights each task-space degree of freedom in the
	// residual.
	DefaultDOFWeight = 0.15

	// angleAxisThreshold is the axis-vector norm below which the
	// orientation error is treated as aligned or half-turned.
	angleAxisThreshold = 1e-6

	// seedPerturbation nudges one joint of the seed per early restart.
	seedPerturbation = 0.05
)

// Solution is the outcome of an inverse solve.
type Solution struct {
	// Q holds the joint positions in radians, bounded into (-pi, pi].
	Q []float64
	// Converged reports whether the residual met the tolerance.
	Converged bool
	// Iterations counts the descent iterations taken across all searches,
	// including those of the successful descent.
	Iterations int
	// Searches counts the descents attempted, including the successful one.
	Searches int
	// Residual is the weighted squared pose error at Q.
	Residual float64
}

// NumericalInverseSolver finds joint positions reaching a target pose by
// iterative descent on the weighted pose error of an offset chain. A solver
// is safe for concurrent use; each Solve call keeps its own state.
type NumericalInverseSolver struct {
	geom           *config.RobotGeometry
	chain          *OffsetChain
	method         Method
	iterationLimit int
	searchLimit    int
	tolerance      float64
	weights        []float64
	logger         golog.Logger
}

// SolverOptions tune a NumericalInverseSolver. Zero values select the
// defaults.
type SolverOptions struct {
	Method         Method
	IterationLimit int
	SearchLimit    int
	Tolerance      float64
	// Weights holds one weight per task-space degree of freedom; it must
	// have six entries when set.
	Weights []float64
}

// NewNumericalInverseSolver builds a numerical solver over the offset chain
// of geom.
func NewNumericalInverseSolver(
	geom *config.RobotGeometry,
	logger golog.Logger,
	opts SolverOptions,
) *NumericalInverseSolver {
	solver := &NumericalInverseSolver{
		geom:           geom,
		chain:          NewOffsetChain(geom),
		method:         opts.Method,
		iterationLimit: opts.IterationLimit,
		searchLimit:    opts.SearchLimit,
		tolerance:      opts.Tolerance,
		weights:        opts.Weights,
		logger:         logger,
	}
	if solver.iterationLimit <= 0 {
		solver.iterationLimit = DefaultIterationLimit
	}
	if solver.searchLimit <= 0 {
		solver.searchLimit = DefaultSearchLimit
	}
	if solver.tolerance <= 0 {
		solver.tolerance = DefaultTolerance
	}
	if len(solver.weights) == 0 {
		solver.weights = make([]float64, 6)
		for i := range solver.weights {
			solver.weights[i] = DefaultDOFWeight
		}
	}
	return solver
}

// PoseError returns the six-vector task-space error from current to desired:
// three translation components followed by an angle-axis orientation error.
// Antiparallel orientations, where the axis vector vanishes with a negative
// trace, fall back to a half-turn estimate from the rotation diagonal.
func PoseError(desired, current mgl64.Mat4) []float64 {
	e := make([]float64, 6)
	for i := 0; i < 3; i++ {
		e[i] = desired.At(i, 3) - current.At(i, 3)
	}

	r := desired.Mat3().Mul3(current.Mat3().Transpose())
	li := mgl64.Vec3{
		r.At(2, 1) - r.At(1, 2),
		r.At(0, 2) - r.At(2, 0),
		r.At(1, 0) - r.At(0, 1),
	}
	ln := li.Len()
	switch {
	case ln < angleAxisThreshold && r.Trace() > 0:
		// aligned, no angular error
	case ln < angleAxisThreshold:
		e[3] = math.Pi / 2 * (r.At(0, 0) + 1)
		e[4] = math.Pi / 2 * (r.At(1, 1) + 1)
		e[5] = math.Pi / 2 * (r.At(2, 2) + 1)
	default:
		a := li.Mul(math.Atan2(ln, r.Trace()-1) / ln)
		e[3], e[4], e[5] = a.X(), a.Y(), a.Z()
	}
	return e
}

// residual is the weighted squared norm 0.5 * e' W e of a pose error.
func residual(e, weights []float64) float64 {
	sum := 0.0
	for i, v := range e {
		sum += weights[i] * v * v
	}
	return 0.5 * sum
}

// Solve runs reseeded descents from seed until one converges on target. The
// first descent starts at the seed itself, the next ones at single-joint
// perturbations of it, and later ones at uniform random positions within the
// axis limits. On failure the returned error is a *ConvergenceError carrying
// the best iterate found.
func (s *NumericalInverseSolver) Solve(
	ctx context.Context,
	target mgl64.Mat4,
	seed []float64,
) (*Solution, error) {
	n := s.chain.DoF()
	if len(seed) != n {
		return nil, ErrJointCountMismatch
	}

	//nolint:gosec // reproducible restarts, not cryptography
	rnd := rand.New(rand.NewSource(1))
	bestResidual := math.Inf(1)
	bestQ := append([]float64{}, seed...)
	totalIterations := 0

	for search := 0; search < s.searchLimit; search++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q := s.restartSeed(search, seed, rnd)
		for iter := 1; iter <= s.iterationLimit; iter++ {
			totalIterations++
			current, err := s.chain.Transform(q)
			if err != nil {
				return nil, err
			}
			e := PoseError(target, current)
			res := residual(e, s.weights)
			if res < bestResidual {
				bestResidual = res
				bestQ = append([]float64{}, q...)
			}
			if res < s.tolerance {
				return &Solution{
					Q:          spatialmath.BoundAngles(q),
					Converged:  true,
					Iterations: totalIterations,
					Searches:   search + 1,
					Residual:   res,
				}, nil
			}
			dq, err := s.step(q, e)
			if err != nil {
				s.logger.Debugw("descent step failed, reseeding", "search", search, "error", err)
				break
			}
			for i := range q {
				q[i] += dq[i]
			}
		}
	}

	return nil, &ConvergenceError{
		LastQ:      spatialmath.BoundAngles(bestQ),
		Iterations: totalIterations,
		Searches:   s.searchLimit,
		Residual:   bestResidual,
	}
}

func (s *NumericalInverseSolver) step(q, e []float64) ([]float64, error) {
	jw, err := JacobianWorld(s.chain, q)
	if err != nil {
		return nil, err
	}
	n := len(q)
	ev := mat.NewVecDense(len(e), e)

	var update mat.VecDense
	switch s.method {
	case GaussNewton:
		w := mat.NewDiagDense(len(s.weights), s.weights)
		var jtw, a mat.Dense
		jtw.Mul(jw.T(), w)
		a.Mul(&jtw, jw)
		aInv, err := pseudoInverse(&a)
		if err != nil {
			return nil, err
		}
		var g mat.VecDense
		g.MulVec(&jtw, ev)
		update.MulVec(aInv, &g)
	default:
		pinv, err := pseudoInverse(jw)
		if err != nil {
			return nil, err
		}
		update.MulVec(pinv, ev)
	}

	dq := make([]float64, n)
	for i := range dq {
		dq[i] = update.AtVec(i)
	}
	return dq, nil
}

// restartSeed produces the starting point of one descent. Search zero uses
// the caller's seed, searches 1..2n perturb joint (search-1)/2 up or down by
// seedPerturbation, and everything after draws uniformly within the limits.
func (s *NumericalInverseSolver) restartSeed(search int, seed []float64, rnd *rand.Rand) []float64 {
	q := append([]float64{}, seed...)
	switch {
	case search == 0:
	case search <= 2*len(seed):
		joint := (search - 1) / 2
		if search%2 == 1 {
			q[joint] += seedPerturbation
		} else {
			q[joint] -= seedPerturbation
		}
	default:
		for i, axis := range s.geom.Axes {
			q[i] = axis.Limits.Min + rnd.Float64()*(axis.Limits.Max-axis.Limits.Min)
		}
	}
	return q
}

// SolveLeastSquares finds joint positions for target by quasi-Newton
// minimization of the Frobenius distance between the relative transform
// inv(target) * fk(q) and the identity. It trades the per-step Jacobian for
// gradient estimation by finite differences, which makes it robust near
// Jacobian singularities at the cost of speed.
func (s *NumericalInverseSolver) SolveLeastSquares(
	ctx context.Context,
	target mgl64.Mat4,
	seed []float64,
) (*Solution, error) {
	if len(seed) != s.chain.DoF() {
		return nil, ErrJointCountMismatch
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	targetInv := target.Inv()
	distance := func(x []float64) float64 {
		m, err := s.chain.Transform(x)
		if err != nil {
			return math.Inf(1)
		}
		d := targetInv.Mul4(m)
		sum := 0.0
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				v := d.At(i, j)
				if i == j {
					v--
				}
				sum += v * v
			}
		}
		return sum
	}
	problem := optimize.Problem{
		Func: distance,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, distance, x, nil)
		},
	}

	x0 := append([]float64{}, seed...)
	result, err := optimize.Minimize(problem, x0, nil, &optimize.BFGS{})
	if err != nil && result == nil {
		return nil, err
	}
	res := result.F
	if res >= s.tolerance {
		return nil, &ConvergenceError{
			LastQ:      spatialmath.BoundAngles(result.X),
			Iterations: result.Stats.MajorIterations,
			Searches:   1,
			Residual:   res,
		}
	}
	return &Solution{
		Q:          spatialmath.BoundAngles(result.X),
		Converged:  true,
		Iterations: result.Stats.MajorIterations,
		Searches:   1,
		Residual:   res,
	}, nil
}
