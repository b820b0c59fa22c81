package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// JacobianWorld builds the 6xN geometric Jacobian of the chain at q,
// expressed in base coordinates. Rows 0-2 are linear velocity, rows 3-5
// angular. Column i comes from joint i's axis direction z_i and position p_i:
// linear part z_i x (p_end - p_i), angular part z_i. The end point is the last
// joint frame origin, without the flange.
func JacobianWorld(chain *OffsetChain, q []float64) (*mat.Dense, error) {
	partials, err := chain.CumulativeTransforms(q)
	if err != nil {
		return nil, err
	}
	n := len(partials)
	end := partials[n-1].Col(3).Vec3()

	jac := mat.NewDense(6, n, nil)
	for i, partial := range partials {
		axis := chain.geom.Axes[i].Rotation.Normalize()
		z := partial.Mat3().Mul3x1(axis)
		p := partial.Col(3).Vec3()
		lin := z.Cross(end.Sub(p))
		for r := 0; r < 3; r++ {
			jac.Set(r, i, lin[r])
			jac.Set(r+3, i, z[r])
		}
	}
	return jac, nil
}

// JacobianEndEffector rotates a world Jacobian into the tool frame of the
// pose with rotation r: both the linear and angular blocks are premultiplied
// by r transposed.
func JacobianEndEffector(jw *mat.Dense, r mgl64.Mat3) *mat.Dense {
	_, n := jw.Dims()
	rt := r.Transpose()
	block := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := rt.At(i, j)
			block.Set(i, j, v)
			block.Set(i+3, j+3, v)
		}
	}
	je := mat.NewDense(6, n, nil)
	je.Mul(block, jw)
	return je
}

// pseudoInverse computes the Moore-Penrose pseudoinverse of m via thin SVD.
// Singular values below a tolerance relative to the largest one are treated
// as zero, so the result stays bounded near singular configurations.
func pseudoInverse(m *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, errSVDFailed
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	tol := 0.0
	for _, s := range values {
		tol = math.Max(tol, s)
	}
	tol *= 1e-12

	// V · S⁺ · Uᵀ
	sInv := make([]float64, len(values))
	for i, s := range values {
		if s > tol {
			sInv[i] = 1 / s
		}
	}
	rows, cols := m.Dims()
	pinv := mat.NewDense(cols, rows, nil)
	pinv.Product(&v, mat.NewDiagDense(len(sInv), sInv), u.T())
	return pinv, nil
}
