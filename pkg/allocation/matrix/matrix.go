// Package matrix builds the thrust-allocation matrix and its pseudo-inverse
// (C2), generalized from the teacher's allocation-matrix construction in
// x/math/control/kinematics/thrusters/{helpers.go,inverse.go} to the spec's
// direct per-thruster scalar-force model.
package matrix

import (
	"github.com/itohio/rovctl/pkg/allocation/matops"
	"github.com/itohio/rovctl/pkg/allocation/types"
	"github.com/itohio/rovctl/pkg/allocation/vecmath"
	"github.com/itohio/rovctl/pkg/roverrors"
)

// dampingLambda is the Levenberg-Marquardt regularization used when the
// Jacobi SVD pseudo-inverse reports a singular matrix.
const dampingLambda = 1e-3

// Allocation holds the rebuilt-on-config-change allocation matrix M, its
// pseudo-inverse M+, and the sorted/deduplicated thruster list the columns
// correspond to.
type Allocation struct {
	Thrusters []types.Thruster
	M         matops.Matrix // 6 x N
	MPinv     matops.Matrix // N x 6
}

// Build constructs M from thruster geometry and a center of mass, then
// computes its Moore-Penrose pseudo-inverse (falling back to damped least
// squares on a singular M), per spec.md §4.2.
func Build(thrusters []types.Thruster, com vecmath.Vector3D) (*Allocation, error) {
	sorted := types.SortedUnique(thrusters)
	n := len(sorted)
	if n == 0 {
		return nil, roverrors.ErrGeometry
	}

	m := matops.New(6, n)
	for i, th := range sorted {
		o := th.Orientation
		arm := th.Position.Sub(com)
		moment := arm.Cross(o)
		for axis := 0; axis < 3; axis++ {
			m[axis][i] = o[axis]
			m[axis+3][i] = moment[axis]
		}
	}

	pinv, err := matops.PseudoInverse(m, matops.SingularityEpsilon)
	if err != nil {
		pinv, err = matops.DampedLeastSquares(m, dampingLambda)
		if err != nil {
			return nil, roverrors.ErrGeometry
		}
	}

	return &Allocation{Thrusters: sorted, M: m, MPinv: pinv}, nil
}
