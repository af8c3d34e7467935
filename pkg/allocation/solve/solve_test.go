package solve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itohio/rovctl/pkg/allocation/matrix"
	"github.com/itohio/rovctl/pkg/allocation/types"
	"github.com/itohio/rovctl/pkg/allocation/vecmath"
)

// fourThrusterX builds a symmetric 4-thruster X-configuration, vectored in
// the horizontal plane, a minimal stand-in for the X3d geometry used in the
// allocation round-trip scenario.
func fourThrusterX(t *testing.T) *matrix.Allocation {
	t.Helper()

	mk := func(id string, px, py, ox, oy float32, dir types.SpinDirection) types.Thruster {
		th, err := types.NewThruster(types.ThrusterID(id), vecmath.New(px, py, 0), vecmath.New(ox, oy, 0), dir)
		require.NoError(t, err)
		return th
	}

	thrusters := []types.Thruster{
		mk("fl", 1, 1, 1, -1, types.Clockwise),
		mk("fr", 1, -1, 1, 1, types.CounterClockwise),
		mk("bl", -1, 1, 1, 1, types.CounterClockwise),
		mk("br", -1, -1, 1, -1, types.Clockwise),
	}

	alloc, err := matrix.Build(thrusters, vecmath.New(0, 0, 0))
	require.NoError(t, err)
	return alloc
}

func TestAllocationRoundTrip(t *testing.T) {
	t.Parallel()

	alloc := fourThrusterX(t)

	want := types.Movement{
		Force:  vecmath.New(-0.6, 0.5, 0),
		Torque: vecmath.New(0, 0, 0.4),
	}

	forces := Reverse(alloc, want)
	got := Forward(alloc, forces)

	diffForce := got.Force.Sub(want.Force)
	diffTorque := got.Torque.Sub(want.Torque)
	require.Less(t, diffForce.SumSqr(), float32(1e-4))
	require.Less(t, diffTorque.SumSqr(), float32(1e-4))
}
