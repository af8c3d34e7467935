package axismax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itohio/rovctl/pkg/allocation/matrix"
	"github.com/itohio/rovctl/pkg/allocation/perftable"
	"github.com/itohio/rovctl/pkg/allocation/types"
	"github.com/itohio/rovctl/pkg/allocation/vecmath"
)

const calibCSV = `force,current,pwm
-10,-10,1100
-5,-5,1300
0,0,1500
5,5,1700
10,10,1900
`

func sixThrusterAlloc(t *testing.T) (*matrix.Allocation, *perftable.Table) {
	t.Helper()

	mk := func(id string, px, py, pz, ox, oy, oz float32, dir types.SpinDirection) types.Thruster {
		th, err := types.NewThruster(types.ThrusterID(id), vecmath.New(px, py, pz), vecmath.New(ox, oy, oz), dir)
		require.NoError(t, err)
		return th
	}
	thrusters := []types.Thruster{
		mk("fl", 1, 1, 0, 1, 1, 0, types.Clockwise),
		mk("fr", 1, -1, 0, 1, -1, 0, types.CounterClockwise),
		mk("bl", -1, 1, 0, -1, 1, 0, types.CounterClockwise),
		mk("br", -1, -1, 0, -1, -1, 0, types.Clockwise),
		mk("vf", 1, 0, 0, 0, 0, 1, types.Clockwise),
		mk("vb", -1, 0, 0, 0, 0, 1, types.CounterClockwise),
	}
	alloc, err := matrix.Build(thrusters, vecmath.New(0, 0, 0))
	require.NoError(t, err)

	table, err := perftable.LoadCSV(strings.NewReader(calibCSV), 1500)
	require.NoError(t, err)

	return alloc, table
}

// TestComputeRespectsCurrentBudget checks that every axis maximum shrinks
// when the current budget shrinks, and that none exceeds the uncapped
// probe magnitude.
func TestComputeRespectsCurrentBudget(t *testing.T) {
	t.Parallel()
	alloc, table := sixThrusterAlloc(t)

	loose := Compute(alloc, table, 1000, 0.01)
	tight := Compute(alloc, table, 2, 0.01)

	for axis := 0; axis < 3; axis++ {
		require.LessOrEqual(t, tight.Force[axis], loose.Force[axis]+1e-6)
		require.LessOrEqual(t, loose.Force[axis], float32(guessMagnitude+1e-3))
	}
	for axis := 0; axis < 3; axis++ {
		require.LessOrEqual(t, tight.Torque[axis], loose.Torque[axis]+1e-6)
	}

	require.Greater(t, tight.Force[0], float32(0))
}

// TestComputeZeroBudgetYieldsZero confirms a zero current budget collapses
// every axis maximum to zero rather than returning a stale probe value.
func TestComputeZeroBudgetYieldsZero(t *testing.T) {
	t.Parallel()
	alloc, table := sixThrusterAlloc(t)

	out := Compute(alloc, table, 0, 0.01)
	for axis := 0; axis < 3; axis++ {
		require.InDelta(t, 0, out.Force[axis], 1e-3)
		require.InDelta(t, 0, out.Torque[axis], 1e-3)
	}
}
