package clamp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itohio/rovctl/pkg/allocation/matrix"
	"github.com/itohio/rovctl/pkg/allocation/perftable"
	"github.com/itohio/rovctl/pkg/allocation/solve"
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

func requestedCommands(t *testing.T, alloc *matrix.Allocation, table *perftable.Table, w types.Movement) []solve.Command {
	t.Helper()
	forces := solve.Reverse(alloc, w)
	return solve.ForcesToCommands(alloc, table, forces)
}

func TestClampIdempotentUnderBudget(t *testing.T) {
	t.Parallel()
	alloc, table := sixThrusterAlloc(t)

	cmds := requestedCommands(t, alloc, table, types.Movement{Force: vecmath.New(1, 0, 0)})
	result := Clamp(alloc, table, cmds, 1000, 0.01, nil)

	require.InDelta(t, 1.0, result.Scale, 1e-6)
}

func TestClampEngagesUnderBudget(t *testing.T) {
	t.Parallel()
	alloc, table := sixThrusterAlloc(t)

	cmds := requestedCommands(t, alloc, table, types.Movement{
		Force:  vecmath.New(8, 8, 8),
		Torque: vecmath.New(2, 2, 2),
	})

	var total float32
	for _, c := range cmds {
		total += absf(c.Current)
	}
	require.Greater(t, total, float32(12))

	result := Clamp(alloc, table, cmds, 12, 0.05, nil)
	require.GreaterOrEqual(t, result.Scale, float32(0))
	require.LessOrEqual(t, result.Scale, float32(1))

	var clampedTotal float32
	for _, c := range result.Commands {
		clampedTotal += absf(c.Current)
	}
	require.LessOrEqual(t, clampedTotal, float32(12.05))
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
