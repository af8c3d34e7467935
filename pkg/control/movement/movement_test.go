package movement

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
0,0,1500
10,10,1900
`

func singleThrusterAlloc(t *testing.T) (*matrix.Allocation, *perftable.Table) {
	t.Helper()
	th, err := types.NewThruster("t0", vecmath.New(0, 0, 0), vecmath.New(1, 0, 0), types.Clockwise)
	require.NoError(t, err)
	alloc, err := matrix.Build([]types.Thruster{th}, vecmath.New(0, 0, 0))
	require.NoError(t, err)
	table, err := perftable.LoadCSV(strings.NewReader(calibCSV), 1500)
	require.NoError(t, err)
	return alloc, table
}

// TestFirstTickPassesThroughUnslewed confirms a thruster with no recorded
// last-tick force (vehicle arm / the very first control tick) receives the
// full commanded force immediately rather than ramping up from zero.
func TestFirstTickPassesThroughUnslewed(t *testing.T) {
	t.Parallel()
	alloc, table := singleThrusterAlloc(t)

	acc := &Accumulator{Allocation: alloc, Table: table, CapAmps: 1000, JerkLimit: 10}

	const dt = 0.02
	contributions := []types.Movement{{Force: vecmath.New(1, 0, 0)}}

	first := acc.Tick(contributions, dt)
	require.InDelta(t, 1.0, first.Outputs[0].ActualForce, 0.05)
}

// TestSlewLimitRampsToNewTarget confirms that once a last-tick force is on
// record, a large step change is ramped rather than applied instantly.
func TestSlewLimitRampsToNewTarget(t *testing.T) {
	t.Parallel()
	alloc, table := singleThrusterAlloc(t)

	acc := &Accumulator{Allocation: alloc, Table: table, CapAmps: 1000, JerkLimit: 10}

	const dt = 0.02
	hold := []types.Movement{{Force: vecmath.New(0, 0, 0)}}
	acc.Tick(hold, dt) // establish a last-tick force of 0

	step := []types.Movement{{Force: vecmath.New(1, 0, 0)}}
	first := acc.Tick(step, dt)
	require.LessOrEqual(t, first.Outputs[0].ActualForce, float32(0.21))

	var last float32
	for i := 0; i < 5; i++ {
		r := acc.Tick(step, dt)
		last = r.Outputs[0].ActualForce
	}
	require.InDelta(t, 1.0, last, 0.15)
}
