// Package solve implements the forward/reverse thrust solver (C3),
// generalized from the teacher's Forward/Inverse kinematics pair
// (pkg/core/math/control/kinematics/thrusters/{inverse.go} and
// x/math/control/kinematics/thrusters/forward.go) to the spec's direct
// wrench <-> per-thruster-force mapping (no body mass/inertia term: the
// moment arm is already folded into the allocation matrix's columns).
package solve

import (
	"github.com/itohio/rovctl/pkg/allocation/matrix"
	"github.com/itohio/rovctl/pkg/allocation/perftable"
	"github.com/itohio/rovctl/pkg/allocation/types"
)

// Command is a per-thruster actuation result: the assigned force and its
// looked-up current draw and raw signal.
type Command struct {
	ID        types.ThrusterID
	Force     float32
	Current   float32
	RawSignal float32
}

// Forward maps per-thruster forces to the vehicle-space wrench the vehicle
// would experience. Missing ids in forces count as zero force.
func Forward(a *matrix.Allocation, forces map[types.ThrusterID]float32) types.Movement {
	f := make([]float32, len(a.Thrusters))
	for i, th := range a.Thrusters {
		f[i] = forces[th.ID]
	}
	w := a.M.MulVec(f)
	return movementFromWrench(w)
}

// Reverse computes the minimum-norm least-squares per-thruster forces for a
// desired wrench: f = M+ * w.
func Reverse(a *matrix.Allocation, desired types.Movement) map[types.ThrusterID]float32 {
	w := wrenchFromMovement(desired)
	f := a.MPinv.MulVec(w)
	out := make(map[types.ThrusterID]float32, len(a.Thrusters))
	for i, th := range a.Thrusters {
		out[th.ID] = f[i]
	}
	return out
}

// ForcesToCommands looks up the motor-performance record for each
// thruster's assigned force, using LerpDirection mirroring for
// counter-clockwise thrusters per spec.md §4.3.
func ForcesToCommands(a *matrix.Allocation, table *perftable.Table, forces map[types.ThrusterID]float32) []Command {
	cmds := make([]Command, len(a.Thrusters))
	for i, th := range a.Thrusters {
		force := forces[th.ID]
		rec := table.LookupForDirection(force, th.Direction, false)
		cmds[i] = Command{ID: th.ID, Force: rec.Force, Current: rec.Current, RawSignal: rec.RawSignal}
	}
	return cmds
}

func wrenchFromMovement(m types.Movement) []float32 {
	return []float32{m.Force[0], m.Force[1], m.Force[2], m.Torque[0], m.Torque[1], m.Torque[2]}
}

func movementFromWrench(w []float32) types.Movement {
	return types.Movement{
		Force:  [3]float32{w[0], w[1], w[2]},
		Torque: [3]float32{w[3], w[4], w[5]},
	}
}
