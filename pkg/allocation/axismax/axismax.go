// Package axismax implements the axis-maximum solver (C5): the maximum
// achievable force/torque along each body axis under the current cap.
// Reuses the forward/reverse solver and current clamp directly, mirroring
// the teacher's reuse of Forward/Backward for solution verification in
// x/math/control/kinematics/thrusters/model.go.
package axismax

import (
	"github.com/chewxy/math32"

	"github.com/itohio/rovctl/pkg/allocation/clamp"
	"github.com/itohio/rovctl/pkg/allocation/matrix"
	"github.com/itohio/rovctl/pkg/allocation/perftable"
	"github.com/itohio/rovctl/pkg/allocation/solve"
	"github.com/itohio/rovctl/pkg/allocation/types"
	"github.com/itohio/rovctl/pkg/allocation/vecmath"
)

// guessMagnitude is the probe wrench magnitude used before clamping, per
// spec.md §4.5.
const guessMagnitude = 15

// verifyTolerance bounds the forward-solve projection check.
const verifyTolerance = 1e-3

// AxisMaximums holds the achievable maximum along each of the six body
// axes: Fx, Fy, Fz, Tx, Ty, Tz.
type AxisMaximums struct {
	Force  vecmath.Vector3D // Fx/Fy/Fz maxima
	Torque vecmath.Vector3D // Tx/Ty/Tz maxima
}

// Compute solves each unit axis in turn and records G*s as that axis's
// maximum, or zero if the allocator cannot produce pure-axis motion.
func Compute(a *matrix.Allocation, table *perftable.Table, capAmps, epsilon float32) AxisMaximums {
	var out AxisMaximums
	axes := []struct {
		set func(v float32)
		idx int // 0-2 force, 3-5 torque
	}{
		{func(v float32) { out.Force[0] = v }, 0},
		{func(v float32) { out.Force[1] = v }, 1},
		{func(v float32) { out.Force[2] = v }, 2},
		{func(v float32) { out.Torque[0] = v }, 3},
		{func(v float32) { out.Torque[1] = v }, 4},
		{func(v float32) { out.Torque[2] = v }, 5},
	}

	for _, ax := range axes {
		ax.set(axisMax(a, table, capAmps, epsilon, ax.idx))
	}
	return out
}

func axisMax(a *matrix.Allocation, table *perftable.Table, capAmps, epsilon float32, axis int) float32 {
	desired := unitWrench(axis, guessMagnitude)

	forces := solve.Reverse(a, desired)
	achieved := solve.Forward(a, forces)
	if !projectsOnto(achieved, axis, guessMagnitude) {
		return 0
	}

	cmds := solve.ForcesToCommands(a, table, forces)
	result := clamp.Clamp(a, table, cmds, capAmps, epsilon, nil)
	return guessMagnitude * result.Scale
}

func unitWrench(axis int, magnitude float32) types.Movement {
	var m types.Movement
	if axis < 3 {
		m.Force[axis] = magnitude
	} else {
		m.Torque[axis-3] = magnitude
	}
	return m
}

func projectsOnto(m types.Movement, axis int, expected float32) bool {
	var v float32
	if axis < 3 {
		v = m.Force[axis]
	} else {
		v = m.Torque[axis-3]
	}
	return math32.Abs(v-expected) <= verifyTolerance
}
