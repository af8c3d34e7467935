// Package movement implements the movement accumulator (C7): sums the
// tick's movement contributions, solves and clamps them against the
// current budget, applies jerk/slew limiting, clamps again, and reports
// both the requested and realized wrench. Generalized from the
// ticker-driven target/current-state accumulation idiom in
// x/devices/motor/motor.go's controlLoop/update.
package movement

import (
	"github.com/chewxy/math32"

	"github.com/itohio/rovctl/pkg/allocation/clamp"
	"github.com/itohio/rovctl/pkg/allocation/matrix"
	"github.com/itohio/rovctl/pkg/allocation/perftable"
	"github.com/itohio/rovctl/pkg/allocation/solve"
	"github.com/itohio/rovctl/pkg/allocation/types"
)

// clampEpsilon is the non-extrapolating tolerance used for both clamp
// passes, per spec.md §4.7 step 4/6.
const clampEpsilon = 0.01

// ThrusterOutput is what gets written to the per-thruster world state each
// tick: target/actual force, current draw, and the raw signal to send to
// the PWM bridge.
type ThrusterOutput struct {
	ID          types.ThrusterID
	TargetForce float32
	ActualForce float32
	CurrentDraw float32
	RawSignal   float32
}

// Accumulator holds the per-tick pipeline state, including the previous
// tick's commanded forces for slew limiting.
type Accumulator struct {
	Allocation *matrix.Allocation
	Table      *perftable.Table
	CapAmps    float32
	JerkLimit  float32 // newtons per second

	lastForces map[types.ThrusterID]float32

	OnClampIterationCapExceeded func()
}

// Result is the per-tick accumulator output.
type Result struct {
	TargetMovement types.Movement
	ActualMovement types.Movement
	Outputs        []ThrusterOutput
}

// Tick runs one pass of the C7 pipeline: reverse solve, clamp, slew limit,
// clamp, forward solve for the report.
func (acc *Accumulator) Tick(contributions []types.Movement, dt float32) Result {
	var total types.Movement
	for _, c := range contributions {
		total = total.Add(c)
	}

	forces0 := solve.Reverse(acc.Allocation, total)
	commands0 := solve.ForcesToCommands(acc.Allocation, acc.Table, forces0)
	commands1 := clamp.Clamp(acc.Allocation, acc.Table, commands0, acc.CapAmps, clampEpsilon, acc.OnClampIterationCapExceeded).Commands

	slewed := acc.applySlew(commands1, dt)

	result2 := clamp.Clamp(acc.Allocation, acc.Table, slewed, acc.CapAmps, clampEpsilon, acc.OnClampIterationCapExceeded)
	commands2 := result2.Commands

	forcesFromCommands2 := make(map[types.ThrusterID]float32, len(commands2))
	outputs := make([]ThrusterOutput, len(commands2))
	for i, cmd := range commands2 {
		forcesFromCommands2[cmd.ID] = cmd.Force
		outputs[i] = ThrusterOutput{
			ID:          cmd.ID,
			TargetForce: forces0[cmd.ID],
			CurrentDraw: cmd.Current,
			RawSignal:   cmd.RawSignal,
		}
	}

	actual := solve.Forward(acc.Allocation, forcesFromCommands2)
	for i := range outputs {
		outputs[i].ActualForce = forcesFromCommands2[outputs[i].ID]
	}

	acc.storeLast(commands2)

	return Result{
		TargetMovement: solve.Forward(acc.Allocation, forces0),
		ActualMovement: actual,
		Outputs:        outputs,
	}
}

// applySlew clamps |Δforce| to jerk_limit*dt per thruster, re-looking-up
// the command for the clamped force, per spec.md §4.7 step 5.
func (acc *Accumulator) applySlew(commands []solve.Command, dt float32) []solve.Command {
	if acc.JerkLimit <= 0 {
		return commands
	}
	maxDelta := acc.JerkLimit * dt

	dirOf := make(map[types.ThrusterID]types.SpinDirection, len(acc.Allocation.Thrusters))
	for _, th := range acc.Allocation.Thrusters {
		dirOf[th.ID] = th.Direction
	}

	out := make([]solve.Command, len(commands))
	for i, cmd := range commands {
		last, ok := acc.lastForces[cmd.ID]
		if !ok {
			// No last-tick force on record (vehicle arm / first control
			// tick for this thruster): the commanded force passes through
			// unclamped, matching the original source's fall-through to
			// the unslewed command when last_movement has no entry.
			out[i] = cmd
			continue
		}
		delta := cmd.Force - last
		if math32.Abs(delta) > maxDelta {
			if delta > 0 {
				delta = maxDelta
			} else {
				delta = -maxDelta
			}
			target := last + delta
			rec := acc.Table.LookupForDirection(target, dirOf[cmd.ID], false)
			out[i] = solve.Command{ID: cmd.ID, Force: rec.Force, Current: rec.Current, RawSignal: rec.RawSignal}
			continue
		}
		out[i] = cmd
	}
	return out
}

func (acc *Accumulator) storeLast(commands []solve.Command) {
	if acc.lastForces == nil {
		acc.lastForces = make(map[types.ThrusterID]float32, len(commands))
	}
	for _, cmd := range commands {
		acc.lastForces[cmd.ID] = cmd.Force
	}
}
