// Package clamp implements the current clamp (C4): a one-dimensional
// monotone bisection search for the largest scalar s in [0,1] that keeps
// total commanded current within an amperage budget. New code — the
// teacher has no analogous bisection search — grounded on the
// tolerance/iteration-cap idiom used throughout pkg/allocation/matops and
// the verifySolution/closeWrench tolerance checks in the teacher's
// allocation inverse solver.
package clamp

import (
	"github.com/chewxy/math32"

	"github.com/itohio/rovctl/pkg/allocation/matrix"
	"github.com/itohio/rovctl/pkg/allocation/perftable"
	"github.com/itohio/rovctl/pkg/allocation/solve"
	"github.com/itohio/rovctl/pkg/allocation/types"
)

// MaxIterations bounds the bisection search (spec.md §4.4: "Cap iterations
// at 15").
const MaxIterations = 15

// Result is the scalar found and the commands realized at that scale.
type Result struct {
	Scale    float32
	Commands []solve.Command
}

// Clamp finds the largest s such that scaling every commanded force by s
// keeps total current within cap, per spec.md §4.4's bisection-with-
// bound-learning algorithm.
func Clamp(a *matrix.Allocation, table *perftable.Table, requested []solve.Command, capAmps float32, epsilon float32, onIterationCapExceeded func()) Result {
	dirOf := directionIndex(a)

	scaleCommands := func(s float32) ([]solve.Command, float32, float32) {
		cmds := make([]solve.Command, len(requested))
		var total float32
		var worstGap float32
		for i, req := range requested {
			target := req.Force * s
			rec := table.LookupForDirection(target, dirOf[req.ID], false)
			cmds[i] = solve.Command{ID: req.ID, Force: rec.Force, Current: rec.Current, RawSignal: rec.RawSignal}
			total += math32.Abs(rec.Current)
			gap := math32.Abs(target - rec.Force)
			if gap > worstGap {
				worstGap = gap
			}
		}
		return cmds, total, worstGap
	}

	unclamped, unclampedTotal, _ := scaleCommands(1)
	if unclampedTotal <= capAmps {
		return Result{Scale: 1, Commands: unclamped}
	}
	if unclampedTotal == 0 {
		return Result{Scale: 0, Commands: unclamped}
	}

	lo, hi := float32(0), float32(-1) // hi = -1 sentinel for +Inf
	s := float32(1)
	iCap := capAmps

	var lastCmds []solve.Command
	for iter := 0; iter < MaxIterations; iter++ {
		cmds, total, worstGap := scaleCommands(s)
		lastCmds = cmds

		if worstGap > epsilon {
			// Saturation: learn a tighter cap from the realized current at
			// this scale, and shrink toward the realized/requested ratio
			// for the worst motor.
			hi = s
			var worstRealizedForce, worstRequestedForce float32
			var maxGap float32
			for i, req := range requested {
				target := req.Force * s
				gap := math32.Abs(target - cmds[i].Force)
				if gap > maxGap {
					maxGap = gap
					worstRequestedForce = target
					worstRealizedForce = cmds[i].Force
				}
			}
			if worstRequestedForce != 0 {
				s = s * (worstRealizedForce / worstRequestedForce)
			}
			if total < iCap {
				iCap = total
			}
			continue
		}

		if math32.Abs(total-iCap) < epsilon {
			return Result{Scale: s, Commands: cmds}
		}

		if total >= iCap {
			hi = s
		} else {
			lo = s
		}

		if hi < 0 {
			if total == 0 {
				break
			}
			s = s * iCap / total
		} else {
			_, loTotal, _ := scaleCommands(lo)
			_, hiTotal, _ := scaleCommands(hi)
			if hiTotal == loTotal {
				s = lo
			} else {
				s = lo + (hi-lo)*(iCap-loTotal)/(hiTotal-loTotal)
			}
		}
	}

	if onIterationCapExceeded != nil {
		onIterationCapExceeded()
	}
	if lastCmds == nil {
		lastCmds, _, _ = scaleCommands(s)
	}
	return Result{Scale: s, Commands: lastCmds}
}

func directionIndex(a *matrix.Allocation) map[types.ThrusterID]types.SpinDirection {
	idx := make(map[types.ThrusterID]types.SpinDirection, len(a.Thrusters))
	for _, th := range a.Thrusters {
		idx[th.ID] = th.Direction
	}
	return idx
}
