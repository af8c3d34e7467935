// Package types holds the shared data model for the allocation pipeline:
// thruster geometry, movement (force/torque) pairs, and the raw-signal
// range mapping. Adapted from the teacher's thruster/body types
// (pkg/core/math/control/kinematics/thrusters/types.go), simplified to the
// spec's direct per-thruster scalar-force model (no per-thruster torque
// axis or body mass/inertia: the allocation matrix already folds the
// moment arm into each thruster's column).
package types

import (
	"errors"
	"sort"

	"github.com/itohio/rovctl/pkg/allocation/vecmath"
)

var (
	ErrInvalidOrientation = errors.New("allocation/types: thruster orientation has zero magnitude")
	ErrDuplicateID        = errors.New("allocation/types: duplicate thruster id")
	ErrMismatchedInput    = errors.New("allocation/types: thruster and command counts do not match")
)

// SpinDirection is a thruster's propeller spin direction, used by the
// motor-performance table's LerpDirection interpolation mode to mirror the
// raw-signal mapping for counter-clockwise motors.
type SpinDirection int

const (
	Clockwise SpinDirection = iota
	CounterClockwise
)

// ThrusterID identifies a configured thruster; ids are sorted and
// deduplicated when matrix.Build builds an allocation.
type ThrusterID string

// Thruster is immutable per configuration load.
type Thruster struct {
	ID          ThrusterID
	Position    vecmath.Vector3D // meters, body frame
	Orientation vecmath.Vector3D // unit vector, body frame
	Direction   SpinDirection
}

// NewThruster normalizes Orientation, matching the builder invariant
// "‖orientation‖ = 1" in spec.md §3.
func NewThruster(id ThrusterID, position, orientation vecmath.Vector3D, dir SpinDirection) (Thruster, error) {
	if orientation.IsZero() {
		return Thruster{}, ErrInvalidOrientation
	}
	return Thruster{
		ID:          id,
		Position:    position,
		Orientation: orientation.Normal(),
		Direction:   dir,
	}, nil
}

// SortedUnique sorts thrusters by id and removes duplicates, keeping the
// first occurrence — mirrors the "ids are sorted and deduplicated" builder
// invariant.
func SortedUnique(thrusters []Thruster) []Thruster {
	sorted := make([]Thruster, len(thrusters))
	copy(sorted, thrusters)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	out := sorted[:0]
	var last ThrusterID
	first := true
	for _, th := range sorted {
		if !first && th.ID == last {
			continue
		}
		out = append(out, th)
		last = th.ID
		first = false
	}
	return out
}

// Movement is a force+torque pair (a "wrench" restricted to a 3+3
// representation rather than the packed 6-vector used internally by the
// solver).
type Movement struct {
	Force  vecmath.Vector3D
	Torque vecmath.Vector3D
}

func (m Movement) Add(o Movement) Movement {
	return Movement{Force: m.Force.Add(o.Force), Torque: m.Torque.Add(o.Torque)}
}

// Range is a monotone [Min, Max] bound used for clamping; the raw-signal
// {min, center, max} mapping is SignalRange.
type Range struct {
	Min float32
	Max float32
}

func (r Range) Clamp(v float32) float32 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// SignalRange is the {min, center, max} raw-signal mapping described in
// spec.md §3 for a single channel.
type SignalRange struct {
	Min    int
	Center int
	Max    int
}

// RawFromPercent maps a fraction p in [-1, 1] to a raw signal value,
// monotone through Min/Center/Max.
func (r SignalRange) RawFromPercent(p float32) int {
	if p > 0 {
		return r.Center + int(p*float32(r.Max-r.Center))
	}
	return r.Center + int(p*float32(r.Center-r.Min))
}

// PercentFromRaw is the inverse of RawFromPercent.
func (r SignalRange) PercentFromRaw(raw int) float32 {
	if raw >= r.Center {
		span := r.Max - r.Center
		if span == 0 {
			return 0
		}
		return float32(raw-r.Center) / float32(span)
	}
	span := r.Center - r.Min
	if span == 0 {
		return 0
	}
	return float32(raw-r.Center) / float32(span)
}
