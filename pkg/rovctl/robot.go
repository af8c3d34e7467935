// Package rovctl holds the vehicle's entity-component data model: the
// single wide Robot record and its per-channel Actuator records, per
// spec.md §3 ("Robot entity", "Actuator entity"). Adapted from
// original_source/common/src/bundles.rs's RobotBundle/ActuatorBundle ECS
// bundles into a plain Go struct pair — the teacher carries no comparable
// entity model of its own to generalize from, so the bundle field lists
// are the grounding source instead.
package rovctl

import (
	"github.com/itohio/rovctl/pkg/allocation/axismax"
	"github.com/itohio/rovctl/pkg/allocation/types"
	"github.com/itohio/rovctl/pkg/allocation/vecmath"
	"github.com/itohio/rovctl/pkg/control/servo"
	"github.com/itohio/rovctl/pkg/rovconfig"
)

// Robot is the vehicle's single wide entity record, created once at
// startup from the vehicle configuration and mutated in place by the tick
// loop's systems (RobotCoreBundle + RobotThrusterBundle + RobotSensorBundle
// + RobotPowerBundle, collapsed into one record per Design Note in spec.md
// §9: "wide-record + builder approach" is explicitly sanctioned). Sensor
// fields are nil until a pilot-input/sensor collaborator supplies them;
// the PID arming gate (spec.md §4.6) treats a nil sensor the same as "not
// present" and skips that axis.
type Robot struct {
	Thrusters []types.Thruster
	Armed     bool

	TargetMovement       types.Movement
	ActualMovement       types.Movement
	MovementAxisMaximums axismax.AxisMaximums
	MovementCurrentCap   float32
	JerkLimit            float32

	MotorTargets map[servo.ServoID]float32

	DepthTarget       *float32
	OrientationTarget *vecmath.Quaternion
	DepthMeasurement  *float32
	Orientation       *vecmath.Quaternion
	MeasuredVoltage   *float32
	CurrentDraw       *float32
}

// NewRobot builds a Robot at its Disarmed initial state (spec.md §3:
// "initial Disarmed"), with no sensor readings yet attached.
func NewRobot(thrusters []types.Thruster, currentCap, jerkLimit float32) *Robot {
	return &Robot{
		Thrusters:          thrusters,
		MovementCurrentCap: currentCap,
		JerkLimit:          jerkLimit,
		MotorTargets:       make(map[servo.ServoID]float32),
	}
}

// Actuator is one physical channel's entity record: a thruster or a servo,
// never both, per spec.md §3's "Actuator entity" and
// original_source/common/src/bundles.rs's ActuatorBundle/ThrusterBundle/
// MotorBundle split.
type Actuator struct {
	Channel             rovconfig.Channel
	MotorSignal         float32 // fraction in [-1,1], or raw units per SignalType
	MotorRawSignalRange types.SignalRange

	ThrusterID  *types.ThrusterID
	TargetForce *float32
	ActualForce *float32
	CurrentDraw *float32

	ServoID   *servo.ServoID
	ServoMode *servo.Mode
	SlewRate  *float32
}
