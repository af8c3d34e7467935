package rovconfig

import (
	"fmt"

	"github.com/itohio/rovctl/pkg/allocation/types"
	"github.com/itohio/rovctl/pkg/allocation/vecmath"
	"github.com/itohio/rovctl/pkg/roverrors"
)

// SeedMotor is one corner thruster's position/orientation, mirrored across
// body-symmetry planes to derive the rest of a named frame, generalizing
// original_source/robot/src/config.rs's X3dDefinition/BlueRovDefinition/
// HeavyDefinition seed-motor + mirror construction. The original's exact
// per-id mirror matrices are not present in this retrieval pack; the signs
// below reconstruct the standard vectored-8/BlueROV2 layouts from the
// seed's corner position and thrust orientation.
type SeedMotor struct {
	Position    vecmath.Vector3D
	Orientation vecmath.Vector3D
}

// mirrorSigns lists the (sx, sy, sz) reflections applied to a seed motor to
// produce one preset's full thruster set, paired with the resulting
// spin direction (alternating to cancel net reaction torque between
// diagonal pairs).
type mirrorSigns struct {
	sx, sy, sz float32
	dir        types.SpinDirection
}

var x3dMirrors = []mirrorSigns{
	{1, 1, 1, types.Clockwise},
	{-1, 1, 1, types.CounterClockwise},
	{1, -1, 1, types.CounterClockwise},
	{-1, -1, 1, types.Clockwise},
	{1, 1, -1, types.CounterClockwise},
	{-1, 1, -1, types.Clockwise},
	{1, -1, -1, types.Clockwise},
	{-1, -1, -1, types.CounterClockwise},
}

func mirror(v vecmath.Vector3D, sx, sy, sz float32) vecmath.Vector3D {
	return vecmath.New(v.X()*sx, v.Y()*sy, v.Z()*sz)
}

// buildX3d derives the canonical 8-thruster vectored-X frame from a single
// seed corner motor, id'd motor0..motor7 in mirror-table order.
func buildX3d(seed SeedMotor, channels map[string]Channel) ([]types.Thruster, error) {
	return buildMirrored(seed, x3dMirrors, "motor", channels)
}

// lateralMirrors and verticalMirrors: 4 lateral thrusters (vectored, yaw+surge+sway) mirrored
// in X/Y from the lateral seed, plus 2 vertical thrusters mirrored in Y
// from the vertical seed (heave+roll+pitch), matching BlueROV2's 6-thruster
// layout.
var lateralMirrors = []mirrorSigns{
	{1, 1, 1, types.Clockwise},
	{-1, 1, 1, types.CounterClockwise},
	{1, -1, 1, types.CounterClockwise},
	{-1, -1, 1, types.Clockwise},
}

var verticalMirrors = []mirrorSigns{
	{1, 1, 1, types.Clockwise},
	{1, -1, 1, types.CounterClockwise},
}

// heavyVerticalMirrors: BlueROV2 Heavy adds front/back vertical pairs (4
// vertical thrusters instead of 2).
var heavyVerticalMirrors = []mirrorSigns{
	{1, 1, 1, types.Clockwise},
	{1, -1, 1, types.CounterClockwise},
	{-1, 1, 1, types.CounterClockwise},
	{-1, -1, 1, types.Clockwise},
}

func buildBlueRov(lateralSeed, verticalSeed SeedMotor, channels map[string]Channel) ([]types.Thruster, error) {
	lateral, err := buildMirrored(lateralSeed, lateralMirrors, "lateral", channels)
	if err != nil {
		return nil, err
	}
	vertical, err := buildMirrored(verticalSeed, verticalMirrors, "vertical", channels)
	if err != nil {
		return nil, err
	}
	return append(lateral, vertical...), nil
}

func buildHeavy(lateralSeed, verticalSeed SeedMotor, channels map[string]Channel) ([]types.Thruster, error) {
	lateral, err := buildMirrored(lateralSeed, lateralMirrors, "lateral", channels)
	if err != nil {
		return nil, err
	}
	vertical, err := buildMirrored(verticalSeed, heavyVerticalMirrors, "vertical", channels)
	if err != nil {
		return nil, err
	}
	return append(lateral, vertical...), nil
}

func buildMirrored(seed SeedMotor, mirrors []mirrorSigns, prefix string, channels map[string]Channel) ([]types.Thruster, error) {
	out := make([]types.Thruster, 0, len(mirrors))
	for i, m := range mirrors {
		id := types.ThrusterID(idName(prefix, i))
		if _, ok := channels[string(id)]; !ok {
			return nil, fmt.Errorf("%w: preset motor id %s has no channel mapping in motors", roverrors.ErrGeometry, id)
		}
		th, err := types.NewThruster(id, mirror(seed.Position, m.sx, m.sy, m.sz), mirror(seed.Orientation, m.sx, m.sy, m.sz), m.dir)
		if err != nil {
			return nil, err
		}
		out = append(out, th)
	}
	return out, nil
}

func idName(prefix string, i int) string {
	digits := "0123456789"
	return prefix + string(digits[i])
}
