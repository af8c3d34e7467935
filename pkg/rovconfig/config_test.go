package rovconfig

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itohio/rovctl/pkg/allocation/types"
)

const x3dYAML = `
name: test-rov
port: 9000
tick_hz: 100
motor_amperage_budget: 30
jerk_limit: 5
motor_config:
  variant: x3d
  seed:
    position: [0.3, 0.3, 0.1]
    orientation: [0.57735, 0.57735, 0.57735]
  motors:
    motor0: {bus: pwm, channel: 0}
    motor1: {bus: pwm, channel: 1}
    motor2: {bus: pwm, channel: 2}
    motor3: {bus: pwm, channel: 3}
    motor4: {bus: pwm, channel: 4}
    motor5: {bus: pwm, channel: 5}
    motor6: {bus: pwm, channel: 6}
    motor7: {bus: pwm, channel: 7}
servo_config:
  servos:
    gripper: {channel: 0, signal_type: position}
`

func TestLoadX3dResolvesEightThrusters(t *testing.T) {
	t.Parallel()

	cfg, err := Load(strings.NewReader(x3dYAML))
	require.NoError(t, err)
	require.Equal(t, "test-rov", cfg.Name)
	require.Equal(t, 100, cfg.TickHz)

	thrusters, err := cfg.Thrusters()
	require.NoError(t, err)
	require.Len(t, thrusters, 8)

	seen := make(map[types.ThrusterID]bool, 8)
	for _, th := range thrusters {
		seen[th.ID] = true
		require.InDelta(t, 1.0, th.Orientation.Magnitude(), 1e-3)
	}
	require.True(t, seen["motor0"])
	require.True(t, seen["motor7"])

	chans, err := cfg.ChannelMap()
	require.NoError(t, err)
	require.Len(t, chans, 8)
	require.Equal(t, Channel{Kind: PWMChannel, ID: 3}, chans["motor3"])
}

func TestLoadDefaultsTickHzWhenOmitted(t *testing.T) {
	t.Parallel()

	const yamlNoTick = `
name: rov
port: 1
motor_amperage_budget: 1
motor_config:
  variant: custom
  motors:
    m0: {bus: dc, channel: 0, position: [0,0,0], orientation: [1,0,0], direction: cw}
`
	cfg, err := Load(strings.NewReader(yamlNoTick))
	require.NoError(t, err)
	require.Equal(t, 100, cfg.TickHz)

	thrusters, err := cfg.Thrusters()
	require.NoError(t, err)
	require.Len(t, thrusters, 1)
}

func TestLoadRejectsMissingName(t *testing.T) {
	t.Parallel()

	const yamlNoName = `
port: 1
motor_amperage_budget: 1
motor_config:
  variant: custom
  motors:
    m0: {bus: dc, channel: 0}
`
	_, err := Load(strings.NewReader(yamlNoName))
	require.Error(t, err)
}

func TestLoadRejectsOutOfRangeDCChannel(t *testing.T) {
	t.Parallel()

	const yamlBadChannel = `
name: rov
port: 1
motor_amperage_budget: 1
motor_config:
  variant: custom
  motors:
    m0: {bus: dc, channel: 9, position: [0,0,0], orientation: [1,0,0], direction: cw}
`
	_, err := Load(strings.NewReader(yamlBadChannel))
	require.Error(t, err)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	t.Parallel()

	yamlTypo := strings.Replace(x3dYAML, "tick_hz", "tikc_hz", 1)
	_, err := Load(strings.NewReader(yamlTypo))
	require.Error(t, err)
}
