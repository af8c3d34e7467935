// Package rovconfig loads and validates the vehicle configuration document
// (spec.md §6): geometry, motor/servo channel maps, amperage budget, jerk
// limit, PID gains, and the tick rate. YAML decoding follows the teacher's
// only config-adjacent precedent, the functional-options builder in
// x/devices/servo/types.go, generalized here into struct-tag driven
// gopkg.in/yaml.v3 decoding plus an explicit Validate pass, since the
// teacher never itself reads a config file from disk.
package rovconfig

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/itohio/rovctl/pkg/allocation/types"
	"github.com/itohio/rovctl/pkg/allocation/vecmath"
	"github.com/itohio/rovctl/pkg/roverrors"
)

// Config is the decoded vehicle configuration document.
type Config struct {
	Name   string `yaml:"name"`
	Port   int    `yaml:"port"`
	TickHz int    `yaml:"tick_hz"`

	MotorConfig MotorConfig `yaml:"motor_config"`
	ServoConfig ServoConfig `yaml:"servo_config"`

	MotorAmperageBudget float32         `yaml:"motor_amperage_budget"`
	JerkLimit           float32         `yaml:"jerk_limit"`
	CenterOfMass        [3]float32      `yaml:"center_of_mass"`
	IMUOffset           IMUOffset       `yaml:"imu_offset"`
	PIDConfigs          map[string]Pid  `yaml:"pid_configs"`
	Cameras             map[string]any  `yaml:"cameras,omitempty"`
}

// IMUOffset is the vehicle's IMU mounting offset in degrees.
type IMUOffset struct {
	Yaw   float32 `yaml:"yaw"`
	Pitch float32 `yaml:"pitch"`
	Roll  float32 `yaml:"roll"`
}

// Pid is one PID loop's gains, mirroring pkg/control/pid.Config's fields.
type Pid struct {
	KP        float32 `yaml:"kp"`
	KI        float32 `yaml:"ki"`
	KD        float32 `yaml:"kd"`
	DAlpha    float32 `yaml:"d_alpha"`
	IZone     float32 `yaml:"i_zone"`
	MaxI      float32 `yaml:"max_i"`
	MaxOutput float32 `yaml:"max_output"`
}

// MotorConfig is the {X3d,BlueRov,Heavy,Custom} tagged-union variant,
// decoded via its Variant discriminator since YAML has no native sum type.
type MotorConfig struct {
	Variant      string                `yaml:"variant"`
	Seed         *SeedEntry            `yaml:"seed,omitempty"`
	LateralSeed  *SeedEntry            `yaml:"lateral_seed,omitempty"`
	VerticalSeed *SeedEntry            `yaml:"vertical_seed,omitempty"`
	Motors       map[string]MotorEntry `yaml:"motors"`
}

// SeedEntry is a preset's single corner-motor definition.
type SeedEntry struct {
	Position    [3]float32 `yaml:"position"`
	Orientation [3]float32 `yaml:"orientation"`
}

func (s SeedEntry) toSeed() SeedMotor {
	return SeedMotor{
		Position:    vecmath.New(s.Position[0], s.Position[1], s.Position[2]),
		Orientation: vecmath.New(s.Orientation[0], s.Orientation[1], s.Orientation[2]),
	}
}

// MotorEntry is one thruster's channel assignment (every variant) plus, for
// Custom, its explicit geometry.
type MotorEntry struct {
	Bus         string     `yaml:"bus"` // "pwm" or "dc"
	ChannelID   uint8      `yaml:"channel"`
	Position    [3]float32 `yaml:"position,omitempty"`
	Orientation [3]float32 `yaml:"orientation,omitempty"`
	Direction   string     `yaml:"direction,omitempty"` // "cw" or "ccw"
}

func (m MotorEntry) channelKind() ChannelKind {
	if m.Bus == "dc" {
		return DCChannel
	}
	return PWMChannel
}

func (m MotorEntry) direction() types.SpinDirection {
	if m.Direction == "ccw" {
		return types.CounterClockwise
	}
	return types.Clockwise
}

// ServoConfig is the name-keyed servo channel map.
type ServoConfig struct {
	Servos map[string]ServoEntry `yaml:"servos"`
}

// ServoEntry is one servo's channel, signal type, and accumulation mode.
type ServoEntry struct {
	Channel     uint8   `yaml:"channel"`
	SignalType  string  `yaml:"signal_type"` // "position" or "velocity"
	ControlMode string  `yaml:"control_mode,omitempty"`
	SlewRate    float32 `yaml:"slew_rate,omitempty"`
	MinConstr   float32 `yaml:"min,omitempty"`
	MaxConstr   float32 `yaml:"max,omitempty"`
}

// Load decodes and validates a Config from r.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", roverrors.ErrConfig, err)
	}
	if cfg.TickHz == 0 {
		cfg.TickHz = 100
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields per spec.md §6.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", roverrors.ErrConfig)
	}
	if c.Port <= 0 {
		return fmt.Errorf("%w: port must be positive", roverrors.ErrConfig)
	}
	if c.MotorAmperageBudget <= 0 {
		return fmt.Errorf("%w: motor_amperage_budget must be positive", roverrors.ErrConfig)
	}
	if c.JerkLimit < 0 {
		return fmt.Errorf("%w: jerk_limit must be non-negative", roverrors.ErrConfig)
	}
	if len(c.MotorConfig.Motors) == 0 {
		return fmt.Errorf("%w: motor_config.motors must not be empty", roverrors.ErrConfig)
	}
	for name, entry := range c.MotorConfig.Motors {
		if err := validateChannel(Channel{Kind: entry.channelKind(), ID: entry.ChannelID}); err != nil {
			return fmt.Errorf("%w: motor %s: %v", roverrors.ErrConfig, name, err)
		}
	}
	switch c.MotorConfig.Variant {
	case "x3d":
		if c.MotorConfig.Seed == nil {
			return fmt.Errorf("%w: x3d motor_config requires seed", roverrors.ErrConfig)
		}
	case "bluerov", "heavy":
		if c.MotorConfig.LateralSeed == nil || c.MotorConfig.VerticalSeed == nil {
			return fmt.Errorf("%w: %s motor_config requires lateral_seed and vertical_seed", roverrors.ErrConfig, c.MotorConfig.Variant)
		}
	case "custom":
		// geometry supplied per-motor; nothing further required here.
	default:
		return fmt.Errorf("%w: unknown motor_config variant %q", roverrors.ErrConfig, c.MotorConfig.Variant)
	}
	return nil
}

// Thrusters resolves the configured motor_config variant into the concrete
// thruster list consumed by the allocation matrix builder (C2).
func (c *Config) Thrusters() ([]types.Thruster, error) {
	channels := make(map[string]Channel, len(c.MotorConfig.Motors))
	for name, entry := range c.MotorConfig.Motors {
		channels[name] = Channel{Kind: entry.channelKind(), ID: entry.ChannelID}
	}

	switch c.MotorConfig.Variant {
	case "x3d":
		return buildX3d(c.MotorConfig.Seed.toSeed(), channels)
	case "bluerov":
		return buildBlueRov(c.MotorConfig.LateralSeed.toSeed(), c.MotorConfig.VerticalSeed.toSeed(), channels)
	case "heavy":
		return buildHeavy(c.MotorConfig.LateralSeed.toSeed(), c.MotorConfig.VerticalSeed.toSeed(), channels)
	case "custom":
		return buildCustom(c.MotorConfig.Motors)
	default:
		return nil, fmt.Errorf("%w: unknown motor_config variant %q", roverrors.ErrConfig, c.MotorConfig.Variant)
	}
}

func buildCustom(motors map[string]MotorEntry) ([]types.Thruster, error) {
	out := make([]types.Thruster, 0, len(motors))
	for name, entry := range motors {
		pos := vecmath.New(entry.Position[0], entry.Position[1], entry.Position[2])
		orient := vecmath.New(entry.Orientation[0], entry.Orientation[1], entry.Orientation[2])
		th, err := types.NewThruster(types.ThrusterID(name), pos, orient, entry.direction())
		if err != nil {
			return nil, err
		}
		out = append(out, th)
	}
	return out, nil
}

// ChannelMap resolves every motor_config thruster's physical channel;
// servos are not included.
func (c *Config) ChannelMap() (ChannelMap, error) {
	return buildChannelMap(c.MotorConfig.Motors)
}
