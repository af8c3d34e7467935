package rovconfig

import (
	"fmt"

	"github.com/itohio/rovctl/pkg/allocation/types"
)

// ChannelKind distinguishes the two physical buses a logical thruster or
// servo id can be mapped onto, generalized from
// original_source/robot/src/plugins/actuators/hardware/motor_id_map.rs's
// LocalMotorId::{PwmChannel,DcChannel}.
type ChannelKind int

const (
	PWMChannel ChannelKind = iota
	DCChannel
)

// dcChannelBit is the discriminator bit the original source ORs into the
// channel id (GenericMotorId) to distinguish a DC channel from a PWM one.
const dcChannelBit = 0x80

// Channel is a physical motor channel: a bus kind plus a 0-based id on that
// bus (PWM: 0-15, DC: 0-3).
type Channel struct {
	Kind ChannelKind
	ID   uint8
}

// DefaultSignalRange returns the channel-kind's default raw-signal range,
// per motor_id_map.rs's default_signal_range.
func (c Channel) DefaultSignalRange() types.SignalRange {
	switch c.Kind {
	case PWMChannel:
		return types.SignalRange{Min: 1100, Center: 1500, Max: 1900}
	case DCChannel:
		return types.SignalRange{Min: -32768, Center: 0, Max: 32767}
	default:
		return types.SignalRange{}
	}
}

// Generic packs the channel into the original source's single-byte
// GenericMotorId encoding (bit 7 = DC, low 7 bits = channel id).
func (c Channel) Generic() uint8 {
	if c.Kind == DCChannel {
		return c.ID | dcChannelBit
	}
	return c.ID
}

// ChannelFromGeneric unpacks a GenericMotorId byte back into a Channel.
func ChannelFromGeneric(b uint8) Channel {
	if b&dcChannelBit != 0 {
		return Channel{Kind: DCChannel, ID: b &^ dcChannelBit}
	}
	return Channel{Kind: PWMChannel, ID: b}
}

func validateChannel(c Channel) error {
	switch c.Kind {
	case PWMChannel:
		if c.ID > 15 {
			return fmt.Errorf("rovconfig: PWM channel %d out of range 0-15", c.ID)
		}
	case DCChannel:
		if c.ID > 3 {
			return fmt.Errorf("rovconfig: DC channel %d out of range 0-3", c.ID)
		}
	default:
		return fmt.Errorf("rovconfig: unknown channel kind %d", c.Kind)
	}
	return nil
}

// ChannelMap resolves a logical thruster id to its physical channel,
// distinct from the allocation matrix's column order.
type ChannelMap map[types.ThrusterID]Channel

func buildChannelMap(motors map[string]MotorEntry) (ChannelMap, error) {
	m := make(ChannelMap, len(motors))
	for name, entry := range motors {
		ch := Channel{Kind: entry.channelKind(), ID: entry.ChannelID}
		if err := validateChannel(ch); err != nil {
			return nil, err
		}
		m[types.ThrusterID(name)] = ch
	}
	return m, nil
}
