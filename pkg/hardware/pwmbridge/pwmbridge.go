// Package pwmbridge implements the PWM hardware bridge (C9): a cooperative
// worker task driving a 16-channel PWM chip under arm/disarm, dead-man, and
// ESC soft-start rules. The register-level channel protocol is generalized
// from x/devices/pca9685/pca9685.go; the ticker/stopCh worker shape and the
// enable/disable/update split are generalized from x/devices/motor/motor.go.
package pwmbridge

import (
	"context"
	"time"

	"github.com/itohio/rovctl/pkg/logger"
	"github.com/itohio/rovctl/pkg/pipeline"
)

const (
	// Channels is the chip's channel count (PCA9685: 16).
	Channels = 16

	// NeutralUs is the microsecond pulse width written during soft-start
	// and reported for every channel while disarmed; the disarmed chip
	// itself is held low (see applyDisarmed).
	NeutralUs uint16 = 1500

	maxInactive    = 100 * time.Millisecond
	armingDuration = 1500 * time.Millisecond
	tickInterval   = 10 * time.Millisecond // 100 Hz
)

// Chip is the register-level PWM protocol the bridge drives. Satisfied
// structurally by *pca9685.Device.
type Chip interface {
	SetFrequency(freqHz float32) error
	SetPWMRaw(channel uint8, value uint16, invert bool) error
}

// State is one of the bridge's four arm/disarm states.
type State int

const (
	Disarmed State = iota
	ArmedSoftstart
	ArmedActive
	Shutdown
)

func (s State) String() string {
	switch s {
	case Disarmed:
		return "disarmed"
	case ArmedSoftstart:
		return "armed-softstart"
	case ArmedActive:
		return "armed-active"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// MessageKind discriminates the Bridge's inbound control messages.
type MessageKind int

const (
	MsgArm MessageKind = iota
	MsgBatch
	MsgShutdown
)

// Message is the inbound control message carried over the Step's In()
// channel. Armed is only meaningful for MsgArm; Signals only for MsgBatch.
type Message struct {
	Kind    MessageKind
	Armed   bool
	Signals [Channels]uint16
}

// ChannelReport is emitted on Out() once per tick per channel: the signal
// reported for this tick (NeutralUs while disarmed or soft-starting; the
// disarmed chip itself is driven low), for the movement accumulator's
// telemetry.
type ChannelReport struct {
	Channel  uint8
	SignalUs uint16
	State    State
}

// Bridge is a pipeline.Step implementing the C9 state machine.
type Bridge struct {
	chip      Chip
	freqHz    float32
	in        <-chan pipeline.Data
	out       chan pipeline.Data
	state     State
	lastArm   time.Time
	armEdge   time.Time
	lastBatch [Channels]uint16
}

// New builds a Bridge driving chip at freqHz (nominal 50 Hz for ESC/servo
// PWM), configuring the chip's frequency immediately.
func New(chip Chip, freqHz float32) (*Bridge, error) {
	if err := chip.SetFrequency(freqHz); err != nil {
		return nil, err
	}
	b := &Bridge{
		chip:   chip,
		freqHz: freqHz,
		out:    pipeline.StepMakeChan(pipeline.Options{BufferSize: Channels * 2}),
		state:  Disarmed,
	}
	for i := range b.lastBatch {
		b.lastBatch[i] = NeutralUs
	}
	return b, nil
}

func (b *Bridge) In(in <-chan pipeline.Data) { b.in = in }
func (b *Bridge) Out() <-chan pipeline.Data  { return b.out }

func (b *Bridge) Reset() {
	b.state = Disarmed
	for i := range b.lastBatch {
		b.lastBatch[i] = NeutralUs
	}
}

// Run drains inbound messages and drives the chip on tickInterval until ctx
// is cancelled or a Shutdown message arrives. No suspension point blocks
// beyond the ticker and the inbound channel, per the cooperative-worker
// timing model.
func (b *Bridge) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	defer close(b.out)

	for {
		select {
		case <-ctx.Done():
			b.applyDisarmed()
			return
		case data, ok := <-b.in:
			if !ok {
				b.applyDisarmed()
				return
			}
			msg, ok := data.(Message)
			if !ok {
				continue
			}
			if b.handleMessage(msg) {
				b.applyDisarmed()
				return
			}
		case now := <-ticker.C:
			b.tick(now)
		}
	}
}

func (b *Bridge) handleMessage(msg Message) (shutdown bool) {
	switch msg.Kind {
	case MsgArm:
		if msg.Armed && b.state == Disarmed {
			b.armEdge = time.Now()
			b.state = ArmedSoftstart
		}
		if msg.Armed {
			b.lastArm = time.Now()
		} else {
			b.state = Disarmed
		}
	case MsgBatch:
		b.lastArm = time.Now()
		b.lastBatch = msg.Signals
	case MsgShutdown:
		return true
	}
	return false
}

func (b *Bridge) tick(now time.Time) {
	if b.state != Disarmed && now.Sub(b.lastArm) > maxInactive {
		logger.Log.Warn().Msg("pwmbridge: dead-man timeout, disarming")
		b.state = Disarmed
	}

	if b.state == ArmedSoftstart && now.Sub(b.armEdge) >= armingDuration {
		b.state = ArmedActive
	}

	switch b.state {
	case Disarmed:
		b.applyDisarmed()
	case ArmedSoftstart:
		b.applyNeutral()
	case ArmedActive:
		b.applyBatch(b.lastBatch)
	}
}

// applyDisarmed physically disables the chip output (raw 0, which holds the
// PCA9685 channel permanently low) while reporting the logical neutral
// signal for telemetry — the bridge never reports an unknown last-commanded
// value, even though the chip itself is not driving a pulse.
func (b *Bridge) applyDisarmed() {
	for ch := uint8(0); ch < Channels; ch++ {
		if err := b.chip.SetPWMRaw(ch, 0, false); err != nil {
			logger.Log.Error().Err(err).Msg("pwmbridge: disarm write failed")
		}
		b.report(ch, NeutralUs)
	}
}

func (b *Bridge) applyNeutral() {
	var neutral [Channels]uint16
	for i := range neutral {
		neutral[i] = NeutralUs
	}
	b.applyBatch(neutral)
}

func (b *Bridge) applyBatch(signals [Channels]uint16) {
	periodUs := 1e6 / b.freqHz
	for ch := uint8(0); ch < Channels; ch++ {
		us := signals[ch]
		raw := uint16(float32(us) / periodUs * 4096)
		if err := b.chip.SetPWMRaw(ch, raw, false); err != nil {
			logger.Log.Error().Err(err).Uint8("channel", ch).Msg("pwmbridge: write failed")
			continue
		}
		b.report(ch, us)
	}
}

func (b *Bridge) report(ch uint8, us uint16) {
	select {
	case b.out <- pipeline.Data(ChannelReport{Channel: ch, SignalUs: us, State: b.state}):
	default:
	}
}
