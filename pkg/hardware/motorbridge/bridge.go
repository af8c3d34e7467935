package motorbridge

import (
	"context"
	"io"
	"time"

	"github.com/itohio/rovctl/pkg/logger"
	"github.com/itohio/rovctl/pkg/pipeline"
)

const (
	maxInactive    = 100 * time.Millisecond
	tickInterval   = 10 * time.Millisecond
	pingInterval   = 40 * time.Millisecond // 25 Hz
	maxPingLatency = 500 * time.Millisecond
)

// MessageKind discriminates Bridge's inbound control messages.
type MessageKind int

const (
	MsgArm MessageKind = iota
	MsgBatch
	MsgShutdown
)

// Message is the inbound control message, carried over the Step's In()
// channel.
type Message struct {
	Kind    MessageKind
	Armed   bool
	Speeds  [Channels]int16
	Mask    uint8
}

// Report is emitted on Out(): either a telemetry sample or a connection
// status change.
type Report struct {
	Connected       bool
	MotorState      MotorState
	UnackedPings    int
}

// Bridge drives a framed binary DC-motor controller over rw, implementing
// the startup sequence, steady-state arm/batch/dead-man loop, and a
// separate ping task, per spec §4.10.
type Bridge struct {
	rw   io.ReadWriter
	in   <-chan pipeline.Data
	out  chan pipeline.Data

	armed        bool
	lastArm      time.Time
	lastSpeeds   [Channels]int16
	lastMask     uint8
	unackedPings int
	pingSeq      uint32
	pendingPing  map[uint32]time.Time
}

func New(rw io.ReadWriter) *Bridge {
	return &Bridge{
		rw:          rw,
		out:         pipeline.StepMakeChan(pipeline.Options{BufferSize: 16}),
		pendingPing: make(map[uint32]time.Time),
	}
}

func (b *Bridge) In(in <-chan pipeline.Data) { b.in = in }
func (b *Bridge) Out() <-chan pipeline.Data  { return b.out }

func (b *Bridge) Reset() {
	b.armed = false
	b.unackedPings = 0
	b.pendingPing = make(map[uint32]time.Time)
}

// Connect runs the C10 startup sequence: version handshake, assert
// disarmed, start the telemetry stream, zero all channels.
func (b *Bridge) Connect() error {
	if err := WriteFrame(b.rw, Frame{Type: TypeReadProtocolVersion}); err != nil {
		return err
	}
	f, err := ReadFrame(b.rw)
	if err != nil {
		return err
	}
	if f.Type != TypeProtocolVersionResponse {
		return ErrShortFrame
	}
	if _, ok := DecodeProtocolVersion(f.Payload); !ok {
		return ErrShortFrame
	}

	if err := WriteFrame(b.rw, Frame{Type: TypeSetArmed, Payload: EncodeSetArmed(false, 0)}); err != nil {
		return err
	}
	if err := WriteFrame(b.rw, Frame{Type: TypeStartStream, Payload: EncodeStartStream(0x0F, uint16(tickInterval.Milliseconds()))}); err != nil {
		return err
	}
	for ch := uint8(0); ch < Channels; ch++ {
		if err := WriteFrame(b.rw, Frame{Type: TypeSetSpeed, Payload: EncodeSetSpeedChannel(ch, 0)}); err != nil {
			return err
		}
	}

	b.report(pipeline.Data(Report{Connected: true}))
	return nil
}

// Run drives the steady-state loop: drain inbound events, apply dead-man,
// send SetArmed + SetSpeed each tick, and read inbound telemetry/pong
// frames without blocking the tick interval.
func (b *Bridge) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	defer close(b.out)

	readCh := make(chan Frame, 16)
	go b.readLoop(ctx, readCh)

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.disarm()
			return
		case data, ok := <-b.in:
			if !ok {
				b.disarm()
				return
			}
			msg, ok := data.(Message)
			if !ok {
				continue
			}
			if msg.Kind == MsgShutdown {
				b.disarm()
				return
			}
			b.handleMessage(msg)
		case now := <-ticker.C:
			b.tick(now)
		case <-pingTicker.C:
			b.sendPing()
		case f := <-readCh:
			b.handleFrame(f)
		}
	}
}

func (b *Bridge) readLoop(ctx context.Context, out chan<- Frame) {
	for {
		f, err := ReadFrame(b.rw)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Error().Err(err).Msg("motorbridge: read failed")
			return
		}
		select {
		case out <- f:
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bridge) handleMessage(msg Message) {
	switch msg.Kind {
	case MsgArm:
		b.armed = msg.Armed
		if msg.Armed {
			b.lastArm = time.Now()
		}
	case MsgBatch:
		b.lastArm = time.Now()
		b.lastSpeeds = msg.Speeds
		b.lastMask = msg.Mask
	}
}

func (b *Bridge) tick(now time.Time) {
	if b.armed && now.Sub(b.lastArm) > maxInactive {
		logger.Log.Warn().Msg("motorbridge: dead-man timeout, disarming")
		b.armed = false
	}

	if err := WriteFrame(b.rw, Frame{Type: TypeSetArmed, Payload: EncodeSetArmed(b.armed, 0)}); err != nil {
		logger.Log.Error().Err(err).Msg("motorbridge: SetArmed write failed")
		return
	}

	speeds := b.lastSpeeds
	mask := b.lastMask
	if !b.armed {
		speeds = [Channels]int16{}
		mask = 0x0F
	}
	// One SetSpeed frame per channel per tick, matching the original
	// source's per-channel framing rather than a single coalesced batch.
	for ch := uint8(0); ch < Channels; ch++ {
		if mask&(1<<ch) == 0 {
			continue
		}
		if err := WriteFrame(b.rw, Frame{Type: TypeSetSpeed, Payload: EncodeSetSpeedChannel(ch, speeds[ch])}); err != nil {
			logger.Log.Error().Err(err).Msg("motorbridge: SetSpeed write failed")
			return
		}
	}
}

func (b *Bridge) disarm() {
	b.armed = false
	_ = WriteFrame(b.rw, Frame{Type: TypeSetArmed, Payload: EncodeSetArmed(false, 0)})
	for ch := uint8(0); ch < Channels; ch++ {
		_ = WriteFrame(b.rw, Frame{Type: TypeSetSpeed, Payload: EncodeSetSpeedChannel(ch, 0)})
	}
}

func (b *Bridge) sendPing() {
	b.pingSeq++
	id := b.pingSeq
	b.pendingPing[id] = time.Now()
	for pid, sent := range b.pendingPing {
		if time.Since(sent) > maxPingLatency {
			b.unackedPings++
			delete(b.pendingPing, pid)
		}
	}
	if err := WriteFrame(b.rw, Frame{Type: TypePing, Payload: EncodePing(id)}); err != nil {
		logger.Log.Error().Err(err).Msg("motorbridge: ping write failed")
	}
}

func (b *Bridge) handleFrame(f Frame) {
	switch f.Type {
	case TypePong:
		if id, ok := DecodePong(f.Payload); ok {
			delete(b.pendingPing, id)
		}
	case TypeMotorState:
		if ms, ok := DecodeMotorState(f.Payload); ok {
			b.report(pipeline.Data(Report{MotorState: ms}))
		}
	case TypeError:
		logger.Log.Error().Msg("motorbridge: controller reported error")
	default:
		logger.Log.Warn().Msg("motorbridge: unknown packet type, ignoring")
	}
}

func (b *Bridge) report(data pipeline.Data) {
	select {
	case b.out <- data:
	default:
		logger.Log.Warn().Msg("motorbridge: telemetry receiver lagging, dropping report")
	}
}
