// Package motorbridge implements the DC-motor hardware bridge (C10): a
// framed binary host/controller protocol over a serial USB link, a ping
// task, and a dead-man state machine shared in shape with pwmbridge's. The
// framing (magic + length-prefixed header + payload) generalizes
// pkg/robot/transport's ReadPacketFromReliableStream/WritePacket idiom; the
// packet catalogue (ReadProtocolVersion/SetArmed/SetSpeed/Ping, their
// replies, and MotorState telemetry) is new, since the project's own
// generated wire types were not available to reuse as-is.
package motorbridge

import (
	"encoding/binary"
	"errors"
	"io"
)

// Channels is the controller's channel count.
const Channels = 4

const magic uint32 = 0xBADAB00A

// PacketType identifies the frame payload.
type PacketType uint8

const (
	TypeReadProtocolVersion PacketType = iota
	TypeSetArmed
	TypeStartStream
	TypeSetSpeed
	TypePing

	TypeProtocolVersionResponse
	TypePong
	TypeMotorState
	TypeError
)

var ErrBadMagic = errors.New("motorbridge: bad frame magic")
var ErrShortFrame = errors.New("motorbridge: short frame")

// ProtocolVersion is the version this bridge speaks and expects back from
// ReadProtocolVersion.
const ProtocolVersion uint16 = 1

// Frame is one decoded wire packet: a type tag plus its raw payload.
type Frame struct {
	Type    PacketType
	Payload []byte
}

// WriteFrame writes magic(4) | type(1) | length(2) | payload.
func WriteFrame(w io.Writer, f Frame) error {
	buf := make([]byte, 4+1+2+len(f.Payload))
	binary.BigEndian.PutUint32(buf[0:4], magic)
	buf[4] = byte(f.Type)
	binary.BigEndian.PutUint16(buf[5:7], uint16(len(f.Payload)))
	copy(buf[7:], f.Payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame blocks until one full frame is read from r.
func ReadFrame(r io.Reader) (Frame, error) {
	header := make([]byte, 7)
	if err := readFull(r, header); err != nil {
		return Frame{}, err
	}
	if binary.BigEndian.Uint32(header[0:4]) != magic {
		return Frame{}, ErrBadMagic
	}
	typ := PacketType(header[4])
	length := binary.BigEndian.Uint16(header[5:7])
	payload := make([]byte, length)
	if length > 0 {
		if err := readFull(r, payload); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Type: typ, Payload: payload}, nil
}

func readFull(r io.Reader, buf []byte) error {
	for n := 0; n < len(buf); {
		m, err := r.Read(buf[n:])
		if err != nil {
			return err
		}
		if m == 0 {
			return ErrShortFrame
		}
		n += m
	}
	return nil
}

// Payload encodings. Each mirrors a packet from spec §4.10.

func EncodeSetArmed(armed bool, duration uint16) []byte {
	b := make([]byte, 3)
	if armed {
		b[0] = 1
	}
	binary.BigEndian.PutUint16(b[1:3], duration)
	return b
}

func EncodeStartStream(mask uint8, intervalMs uint16) []byte {
	b := make([]byte, 3)
	b[0] = mask
	binary.BigEndian.PutUint16(b[1:3], intervalMs)
	return b
}

// EncodeSetSpeed packs a channel mask followed by a signed 16-bit fraction
// (-32768..32767 representing -1.0..1.0) for every channel, whether or not
// its mask bit is set, low channel first. Kept for callers that want the legacy multi-channel framing (e.g.
// tests); the steady-state loop sends one EncodeSetSpeedChannel frame per
// channel per tick instead, per the per-channel SetSpeed framing decision.
func EncodeSetSpeed(speeds [Channels]int16, mask uint8) []byte {
	b := make([]byte, 1+2*Channels)
	b[0] = mask
	for i, s := range speeds {
		binary.BigEndian.PutUint16(b[1+2*i:3+2*i], uint16(s))
	}
	return b
}

// EncodeSetSpeedChannel packs a single-channel SetSpeed frame: channel id
// plus its signed 16-bit fraction.
func EncodeSetSpeedChannel(channel uint8, speed int16) []byte {
	b := make([]byte, 3)
	b[0] = channel
	binary.BigEndian.PutUint16(b[1:3], uint16(speed))
	return b
}

func EncodePing(id uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, id)
	return b
}

func DecodePong(payload []byte) (id uint32, ok bool) {
	if len(payload) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(payload), true
}

// MotorState is the decoded telemetry payload: per-channel current draw
// and a bitmask of controller-reported fault flags.
type MotorState struct {
	ID      uint8
	Current float32
	Flags   uint8
}

func DecodeMotorState(payload []byte) (MotorState, bool) {
	if len(payload) < 6 {
		return MotorState{}, false
	}
	bits := binary.BigEndian.Uint32(payload[1:5])
	return MotorState{
		ID:      payload[0],
		Current: float32FromBits(bits),
		Flags:   payload[5],
	}, true
}

func DecodeProtocolVersion(payload []byte) (uint16, bool) {
	if len(payload) < 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(payload), true
}

func float32FromBits(bits uint32) float32 {
	return float32FromUint32Bits(bits)
}
