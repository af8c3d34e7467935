package motorbridge

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func float32ToUint32BitsForTest(v float32) uint32 {
	return math.Float32bits(v)
}

func TestFrameRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	want := Frame{Type: TypeSetSpeed, Payload: EncodeSetSpeed([Channels]int16{100, -200, 0, 32767}, 0x0F)}
	require.NoError(t, WriteFrame(&buf, want))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDecodeMotorState(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, Frame{Type: TypeMotorState, Payload: encodeMotorStateForTest(2, 1.5, 0x01)}))

	f, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, TypeMotorState, f.Type)

	ms, ok := DecodeMotorState(f.Payload)
	require.True(t, ok)
	require.Equal(t, uint8(2), ms.ID)
	require.InDelta(t, 1.5, ms.Current, 1e-6)
	require.Equal(t, uint8(0x01), ms.Flags)
}

func encodeMotorStateForTest(id uint8, current float32, flags uint8) []byte {
	b := make([]byte, 6)
	b[0] = id
	bits := float32ToUint32BitsForTest(current)
	b[1] = byte(bits >> 24)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 8)
	b[4] = byte(bits)
	b[5] = flags
	return b
}
