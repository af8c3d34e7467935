package motorbridge

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeWriter satisfies io.ReadWriter for tick()/disarm(), which only write
// frames; Read is never exercised by these tests.
type fakeWriter struct {
	bytes.Buffer
}

func (f *fakeWriter) Read(p []byte) (int, error) { return 0, nil }

func TestTickDisarmsAfterDeadManTimeout(t *testing.T) {
	t.Parallel()

	rw := &fakeWriter{}
	b := New(rw)
	b.armed = true
	b.lastArm = time.Now().Add(-2 * maxInactive)

	b.tick(time.Now())

	require.False(t, b.armed)
}

func TestTickStaysArmedWithinDeadManWindow(t *testing.T) {
	t.Parallel()

	rw := &fakeWriter{}
	b := New(rw)
	b.armed = true
	b.lastArm = time.Now()

	b.tick(time.Now())

	require.True(t, b.armed)
}

func TestHandleMessageArmRefreshesDeadMan(t *testing.T) {
	t.Parallel()

	rw := &fakeWriter{}
	b := New(rw)

	b.handleMessage(Message{Kind: MsgArm, Armed: true})
	require.True(t, b.armed)
	require.WithinDuration(t, time.Now(), b.lastArm, 50*time.Millisecond)
}
