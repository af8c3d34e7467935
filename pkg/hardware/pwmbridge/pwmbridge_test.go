package pwmbridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/itohio/rovctl/pkg/pipeline"
)

type fakeChip struct {
	mu   sync.Mutex
	freq float32
	raw  [Channels]uint16
}

func (c *fakeChip) SetFrequency(freqHz float32) error {
	c.freq = freqHz
	return nil
}

func (c *fakeChip) SetPWMRaw(channel uint8, value uint16, invert bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw[channel] = value
	return nil
}

func (c *fakeChip) snapshot() [Channels]uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw
}

func TestDeadManDisarmsAfterInactivity(t *testing.T) {
	t.Parallel()

	chip := &fakeChip{}
	b, err := New(chip, 50)
	require.NoError(t, err)

	in := pipeline.StepMakeChan(pipeline.Options{BufferSize: 4})
	b.In(in)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	in <- pipeline.Data(Message{Kind: MsgArm, Armed: true})
	time.Sleep(20 * time.Millisecond)

	require.Equal(t, ArmedSoftstart, b.state)

	time.Sleep(150 * time.Millisecond)

	require.Equal(t, Disarmed, b.state)
	require.Equal(t, uint16(0), chip.snapshot()[0])
}

func TestSoftstartHoldsNeutralThenActivates(t *testing.T) {
	t.Parallel()

	chip := &fakeChip{}
	b, err := New(chip, 50)
	require.NoError(t, err)
	b.armEdge = time.Now().Add(-2 * time.Second)
	b.state = ArmedSoftstart
	b.lastArm = time.Now()

	b.tick(time.Now())
	require.Equal(t, ArmedActive, b.state)
}
