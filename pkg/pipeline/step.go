// Package pipeline provides the bounded, non-blocking channel plumbing used
// to connect the tick loop to the hardware-bridge worker tasks.
package pipeline

import (
	"context"
	"errors"
)

var (
	ErrEOS  = errors.New("pipeline: end of stream")
	ErrDrop = errors.New("pipeline: dropped data")
)

// Data is the payload type carried between pipeline steps. Hardware bridges
// exchange command batches and telemetry through it.
type Data any

// Step is a cooperative worker: a tick-loop source feeds it via In, a
// consumer reads its results via Out, and Run drives it until ctx is
// cancelled.
type Step interface {
	In(<-chan Data)
	Out() <-chan Data
	Run(ctx context.Context)
	Reset()
}

// Options controls a step's channel behavior.
type Options struct {
	// BufferSize is the channel capacity. The concurrency model requires
	// capacity >= 10 for hardware-bridge channels.
	BufferSize int
	// Blocking, when true, makes StepSend block until ctx is done instead
	// of dropping data on a full channel. Hardware bridges always use
	// Blocking = false: a stalled actuator must never stall the tick loop.
	Blocking bool
}

// StepReceive waits for the next value on in, or returns ErrEOS when ctx is
// cancelled or in is closed.
func StepReceive(ctx context.Context, in <-chan Data) (Data, error) {
	select {
	case <-ctx.Done():
		return nil, ErrEOS
	case data, ok := <-in:
		if !ok {
			return nil, ErrEOS
		}
		return data, nil
	}
}

// StepSend delivers data on out. In non-blocking mode a full channel yields
// ErrDrop instead of stalling the caller.
func StepSend(ctx context.Context, o Options, out chan Data, data Data) error {
	if o.Blocking {
		select {
		case out <- data:
		case <-ctx.Done():
			return ErrEOS
		}
		return nil
	}
	select {
	case out <- data:
	case <-ctx.Done():
		return ErrEOS
	default:
		return ErrDrop
	}
	return nil
}

// StepMakeChan allocates the channel a Step uses for Out(), honoring
// BufferSize.
func StepMakeChan(o Options) chan Data {
	if o.BufferSize > 0 {
		return make(chan Data, o.BufferSize)
	}
	return make(chan Data)
}
