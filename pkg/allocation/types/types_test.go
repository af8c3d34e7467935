package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignalRangeRoundTrip(t *testing.T) {
	t.Parallel()

	r := SignalRange{Min: 1100, Center: 1500, Max: 1900}
	for _, p := range []float32{-1, -0.5, 0, 0.5, 1} {
		raw := r.RawFromPercent(p)
		got := r.PercentFromRaw(raw)
		require.InDelta(t, p, got, 1.0/400) // within ~1 raw-unit
	}

	require.Equal(t, 1100, r.RawFromPercent(-1))
	require.Equal(t, 1500, r.RawFromPercent(0))
	require.Equal(t, 1900, r.RawFromPercent(1))
}
