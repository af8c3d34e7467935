package voltage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBrownoutFlagTracksVoltage(t *testing.T) {
	t.Parallel()

	var m Monitor

	m.Update(12.0, 5)
	require.False(t, m.BrownedOut)

	m.Update(6.5, 5)
	require.True(t, m.BrownedOut)

	m.Update(12.0, 5)
	require.False(t, m.BrownedOut)
}

func TestStartupZeroReadingIgnored(t *testing.T) {
	t.Parallel()

	var m Monitor
	m.Update(0, 0)
	require.False(t, m.BrownedOut)
}
