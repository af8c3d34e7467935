package pid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutsideZoneReset(t *testing.T) {
	t.Parallel()

	cfg := Config{KP: 1, KI: 1, KD: 0, DAlpha: 1, IZone: 0.5, MaxI: 10, MaxOutput: 10}
	c := New()

	for i := 0; i < 3; i++ {
		res := c.Update(5, 0.1, cfg)
		require.Zero(t, res.I)
		require.Zero(t, c.Integral())
	}

	c.Update(0.1, 0.1, cfg)
	require.InDelta(t, 0.01, float64(c.Integral()), 1e-6)
}

func TestIntegralContainment(t *testing.T) {
	t.Parallel()

	cfg := Config{KP: 0, KI: 100, KD: 0, DAlpha: 1, IZone: 10, MaxI: 1, MaxOutput: 5}
	c := New()
	for i := 0; i < 20; i++ {
		c.Update(1, 1, cfg)
	}
	require.LessOrEqual(t, float32absValue(c.Integral()), cfg.MaxI)
}

func TestOutputContainment(t *testing.T) {
	t.Parallel()

	cfg := Config{KP: 1000, KI: 0, KD: 0, DAlpha: 1, IZone: 10, MaxI: 10, MaxOutput: 2}
	c := New()
	res := c.Update(5, 0.1, cfg)
	require.LessOrEqual(t, float32absValue(res.Correction), cfg.MaxOutput)
}

func float32absValue(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
