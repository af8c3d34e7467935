package servo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstOrderIntegrationWithReset(t *testing.T) {
	t.Parallel()

	a := New([]Config{{ID: "s1", Mode: FirstOrder}})
	const dt = 0.1

	expected := []float32{0.05, 0.10, 0.00, 0.05, 0.10}
	for i, want := range expected {
		ev := Events{}
		if i == 2 {
			ev.ResetIDs = []ServoID{"s1"}
		}
		out := a.Tick(map[ServoID]float32{"s1": 0.5}, dt, ev)
		require.InDelta(t, want, out["s1"], 1e-6)
	}
}

func TestZerothOrderClamps(t *testing.T) {
	t.Parallel()

	a := New([]Config{{ID: "s1", Mode: ZerothOrder}})
	out := a.Tick(map[ServoID]float32{"s1": 2.0}, 0.1, Events{})
	require.Equal(t, float32(1), out["s1"])
}

func TestResetServosZeroesAll(t *testing.T) {
	t.Parallel()

	a := New([]Config{{ID: "s1", Mode: FirstOrder}, {ID: "s2", Mode: FirstOrder}})
	a.Tick(map[ServoID]float32{"s1": 0.5, "s2": 0.5}, 0.1, Events{})
	out := a.Tick(map[ServoID]float32{"s1": 0.5, "s2": 0.5}, 0.1, Events{ResetAll: true})
	require.Zero(t, out["s1"])
	require.Zero(t, out["s2"])
}
