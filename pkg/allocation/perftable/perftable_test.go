package perftable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itohio/rovctl/pkg/allocation/types"
)

const csvData = `force,current,pwm
-10,-8,1100
-5,-4,1300
0,0,1500
5,4,1700
10,8,1900
`

func TestLookupByCurrentMonotone(t *testing.T) {
	t.Parallel()

	table, err := LoadCSV(strings.NewReader(csvData), 1500)
	require.NoError(t, err)

	prev := float32(-100)
	for _, x := range []float32{-8, -6, -2, 0, 2, 6, 8} {
		rec := table.LookupByCurrent(x, Lerp, false)
		require.GreaterOrEqual(t, rec.Current, prev)
		prev = rec.Current
	}
}

func TestLookupForDirectionMirrorsCCW(t *testing.T) {
	t.Parallel()

	table, err := LoadCSV(strings.NewReader(csvData), 1500)
	require.NoError(t, err)

	cw := table.LookupForDirection(5, types.Clockwise, false)
	ccw := table.LookupForDirection(5, types.CounterClockwise, false)

	require.InDelta(t, cw.Force, ccw.Force, 1e-3)
	require.InDelta(t, float64(cw.RawSignal-1500), float64(1500-ccw.RawSignal), 1)
}
