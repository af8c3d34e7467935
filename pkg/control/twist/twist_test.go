package twist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itohio/rovctl/pkg/allocation/vecmath"
)

func TestErrorDegreesIdenticalOrientation(t *testing.T) {
	t.Parallel()

	q := vecmath.Identity()
	axis := vecmath.New(0, 0, 1)

	got := ErrorDegrees(q, q, axis)
	require.InDelta(t, 0, float64(got), 1e-3)
}

func TestErrorDegreesAxisAlignedYaw(t *testing.T) {
	t.Parallel()

	axis := vecmath.New(0, 0, 1)
	current := vecmath.Identity()
	target := vecmath.FromAxisAngle(axis, 0.5) // ~28.6 degrees

	got := ErrorDegrees(target, current, axis)
	require.InDelta(t, 28.6479, float64(got), 0.1)
}

func TestErrorDegreesOppositeSign(t *testing.T) {
	t.Parallel()

	axis := vecmath.New(0, 0, 1)
	current := vecmath.Identity()
	target := vecmath.FromAxisAngle(axis, -0.5)

	got := ErrorDegrees(target, current, axis)
	require.InDelta(t, -28.6479, float64(got), 0.1)
}
