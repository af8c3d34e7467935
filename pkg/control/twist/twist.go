// Package twist implements the instant-twist projection used by the
// rotational PID controllers (C6) to turn a target/current orientation
// pair into a scalar error along one body axis. This is new code: the
// teacher ships a quaternion algebra library (x/math/vec/quaternion.go)
// but no twist-swing decomposition, and Design Note 9 explicitly calls for
// "a dedicated helper with its own unit tests" — see twist_test.go.
package twist

import (
	"github.com/chewxy/math32"

	"github.com/itohio/rovctl/pkg/allocation/vecmath"
)

// ErrorDegrees computes the signed rotational error, in degrees, along the
// body axis `a` (a unit vector expressed in body frame), given the target
// and current orientation quaternions, per spec.md §4.6:
//
//  1. q = target * current^-1
//  2. project q's rotation axis onto the global direction current*a
//  3. reconstruct a quaternion from the projected vector + original w,
//     normalize, preserving the sign of the projection's dot product
//  4. take 2*acos(w) wrapped to (-pi, pi], convert to degrees
func ErrorDegrees(target, current vecmath.Quaternion, a vecmath.Vector3D) float32 {
	q := target.Product(current.Conjugate())
	globalAxis := current.RotateVector(a).Normal()

	qv := q.Vec()
	magnitude := qv.Dot(globalAxis)
	projected := globalAxis.MulC(magnitude)

	twist := vecmath.NewQuaternion(projected[0], projected[1], projected[2], q.W()).Normal()

	w := twist.W()
	if w > 1 {
		w = 1
	}
	if w < -1 {
		w = -1
	}
	angle := 2 * math32.Acos(w)
	if angle > math32.Pi {
		angle -= 2 * math32.Pi
	}
	if magnitude < 0 {
		angle = -angle
	}

	const radToDeg = 180 / math32.Pi
	return angle * radToDeg
}
