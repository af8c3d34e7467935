package vecmath

import "github.com/chewxy/math32"

// Quaternion is a unit-quaternion orientation/rotation represented as
// (x, y, z, w), adapted from the teacher's generated quaternion algebra
// (x/math/vec/quaternion.go), trimmed to the operations the twist
// projection and PID rotational-error computation require.
type Quaternion [4]float32

func NewQuaternion(x, y, z, w float32) Quaternion { return Quaternion{x, y, z, w} }

func Identity() Quaternion { return Quaternion{0, 0, 0, 1} }

// FromAxisAngle builds a unit quaternion rotating by angle (radians) about
// axis (need not be normalized; the zero vector yields Identity).
func FromAxisAngle(axis Vector3D, angle float32) Quaternion {
	n := axis.Normal()
	half := angle * 0.5
	s := math32.Sin(half)
	return Quaternion{n[0] * s, n[1] * s, n[2] * s, math32.Cos(half)}
}

func (q Quaternion) X() float32 { return q[0] }
func (q Quaternion) Y() float32 { return q[1] }
func (q Quaternion) Z() float32 { return q[2] }
func (q Quaternion) W() float32 { return q[3] }

func (q Quaternion) Vec() Vector3D { return Vector3D{q[0], q[1], q[2]} }

func (q Quaternion) SumSqr() float32 {
	return q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3]
}

func (q Quaternion) Magnitude() float32 {
	return math32.Sqrt(q.SumSqr())
}

func (q Quaternion) Normal() Quaternion {
	m := q.Magnitude()
	if m == 0 {
		return Identity()
	}
	inv := 1 / m
	return Quaternion{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// Conjugate is the inverse rotation for a unit quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q[0], -q[1], -q[2], q[3]}
}

// Product computes the Hamilton product q*o (apply o, then q).
func (q Quaternion) Product(o Quaternion) Quaternion {
	return Quaternion{
		q[3]*o[0] + q[0]*o[3] + q[1]*o[2] - q[2]*o[1],
		q[3]*o[1] - q[0]*o[2] + q[1]*o[3] + q[2]*o[0],
		q[3]*o[2] + q[0]*o[1] - q[1]*o[0] + q[2]*o[3],
		q[3]*o[3] - q[0]*o[0] - q[1]*o[1] - q[2]*o[2],
	}
}

func (q Quaternion) Dot(o Quaternion) float32 {
	return q[0]*o[0] + q[1]*o[1] + q[2]*o[2] + q[3]*o[3]
}

// RotateVector rotates v by the unit quaternion q.
func (q Quaternion) RotateVector(v Vector3D) Vector3D {
	qv := q.Vec()
	uv := qv.Cross(v)
	uuv := qv.Cross(uv)
	return v.Add(uv.MulC(2 * q[3])).Add(uuv.MulC(2))
}

// Roll, Pitch, Yaw extract Z-Y-X Euler angles (radians) from the
// orientation: Roll is the rotation about +X, Pitch about +Y and Yaw about
// +Z. In the +X right, +Y forward, +Z up body frame the rotation about +X
// is the nose-up/down motion, so these names do not match that frame.
func (q Quaternion) Roll() float32 {
	sinrCosp := 2 * (q[3]*q[0] + q[1]*q[2])
	cosrCosp := 1 - 2*(q[0]*q[0]+q[1]*q[1])
	return math32.Atan2(sinrCosp, cosrCosp)
}

func (q Quaternion) Pitch() float32 {
	sinp := 2 * (q[3]*q[1] - q[2]*q[0])
	if sinp >= 1 {
		return math32.Pi / 2
	}
	if sinp <= -1 {
		return -math32.Pi / 2
	}
	return math32.Asin(sinp)
}

func (q Quaternion) Yaw() float32 {
	sinyCosp := 2 * (q[3]*q[2] + q[0]*q[1])
	cosyCosp := 1 - 2*(q[1]*q[1]+q[2]*q[2])
	return math32.Atan2(sinyCosp, cosyCosp)
}
