// Package vecmath provides the 3-vector and quaternion algebra used by the
// allocation, PID, and twist-projection components. f32 throughout, per the
// numeric-precision note: the allocation solve and PID computations run at
// MROV scale where f32 is sufficient and keeps the round-trip tests stable.
package vecmath

import "github.com/chewxy/math32"

// Vector3D is a value-typed 3-component vector (meters, or unitless
// direction, depending on context).
type Vector3D [3]float32

func New(x, y, z float32) Vector3D { return Vector3D{x, y, z} }

func (v Vector3D) X() float32 { return v[0] }
func (v Vector3D) Y() float32 { return v[1] }
func (v Vector3D) Z() float32 { return v[2] }

func (v Vector3D) Add(o Vector3D) Vector3D {
	return Vector3D{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vector3D) Sub(o Vector3D) Vector3D {
	return Vector3D{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vector3D) MulC(c float32) Vector3D {
	return Vector3D{v[0] * c, v[1] * c, v[2] * c}
}

func (v Vector3D) Neg() Vector3D {
	return Vector3D{-v[0], -v[1], -v[2]}
}

func (v Vector3D) Dot(o Vector3D) float32 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v Vector3D) Cross(o Vector3D) Vector3D {
	return Vector3D{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

func (v Vector3D) SumSqr() float32 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

func (v Vector3D) Magnitude() float32 {
	return math32.Sqrt(v.SumSqr())
}

// Normal returns a unit vector in the same direction, or the zero vector if
// v has zero magnitude (callers that must normalize a configured thruster
// orientation should check IsZero first — types.NewThruster rejects a
// zero orientation with ErrInvalidOrientation).
func (v Vector3D) Normal() Vector3D {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return v.MulC(1 / m)
}

func (v Vector3D) IsZero() bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}
