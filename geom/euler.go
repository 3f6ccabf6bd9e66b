package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type RotationOrder int

const (
	RotationOrderXYZ RotationOrder = iota
	RotationOrderYXZ
	RotationOrderZXY
	RotationOrderZYX
)

// EulerAngles in radians.
type EulerAngles struct {
	mgl32.Vec3
	Order RotationOrder
}

// NewEulerFromMatrix4 extracts the angles of the rotation part of mat. For
// RotationOrderXYZ, mat = Rx * Ry * Rz.
func NewEulerFromMatrix4(mat mgl32.Mat4, order RotationOrder) *EulerAngles {
	const eps = 0.00000001
	m11, m21, m31 := float64(mat[0]), float64(mat[1]), float64(mat[2])
	m12, m22, m32 := float64(mat[4]), float64(mat[5]), float64(mat[6])
	m13, m23, m33 := float64(mat[8]), float64(mat[9]), float64(mat[10])

	ret := &EulerAngles{Order: order}
	switch order {
	case RotationOrderXYZ:
		ret.Vec3[1] = float32(math.Asin(math.Max(-1, math.Min(m13, 1))))
		if math.Abs(m13) < 1-eps {
			ret.Vec3[0] = float32(math.Atan2(-m23, m33))
			ret.Vec3[2] = float32(math.Atan2(-m12, m11))
		} else {
			ret.Vec3[0] = float32(math.Atan2(m32, m22))
		}
	case RotationOrderYXZ:
		ret.Vec3[0] = float32(math.Asin(-math.Max(-1, math.Min(m23, 1))))
		if math.Abs(m23) < 1-eps {
			ret.Vec3[1] = float32(math.Atan2(m13, m33))
			ret.Vec3[2] = float32(math.Atan2(m21, m22))
		} else {
			ret.Vec3[1] = float32(math.Atan2(-m31, m11))
		}
	case RotationOrderZXY:
		ret.Vec3[0] = float32(math.Asin(math.Max(-1, math.Min(m32, 1))))
		if math.Abs(m32) < 1-eps {
			ret.Vec3[1] = float32(math.Atan2(-m31, m33))
			ret.Vec3[2] = float32(math.Atan2(-m12, m22))
		} else {
			ret.Vec3[2] = float32(math.Atan2(m21, m11))
		}
	case RotationOrderZYX:
		ret.Vec3[1] = float32(math.Asin(-math.Max(-1, math.Min(m31, 1))))
		if math.Abs(m31) < 1-eps {
			ret.Vec3[0] = float32(math.Atan2(m32, m33))
			ret.Vec3[2] = float32(math.Atan2(m21, m11))
		} else {
			ret.Vec3[2] = float32(math.Atan2(-m12, m22))
		}
	}
	return ret
}

// Degrees returns the angles converted to degrees.
func (v *EulerAngles) Degrees() mgl32.Vec3 {
	return mgl32.Vec3{mgl32.RadToDeg(v.X()), mgl32.RadToDeg(v.Y()), mgl32.RadToDeg(v.Z())}
}
