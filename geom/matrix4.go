package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ZUpToYUp rotates a Z-up coordinate system into the Y-up convention used at runtime.
var ZUpToYUp = mgl32.HomogRotate3DX(-math.Pi / 2)

// NewMatrix4FromRowMajor reads 16 row-major values (COLLADA <matrix> order)
// into a column-major matrix.
func NewMatrix4FromRowMajor(a []float32) mgl32.Mat4 {
	if len(a) < 16 {
		return mgl32.Ident4()
	}
	var m mgl32.Mat4
	copy(m[:], a[:16])
	return m.Transpose()
}

func NewTRSMatrix4(pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// Decompose splits an affine matrix into translation, rotation and scale.
// Shear is not supported.
func Decompose(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	pos := m.Col(3).Vec3()
	scale := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	if m.Det() < 0 {
		scale[0] = -scale[0]
	}

	rot := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		s := scale[c]
		if Abs(s) < 0.0001 {
			s = 1
		}
		for r := 0; r < 3; r++ {
			rot[c*4+r] = m[c*4+r] / s
		}
	}
	return pos, mgl32.Mat4ToQuat(rot).Normalize(), scale
}

func Abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
