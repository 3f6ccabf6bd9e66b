package animation

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/binzume/daeskin/geom"
)

// JointTransform is a joint's pose relative to its parent.
type JointTransform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func IdentityTransform() JointTransform {
	return JointTransform{Rotation: mgl32.QuatIdent()}
}

// NewJointTransformFromMatrix extracts translation and rotation from an
// authored local matrix. Scale is discarded.
func NewJointTransformFromMatrix(m mgl32.Mat4) JointTransform {
	pos, rot, _ := geom.Decompose(m)
	return JointTransform{Position: pos, Rotation: rot}
}

// LocalTransform returns Translate(Position) * Rotation.
func (t JointTransform) LocalTransform() mgl32.Mat4 {
	return geom.NewTRSMatrix4(t.Position, t.Rotation, mgl32.Vec3{1, 1, 1})
}

// Interpolate blends two transforms: position linearly, rotation along the
// shortest arc. alpha == 0 returns a unchanged.
func Interpolate(a, b JointTransform, alpha float32) JointTransform {
	if alpha == 0 {
		return a
	}
	return JointTransform{
		Position: a.Position.Add(b.Position.Sub(a.Position).Mul(alpha)),
		Rotation: geom.Slerp(a.Rotation, b.Rotation, alpha),
	}
}
