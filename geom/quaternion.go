package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SlerpLinearThreshold is the cosine above which Slerp falls back to a normalized lerp.
const SlerpLinearThreshold = 0.9995

// Slerp interpolates along the shorter great arc between a and b.
// When a and b lie in opposite hemispheres b is negated first.
func Slerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	a = a.Normalize()
	b = b.Normalize()

	dot := a.Dot(b)
	if dot < 0 {
		b = b.Scale(-1)
		dot = -dot
	}
	if dot > SlerpLinearThreshold {
		return Nlerp(a, b, t)
	}

	theta := math.Acos(float64(dot))
	sinTheta := math.Sin(theta)
	wa := float32(math.Sin((1-float64(t))*theta) / sinTheta)
	wb := float32(math.Sin(float64(t)*theta) / sinTheta)
	return a.Scale(wa).Add(b.Scale(wb))
}

// Nlerp is a per-component lerp followed by normalization. It does not flip hemispheres.
func Nlerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	return a.Add(b.Sub(a).Scale(t)).Normalize()
}

// AngleBetween returns the rotation angle (radians, 0..pi) taking a to b.
func AngleBetween(a, b mgl32.Quat) float32 {
	d := Abs(a.Normalize().Dot(b.Normalize()))
	if d > 1 {
		d = 1
	}
	return float32(2 * math.Acos(float64(d)))
}
