package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSlerp(t *testing.T) {
	const eps = 0.00001

	a := mgl32.QuatIdent()
	b := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0})

	assert.Equal(t, a, Slerp(a, b, 0), "t=0 must reproduce the first rotation exactly")
	assert.True(t, Slerp(a, b, 1).ApproxEqualThreshold(b, eps))

	half := Slerp(a, b, 0.5)
	expected := mgl32.QuatRotate(math.Pi/4, mgl32.Vec3{0, 1, 0})
	assert.True(t, half.ApproxEqualThreshold(expected, eps), "%v != %v", half, expected)
	assert.InDelta(t, 1, half.Len(), eps)
}

func TestSlerpShortestArc(t *testing.T) {
	const eps = 0.0001

	a := mgl32.QuatRotate(mgl32.DegToRad(10), mgl32.Vec3{0, 0, 1})
	// Same orientation family but stored in the opposite hemisphere.
	b := mgl32.QuatRotate(mgl32.DegToRad(100), mgl32.Vec3{0, 0, 1}).Scale(-1)
	assert.Less(t, a.Dot(b), float32(0))

	direct := AngleBetween(a, b)
	assert.InDelta(t, mgl32.DegToRad(90), direct, eps)

	for _, f := range []float32{0.1, 0.25, 0.5, 0.75, 0.9} {
		q := Slerp(a, b, f)
		sum := AngleBetween(a, q) + AngleBetween(q, b)
		assert.InDelta(t, direct, sum, eps, "t=%v", f)
		assert.InDelta(t, direct*f, AngleBetween(a, q), eps, "t=%v", f)
	}
}

func TestSlerpNearlyParallel(t *testing.T) {
	a := mgl32.QuatRotate(0.001, mgl32.Vec3{1, 0, 0})
	b := mgl32.QuatRotate(0.002, mgl32.Vec3{1, 0, 0})
	q := Slerp(a, b, 0.5)
	assert.InDelta(t, 1, q.Len(), 0.00001)
	assert.False(t, math.IsNaN(float64(q.W)))
}

func TestNlerp(t *testing.T) {
	a := mgl32.QuatIdent()
	b := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{1, 0, 0})
	q := Nlerp(a, b, 0.5)
	assert.InDelta(t, 1, q.Len(), 0.00001)
	assert.True(t, q.ApproxEqualThreshold(mgl32.QuatRotate(math.Pi/4, mgl32.Vec3{1, 0, 0}), 0.0001))
}
