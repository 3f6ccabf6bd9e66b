package animation

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binzume/daeskin/geom"
	"github.com/binzume/daeskin/skeleton"
)

func TestBracket(t *testing.T) {
	times := []float32{0.5, 1, 1, 2}
	for _, c := range []struct {
		t          float32
		prev, next int
		alpha      float32
	}{
		{0, 0, 0, 0},
		{0.5, 0, 1, 0},
		{0.75, 0, 1, 0.5},
		{1, 2, 3, 0},
		{1.5, 2, 3, 0.5},
		{2, 3, 3, 0},
		{3, 3, 3, 0},
	} {
		prev, next, alpha := Bracket(times, c.t)
		assert.Equal(t, c.prev, prev, "t=%v", c.t)
		assert.Equal(t, c.next, next, "t=%v", c.t)
		assert.InDelta(t, c.alpha, alpha, eps, "t=%v", c.t)
	}
	prev, next, alpha := Bracket(nil, 1)
	assert.Equal(t, []float32{0, 0, 0}, []float32{float32(prev), float32(next), alpha})
}

func TestClipValidate(t *testing.T) {
	pose := map[string]JointTransform{"a": IdentityTransform(), "b": IdentityTransform()}

	_, err := NewClip("empty", 1, nil)
	assert.True(t, errors.Is(err, ErrInvalidClip))

	_, err = NewClip("order", 0, []Keyframe{{Time: 1, Pose: pose}, {Time: 0.5, Pose: pose}})
	assert.True(t, errors.Is(err, ErrInvalidClip))

	_, err = NewClip("missing", 0, []Keyframe{{Time: 0, Pose: pose}, {Time: 1, Pose: map[string]JointTransform{"a": IdentityTransform()}}})
	assert.True(t, errors.Is(err, ErrMissingJoint))

	_, err = NewClip("renamed", 0, []Keyframe{{Time: 0, Pose: pose}, {Time: 1, Pose: map[string]JointTransform{"a": IdentityTransform(), "c": IdentityTransform()}}})
	assert.True(t, errors.Is(err, ErrMissingJoint))

	clip, err := NewClip("ok", 0, []Keyframe{{Time: 0, Pose: pose}, {Time: 1.5, Pose: pose}})
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), clip.Length)
	assert.Equal(t, []string{"a", "b"}, clip.JointNames())
}

func TestBindMissingJoint(t *testing.T) {
	s := skeleton.NewSkeleton(2)
	require.NoError(t, s.AddJoint(0, "root", mgl32.Ident4(), skeleton.NoJoint))
	require.NoError(t, s.AddJoint(1, "arm", mgl32.Ident4(), 0))

	clip := &Clip{Name: "partial", Length: 1, Keyframes: []Keyframe{
		{Time: 0, Pose: map[string]JointTransform{"root": IdentityTransform()}},
	}}
	_, err := Bind(clip, s)
	assert.True(t, errors.Is(err, ErrMissingJoint))

	_, err = Bind(&Clip{Name: "none"}, s)
	assert.True(t, errors.Is(err, ErrInvalidClip))
}

func TestJointTransformFromMatrix(t *testing.T) {
	rot := mgl32.QuatRotate(0.7, mgl32.Vec3{1, 2, 3}.Normalize())
	m := mgl32.Translate3D(1, 2, 3).Mul4(rot.Mat4())
	jt := NewJointTransformFromMatrix(m)

	assert.True(t, jt.Position.ApproxEqualThreshold(mgl32.Vec3{1, 2, 3}, eps))
	assert.True(t, jt.Rotation.OrientationEqualThreshold(rot, eps))
	assert.True(t, jt.LocalTransform().ApproxEqualThreshold(m, eps))
}

func TestInterpolateShortestArc(t *testing.T) {
	a := JointTransform{Rotation: mgl32.QuatRotate(mgl32.DegToRad(170), mgl32.Vec3{0, 1, 0})}
	b := JointTransform{
		Position: mgl32.Vec3{2, 0, 0},
		Rotation: mgl32.QuatRotate(mgl32.DegToRad(-170), mgl32.Vec3{0, 1, 0}),
	}
	mid := Interpolate(a, b, 0.5)
	assert.True(t, mid.Position.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, eps))

	// 20 degrees apart through 180, not 340 through 0
	assert.InDelta(t, mgl32.DegToRad(20), geom.AngleBetween(a.Rotation, b.Rotation), 0.0001)
	assert.InDelta(t, mgl32.DegToRad(10), geom.AngleBetween(a.Rotation, mid.Rotation), 0.0001)
	assert.True(t, mid.Rotation.OrientationEqualThreshold(mgl32.QuatRotate(math.Pi, mgl32.Vec3{0, 1, 0}), 0.0001))

	assert.Equal(t, a, Interpolate(a, b, 0))
}

func TestBindByAlias(t *testing.T) {
	s := skeleton.NewSkeleton(1)
	require.NoError(t, s.AddJoint(0, "Bone", mgl32.Ident4(), skeleton.NoJoint))
	s.AddAlias(0, "Armature_Bone")

	moved := JointTransform{Position: mgl32.Vec3{1, 0, 0}, Rotation: mgl32.QuatIdent()}
	clip := &Clip{Name: "ids", Length: 1, Keyframes: []Keyframe{
		{Time: 0, Pose: map[string]JointTransform{"Armature_Bone": moved}},
	}}
	bound, err := Bind(clip, s)
	require.NoError(t, err)
	assert.Equal(t, moved, bound.Pose(0, 0))
}
