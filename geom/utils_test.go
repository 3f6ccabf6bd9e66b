package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTriangulate(t *testing.T) {
	tris := Triangulate([]mgl32.Vec3{
		{0, 0, 0},
		{0, 1, 0},
		{0, 1, 1},
	})
	assert.Equal(t, [][3]int{{0, 1, 2}}, tris)

	tris2 := Triangulate([]mgl32.Vec3{
		{0, 0, 0},
		{0, 1, 0},
		{0, 1, 1},
		{0, 0, 1},
	})
	assert.Len(t, tris2, 2)

	// non-convex
	tris3 := Triangulate([]mgl32.Vec3{
		{0, 0, 0},
		{0, 1, 0},
		{0, 1, 1},
		{0, 0.8, 0.2},
	})
	assert.Len(t, tris3, 2)

	// Empty
	if len(Triangulate(nil)) != 0 {
		t.Error("not empty")
	}
}

func TestTriangulateWinding(t *testing.T) {
	// L shape, counter-clockwise seen from +Z
	ccw := []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}, {2, 1, 0}, {1, 1, 0}, {1, 2, 0}, {0, 2, 0}}
	cw := make([]mgl32.Vec3, len(ccw))
	for i, p := range ccw {
		cw[len(ccw)-1-i] = p
	}

	for name, c := range map[string]struct {
		poly []mgl32.Vec3
		z    float32
	}{
		"ccw": {ccw, 1},
		"cw":  {cw, -1},
	} {
		tris := Triangulate(c.poly)
		assert.Len(t, tris, len(c.poly)-2, name)
		var area float32
		for _, tri := range tris {
			p0, p1, p2 := c.poly[tri[0]], c.poly[tri[1]], c.poly[tri[2]]
			n := p1.Sub(p0).Cross(p2.Sub(p0))
			assert.Greater(t, n.Z()*c.z, float32(0), "%s: %v", name, tri)
			area += n.Len() / 2
		}
		assert.InDelta(t, 3, area, 0.00001, name)
	}
}

func TestTriangleTangent(t *testing.T) {
	tangent := TriangleTangent(
		mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0},
		mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, mgl32.Vec2{0, 1})
	assert.True(t, tangent.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 0.00001), "%v", tangent)

	// UVs scaled by 2 halve the tangent length.
	tangent = TriangleTangent(
		mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0},
		mgl32.Vec2{0, 0}, mgl32.Vec2{2, 0}, mgl32.Vec2{0, 2})
	assert.True(t, tangent.ApproxEqualThreshold(mgl32.Vec3{0.5, 0, 0}, 0.00001), "%v", tangent)
}

func TestTriangleTangentDegenerateUV(t *testing.T) {
	tangent := TriangleTangent(
		mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0},
		mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{0.5, 0.5})
	for _, v := range tangent {
		assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
	}
}
