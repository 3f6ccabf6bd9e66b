package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/binzume/daeskin/geom"
)

// SkinnedVertex is the render-ready vertex layout.
type SkinnedVertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Tangent  mgl32.Vec3
	Joints   [MaxJointInfluences]int32
	Weights  [MaxJointInfluences]float32
}

type SkinnedMesh struct {
	Vertices []SkinnedVertex
	Indices  []uint32
	Min, Max mgl32.Vec3
}

func (m *SkinnedMesh) Empty() bool {
	return len(m.Vertices) == 0
}

// TriangleCount returns len(Indices) / 3.
func (m *SkinnedMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// AccumulateTangents adds the tangent of every triangle to its three arena
// vertices. uvs are looked up through each vertex's UVIndex.
func AccumulateTangents(d *Deduplicator, uvs []mgl32.Vec2, indices []uint32) {
	uvOf := func(v *VertexData) mgl32.Vec2 {
		if v.UVIndex >= 0 && v.UVIndex < len(uvs) {
			return uvs[v.UVIndex]
		}
		return mgl32.Vec2{}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		v0, v1, v2 := d.Vertex(int(indices[i])), d.Vertex(int(indices[i+1])), d.Vertex(int(indices[i+2]))
		t := geom.TriangleTangent(v0.Position, v1.Position, v2.Position, uvOf(v0), uvOf(v1), uvOf(v2))
		v0.AddTangent(t)
		v1.AddTangent(t)
		v2.AddTangent(t)
	}
}

// OrthogonalTangent makes t perpendicular to the unit normal n and normalizes it.
// A degenerate tangent is replaced by an axis perpendicular to n.
func OrthogonalTangent(t, n mgl32.Vec3) mgl32.Vec3 {
	t = t.Sub(n.Mul(n.Dot(t)))
	if t.LenSqr() < geom.TangentEpsilon {
		if geom.Abs(n[0]) < 0.9 {
			t = mgl32.Vec3{1, 0, 0}.Sub(n.Mul(n[0]))
		} else {
			t = mgl32.Vec3{0, 1, 0}.Sub(n.Mul(n[1]))
		}
	}
	return t.Normalize()
}

// Build flattens the deduplicated arena into a SkinnedMesh. Every arena
// vertex must have its normal and UV indices set (see Deduplicator.Finish).
func Build(d *Deduplicator, normals []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32) (*SkinnedMesh, error) {
	m := &SkinnedMesh{
		Vertices: make([]SkinnedVertex, d.Len()),
		Indices:  indices,
	}
	for _, idx := range indices {
		if int(idx) >= d.Len() {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "vertex %d of %d", idx, d.Len())
		}
	}

	lo := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for i, v := range d.Vertices() {
		if v.NormalIndex < 0 || v.NormalIndex >= len(normals) {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "normal %d of %d", v.NormalIndex, len(normals))
		}
		if v.UVIndex < 0 || v.UVIndex >= len(uvs) {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "uv %d of %d", v.UVIndex, len(uvs))
		}
		n := normals[v.NormalIndex]
		if n.Len() > 0 {
			n = n.Normalize()
		}
		out := &m.Vertices[i]
		out.Position = v.Position
		out.Normal = n
		out.UV = uvs[v.UVIndex]
		out.Tangent = OrthogonalTangent(v.AverageTangent(), n)
		out.Joints, out.Weights = v.Skin.Influences()

		for k := 0; k < 3; k++ {
			lo[k] = float32(math.Min(float64(lo[k]), float64(v.Position[k])))
			hi[k] = float32(math.Max(float64(hi[k]), float64(v.Position[k])))
		}
	}
	if len(m.Vertices) > 0 {
		m.Min, m.Max = lo, hi
	}
	return m, nil
}

// Deform applies linear blend skinning on the CPU. jointMatrices are the
// skinning matrices produced by an Animator. dst is reused when large enough.
func (m *SkinnedMesh) Deform(jointMatrices []mgl32.Mat4, dst []mgl32.Vec3) []mgl32.Vec3 {
	if cap(dst) < len(m.Vertices) {
		dst = make([]mgl32.Vec3, len(m.Vertices))
	}
	dst = dst[:len(m.Vertices)]
	for i := range m.Vertices {
		v := &m.Vertices[i]
		p := v.Position.Vec4(1)
		var out mgl32.Vec4
		for k, j := range v.Joints {
			w := v.Weights[k]
			if w == 0 || int(j) >= len(jointMatrices) {
				continue
			}
			out = out.Add(jointMatrices[j].Mul4x1(p).Mul(w))
		}
		dst[i] = out.Vec3()
	}
	return dst
}
