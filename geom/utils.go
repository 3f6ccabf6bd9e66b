package geom

import "github.com/go-gl/mathgl/mgl32"

// TangentEpsilon is the smallest UV-area determinant treated as non-degenerate.
const TangentEpsilon = 1e-8

func IsInTriangle(p, a, b, c mgl32.Vec3) bool {
	ab, bc, ca := b.Sub(a), c.Sub(b), a.Sub(c)
	c1, c2, c3 := ab.Cross(p.Sub(a)), bc.Cross(p.Sub(b)), ca.Cross(p.Sub(c))
	return c1.Dot(c2) > 0 && c2.Dot(c3) > 0 && c3.Dot(c1) > 0
}

// Triangulate splits a planar simple polygon into triangles by ear clipping.
// Either winding is accepted: the facing comes from the summed corner normal
// and the returned triangles keep the input winding. Returned triangles index
// into poly.
func Triangulate(poly []mgl32.Vec3) [][3]int {
	var dst [][3]int
	if len(poly) < 3 {
		return dst
	}
	if len(poly) == 3 {
		return append(dst, [3]int{0, 1, 2})
	}
	var n mgl32.Vec3
	ii := make([]int, len(poly))
	for i := range poly {
		ii[i] = i
		v0 := poly[(i+len(poly)-1)%len(poly)]
		v1 := poly[i]
		v2 := poly[(i+1)%len(poly)]
		n = n.Add(v0.Sub(v1).Cross(v2.Sub(v1)))
	}
	if n.Len() > 0 {
		n = n.Normalize()
	}

	// O(N*N)...
	count := len(ii)
	for count >= 3 {
		lastCount := count
		for i := count - 1; i >= 0; i-- {
			i0 := ii[(i+count-1)%count]
			i1 := ii[i]
			i2 := ii[(i+1)%count]
			v0 := poly[i0]
			v1 := poly[i1]
			v2 := poly[i2]
			if v0.Sub(v1).Cross(v2.Sub(v1)).Dot(n) >= 0 {
				ok := true
				var tmp []int
				tmp = append(tmp, ii[:i]...)
				tmp = append(tmp, ii[i+1:]...)
				for _, i := range tmp {
					if IsInTriangle(poly[i], v0, v1, v2) {
						ok = false
						break
					}
				}
				if ok {
					dst = append(dst, [3]int{i0, i1, i2})
					ii = tmp
					count--
					if count < 3 {
						break
					}
				}
			}
		}
		if lastCount == count {
			// error: maybe self-intersecting polygon
			for i := 0; i < len(ii)-2; i++ {
				dst = append(dst, [3]int{ii[0], ii[i+1], ii[i+2]})
			}
			break
		}
	}
	return dst
}

// TriangleTangent solves the tangent direction of a triangle from its edge and UV deltas.
// A degenerate UV mapping uses a unit scale instead of dividing by zero.
func TriangleTangent(p0, p1, p2 mgl32.Vec3, uv0, uv1, uv2 mgl32.Vec2) mgl32.Vec3 {
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	du1, dv1 := uv1[0]-uv0[0], uv1[1]-uv0[1]
	du2, dv2 := uv2[0]-uv0[0], uv2[1]-uv0[1]

	r := float32(1)
	if denom := du1*dv2 - du2*dv1; Abs(denom) > TangentEpsilon {
		r = 1 / denom
	}
	return e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(r)
}
