package collada

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/binzume/daeskin/geom"
	"github.com/binzume/daeskin/mesh"
)

const sectionGeometry = "library_geometries"

type geometryData struct {
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	// one (position, normal, uv) triple per triangle corner
	corners [][3]int

	// face normals index this slice until they are appended after the authored ones
	faceNormals []mgl32.Vec3
	faceCorners []int
	// corners of primitives without TEXCOORD, pointed at a (0, 0) uv at the end
	noUVCorners []int
	normalBase  map[string]sourceRange
	uvBase      map[string]sourceRange
}

// sourceRange is where a source's elements start in the merged list.
type sourceRange struct {
	base, count int
}

func (r sourceRange) index(i int) (int, error) {
	if i < 0 || i >= r.count {
		return 0, errors.Wrapf(mesh.ErrIndexOutOfRange, "index %d of %d", i, r.count)
	}
	return r.base + i, nil
}

// loadGeometry reads the <mesh> of a geometry. transform is applied to
// positions and its normal matrix to normals.
func (doc *Document) loadGeometry(ref string, transform mgl32.Mat4) (*geometryData, error) {
	g := doc.ByID(ref)
	if g == nil || g.Name != "geometry" {
		return nil, malformedf(sectionGeometry, "geometry %q not found", ref)
	}
	m := g.FindChild("mesh")
	if m == nil {
		return nil, malformedf(sectionGeometry, "geometry %q has no mesh", ref)
	}

	vertices := m.FindChild("vertices")
	posIn, ok := findInput(readInputs(vertices), "POSITION")
	if !ok {
		return nil, malformedf(sectionGeometry, "geometry %q: no POSITION input", ref)
	}
	posSrc, err := doc.floatSource(posIn.source, 3)
	if err != nil {
		return nil, malformedf(sectionGeometry, "geometry %q: bad POSITION source: %v", ref, err)
	}

	data := &geometryData{normalBase: map[string]sourceRange{}, uvBase: map[string]sourceRange{}}
	for i := 0; i < posSrc.Len(); i++ {
		data.positions = append(data.positions, mgl32.TransformCoordinate(posSrc.Vec3(i), transform))
	}

	normalMat := transform.Mat3().Inv().Transpose()
	for _, prim := range m.Children {
		if prim.Name != "triangles" && prim.Name != "polylist" {
			continue
		}
		inputs := readInputs(prim)
		vtxIn, ok := findInput(inputs, "VERTEX")
		if !ok {
			return nil, malformedf(sectionGeometry, "geometry %q: <%s> without VERTEX input", ref, prim.Name)
		}
		normalIn, hasNormal := findInput(inputs, "NORMAL")
		uvIn, hasUV := findInput(inputs, "TEXCOORD")

		// each source is appended once; its indices are offset by where it starts
		var normalRange, uvRange sourceRange
		if hasNormal {
			if normalRange, err = data.addNormals(doc, normalIn.source, normalMat); err != nil {
				return nil, malformedf(sectionGeometry, "geometry %q: bad NORMAL source: %v", ref, err)
			}
		}
		if hasUV {
			if uvRange, err = data.addUVs(doc, uvIn.source); err != nil {
				return nil, malformedf(sectionGeometry, "geometry %q: bad TEXCOORD source: %v", ref, err)
			}
		}

		stride := inputStride(inputs)
		p, err := prim.FindChild("p").Ints()
		if err != nil {
			return nil, malformed(sectionGeometry, err)
		}
		corner := func(i int) ([3]int, error) {
			o := i * stride
			if o+stride > len(p) {
				return [3]int{}, errors.Wrapf(mesh.ErrIndexOutOfRange, "<p> index %d", o)
			}
			c := [3]int{p[o+vtxIn.offset], mesh.NoIndex, mesh.NoIndex}
			var err error
			if hasNormal {
				if c[1], err = normalRange.index(p[o+normalIn.offset]); err != nil {
					return c, errors.Wrap(err, "normal")
				}
			}
			if hasUV {
				if c[2], err = uvRange.index(p[o+uvIn.offset]); err != nil {
					return c, errors.Wrap(err, "texcoord")
				}
			}
			return c, nil
		}

		var polygons [][][3]int
		if prim.Name == "triangles" {
			count := prim.AttrInt("count", len(p)/(stride*3))
			for t := 0; t < count; t++ {
				poly := make([][3]int, 3)
				for k := range poly {
					if poly[k], err = corner(t*3 + k); err != nil {
						return nil, malformed(sectionGeometry, err)
					}
				}
				polygons = append(polygons, poly)
			}
		} else {
			vcount, err := prim.FindChild("vcount").Ints()
			if err != nil {
				return nil, malformed(sectionGeometry, err)
			}
			pos := 0
			for _, n := range vcount {
				if n < 3 {
					return nil, malformedf(sectionGeometry, "geometry %q: polygon with %d vertices", ref, n)
				}
				poly := make([][3]int, n)
				for k := range poly {
					if poly[k], err = corner(pos + k); err != nil {
						return nil, malformed(sectionGeometry, err)
					}
				}
				pos += n
				polygons = append(polygons, poly)
			}
		}

		for _, poly := range polygons {
			if err := data.addPolygon(poly, hasNormal); err != nil {
				return nil, malformed(sectionGeometry, err)
			}
		}
	}
	if len(data.corners) == 0 {
		return nil, malformedf(sectionGeometry, "geometry %q has no triangles", ref)
	}
	base := len(data.normals)
	data.normals = append(data.normals, data.faceNormals...)
	for _, i := range data.faceCorners {
		data.corners[i][1] += base
	}
	if len(data.noUVCorners) > 0 {
		data.uvs = append(data.uvs, mgl32.Vec2{0, 0})
		for _, i := range data.noUVCorners {
			data.corners[i][2] = len(data.uvs) - 1
		}
	}
	return data, nil
}

func (data *geometryData) addNormals(doc *Document, ref string, normalMat mgl32.Mat3) (sourceRange, error) {
	if r, ok := data.normalBase[ref]; ok {
		return r, nil
	}
	src, err := doc.floatSource(ref, 3)
	if err != nil {
		return sourceRange{}, err
	}
	r := sourceRange{base: len(data.normals), count: src.Len()}
	data.normalBase[ref] = r
	for i := 0; i < src.Len(); i++ {
		data.normals = append(data.normals, normalMat.Mul3x1(src.Vec3(i)))
	}
	return r, nil
}

func (data *geometryData) addUVs(doc *Document, ref string) (sourceRange, error) {
	if r, ok := data.uvBase[ref]; ok {
		return r, nil
	}
	src, err := doc.floatSource(ref, 2)
	if err != nil {
		return sourceRange{}, err
	}
	r := sourceRange{base: len(data.uvs), count: src.Len()}
	data.uvBase[ref] = r
	for i := 0; i < src.Len(); i++ {
		uv := src.Vec2(i)
		data.uvs = append(data.uvs, mgl32.Vec2{uv[0], 1 - uv[1]})
	}
	return r, nil
}

// addPolygon triangulates a polygon. Without authored normals every
// triangle gets its own face normal.
func (data *geometryData) addPolygon(poly [][3]int, hasNormal bool) error {
	pts := make([]mgl32.Vec3, len(poly))
	for i, c := range poly {
		if c[0] < 0 || c[0] >= len(data.positions) {
			return errors.Wrapf(mesh.ErrIndexOutOfRange, "position %d of %d", c[0], len(data.positions))
		}
		pts[i] = data.positions[c[0]]
	}
	for _, tri := range geom.Triangulate(pts) {
		corners := [3][3]int{poly[tri[0]], poly[tri[1]], poly[tri[2]]}
		if !hasNormal {
			p0, p1, p2 := pts[tri[0]], pts[tri[1]], pts[tri[2]]
			n := p1.Sub(p0).Cross(p2.Sub(p0))
			if n.Len() > 0 {
				n = n.Normalize()
			} else {
				n = mgl32.Vec3{0, 1, 0}
			}
			data.faceNormals = append(data.faceNormals, n)
			for k := range corners {
				corners[k][1] = len(data.faceNormals) - 1
				data.faceCorners = append(data.faceCorners, len(data.corners)+k)
			}
		}
		for k := range corners {
			if corners[k][2] == mesh.NoIndex {
				data.noUVCorners = append(data.noUVCorners, len(data.corners)+k)
			}
		}
		data.corners = append(data.corners, corners[0], corners[1], corners[2])
	}
	return nil
}

// buildMesh deduplicates corners against the skinned positions.
func (data *geometryData) buildMesh(weights []*mesh.VertexSkinData) (*mesh.SkinnedMesh, error) {
	d := mesh.NewDeduplicator(data.positions, weights, len(data.normals), len(data.uvs))
	indices := make([]uint32, 0, len(data.corners))
	for _, c := range data.corners {
		i, err := d.Resolve(c[0], c[1], c[2])
		if err != nil {
			return nil, malformed(sectionGeometry, err)
		}
		indices = append(indices, uint32(i))
	}
	d.Finish()
	mesh.AccumulateTangents(d, data.uvs, indices)
	m, err := mesh.Build(d, data.normals, data.uvs, indices)
	if err != nil {
		return nil, malformed(sectionGeometry, err)
	}
	return m, nil
}
