package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// NoIndex marks an unset attribute index or the end of a duplicate chain.
const NoIndex = -1

var ErrIndexOutOfRange = errors.New("attribute index out of range")

// VertexData is an import-time vertex. Vertices that share a position but
// differ in normal or UV are linked through Duplicate.
type VertexData struct {
	Index       int
	Position    mgl32.Vec3
	Skin        *VertexSkinData
	NormalIndex int
	UVIndex     int
	Duplicate   int
	Tangents    []mgl32.Vec3
}

// IsSet reports whether a normal/UV pair has been assigned.
func (v *VertexData) IsSet() bool {
	return v.NormalIndex != NoIndex && v.UVIndex != NoIndex
}

func (v *VertexData) HasSameAttributes(normal, uv int) bool {
	return v.NormalIndex == normal && v.UVIndex == uv
}

// AddTangent accumulates a per-triangle tangent.
func (v *VertexData) AddTangent(t mgl32.Vec3) {
	v.Tangents = append(v.Tangents, t)
}

// AverageTangent returns the normalized mean of accumulated tangents, or zero.
func (v *VertexData) AverageTangent() mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, t := range v.Tangents {
		sum = sum.Add(t)
	}
	if sum.Len() == 0 {
		return sum
	}
	return sum.Normalize()
}

// Deduplicator resolves (position, normal, uv) triples to output vertices.
// Splitting happens only when a position is reached with a different
// normal/UV pair; the arena only grows.
type Deduplicator struct {
	vertices    []*VertexData
	normalCount int
	uvCount     int
}

// NewDeduplicator creates one arena vertex per position. skins may be nil
// or shorter than positions; missing entries get an empty influence list.
func NewDeduplicator(positions []mgl32.Vec3, skins []*VertexSkinData, normalCount, uvCount int) *Deduplicator {
	d := &Deduplicator{
		vertices:    make([]*VertexData, 0, len(positions)),
		normalCount: normalCount,
		uvCount:     uvCount,
	}
	for i, p := range positions {
		skin := &VertexSkinData{}
		if i < len(skins) && skins[i] != nil {
			skin = skins[i]
		}
		d.vertices = append(d.vertices, &VertexData{
			Index:       i,
			Position:    p,
			Skin:        skin,
			NormalIndex: NoIndex,
			UVIndex:     NoIndex,
			Duplicate:   NoIndex,
		})
	}
	return d
}

// Resolve returns the arena index of the vertex carrying the given
// position with the given normal and UV, creating a duplicate if needed.
func (d *Deduplicator) Resolve(pos, normal, uv int) (int, error) {
	if pos < 0 || pos >= len(d.vertices) {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "position %d of %d", pos, len(d.vertices))
	}
	if normal < 0 || normal >= d.normalCount {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "normal %d of %d", normal, d.normalCount)
	}
	if uv < 0 || uv >= d.uvCount {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "uv %d of %d", uv, d.uvCount)
	}

	v := d.vertices[pos]
	if !v.IsSet() {
		v.NormalIndex = normal
		v.UVIndex = uv
		return v.Index, nil
	}
	for {
		if v.HasSameAttributes(normal, uv) {
			return v.Index, nil
		}
		if v.Duplicate == NoIndex {
			break
		}
		v = d.vertices[v.Duplicate]
	}

	dup := &VertexData{
		Index:       len(d.vertices),
		Position:    v.Position,
		Skin:        v.Skin,
		NormalIndex: normal,
		UVIndex:     uv,
		Duplicate:   NoIndex,
	}
	d.vertices = append(d.vertices, dup)
	v.Duplicate = dup.Index
	return dup.Index, nil
}

// Finish assigns normal 0 and UV 0 to vertices no primitive referenced.
func (d *Deduplicator) Finish() {
	for _, v := range d.vertices {
		if !v.IsSet() {
			v.NormalIndex = 0
			v.UVIndex = 0
		}
	}
}

func (d *Deduplicator) Vertex(i int) *VertexData {
	return d.vertices[i]
}

func (d *Deduplicator) Vertices() []*VertexData {
	return d.vertices
}

func (d *Deduplicator) Len() int {
	return len(d.vertices)
}
