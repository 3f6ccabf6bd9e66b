package gltfutil

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func Load(path string) (*gltf.Document, error) {
	return gltf.Open(path)
}

// Save writes a .glb binary or, for any other extension, a .gltf JSON file.
func Save(doc *gltf.Document, path string) error {
	if strings.ToLower(filepath.Ext(path)) == ".glb" {
		return gltf.SaveBinary(doc, path)
	}
	return gltf.Save(doc, path)
}

// WriteMatrices writes a MAT4 accessor. mgl32 matrices are already column-major.
func WriteMatrices(doc *gltf.Document, mat []mgl32.Mat4) uint32 {
	a := make([][4]float32, len(mat)*4)
	for i, m := range mat {
		for c := 0; c < 4; c++ {
			a[i*4+c] = m.Col(c)
		}
	}
	acc := modeler.WriteTangent(doc, a)
	doc.Accessors[acc].Type = gltf.AccessorMat4
	doc.Accessors[acc].Count /= 4
	doc.BufferViews[*doc.Accessors[acc].BufferView].ByteStride *= 4
	return acc
}

func readMatrix(data []byte) mgl32.Mat4 {
	var mat mgl32.Mat4
	for i := 0; i < 16; i++ {
		d := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		mat[i] = math.Float32frombits(d)
	}
	return mat
}

// ReadMatrices reads a MAT4 accessor from an in-memory buffer.
func ReadMatrices(doc *gltf.Document, acc uint32) ([]mgl32.Mat4, error) {
	accessor := doc.Accessors[acc]
	if accessor.Type != gltf.AccessorMat4 || accessor.BufferView == nil {
		return nil, errors.Errorf("accessor %d is not a MAT4 buffer view", acc)
	}
	view := doc.BufferViews[*accessor.BufferView]
	data := doc.Buffers[view.Buffer].Data
	stride := view.ByteStride
	if stride == 0 {
		stride = 64
	}
	r := make([]mgl32.Mat4, accessor.Count)
	for i := range r {
		offset := view.ByteOffset + accessor.ByteOffset + uint32(i)*stride
		if int(offset)+64 > len(data) {
			return nil, errors.Errorf("accessor %d: matrix %d out of buffer", acc, i)
		}
		r[i] = readMatrix(data[offset : offset+64])
	}
	return r, nil
}

// ContinuousRotations flips quaternions that lie in the opposite hemisphere
// of their predecessor so linear sampler playback takes the short path.
func ContinuousRotations(rotations [][4]float32) {
	for i := 1; i < len(rotations); i++ {
		p, q := rotations[i-1], rotations[i]
		if p[0]*q[0]+p[1]*q[1]+p[2]*q[2]+p[3]*q[3] < 0 {
			rotations[i] = [4]float32{-q[0], -q[1], -q[2], -q[3]}
		}
	}
}
