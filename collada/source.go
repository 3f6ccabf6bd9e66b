package collada

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/binzume/daeskin/geom"
)

// source is a decoded <source> element.
type source struct {
	id     string
	floats []float32
	names  []string
	stride int
}

// Len returns the number of accessor elements.
func (s *source) Len() int {
	if s.stride <= 0 {
		return 0
	}
	if s.names != nil {
		return len(s.names) / s.stride
	}
	return len(s.floats) / s.stride
}

func (s *source) Vec3(i int) mgl32.Vec3 {
	o := i * s.stride
	return mgl32.Vec3{s.floats[o], s.floats[o+1], s.floats[o+2]}
}

func (s *source) Vec2(i int) mgl32.Vec2 {
	o := i * s.stride
	return mgl32.Vec2{s.floats[o], s.floats[o+1]}
}

func (s *source) Float(i int) float32 {
	return s.floats[i*s.stride]
}

// Matrix reads a row-major 4x4 element.
func (s *source) Matrix(i int) mgl32.Mat4 {
	o := i * s.stride
	return geom.NewMatrix4FromRowMajor(s.floats[o : o+16])
}

func (doc *Document) source(ref string) (*source, error) {
	n := doc.ByID(ref)
	if n == nil || n.Name != "source" {
		return nil, errors.Errorf("source %q not found", ref)
	}
	s := &source{id: n.ID(), stride: 1}
	if acc := n.Path("technique_common", "accessor"); acc != nil {
		s.stride = acc.AttrInt("stride", 1)
	}
	if s.stride <= 0 {
		return nil, errors.Errorf("source %q: invalid stride %d", ref, s.stride)
	}
	if a := n.FindChild("float_array"); a != nil {
		floats, err := a.Floats()
		if err != nil {
			return nil, errors.Wrapf(err, "source %q", ref)
		}
		s.floats = floats
	} else if a := n.FindChild("Name_array"); a != nil {
		s.names = a.Strings()
	} else if a := n.FindChild("IDREF_array"); a != nil {
		s.names = a.Strings()
	} else {
		return nil, errors.Errorf("source %q has no supported array", ref)
	}
	return s, nil
}

// floatSource reads a numeric source with at least minStride values per element.
func (doc *Document) floatSource(ref string, minStride int) (*source, error) {
	s, err := doc.source(ref)
	if err != nil {
		return nil, err
	}
	if s.floats == nil {
		return nil, errors.Errorf("source %q is not a float_array", ref)
	}
	if s.stride < minStride {
		return nil, errors.Errorf("source %q: stride %d, need %d", ref, s.stride, minStride)
	}
	return s, nil
}

// input is a shared <input> of a primitive or skin element.
type input struct {
	semantic string
	source   string
	offset   int
	set      int
}

func readInputs(n *Node) []input {
	var inputs []input
	for _, in := range n.FindChildren("input") {
		inputs = append(inputs, input{
			semantic: in.Attr("semantic"),
			source:   in.Attr("source"),
			offset:   in.AttrInt("offset", 0),
			set:      in.AttrInt("set", 0),
		})
	}
	return inputs
}

func findInput(inputs []input, semantic string) (input, bool) {
	for _, in := range inputs {
		if in.semantic == semantic {
			return in, true
		}
	}
	return input{}, false
}

// inputStride is the number of indices per vertex: max offset + 1.
func inputStride(inputs []input) int {
	stride := 0
	for _, in := range inputs {
		if in.offset+1 > stride {
			stride = in.offset + 1
		}
	}
	return stride
}

// nodeTransform composes the transform elements of a scene <node> in document order.
func nodeTransform(n *Node) (mgl32.Mat4, error) {
	m := mgl32.Ident4()
	for _, c := range n.Children {
		switch c.Name {
		case "matrix":
			v, err := c.Floats()
			if err != nil {
				return m, err
			}
			if len(v) != 16 {
				return m, errors.Errorf("node %q: matrix has %d values", n.ID(), len(v))
			}
			m = m.Mul4(geom.NewMatrix4FromRowMajor(v))
		case "translate":
			v, err := c.Floats()
			if err != nil || len(v) != 3 {
				return m, errors.Errorf("node %q: bad translate", n.ID())
			}
			m = m.Mul4(mgl32.Translate3D(v[0], v[1], v[2]))
		case "rotate":
			v, err := c.Floats()
			if err != nil || len(v) != 4 {
				return m, errors.Errorf("node %q: bad rotate", n.ID())
			}
			axis := mgl32.Vec3{v[0], v[1], v[2]}
			if axis.Len() > 0 {
				m = m.Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(v[3]), axis.Normalize()))
			}
		case "scale":
			v, err := c.Floats()
			if err != nil || len(v) != 3 {
				return m, errors.Errorf("node %q: bad scale", n.ID())
			}
			m = m.Mul4(mgl32.Scale3D(v[0], v[1], v[2]))
		}
	}
	return m, nil
}
