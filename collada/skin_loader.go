package collada

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/binzume/daeskin/geom"
	"github.com/binzume/daeskin/mesh"
)

const sectionSkin = "library_controllers"

// skinData is the joint order and per-position influences of a <skin>.
type skinData struct {
	controllerID string
	geometryRef  string
	jointNames   []string
	weights      []*mesh.VertexSkinData
	bindShape    mgl32.Mat4
}

// findSkin returns the first <skin> controller, or nil.
func (doc *Document) findSkin() (controller, skin *Node) {
	for _, c := range doc.Library(sectionSkin).FindChildren("controller") {
		if s := c.FindChild("skin"); s != nil {
			return c, s
		}
	}
	return nil, nil
}

func (doc *Document) loadSkin(maxWeights int) (*skinData, error) {
	controller, skinNode := doc.findSkin()
	if skinNode == nil {
		return nil, ErrNoSkinData
	}
	skin := &skinData{
		controllerID: controller.ID(),
		geometryRef:  skinNode.Attr("source"),
		bindShape:    mgl32.Ident4(),
	}
	if bsm := skinNode.FindChild("bind_shape_matrix"); bsm != nil {
		v, err := bsm.Floats()
		if err != nil {
			return nil, malformed(sectionSkin, err)
		}
		if len(v) != 16 {
			return nil, malformedf(sectionSkin, "bind_shape_matrix has %d values", len(v))
		}
		skin.bindShape = geom.NewMatrix4FromRowMajor(v)
	}

	jointInput, ok := findInput(readInputs(skinNode.FindChild("joints")), "JOINT")
	if !ok {
		return nil, malformedf(sectionSkin, "controller %q: no JOINT input", skin.controllerID)
	}
	joints, err := doc.source(jointInput.source)
	if err != nil {
		return nil, malformed(sectionSkin, err)
	}
	if joints.names == nil {
		return nil, malformedf(sectionSkin, "joint source %q is not a name array", joints.id)
	}
	skin.jointNames = joints.names

	vw := skinNode.FindChild("vertex_weights")
	if vw == nil {
		return nil, malformedf(sectionSkin, "controller %q: no vertex_weights", skin.controllerID)
	}
	inputs := readInputs(vw)
	jointIn, ok1 := findInput(inputs, "JOINT")
	weightIn, ok2 := findInput(inputs, "WEIGHT")
	if !ok1 || !ok2 {
		return nil, malformedf(sectionSkin, "vertex_weights needs JOINT and WEIGHT inputs")
	}
	weights, err := doc.floatSource(weightIn.source, 1)
	if err != nil {
		return nil, malformed(sectionSkin, err)
	}
	vcount, err := vw.FindChild("vcount").Ints()
	if err != nil {
		return nil, malformed(sectionSkin, err)
	}
	v, err := vw.FindChild("v").Ints()
	if err != nil {
		return nil, malformed(sectionSkin, err)
	}

	stride := inputStride(inputs)
	pos := 0
	for vi, n := range vcount {
		s := &mesh.VertexSkinData{}
		for k := 0; k < n; k++ {
			if pos+stride > len(v) {
				return nil, malformedf(sectionSkin, "vertex %d: <v> too short", vi)
			}
			joint := v[pos+jointIn.offset]
			w := v[pos+weightIn.offset]
			pos += stride
			if w < 0 || w >= weights.Len() {
				return nil, malformedf(sectionSkin, "vertex %d: weight index %d of %d", vi, w, weights.Len())
			}
			if joint == -1 {
				// bound to the bind shape itself
				continue
			}
			if joint < 0 || joint >= len(skin.jointNames) {
				return nil, malformedf(sectionSkin, "vertex %d: joint index %d of %d", vi, joint, len(skin.jointNames))
			}
			s.AddJointEffect(joint, weights.Float(w))
		}
		if s.Empty() {
			s.AddJointEffect(0, 1)
		}
		s.Limit(maxWeights)
		skin.weights = append(skin.weights, s)
	}
	return skin, nil
}
