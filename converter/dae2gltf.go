package converter

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/binzume/daeskin/animation"
	"github.com/binzume/daeskin/collada"
	"github.com/binzume/daeskin/geom"
	"github.com/binzume/daeskin/gltfutil"
)

const unlitMaterialExt = "KHR_materials_unlit"

var ErrEmptyModel = errors.New("empty model")

type DAEToGLTFOption struct {
	Name       string  // Default: "model"
	Scale      float32 // Default: 1
	ForceUnlit bool

	TextureReCompress      bool
	TextureBytesThreshold  int64 // 0: unlimited
	TextureResolutionLimit int   // 0: unlimited
	TextureScale           float32
}

type daeToGltf struct {
	*DAEToGLTFOption
	*gltf.Document
	// JointNodes maps joint index to glTF node index.
	JointNodes []uint32
}

func NewDAEToGLTFConverter(options *DAEToGLTFOption) *daeToGltf {
	if options == nil {
		options = &DAEToGLTFOption{}
	}
	if options.Name == "" {
		options.Name = "model"
	}
	if options.Scale == 0 {
		options.Scale = 1.0
	}
	if options.TextureScale == 0 {
		options.TextureScale = 1.0
	}
	return &daeToGltf{
		DAEToGLTFOption: options,
		Document:        gltf.NewDocument(),
	}
}

// scaled conjugates a rigid transform by the uniform output scale.
func (c *daeToGltf) scaled(m mgl32.Mat4) mgl32.Mat4 {
	s := c.Scale
	return mgl32.Scale3D(s, s, s).Mul4(m).Mul4(mgl32.Scale3D(1/s, 1/s, 1/s))
}

func (c *daeToGltf) addJointNodes(model *collada.ModelData) {
	skel := model.Skeleton
	base := uint32(len(c.Nodes))
	c.JointNodes = make([]uint32, skel.JointCount())
	for i := range skel.Joints {
		j := &skel.Joints[i]
		pos, rot, scale := geom.Decompose(j.LocalBindTransform)
		node := &gltf.Node{
			Name:        j.Name,
			Translation: [3]float32{pos.X() * c.Scale, pos.Y() * c.Scale, pos.Z() * c.Scale},
			Rotation:    [4]float32{rot.V.X(), rot.V.Y(), rot.V.Z(), rot.W},
			Scale:       [3]float32{scale.X(), scale.Y(), scale.Z()},
		}
		for _, ch := range j.Children {
			node.Children = append(node.Children, base+uint32(ch))
		}
		c.JointNodes[i] = base + uint32(i)
		c.Nodes = append(c.Nodes, node)
	}
	c.Scenes[0].Nodes = append(c.Scenes[0].Nodes, c.JointNodes[skel.Root])
}

func (c *daeToGltf) addSkin(model *collada.ModelData) uint32 {
	skel := model.Skeleton
	invmats := make([]mgl32.Mat4, skel.JointCount())
	for i := range skel.Joints {
		invmats[i] = c.scaled(skel.Joints[i].InverseBindTransform)
	}
	c.Skins = append(c.Skins, &gltf.Skin{
		Name:                c.Name,
		Joints:              c.JointNodes,
		Skeleton:            gltf.Index(c.JointNodes[skel.Root]),
		InverseBindMatrices: gltf.Index(gltfutil.WriteMatrices(c.Document, invmats)),
	})
	return uint32(len(c.Skins) - 1)
}

func (c *daeToGltf) addMesh(model *collada.ModelData, material *uint32) uint32 {
	m := model.Mesh
	n := len(m.Vertices)
	positions := make([][3]float32, n)
	normals := make([][3]float32, n)
	texcoords := make([][2]float32, n)
	tangents := make([][4]float32, n)
	joints := make([][4]uint16, n)
	weights := make([][4]float32, n)
	for i, v := range m.Vertices {
		p := v.Position.Mul(c.Scale)
		positions[i] = [3]float32{p.X(), p.Y(), p.Z()}
		normals[i] = [3]float32{v.Normal.X(), v.Normal.Y(), v.Normal.Z()}
		texcoords[i] = [2]float32{v.UV.X(), v.UV.Y()}
		tangents[i] = [4]float32{v.Tangent.X(), v.Tangent.Y(), v.Tangent.Z(), 1}
		for k := range v.Joints {
			if v.Weights[k] > 0 && v.Joints[k] >= 0 {
				joints[i][k] = uint16(v.Joints[k])
				weights[i][k] = v.Weights[k]
			}
		}
	}

	attributes := map[string]uint32{
		"POSITION":   modeler.WritePosition(c.Document, positions),
		"NORMAL":     modeler.WriteNormal(c.Document, normals),
		"TEXCOORD_0": modeler.WriteTextureCoord(c.Document, texcoords),
		"TANGENT":    modeler.WriteTangent(c.Document, tangents),
		"JOINTS_0":   modeler.WriteJoints(c.Document, joints),
		"WEIGHTS_0":  modeler.WriteWeights(c.Document, weights),
	}
	c.Meshes = append(c.Meshes, &gltf.Mesh{
		Name: c.Name,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(c.Document, m.Indices)),
			Attributes: attributes,
			Material:   material,
		}},
	})
	return uint32(len(c.Meshes) - 1)
}

func (c *daeToGltf) addMaterial(model *collada.ModelData, textures *textureCache) uint32 {
	var rf float32 = 1.0
	var mf float32 = 0.0
	mm := &gltf.Material{
		Name: c.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 1, 1, 1},
			RoughnessFactor: &rf,
			MetallicFactor:  &mf,
		},
	}
	if len(model.Textures) > 0 {
		texture := model.Textures[0]
		if tex, err := c.addTexture(texture, textures); err == nil {
			mm.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: *tex}
			if textures.hasAlpha(texture) {
				mm.AlphaMode = gltf.AlphaBlend
			}
		} else {
			log.Print("Texture read error:", err)
		}
	}
	if c.ForceUnlit {
		mm.Extensions = map[string]interface{}{unlitMaterialExt: map[string]string{}}
		c.ExtensionsUsed = append(c.ExtensionsUsed, unlitMaterialExt)
	}
	c.Materials = append(c.Materials, mm)
	return uint32(len(c.Materials) - 1)
}

func (c *daeToGltf) addSampler(a *gltf.Animation, keys, samples uint32, node uint32, path gltf.TRSProperty) {
	a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
		Input:         gltf.Index(keys),
		Output:        gltf.Index(samples),
		Interpolation: gltf.InterpolationLinear,
	})
	a.Channels = append(a.Channels, &gltf.Channel{
		Sampler: gltf.Index(uint32(len(a.Samplers) - 1)),
		Target: gltf.ChannelTarget{
			Node: gltf.Index(node),
			Path: path,
		},
	})
}

// AddAnimation appends clip as a glTF animation driving the joint nodes.
func (c *daeToGltf) AddAnimation(clip *animation.BoundClip) error {
	skel := clip.Skeleton()
	if skel.JointCount() != len(c.JointNodes) {
		return errors.Wrapf(animation.ErrSkeletonMismatch, "animation %q", clip.Clip.Name)
	}
	times := clip.Times()
	keys := modeler.WriteAccessor(c.Document, gltf.TargetArrayBuffer, times)
	c.Accessors[keys].Min = []float32{times[0]}
	c.Accessors[keys].Max = []float32{times[len(times)-1]}

	a := &gltf.Animation{Name: clip.Clip.Name}
	for j := range skel.Joints {
		translations := make([][3]float32, len(times))
		rotations := make([][4]float32, len(times))
		for k := range times {
			t := clip.Pose(k, j)
			p := t.Position.Mul(c.Scale)
			q := t.Rotation.Normalize()
			translations[k] = [3]float32{p.X(), p.Y(), p.Z()}
			rotations[k] = [4]float32{q.V.X(), q.V.Y(), q.V.Z(), q.W}
		}
		gltfutil.ContinuousRotations(rotations)
		c.addSampler(a, keys, modeler.WritePosition(c.Document, translations), c.JointNodes[j], gltf.TRSTranslation)
		c.addSampler(a, keys, modeler.WriteTangent(c.Document, rotations), c.JointNodes[j], gltf.TRSRotation)
	}
	c.Animations = append(c.Animations, a)
	return nil
}

// Convert builds a document with one skinned mesh node, its joint hierarchy
// and one animation per clip. Textures are resolved against textureDir.
func (c *daeToGltf) Convert(model *collada.ModelData, clips []*animation.Clip, textureDir string) (*gltf.Document, error) {
	if model.Empty() {
		return nil, ErrEmptyModel
	}
	c.addJointNodes(model)
	skin := c.addSkin(model)

	textures := newTextureCache(textureDir)
	material := c.addMaterial(model, textures)
	mesh := c.addMesh(model, gltf.Index(material))

	c.Nodes = append(c.Nodes, &gltf.Node{
		Name: c.Name,
		Mesh: gltf.Index(mesh),
		Skin: gltf.Index(skin),
	})
	c.Scenes[0].Nodes = append(c.Scenes[0].Nodes, uint32(len(c.Nodes)-1))

	for _, clip := range clips {
		bound, err := animation.Bind(clip, model.Skeleton)
		if err != nil {
			return nil, err
		}
		if err := c.AddAnimation(bound); err != nil {
			return nil, err
		}
	}
	return c.Document, nil
}
