package converter

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/binzume/daeskin/animation"
	"github.com/binzume/daeskin/collada"
	"github.com/binzume/daeskin/gltfutil"
)

const eps = 0.00001

const fixture = "../collada/testdata/quad.dae"

func loadFixture(t *testing.T) (*collada.ModelData, *animation.Clip) {
	model, err := collada.LoadModel(fixture, 4)
	require.NoError(t, err)
	clip, err := collada.LoadAnimation(fixture)
	require.NoError(t, err)
	return model, clip
}

func writeImage(t *testing.T, path string, img image.Image) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	if strings.HasSuffix(path, ".bmp") {
		require.NoError(t, bmp.Encode(f, img))
	} else {
		require.NoError(t, png.Encode(f, img))
	}
}

func newImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func imageBytes(doc *gltf.Document, img *gltf.Image) []byte {
	view := doc.BufferViews[*img.BufferView]
	return doc.Buffers[view.Buffer].Data[view.ByteOffset : view.ByteOffset+view.ByteLength]
}

func TestConvert(t *testing.T) {
	model, clip := loadFixture(t)

	conv := NewDAEToGLTFConverter(&DAEToGLTFOption{Name: "quad", Scale: 0.5})
	doc, err := conv.Convert(model, []*animation.Clip{clip}, t.TempDir())
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, "Root", doc.Nodes[0].Name)
	assert.Equal(t, []uint32{1}, doc.Nodes[0].Children)
	assert.Equal(t, [3]float32{0.5, 0, 0}, doc.Nodes[1].Translation)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, doc.Nodes[1].Rotation)
	assert.Equal(t, []uint32{0, 2}, doc.Scenes[0].Nodes)

	meshNode := doc.Nodes[2]
	require.NotNil(t, meshNode.Mesh)
	require.NotNil(t, meshNode.Skin)

	skin := doc.Skins[*meshNode.Skin]
	assert.Equal(t, []uint32{0, 1}, skin.Joints)
	assert.Equal(t, uint32(0), *skin.Skeleton)
	ibm, err := gltfutil.ReadMatrices(doc, *skin.InverseBindMatrices)
	require.NoError(t, err)
	require.Len(t, ibm, 2)
	assert.True(t, ibm[0].ApproxEqualThreshold(mgl32.Ident4(), eps))
	assert.True(t, ibm[1].ApproxEqualThreshold(mgl32.Translate3D(-0.5, 0, 0), eps), "%v", ibm[1])

	prim := doc.Meshes[*meshNode.Mesh].Primitives[0]
	for _, name := range []string{"POSITION", "NORMAL", "TEXCOORD_0", "TANGENT", "JOINTS_0", "WEIGHTS_0"} {
		acc, ok := prim.Attributes[name]
		require.True(t, ok, name)
		assert.Equal(t, uint32(len(model.Mesh.Vertices)), doc.Accessors[acc].Count, name)
	}
	assert.Equal(t, uint32(6), doc.Accessors[*prim.Indices].Count)
	require.NotNil(t, prim.Material)
	assert.Empty(t, doc.Textures, "skin.png does not exist")

	require.Len(t, doc.Animations, 1)
	a := doc.Animations[0]
	assert.Equal(t, "Wave", a.Name)
	assert.Len(t, a.Channels, 4)
	assert.Len(t, a.Samplers, 4)
	keys := doc.Accessors[*a.Samplers[0].Input]
	assert.Equal(t, uint32(2), keys.Count)
	assert.Equal(t, []float32{1}, keys.Max)
	for _, ch := range a.Channels {
		assert.Equal(t, *a.Samplers[0].Input, *a.Samplers[*ch.Sampler].Input, "keys are shared")
	}
}

func TestConvertEmpty(t *testing.T) {
	_, err := NewDAEToGLTFConverter(nil).Convert(&collada.ModelData{}, nil, "")
	assert.True(t, errors.Is(err, ErrEmptyModel))
}

func TestConvertMissingJoint(t *testing.T) {
	model, clip := loadFixture(t)
	for _, kf := range clip.Keyframes {
		delete(kf.Pose, "Armature_Arm")
	}
	_, err := NewDAEToGLTFConverter(nil).Convert(model, []*animation.Clip{clip}, "")
	assert.True(t, errors.Is(err, animation.ErrMissingJoint), "%v", err)
}

func TestConvertTexture(t *testing.T) {
	model, _ := loadFixture(t)
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "skin.bmp"), newImage(8, 4, color.RGBA{255, 0, 0, 255}))
	model.Textures = []string{"skin.bmp"}

	conv := NewDAEToGLTFConverter(&DAEToGLTFOption{TextureResolutionLimit: 4, ForceUnlit: true})
	doc, err := conv.Convert(model, nil, dir)
	require.NoError(t, err)

	require.Len(t, doc.Textures, 1)
	require.Len(t, doc.Images, 1)
	assert.Equal(t, "image/png", doc.Images[0].MimeType)
	cfg, err := png.DecodeConfig(bytes.NewReader(imageBytes(doc, doc.Images[0])))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)
	assert.Equal(t, 2, cfg.Height)

	mat := doc.Materials[0]
	require.NotNil(t, mat.PBRMetallicRoughness.BaseColorTexture)
	assert.Equal(t, uint32(0), mat.PBRMetallicRoughness.BaseColorTexture.Index)
	assert.NotEqual(t, gltf.AlphaBlend, mat.AlphaMode)
	assert.Contains(t, mat.Extensions, unlitMaterialExt)
	assert.Equal(t, []string{unlitMaterialExt}, doc.ExtensionsUsed)
	assert.Equal(t, int(doc.Buffers[0].ByteLength), len(doc.Buffers[0].Data))
}

func TestConvertTextureAlpha(t *testing.T) {
	model, _ := loadFixture(t)
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "skin.png"), newImage(2, 2, color.NRGBA{0, 0, 255, 128}))

	doc, err := NewDAEToGLTFConverter(nil).Convert(model, nil, dir)
	require.NoError(t, err)
	require.Len(t, doc.Images, 1)
	assert.Equal(t, "image/png", doc.Images[0].MimeType)
	assert.Equal(t, gltf.AlphaBlend, doc.Materials[0].AlphaMode)
	assert.Empty(t, doc.ExtensionsUsed)
}

func TestScaleImage(t *testing.T) {
	img := newImage(16, 8, color.White)
	assert.Same(t, img, scaleImage(img, 1, 0))
	assert.Same(t, img, scaleImage(img, 1, 16))
	assert.Equal(t, image.Rect(0, 0, 8, 4), scaleImage(img, 0.5, 0).Bounds())
	assert.Equal(t, image.Rect(0, 0, 4, 2), scaleImage(img, 0.5, 4).Bounds())
	assert.Equal(t, image.Rect(0, 0, 1, 1), scaleImage(img, 0.01, 0).Bounds())
}

func TestTextureMimeType(t *testing.T) {
	for name, expected := range map[string]struct {
		mime     string
		reencode bool
	}{
		"a.JPG":  {"image/jpeg", false},
		"a.png":  {"image/png", false},
		"a.tga":  {"image/png", true},
		"a.psd":  {"image/png", true},
		"a.bmp":  {"image/png", true},
		"noext":  {"image/png", true},
		"b.jpeg": {"image/jpeg", false},
	} {
		mime, reencode := textureMimeType(name)
		assert.Equal(t, expected.mime, mime, name)
		assert.Equal(t, expected.reencode, reencode, name)
	}
}
