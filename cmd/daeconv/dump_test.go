package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binzume/daeskin/collada"
	"github.com/binzume/daeskin/converter"
	"github.com/binzume/daeskin/gltfutil"
)

const fixture = "../../collada/testdata/quad.dae"

func TestDump(t *testing.T) {
	model, err := collada.LoadModel(fixture, 4)
	require.NoError(t, err)
	clip, err := collada.LoadAnimation(fixture)
	require.NoError(t, err)

	var b bytes.Buffer
	dumpModel(&b, model, false)
	dumpClip(&b, clip, false)
	out := b.String()
	assert.Contains(t, out, "0 Root pos(0.000, 0.000, 0.000)")
	assert.Contains(t, out, "\n  1 Arm pos(1.000, 0.000, 0.000)")
	assert.Contains(t, out, "vertices: 5 triangles: 2")
	assert.Contains(t, out, "texture: skin.png")
	assert.Contains(t, out, "animation: Wave length: 1.000 keyframes: 2")

	b.Reset()
	require.NoError(t, dumpPose(&b, model.Skeleton, clip, 0.5, 1))
	assert.True(t, strings.HasPrefix(b.String(), "pose: Wave t=0.500\n"), b.String())
}

func TestDumpGLTF(t *testing.T) {
	model, err := collada.LoadModel(fixture, 4)
	require.NoError(t, err)
	clips, err := loadClips(&converter.Config{}, []string{fixture})
	require.NoError(t, err)
	doc, err := converter.NewDAEToGLTFConverter(&converter.DAEToGLTFOption{Name: "quad", Scale: 1}).
		Convert(model, clips, t.TempDir())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "quad.glb")
	require.NoError(t, gltfutil.Save(doc, path))
	loaded, err := gltfutil.Load(path)
	require.NoError(t, err)

	var b bytes.Buffer
	require.NoError(t, dumpGLTF(&b, loaded))
	out := b.String()
	assert.Contains(t, out, "skin: quad joints: 2\n")
	assert.Contains(t, out, "  0 Root bind(")
	assert.Contains(t, out, "  1 Arm bind(1.000, ")
	assert.Contains(t, out, "animation: Wave channels: 4\n")
}

func TestLoadClips(t *testing.T) {
	conf, err := converter.ReadConfig(strings.NewReader("maxJointInfluences: 2\n"))
	require.NoError(t, err)
	clips, err := loadClips(conf, []string{fixture, fixture})
	require.NoError(t, err)
	assert.Len(t, clips, 2)

	_, err = loadClips(conf, []string{fixture, "missing.dae"})
	assert.Error(t, err)
}

func TestDefaultOutputFile(t *testing.T) {
	assert.Equal(t, "a/model.glb", defaultOutputFile("a/model.dae"))
	assert.Equal(t, "", defaultConfigFile(fixture))
	assert.True(t, isCollada("x.ZAE"))
	assert.False(t, isCollada("x.glb"))
	assert.True(t, isGLTF("x.GLTF"))
	assert.False(t, isGLTF("x.dae"))
}
