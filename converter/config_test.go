package converter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	conf, err := ReadConfig(strings.NewReader(`
maxJointInfluences: 3
convertUpAxis: true
playbackRate: 0.8
scale: 0.01
texture:
  recompress: true
  scale: 0.5
  resolutionLimit: 1024
animations:
  - walk.dae
  - run.dae
`))
	require.NoError(t, err)
	assert.Equal(t, 3, conf.MaxJointInfluences)
	assert.True(t, conf.ConvertUpAxis)
	assert.Equal(t, float32(0.8), conf.PlaybackRate)
	assert.Equal(t, []string{"walk.dae", "run.dae"}, conf.Animations)

	opts := conf.ImportOptions()
	assert.Equal(t, 3, opts.MaxJointInfluences)
	assert.True(t, opts.ConvertUpAxis)

	c := NewDAEToGLTFConverter(conf.ConverterOptions("hero"))
	assert.Equal(t, "hero", c.Name)
	assert.Equal(t, float32(0.01), c.Scale)
	assert.True(t, c.TextureReCompress)
	assert.Equal(t, float32(0.5), c.TextureScale)
	assert.Equal(t, 1024, c.TextureResolutionLimit)
}

func TestReadConfigDefaults(t *testing.T) {
	conf, err := ReadConfig(strings.NewReader(""))
	require.NoError(t, err)
	c := NewDAEToGLTFConverter(conf.ConverterOptions(""))
	assert.Equal(t, "model", c.Name)
	assert.Equal(t, float32(1), c.Scale)
	assert.Equal(t, float32(1), c.TextureScale)

	_, err = ReadConfig(strings.NewReader("scale: [1"))
	assert.Error(t, err)
}
