package converter

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/binzume/daeskin/collada"
)

type Config struct {
	MaxJointInfluences int     `yaml:"maxJointInfluences"`
	ConvertUpAxis      bool    `yaml:"convertUpAxis"`
	PlaybackRate       float32 `yaml:"playbackRate"`
	Scale              float32 `yaml:"scale"`
	ForceUnlit         bool    `yaml:"forceUnlit"`

	Texture TextureConfig `yaml:"texture"`

	// Animations are extra COLLADA files whose clips are added to the output.
	Animations []string `yaml:"animations"`
}

type TextureConfig struct {
	ReCompress      bool    `yaml:"recompress"`
	BytesThreshold  int64   `yaml:"bytesThreshold"`
	Scale           float32 `yaml:"scale"`
	ResolutionLimit int     `yaml:"resolutionLimit"`
}

func ReadConfig(r io.Reader) (*Config, error) {
	var conf Config
	if err := yaml.NewDecoder(r).Decode(&conf); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "config")
	}
	return &conf, nil
}

func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadConfig(f)
}

func (c *Config) ImportOptions() *collada.Options {
	return &collada.Options{
		MaxJointInfluences: c.MaxJointInfluences,
		ConvertUpAxis:      c.ConvertUpAxis,
	}
}

func (c *Config) ConverterOptions(name string) *DAEToGLTFOption {
	return &DAEToGLTFOption{
		Name:                   name,
		Scale:                  c.Scale,
		ForceUnlit:             c.ForceUnlit,
		TextureReCompress:      c.Texture.ReCompress,
		TextureBytesThreshold:  c.Texture.BytesThreshold,
		TextureResolutionLimit: c.Texture.ResolutionLimit,
		TextureScale:           c.Texture.Scale,
	}
}
