package converter

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"

	"github.com/blezek/tga"
	_ "github.com/oov/psd"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

type textureCache struct {
	srcDir   string
	textures map[string]*textureInfo
}

type textureInfo struct {
	name string
	id   *uint32
	img  image.Image
	err  error
}

func newTextureCache(srcDir string) *textureCache {
	return &textureCache{srcDir: srcDir, textures: map[string]*textureInfo{}}
}

func (c *textureCache) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.srcDir, name)
}

func (c *textureCache) get(name string) *textureInfo {
	if t, ok := c.textures[name]; ok {
		return t
	}
	t := &textureInfo{name: name}
	c.textures[name] = t
	return t
}

func (c *textureCache) getImage(name string) (image.Image, error) {
	t := c.get(name)
	if t.img != nil || t.err != nil {
		return t.img, t.err
	}

	f, err := os.Open(c.path(t.name))
	if err != nil {
		t.err = err
		return nil, err
	}
	defer f.Close()

	t.img, _, t.err = image.Decode(f)
	if t.err != nil && strings.ToLower(filepath.Ext(t.name)) == ".tga" {
		// tga has no magic number
		f.Seek(0, io.SeekStart)
		t.img, t.err = tga.Decode(f)
	}
	if t.err != nil {
		t.err = errors.Wrapf(t.err, "decode %s", t.name)
	}
	return t.img, t.err
}

func (c *textureCache) hasAlpha(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if name == "" || ext == ".jpg" || ext == ".jpeg" || ext == ".bmp" {
		return false
	}
	img, err := c.getImage(name)
	if err != nil {
		return false
	}
	switch img.ColorModel() {
	case color.YCbCrModel, color.CMYKModel, color.GrayModel:
		return false
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

func textureMimeType(name string) (mimeType string, reencode bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", false
	case ".png":
		return "image/png", false
	}
	return "image/png", true
}

func scaleImage(img image.Image, scale float32, limit int) image.Image {
	rect := img.Bounds()
	if limit > 0 {
		sz := int(float32(rect.Dx()) * scale)
		if h := int(float32(rect.Dy()) * scale); h > sz {
			sz = h
		}
		if sz > limit {
			scale *= float32(limit) / float32(sz)
		}
	}
	if scale == 1.0 {
		return img
	}
	w, h := int(float32(rect.Dx())*scale), int(float32(rect.Dy())*scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Over, nil)
	return dst
}

func (c *textureCache) encode(name, mimeType string, scale float32, limit int) (io.Reader, error) {
	img, err := c.getImage(name)
	if err != nil {
		return nil, err
	}
	img = scaleImage(img, scale, limit)

	w := new(bytes.Buffer)
	if mimeType == "image/png" {
		err = png.Encode(w, img)
	} else {
		err = jpeg.Encode(w, img, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", name)
	}
	return w, nil
}

func (c *daeToGltf) addTexture(name string, textures *textureCache) (*uint32, error) {
	t := textures.get(name)
	if t.id != nil {
		return t.id, nil
	}
	mimeType, encode := textureMimeType(name)
	if c.TextureReCompress {
		encode = true
	}
	if c.TextureBytesThreshold > 0 {
		stat, err := os.Stat(textures.path(name))
		if err != nil {
			return nil, err
		}
		if stat.Size() > c.TextureBytesThreshold {
			encode = true
		}
	}

	var r io.Reader
	if encode {
		r2, err := textures.encode(name, mimeType, c.TextureScale, c.TextureResolutionLimit)
		if err != nil {
			return nil, err
		}
		r = r2
	} else {
		f, err := os.Open(textures.path(name))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	img, err := modeler.WriteImage(c.Document, filepath.Base(name), mimeType, r)
	if err != nil {
		return nil, errors.Wrapf(err, "write image %s", name)
	}
	c.Buffers[0].ByteLength = uint32(len(c.Buffers[0].Data)) // WriteImage leaves ByteLength stale

	if len(c.Samplers) == 0 {
		c.Samplers = append(c.Samplers, &gltf.Sampler{
			MagFilter: gltf.MagLinear,
			MinFilter: gltf.MinLinear,
			WrapS:     gltf.WrapRepeat,
			WrapT:     gltf.WrapRepeat,
		})
	}
	c.Textures = append(c.Textures, &gltf.Texture{
		Name:    strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
		Sampler: gltf.Index(0),
		Source:  gltf.Index(img),
	})
	t.id = gltf.Index(uint32(len(c.Textures)) - 1)
	return t.id, nil
}
