package collada

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

const (
	UpAxisY = "Y_UP"
	UpAxisZ = "Z_UP"
	UpAxisX = "X_UP"
)

// Document is a parsed COLLADA file with an id index.
type Document struct {
	Root *Node
	ids  map[string]*Node
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, errors.Errorf("unsupported charset %q", label)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// Parse reads a COLLADA document.
func Parse(r io.Reader) (*Document, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charsetReader
	root, err := parseNode(d)
	if err != nil {
		return nil, malformed("document", err)
	}
	if root.Name != "COLLADA" {
		return nil, malformedf("document", "root element <%s>", root.Name)
	}
	doc := &Document{Root: root, ids: map[string]*Node{}}
	doc.index(root)
	return doc, nil
}

func (doc *Document) index(n *Node) {
	if id := n.ID(); id != "" {
		if _, exists := doc.ids[id]; !exists {
			doc.ids[id] = n
		}
	}
	for _, c := range n.Children {
		doc.index(c)
	}
}

// Open loads a .dae file, or the document inside a .zae archive.
func Open(path string) (*Document, error) {
	if strings.HasSuffix(strings.ToLower(path), ".zae") {
		return openZAE(path)
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r)
}

func openZAE(p string) (*Document, error) {
	z, err := zip.OpenReader(p)
	if err != nil {
		return nil, err
	}
	defer z.Close()

	target := ""
	for _, f := range z.File {
		if f.Name == "manifest.xml" {
			r, err := f.Open()
			if err != nil {
				return nil, err
			}
			var manifest struct {
				Root string `xml:",chardata"`
			}
			err = xml.NewDecoder(r).Decode(&manifest)
			r.Close()
			if err == nil {
				target = path.Clean(strings.TrimSpace(manifest.Root))
			}
		}
	}
	for _, f := range z.File {
		if f.Name == target || (target == "" && strings.HasSuffix(strings.ToLower(f.Name), ".dae")) {
			r, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer r.Close()
			return Parse(r)
		}
	}
	return nil, os.ErrNotExist
}

// ByID resolves an id or a "#id" URI fragment.
func (doc *Document) ByID(ref string) *Node {
	return doc.ids[strings.TrimPrefix(ref, "#")]
}

// Library returns a library_* section.
func (doc *Document) Library(name string) *Node {
	return doc.Root.FindChild(name)
}

func (doc *Document) UpAxis() string {
	if axis := doc.Root.Path("asset", "up_axis").TrimmedText(); axis != "" {
		return axis
	}
	return UpAxisY
}

// ImagePaths returns the init_from paths of library_images in document order.
func (doc *Document) ImagePaths() []string {
	var paths []string
	for _, img := range doc.Library("library_images").FindChildren("image") {
		init := img.FindChild("init_from")
		// COLLADA 1.5 nests the path in <ref>
		if ref := init.FindChild("ref"); ref != nil {
			init = ref
		}
		if p := init.TrimmedText(); p != "" {
			paths = append(paths, strings.TrimPrefix(p, "file://"))
		}
	}
	return paths
}
