package collada

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Node is a generic COLLADA element.
type Node struct {
	Name     string
	Attrs    []xml.Attr
	Text     string
	Children []*Node
}

func (n *Node) FindChild(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) FindChildren(name string) []*Node {
	if n == nil {
		return nil
	}
	var r []*Node
	for _, c := range n.Children {
		if c.Name == name {
			r = append(r, c)
		}
	}
	return r
}

func (n *Node) GetChildren() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}

// Path follows a chain of child names, taking the first match at each step.
func (n *Node) Path(names ...string) *Node {
	for _, name := range names {
		n = n.FindChild(name)
	}
	return n
}

// Attr returns the value of an attribute or "".
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *Node) AttrInt(name string, defvalue int) int {
	v, err := strconv.Atoi(n.Attr(name))
	if err != nil {
		return defvalue
	}
	return v
}

func (n *Node) ID() string {
	return n.Attr("id")
}

// Floats parses whitespace separated numbers from the element text.
func (n *Node) Floats() ([]float32, error) {
	if n == nil {
		return nil, nil
	}
	fields := strings.Fields(n.Text)
	r := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "<%s> token %d", n.Name, i)
		}
		r[i] = float32(v)
	}
	return r, nil
}

func (n *Node) Ints() ([]int, error) {
	if n == nil {
		return nil, nil
	}
	fields := strings.Fields(n.Text)
	r := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "<%s> token %d", n.Name, i)
		}
		r[i] = v
	}
	return r, nil
}

func (n *Node) Strings() []string {
	if n == nil {
		return nil
	}
	return strings.Fields(n.Text)
}

// TrimmedText returns the text with surrounding whitespace removed.
func (n *Node) TrimmedText() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

func parseNode(d *xml.Decoder) (*Node, error) {
	var stack []*Node
	var root *Node
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local, Attrs: t.Copy().Attr}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.Errorf("unexpected </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("empty document")
	}
	return root, nil
}

func (n *Node) Dump(w io.Writer, d int, full bool) {
	fmt.Fprint(w, strings.Repeat("  ", d), n.Name)
	for _, a := range n.Attrs {
		fmt.Fprintf(w, " %s=%q", a.Name.Local, a.Value)
	}
	if text := n.TrimmedText(); text != "" {
		if fields := strings.Fields(text); !full && len(fields) > 16 {
			fmt.Fprintf(w, ": *%d { SKIPPED }", len(fields))
		} else {
			fmt.Fprint(w, ": ", text)
		}
	}
	fmt.Fprintln(w)
	for _, c := range n.Children {
		c.Dump(w, d+1, full)
	}
}
