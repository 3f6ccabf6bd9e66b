package collada

import (
	"strings"

	"github.com/binzume/daeskin/skeleton"
)

const sectionSkeleton = "library_visual_scenes"

func (doc *Document) visualScene() *Node {
	if inst := doc.Root.Path("scene", "instance_visual_scene"); inst != nil {
		if vs := doc.ByID(inst.Attr("url")); vs != nil {
			return vs
		}
	}
	return doc.Library(sectionSkeleton).FindChild("visual_scene")
}

func isJoint(n *Node) bool {
	return n.Name == "node" && n.Attr("type") == "JOINT"
}

// jointKeys lists the identifiers a joint node can be referenced by, in
// match priority order.
func jointKeys(n *Node) []string {
	var keys []string
	for _, attr := range []string{"sid", "name", "id"} {
		if v := n.Attr(attr); v != "" {
			keys = append(keys, v)
		}
	}
	return keys
}

func firstJoint(n *Node) *Node {
	for _, c := range n.FindChildren("node") {
		if isJoint(c) {
			return c
		}
		if j := firstJoint(c); j != nil {
			return j
		}
	}
	return nil
}

func walkNodes(n *Node, f func(n *Node) bool) bool {
	for _, c := range n.FindChildren("node") {
		if !f(c) || !walkNodes(c, f) {
			return false
		}
	}
	return true
}

// skeletonRoot finds the root joint node: the <skeleton> of the
// instance_controller using the skin, else the first JOINT node.
func (doc *Document) skeletonRoot(controllerID string) *Node {
	scene := doc.visualScene()
	if scene == nil {
		return nil
	}
	var root *Node
	walkNodes(scene, func(n *Node) bool {
		for _, ic := range n.FindChildren("instance_controller") {
			if controllerID != "" && strings.TrimPrefix(ic.Attr("url"), "#") != controllerID {
				continue
			}
			if ref := ic.FindChild("skeleton"); ref != nil {
				root = doc.ByID(ref.TrimmedText())
				return root == nil
			}
		}
		return true
	})
	if root != nil && !isJoint(root) {
		root = firstJoint(root)
	}
	if root == nil {
		root = firstJoint(scene)
	}
	return root
}

func hasListedJoint(n *Node, order map[string]int) bool {
	found := false
	walkNodes(n, func(c *Node) bool {
		if _, _, ok := matchJoint(c, order); ok && isJoint(c) {
			found = true
		}
		return !found
	})
	return found
}

func matchJoint(n *Node, order map[string]int) (int, string, bool) {
	for _, key := range jointKeys(n) {
		if i, ok := order[key]; ok {
			return i, key, true
		}
	}
	return skeleton.NoJoint, "", false
}

// loadSkeleton builds the joint tree with indices from the skin's joint
// order. JOINT nodes that are not in the order are skipped when no listed
// joint lies below them.
func (doc *Document) loadSkeleton(skin *skinData) (*skeleton.Skeleton, error) {
	order := make(map[string]int, len(skin.jointNames))
	for i, name := range skin.jointNames {
		if _, dup := order[name]; dup {
			return nil, malformedf(sectionSkin, "joint %q listed twice", name)
		}
		order[name] = i
	}

	root := doc.skeletonRoot(skin.controllerID)
	if root == nil {
		return nil, malformedf(sectionSkeleton, "no JOINT node found")
	}

	skel := skeleton.NewSkeleton(len(skin.jointNames))
	aliases := map[int][]string{}
	var build func(n *Node, parent int) error
	build = func(n *Node, parent int) error {
		index, _, ok := matchJoint(n, order)
		if !ok {
			if hasListedJoint(n, order) {
				return malformedf(sectionSkeleton, "joint node %q is not in the skin joint list", n.ID())
			}
			return nil
		}
		local, err := nodeTransform(n)
		if err != nil {
			return malformed(sectionSkeleton, err)
		}
		if err := skel.AddJoint(index, skin.jointNames[index], local, parent); err != nil {
			return malformed(sectionSkeleton, err)
		}
		aliases[index] = jointKeys(n)
		for _, c := range n.FindChildren("node") {
			if isJoint(c) {
				if err := build(c, index); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := build(root, skeleton.NoJoint); err != nil {
		return nil, err
	}
	if err := skel.Validate(); err != nil {
		return nil, malformed(sectionSkeleton, err)
	}
	for i := range skel.Joints {
		for _, a := range aliases[i] {
			skel.AddAlias(i, a)
		}
	}
	return skel, nil
}
