package collada

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/binzume/daeskin/animation"
	"github.com/binzume/daeskin/geom"
)

const sectionAnimation = "library_animations"

// channel is a sampled matrix animation of one scene node.
type channel struct {
	target     string
	times      []float32
	transforms []mgl32.Mat4
	poses      []animation.JointTransform
}

func (c *channel) sameTimes(times []float32) bool {
	if len(c.times) != len(times) {
		return false
	}
	for i, t := range times {
		if geom.Abs(c.times[i]-t) > 1e-6 {
			return false
		}
	}
	return true
}

// sample interpolates the channel's keys at t.
func (c *channel) sample(t float32) animation.JointTransform {
	prev, next, alpha := animation.Bracket(c.times, t)
	return animation.Interpolate(c.poses[prev], c.poses[next], alpha)
}

func (doc *Document) readChannel(n *Node) (*channel, error) {
	target := n.Attr("target")
	slash := strings.Index(target, "/")
	if slash <= 0 || strings.ContainsAny(target[slash+1:], ".()") {
		// component channels such as "node/translate.X" are not supported
		return nil, nil
	}
	sampler := doc.ByID(n.Attr("source"))
	if sampler == nil || sampler.Name != "sampler" {
		return nil, errors.Errorf("channel %q: sampler %q not found", target, n.Attr("source"))
	}
	inputs := readInputs(sampler)
	in, ok1 := findInput(inputs, "INPUT")
	out, ok2 := findInput(inputs, "OUTPUT")
	if !ok1 || !ok2 {
		return nil, errors.Errorf("channel %q: sampler needs INPUT and OUTPUT", target)
	}
	times, err := doc.floatSource(in.source, 1)
	if err != nil {
		return nil, err
	}
	values, err := doc.floatSource(out.source, 1)
	if err != nil {
		return nil, err
	}
	if values.stride == 1 && len(values.floats) == 16*times.Len() {
		values.stride = 16
	}
	if values.stride < 16 || values.Len() < times.Len() {
		return nil, errors.Errorf("channel %q: %d keys but %d matrices", target, times.Len(), values.Len())
	}
	c := &channel{target: target[:slash]}
	for i := 0; i < times.Len(); i++ {
		if i > 0 && times.Float(i) < times.Float(i-1) {
			return nil, errors.Errorf("channel %q: key %d out of order", target, i)
		}
		c.times = append(c.times, times.Float(i))
		c.transforms = append(c.transforms, values.Matrix(i))
		c.poses = append(c.poses, animation.NewJointTransformFromMatrix(values.Matrix(i)))
	}
	if len(c.times) == 0 {
		return nil, errors.Errorf("channel %q has no keys", target)
	}
	return c, nil
}

// channels collects matrix channels of nested <animation> elements by target node id.
func (doc *Document) channels() (map[string]*channel, error) {
	result := map[string]*channel{}
	var walk func(n *Node) error
	walk = func(n *Node) error {
		for _, c := range n.GetChildren() {
			switch c.Name {
			case "animation":
				if err := walk(c); err != nil {
					return err
				}
			case "channel":
				ch, err := doc.readChannel(c)
				if err != nil {
					return malformed(sectionAnimation, err)
				}
				if ch != nil {
					if _, dup := result[ch.target]; dup {
						return malformedf(sectionAnimation, "node %q animated twice", ch.target)
					}
					result[ch.target] = ch
				}
			}
		}
		return nil
	}
	if err := walk(doc.Library(sectionAnimation)); err != nil {
		return nil, err
	}
	return result, nil
}

func poseKey(n *Node) string {
	if id := n.ID(); id != "" {
		return id
	}
	if keys := jointKeys(n); len(keys) > 0 {
		return keys[0]
	}
	return ""
}

func (doc *Document) clipName() string {
	for _, a := range doc.Library(sectionAnimation).FindChildren("animation") {
		if name := a.Attr("name"); name != "" {
			return name
		}
		if id := a.ID(); id != "" {
			return id
		}
	}
	return ""
}

// loadAnimation builds a clip over every joint below the skeleton root.
// Keyframe times come from the root joint's channel; other channels are
// resampled at those times and joints without a channel keep their rest pose.
func (doc *Document) loadAnimation(opts *Options) (*animation.Clip, error) {
	channels, err := doc.channels()
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, ErrNoAnimation
	}

	controllerID := ""
	if c, _ := doc.findSkin(); c != nil {
		controllerID = c.ID()
	}
	root := doc.skeletonRoot(controllerID)
	if root == nil {
		return nil, malformedf(sectionSkeleton, "no JOINT node found")
	}

	var joints []*Node
	joints = append(joints, root)
	walkNodes(root, func(n *Node) bool {
		if isJoint(n) {
			joints = append(joints, n)
		}
		return true
	})

	rootChannel := channels[root.ID()]
	if rootChannel == nil {
		// root is static: use the longest channel for timing
		for _, j := range joints {
			if c := channels[j.ID()]; c != nil && (rootChannel == nil || len(c.times) > len(rootChannel.times)) {
				rootChannel = c
			}
		}
	}
	if rootChannel == nil {
		return nil, malformedf(sectionAnimation, "no channel targets the skeleton below %q", root.ID())
	}
	times := rootChannel.times

	convert := opts.ConvertUpAxis && doc.UpAxis() == UpAxisZ
	keyframes := make([]animation.Keyframe, len(times))
	for i, t := range times {
		keyframes[i] = animation.Keyframe{Time: t, Pose: make(map[string]animation.JointTransform, len(joints))}
	}
	for _, j := range joints {
		key := poseKey(j)
		rest, err := nodeTransform(j)
		if err != nil {
			return nil, malformed(sectionSkeleton, err)
		}
		c := channels[j.ID()]
		sameTimes := c != nil && c.sameTimes(times)
		for i, t := range times {
			m := rest
			if sameTimes {
				m = c.transforms[i]
			} else if c != nil {
				m = c.sample(t).LocalTransform()
			}
			if convert && j == root {
				m = geom.ZUpToYUp.Mul4(m)
			}
			keyframes[i].Pose[key] = animation.NewJointTransformFromMatrix(m)
		}
	}

	clip, err := animation.NewClip(doc.clipName(), times[len(times)-1], keyframes)
	if err != nil {
		return nil, malformed(sectionAnimation, err)
	}
	return clip, nil
}
