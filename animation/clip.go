package animation

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrInvalidClip  = errors.New("invalid animation clip")
	ErrMissingJoint = errors.New("keyframe missing joint")
)

// Keyframe is a snapshot of every animated joint's local transform.
type Keyframe struct {
	Time float32
	Pose map[string]JointTransform
}

// Clip is a looping animation. Keyframes are in ascending time order.
type Clip struct {
	Name      string
	Length    float32
	Keyframes []Keyframe
}

// NewClip validates keyframes and builds a clip. A zero length is taken
// from the last keyframe.
func NewClip(name string, length float32, keyframes []Keyframe) (*Clip, error) {
	if length == 0 && len(keyframes) > 0 {
		length = keyframes[len(keyframes)-1].Time
	}
	c := &Clip{Name: name, Length: length, Keyframes: keyframes}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks ordering and that every keyframe animates the same joints.
func (c *Clip) Validate() error {
	if len(c.Keyframes) == 0 {
		return errors.Wrapf(ErrInvalidClip, "%q has no keyframes", c.Name)
	}
	if c.Length < 0 {
		return errors.Wrapf(ErrInvalidClip, "%q has negative length %v", c.Name, c.Length)
	}
	first := c.Keyframes[0]
	for i, kf := range c.Keyframes {
		if kf.Time < 0 {
			return errors.Wrapf(ErrInvalidClip, "%q keyframe %d at negative time %v", c.Name, i, kf.Time)
		}
		if i > 0 && kf.Time < c.Keyframes[i-1].Time {
			return errors.Wrapf(ErrInvalidClip, "%q keyframe %d out of order", c.Name, i)
		}
		if len(kf.Pose) != len(first.Pose) {
			return errors.Wrapf(ErrMissingJoint, "%q keyframe %d has %d joints, want %d", c.Name, i, len(kf.Pose), len(first.Pose))
		}
		for name := range first.Pose {
			if _, ok := kf.Pose[name]; !ok {
				return errors.Wrapf(ErrMissingJoint, "%q keyframe %d: %q", c.Name, i, name)
			}
		}
	}
	return nil
}

// JointNames returns the animated joint names in sorted order.
func (c *Clip) JointNames() []string {
	if len(c.Keyframes) == 0 {
		return nil
	}
	var names []string
	for name := range c.Keyframes[0].Pose {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Times returns the keyframe time stamps.
func (c *Clip) Times() []float32 {
	times := make([]float32, len(c.Keyframes))
	for i, kf := range c.Keyframes {
		times[i] = kf.Time
	}
	return times
}

// Sample returns a joint's interpolated transform at time t without
// binding the clip to a skeleton.
func (c *Clip) Sample(joint string, t float32) (JointTransform, bool) {
	if len(c.Keyframes) == 0 {
		return IdentityTransform(), false
	}
	prev, next, alpha := Bracket(c.Times(), t)
	a, ok := c.Keyframes[prev].Pose[joint]
	if !ok {
		return IdentityTransform(), false
	}
	b, ok := c.Keyframes[next].Pose[joint]
	if !ok {
		return a, true
	}
	return Interpolate(a, b, alpha), true
}

// Bracket finds prev and next with times[prev] <= t < times[next]. Before
// the first keyframe both are 0, after the last both are the last.
func Bracket(times []float32, t float32) (prev, next int, alpha float32) {
	n := len(times)
	if n == 0 || t < times[0] {
		return 0, 0, 0
	}
	// binary search for the first keyframe later than t
	lo, hi := 0, n
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		if times[m] > t {
			hi = m
		} else {
			lo = m + 1
		}
	}
	if lo == n {
		return n - 1, n - 1, 0
	}
	prev, next = lo-1, lo
	if d := times[next] - times[prev]; d > 0 {
		alpha = (t - times[prev]) / d
	}
	return prev, next, alpha
}
