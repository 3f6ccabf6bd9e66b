package animation

import (
	"github.com/pkg/errors"

	"github.com/binzume/daeskin/skeleton"
)

// BoundClip is a clip whose poses are resolved to joint indices of one skeleton.
type BoundClip struct {
	Clip     *Clip
	skeleton *skeleton.Skeleton
	times    []float32
	poses    [][]JointTransform // [keyframe][joint index]
}

// Bind resolves joint names once. Every skeleton joint must be present in
// every keyframe under its name or an alias; extra names are ignored.
func Bind(clip *Clip, skel *skeleton.Skeleton) (*BoundClip, error) {
	if len(clip.Keyframes) == 0 {
		return nil, errors.Wrapf(ErrInvalidClip, "%q has no keyframes", clip.Name)
	}
	b := &BoundClip{
		Clip:     clip,
		skeleton: skel,
		times:    clip.Times(),
		poses:    make([][]JointTransform, len(clip.Keyframes)),
	}
	for k, kf := range clip.Keyframes {
		if k > 0 && kf.Time < clip.Keyframes[k-1].Time {
			return nil, errors.Wrapf(ErrInvalidClip, "%q keyframe %d out of order", clip.Name, k)
		}
		pose := make([]JointTransform, skel.JointCount())
		for i := range skel.Joints {
			t, ok := lookupPose(kf.Pose, &skel.Joints[i])
			if !ok {
				return nil, errors.Wrapf(ErrMissingJoint, "%q keyframe %d: %q", clip.Name, k, skel.Joints[i].Name)
			}
			pose[i] = t
		}
		b.poses[k] = pose
	}
	return b, nil
}

func lookupPose(pose map[string]JointTransform, j *skeleton.Joint) (JointTransform, bool) {
	if t, ok := pose[j.Name]; ok {
		return t, true
	}
	for _, alias := range j.Aliases {
		if t, ok := pose[alias]; ok {
			return t, true
		}
	}
	return JointTransform{}, false
}

func (b *BoundClip) Skeleton() *skeleton.Skeleton {
	return b.skeleton
}

func (b *BoundClip) Length() float32 {
	return b.Clip.Length
}

// Pose returns the transform of joint at keyframe k.
func (b *BoundClip) Pose(k, joint int) JointTransform {
	return b.poses[k][joint]
}

// Times returns the keyframe times. The slice is shared.
func (b *BoundClip) Times() []float32 {
	return b.times
}
