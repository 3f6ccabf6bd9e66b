package animation

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/binzume/daeskin/skeleton"
)

// DefaultPlaybackRate scales elapsed time in Advance.
const DefaultPlaybackRate = 1.0

var ErrSkeletonMismatch = errors.New("clip bound to another skeleton")

type Option func(*Animator)

func WithPlaybackRate(rate float32) Option {
	return func(a *Animator) {
		a.rate = rate
	}
}

// WithModelTransform pre-multiplies every skinning matrix by m, including
// the idle pose.
func WithModelTransform(m mgl32.Mat4) Option {
	return func(a *Animator) {
		a.model = m
	}
}

// Animator plays one clip on a skeleton and owns the evaluated pose. The
// skeleton is only read, so many animators may share it.
type Animator struct {
	skeleton *skeleton.Skeleton
	clip     *BoundClip
	time     float32
	rate     float32
	model    mgl32.Mat4

	skin []mgl32.Mat4

	// current keyframe bracket
	prev, next int
	alpha      float32
}

// NewAnimator creates an idle animator. The skeleton's inverse bind
// transforms must already be computed.
func NewAnimator(skel *skeleton.Skeleton, opts ...Option) *Animator {
	a := &Animator{
		skeleton: skel,
		rate:     DefaultPlaybackRate,
		model:    mgl32.Ident4(),
		skin:     make([]mgl32.Mat4, skel.JointCount()),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.resetPose()
	return a
}

// Play switches to clip from time zero. A nil clip stops playback.
func (a *Animator) Play(clip *BoundClip) error {
	if clip == nil {
		a.Stop()
		return nil
	}
	if clip.skeleton != a.skeleton {
		return ErrSkeletonMismatch
	}
	a.clip = clip
	a.time = 0
	a.evaluate()
	return nil
}

// Stop returns to the idle pose.
func (a *Animator) Stop() {
	a.clip = nil
	a.time = 0
	a.resetPose()
}

// Advance moves the playback time by dt scaled by the playback rate and
// evaluates the pose. Passing the end of the clip restarts it at zero.
func (a *Animator) Advance(dt float32) {
	if a.clip == nil {
		return
	}
	a.time += dt * a.rate
	if a.time > a.clip.Length() || a.time < 0 {
		a.time = 0
	}
	a.evaluate()
}

// Seek jumps to t. Times outside [0, length] restart the clip.
func (a *Animator) Seek(t float32) {
	if a.clip == nil {
		return
	}
	a.time = t
	if a.time > a.clip.Length() || a.time < 0 {
		a.time = 0
	}
	a.evaluate()
}

func (a *Animator) Time() float32 {
	return a.time
}

func (a *Animator) Playing() bool {
	return a.clip != nil
}

func (a *Animator) Clip() *BoundClip {
	return a.clip
}

func (a *Animator) PlaybackRate() float32 {
	return a.rate
}

// JointTransforms copies the skinning matrices into dst by joint index and
// returns the number written.
func (a *Animator) JointTransforms(dst []mgl32.Mat4) int {
	return copy(dst, a.skin)
}

func (a *Animator) resetPose() {
	for i := range a.skin {
		a.skin[i] = a.model
	}
}

func (a *Animator) evaluate() {
	if a.skeleton.Empty() {
		return
	}
	a.prev, a.next, a.alpha = Bracket(a.clip.times, a.time)
	a.applyPose(a.skeleton.Root, a.model)
}

func (a *Animator) applyPose(i int, parent mgl32.Mat4) {
	j := &a.skeleton.Joints[i]
	local := Interpolate(a.clip.poses[a.prev][i], a.clip.poses[a.next][i], a.alpha)
	current := parent.Mul4(local.LocalTransform())
	for _, c := range j.Children {
		a.applyPose(c, current)
	}
	a.skin[i] = current.Mul4(j.InverseBindTransform)
}
