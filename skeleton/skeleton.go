package skeleton

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// NoJoint is the parent index of the root and the root index of an empty skeleton.
const NoJoint = -1

var (
	ErrBindPoseComputed = errors.New("inverse bind transforms already computed")
	ErrDuplicateJoint   = errors.New("duplicate joint")
	ErrInvalidJoint     = errors.New("invalid joint")
)

// Joint is a node of the bind-pose hierarchy. Index is the joint's slot in
// the skinning matrix array and matches the vertex joint IDs.
type Joint struct {
	Index                int
	Name                 string
	Parent               int
	LocalBindTransform   mgl32.Mat4
	InverseBindTransform mgl32.Mat4
	Children             []int
	// Other identifiers the joint is known by, such as its scene node id.
	Aliases []string

	placed bool
}

// Skeleton is a joint arena indexed by joint index.
type Skeleton struct {
	Joints []Joint
	Root   int

	names        map[string]int
	modelBind    []mgl32.Mat4
	bindComputed bool
}

// NewSkeleton allocates count joint slots to be filled by AddJoint.
func NewSkeleton(count int) *Skeleton {
	s := &Skeleton{
		Joints: make([]Joint, count),
		Root:   NoJoint,
		names:  make(map[string]int, count),
	}
	for i := range s.Joints {
		s.Joints[i] = Joint{
			Index:                i,
			Parent:               NoJoint,
			LocalBindTransform:   mgl32.Ident4(),
			InverseBindTransform: mgl32.Ident4(),
		}
	}
	return s
}

// AddJoint places a joint under parent, or makes it the root when parent is NoJoint.
// Each index may be placed once.
func (s *Skeleton) AddJoint(index int, name string, localBind mgl32.Mat4, parent int) error {
	if index < 0 || index >= len(s.Joints) {
		return errors.Wrapf(ErrInvalidJoint, "%q index %d of %d", name, index, len(s.Joints))
	}
	j := &s.Joints[index]
	if j.placed {
		return errors.Wrapf(ErrDuplicateJoint, "%q index %d", name, index)
	}
	if _, ok := s.names[name]; ok {
		return errors.Wrapf(ErrDuplicateJoint, "%q", name)
	}
	if parent == NoJoint {
		if s.Root != NoJoint {
			return errors.Wrapf(ErrInvalidJoint, "%q: skeleton already has root %q", name, s.Joints[s.Root].Name)
		}
		s.Root = index
	} else {
		if parent < 0 || parent >= len(s.Joints) || !s.Joints[parent].placed || parent == index {
			return errors.Wrapf(ErrInvalidJoint, "%q: parent %d not placed", name, parent)
		}
		s.Joints[parent].Children = append(s.Joints[parent].Children, index)
	}
	j.Name = name
	j.Parent = parent
	j.LocalBindTransform = localBind
	j.placed = true
	s.names[name] = index
	return nil
}

// Validate checks that every joint slot was placed.
func (s *Skeleton) Validate() error {
	for i := range s.Joints {
		if !s.Joints[i].placed {
			return errors.Wrapf(ErrInvalidJoint, "joint %d not found in hierarchy", i)
		}
	}
	return nil
}

// AddAlias registers another name for a placed joint. Names already in
// use are ignored.
func (s *Skeleton) AddAlias(index int, alias string) {
	if index < 0 || index >= len(s.Joints) || !s.Joints[index].placed || alias == "" {
		return
	}
	if _, ok := s.names[alias]; ok {
		return
	}
	s.names[alias] = index
	s.Joints[index].Aliases = append(s.Joints[index].Aliases, alias)
}

// Index returns the joint index for a name or alias.
func (s *Skeleton) Index(name string) (int, bool) {
	i, ok := s.names[name]
	return i, ok
}

func (s *Skeleton) Joint(i int) *Joint {
	return &s.Joints[i]
}

func (s *Skeleton) JointCount() int {
	return len(s.Joints)
}

func (s *Skeleton) Empty() bool {
	return s == nil || s.Root == NoJoint
}

// Walk visits joints depth-first in pre-order starting at the root.
func (s *Skeleton) Walk(f func(j *Joint, depth int)) {
	if s.Empty() {
		return
	}
	var walk func(i, depth int)
	walk = func(i, depth int) {
		j := &s.Joints[i]
		f(j, depth)
		for _, c := range j.Children {
			walk(c, depth+1)
		}
	}
	walk(s.Root, 0)
}

// ComputeInverseBindTransforms accumulates the model-space bind transform of
// every joint from the root and stores its inverse. It runs once per skeleton.
func (s *Skeleton) ComputeInverseBindTransforms() error {
	if s.bindComputed {
		return ErrBindPoseComputed
	}
	s.modelBind = make([]mgl32.Mat4, len(s.Joints))
	for i := range s.modelBind {
		s.modelBind[i] = mgl32.Ident4()
	}
	if !s.Empty() {
		s.calcInverseBind(s.Root, mgl32.Ident4())
	}
	s.bindComputed = true
	return nil
}

func (s *Skeleton) calcInverseBind(i int, parentBind mgl32.Mat4) {
	j := &s.Joints[i]
	bind := parentBind.Mul4(j.LocalBindTransform)
	s.modelBind[i] = bind
	j.InverseBindTransform = bind.Inv()
	for _, c := range j.Children {
		s.calcInverseBind(c, bind)
	}
}

// BindComputed reports whether ComputeInverseBindTransforms has run.
func (s *Skeleton) BindComputed() bool {
	return s.bindComputed
}

// ModelBindTransform returns the accumulated bind transform of joint i, or
// identity before ComputeInverseBindTransforms.
func (s *Skeleton) ModelBindTransform(i int) mgl32.Mat4 {
	if i < 0 || i >= len(s.modelBind) {
		return mgl32.Ident4()
	}
	return s.modelBind[i]
}

// TransformRoot pre-multiplies the root's local bind transform by m.
// It must be called before ComputeInverseBindTransforms.
func (s *Skeleton) TransformRoot(m mgl32.Mat4) error {
	if s.bindComputed {
		return ErrBindPoseComputed
	}
	if !s.Empty() {
		root := &s.Joints[s.Root]
		root.LocalBindTransform = m.Mul4(root.LocalBindTransform)
	}
	return nil
}
