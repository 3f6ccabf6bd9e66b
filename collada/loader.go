package collada

import (
	"path/filepath"
	"strings"

	"github.com/binzume/daeskin/animation"
	"github.com/binzume/daeskin/geom"
	"github.com/binzume/daeskin/mesh"
	"github.com/binzume/daeskin/skeleton"
)

type Options struct {
	// MaxJointInfluences is clamped to [1, mesh.MaxJointInfluences]. 0 means the maximum.
	MaxJointInfluences int
	// ConvertUpAxis rotates Z_UP documents into Y-up.
	ConvertUpAxis bool
}

func (o *Options) maxWeights() int {
	if o.MaxJointInfluences <= 0 || o.MaxJointInfluences > mesh.MaxJointInfluences {
		return mesh.MaxJointInfluences
	}
	return o.MaxJointInfluences
}

// ModelData is an imported skinned model. A failed import yields an empty
// value, never a partial one.
type ModelData struct {
	Skeleton *skeleton.Skeleton
	Mesh     *mesh.SkinnedMesh
	// Textures are library_images paths as written in the document.
	Textures []string
	UpAxis   string
}

func emptyModel() *ModelData {
	return &ModelData{Skeleton: skeleton.NewSkeleton(0), Mesh: &mesh.SkinnedMesh{}}
}

func (m *ModelData) Empty() bool {
	return m == nil || m.Skeleton.Empty() || m.Mesh.Empty()
}

// JointNames returns joint names by joint index.
func (m *ModelData) JointNames() []string {
	names := make([]string, m.Skeleton.JointCount())
	for i := range m.Skeleton.Joints {
		names[i] = m.Skeleton.Joints[i].Name
	}
	return names
}

// LoadModel imports the skinned mesh and skeleton of a .dae or .zae file.
func LoadModel(path string, maxJointInfluences int) (*ModelData, error) {
	return LoadModelWithOptions(path, &Options{MaxJointInfluences: maxJointInfluences})
}

func LoadModelWithOptions(path string, opts *Options) (*ModelData, error) {
	doc, err := Open(path)
	if err != nil {
		return emptyModel(), err
	}
	return ReadModel(doc, opts)
}

// ReadModel imports skin weights, then the skeleton, then the geometry.
func ReadModel(doc *Document, opts *Options) (*ModelData, error) {
	if opts == nil {
		opts = &Options{}
	}
	skin, err := doc.loadSkin(opts.maxWeights())
	if err != nil {
		return emptyModel(), err
	}
	skel, err := doc.loadSkeleton(skin)
	if err != nil {
		return emptyModel(), err
	}

	upAxis := doc.UpAxis()
	transform := skin.bindShape
	if opts.ConvertUpAxis && upAxis == UpAxisZ {
		transform = geom.ZUpToYUp.Mul4(transform)
		if err := skel.TransformRoot(geom.ZUpToYUp); err != nil {
			return emptyModel(), err
		}
	}
	if err := skel.ComputeInverseBindTransforms(); err != nil {
		return emptyModel(), err
	}

	data, err := doc.loadGeometry(skin.geometryRef, transform)
	if err != nil {
		return emptyModel(), err
	}
	if len(skin.weights) != len(data.positions) {
		return emptyModel(), malformedf(sectionSkin, "%d weighted vertices for %d positions", len(skin.weights), len(data.positions))
	}
	m, err := data.buildMesh(skin.weights)
	if err != nil {
		return emptyModel(), err
	}
	return &ModelData{
		Skeleton: skel,
		Mesh:     m,
		Textures: doc.ImagePaths(),
		UpAxis:   upAxis,
	}, nil
}

// LoadAnimation imports the matrix animation of a .dae or .zae file. The
// clip length is the root joint's last key time.
func LoadAnimation(path string) (*animation.Clip, error) {
	return LoadAnimationWithOptions(path, &Options{})
}

func LoadAnimationWithOptions(path string, opts *Options) (*animation.Clip, error) {
	doc, err := Open(path)
	if err != nil {
		return nil, err
	}
	clip, err := ReadAnimation(doc, opts)
	if err != nil {
		return nil, err
	}
	if clip.Name == "" {
		clip.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return clip, nil
}

func ReadAnimation(doc *Document, opts *Options) (*animation.Clip, error) {
	if opts == nil {
		opts = &Options{}
	}
	return doc.loadAnimation(opts)
}

// BindPose returns a single-keyframe clip holding the skeleton's bind pose.
func BindPose(skel *skeleton.Skeleton) *animation.Clip {
	pose := make(map[string]animation.JointTransform, skel.JointCount())
	for i := range skel.Joints {
		pose[skel.Joints[i].Name] = animation.NewJointTransformFromMatrix(skel.Joints[i].LocalBindTransform)
	}
	return &animation.Clip{Name: "bind", Keyframes: []animation.Keyframe{{Time: 0, Pose: pose}}}
}
