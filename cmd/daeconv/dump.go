package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/binzume/daeskin/animation"
	"github.com/binzume/daeskin/collada"
	"github.com/binzume/daeskin/geom"
	"github.com/binzume/daeskin/gltfutil"
	"github.com/binzume/daeskin/skeleton"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.MaxDepth = 4
}

func dumpSkeleton(w io.Writer, skel *skeleton.Skeleton) {
	skel.Walk(func(j *skeleton.Joint, depth int) {
		pos, _, _ := geom.Decompose(j.LocalBindTransform)
		rot := geom.NewEulerFromMatrix4(j.LocalBindTransform, geom.RotationOrderXYZ).Degrees()
		fmt.Fprintf(w, "%s%d %s pos(%.3f, %.3f, %.3f) rot(%.1f, %.1f, %.1f)",
			strings.Repeat("  ", depth), j.Index, j.Name,
			pos.X(), pos.Y(), pos.Z(), rot.X(), rot.Y(), rot.Z())
		if len(j.Aliases) > 0 {
			fmt.Fprintf(w, " aka %s", strings.Join(j.Aliases, ","))
		}
		fmt.Fprintln(w)
	})
}

func dumpModel(w io.Writer, model *collada.ModelData, verbose bool) {
	fmt.Fprintf(w, "up axis: %s\n", model.UpAxis)
	fmt.Fprintf(w, "joints: %d\n", model.Skeleton.JointCount())
	dumpSkeleton(w, model.Skeleton)
	m := model.Mesh
	fmt.Fprintf(w, "vertices: %d triangles: %d bounds: %v - %v\n", len(m.Vertices), m.TriangleCount(), m.Min, m.Max)
	for _, tex := range model.Textures {
		fmt.Fprintf(w, "texture: %s\n", tex)
	}
	if verbose {
		fmt.Fprintln(w, spewConfig.Sdump(model.Skeleton.Joints))
	}
}

func dumpClip(w io.Writer, clip *animation.Clip, verbose bool) {
	fmt.Fprintf(w, "animation: %s length: %.3f keyframes: %d\n", clip.Name, clip.Length, len(clip.Keyframes))
	fmt.Fprintf(w, "  channels: %s\n", strings.Join(clip.JointNames(), ","))
	if verbose {
		fmt.Fprintln(w, spewConfig.Sdump(clip.Times()))
	}
}

func dumpPose(w io.Writer, skel *skeleton.Skeleton, clip *animation.Clip, t float32, rate float32) error {
	bound, err := animation.Bind(clip, skel)
	if err != nil {
		return err
	}
	a := animation.NewAnimator(skel, animation.WithPlaybackRate(rate))
	if err := a.Play(bound); err != nil {
		return err
	}
	a.Seek(t)
	mats := make([]mgl32.Mat4, skel.JointCount())
	a.JointTransforms(mats)
	fmt.Fprintf(w, "pose: %s t=%.3f\n", clip.Name, a.Time())
	for i, m := range mats {
		fmt.Fprintf(w, "%d %s\n%v", i, skel.Joints[i].Name, m)
	}
	return nil
}

// dumpGLTF prints the skins and animations of a converted file. Joint
// positions are recovered from the inverse bind matrices.
func dumpGLTF(w io.Writer, doc *gltf.Document) error {
	fmt.Fprintf(w, "nodes: %d meshes: %d\n", len(doc.Nodes), len(doc.Meshes))
	for _, skin := range doc.Skins {
		fmt.Fprintf(w, "skin: %s joints: %d\n", skin.Name, len(skin.Joints))
		var ibm []mgl32.Mat4
		if skin.InverseBindMatrices != nil {
			var err error
			if ibm, err = gltfutil.ReadMatrices(doc, *skin.InverseBindMatrices); err != nil {
				return err
			}
		}
		for i, n := range skin.Joints {
			fmt.Fprintf(w, "  %d %s", i, doc.Nodes[n].Name)
			if i < len(ibm) {
				pos := ibm[i].Inv().Col(3)
				fmt.Fprintf(w, " bind(%.3f, %.3f, %.3f)", pos.X(), pos.Y(), pos.Z())
			}
			fmt.Fprintln(w)
		}
	}
	for _, a := range doc.Animations {
		fmt.Fprintf(w, "animation: %s channels: %d\n", a.Name, len(a.Channels))
	}
	return nil
}
