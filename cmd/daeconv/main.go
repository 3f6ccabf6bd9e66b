package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/binzume/daeskin/animation"
	"github.com/binzume/daeskin/collada"
	"github.com/binzume/daeskin/converter"
	"github.com/binzume/daeskin/gltfutil"
)

func defaultOutputFile(input string) string {
	ext := filepath.Ext(input)
	return input[0:len(input)-len(ext)] + ".glb"
}

func defaultConfigFile(input string) string {
	conf := input[0:len(input)-len(filepath.Ext(input))] + ".daeconv.yaml"
	if _, err := os.Stat(conf); err != nil {
		return ""
	}
	return conf
}

func isGLTF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".glb" || ext == ".gltf"
}

func isCollada(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".dae" || ext == ".zae"
}

func loadClips(conf *converter.Config, inputs []string) ([]*animation.Clip, error) {
	var clips []*animation.Clip
	for _, f := range inputs {
		clip, err := collada.LoadAnimationWithOptions(f, conf.ImportOptions())
		if err != nil {
			if f == inputs[0] && errors.Is(err, collada.ErrNoAnimation) {
				continue
			}
			return nil, errors.Wrap(err, f)
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s input.dae [animation.dae ...] [output.glb]\n       %s input.glb\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	confFile := flag.String("config", "", "config file (yaml)")
	weights := flag.Int("weights", 0, "max joint influences per vertex. 0: config or 4")
	upAxis := flag.Bool("yup", false, "convert Z_UP documents to Y-up")
	scale := flag.Float64("scale", 0, "output scale. 0: config or 1")
	forceUnlit := flag.Bool("gltfunlit", false, "unlit material")
	dump := flag.Bool("dump", false, "print joints and animations")
	verbose := flag.Bool("verbose", false, "deep dump")
	pose := flag.Float64("pose", -1, "print skinning matrices at time")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}
	input := flag.Arg(0)
	if isGLTF(input) {
		doc, err := gltfutil.Load(input)
		if err != nil {
			log.Fatal(err)
		}
		if err := dumpGLTF(os.Stdout, doc); err != nil {
			log.Fatal(err)
		}
		return
	}
	inputs := []string{input}
	output := ""
	for _, f := range flag.Args()[1:] {
		if isCollada(f) {
			inputs = append(inputs, f)
		} else {
			output = f
		}
	}
	if output == "" {
		output = defaultOutputFile(input)
	}
	if *confFile == "" {
		*confFile = defaultConfigFile(input)
	}

	conf := &converter.Config{}
	if *confFile != "" {
		c, err := converter.LoadConfig(*confFile)
		if err != nil {
			log.Fatal(err)
		}
		conf = c
		for _, f := range conf.Animations {
			inputs = append(inputs, filepath.Join(filepath.Dir(*confFile), f))
		}
	}
	if *weights > 0 {
		conf.MaxJointInfluences = *weights
	}
	if *upAxis {
		conf.ConvertUpAxis = true
	}
	if *scale > 0 {
		conf.Scale = float32(*scale)
	}
	if *forceUnlit {
		conf.ForceUnlit = true
	}
	if conf.PlaybackRate == 0 {
		conf.PlaybackRate = animation.DefaultPlaybackRate
	}

	model, err := collada.LoadModelWithOptions(input, conf.ImportOptions())
	if err != nil {
		log.Fatal(err)
	}
	clips, err := loadClips(conf, inputs)
	if err != nil {
		log.Fatal(err)
	}

	if *dump || *verbose {
		dumpModel(os.Stdout, model, *verbose)
		for _, clip := range clips {
			dumpClip(os.Stdout, clip, *verbose)
		}
	}
	if *pose >= 0 {
		clip := collada.BindPose(model.Skeleton)
		if len(clips) > 0 {
			clip = clips[0]
		}
		if err := dumpPose(os.Stdout, model.Skeleton, clip, float32(*pose), conf.PlaybackRate); err != nil {
			log.Fatal(err)
		}
	}
	if *dump || *verbose || *pose >= 0 {
		return
	}

	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	conv := converter.NewDAEToGLTFConverter(conf.ConverterOptions(name))
	doc, err := conv.Convert(model, clips, filepath.Dir(input))
	if err != nil {
		log.Fatal(err)
	}
	if err := gltfutil.Save(doc, output); err != nil {
		log.Fatal(err)
	}
	log.Printf("%s: %d joints, %d vertices, %d animations", output, model.Skeleton.JointCount(), len(model.Mesh.Vertices), len(clips))
}
