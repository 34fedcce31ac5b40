// Command aortrender loads a scene file, ray-traces it, and writes the
// result as a PNG. It is the batch counterpart to cmd/aortpreview's
// interactive viewer, structured after cmd/demo/main.go: parse inputs,
// build the scene, hand off to the engine, report.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/light"
	"github.com/aort-engine/aort/loader"
	"github.com/aort-engine/aort/renderer"
	"github.com/aort-engine/aort/scenegraph"
)

type vec3Flag struct {
	v     aortmath.Vec3
	isSet bool
}

func (f *vec3Flag) String() string {
	if !f.isSet {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g", f.v.X, f.v.Y, f.v.Z)
}

func (f *vec3Flag) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want \"x,y,z\", got %q", s)
	}
	var out [3]float32
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		out[i] = float32(n)
	}
	f.v = aortmath.NewVec3(out[0], out[1], out[2])
	f.isSet = true
	return nil
}

type colorFlag struct {
	v     core.Color
	isSet bool
}

func (f *colorFlag) String() string {
	if !f.isSet {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g", f.v.R, f.v.G, f.v.B)
}

func (f *colorFlag) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want \"r,g,b\", got %q", s)
	}
	var out [3]float32
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		out[i] = float32(n)
	}
	f.v = core.Color{R: out[0], G: out[1], B: out[2], A: 1}
	f.isSet = true
	return nil
}

func main() {
	scenePath := flag.String("scene", "", "path to a .obj or .gltf/.glb scene file")
	outPath := flag.String("out", "out.png", "output PNG path")
	width := flag.Int("width", 800, "image width in pixels")
	height := flag.Int("height", 600, "image height in pixels")
	maxDepth := flag.Int("max-depth", 0, "reflection recursion limit (0 -> renderer default of 3)")
	workers := flag.Int("workers", 0, "worker goroutines (0 -> runtime.NumCPU())")

	var camPos, camTarget, lightPos vec3Flag
	camPos.v = aortmath.NewVec3(0, 0, 5)
	camTarget.v = aortmath.Vec3Zero
	lightPos.v = aortmath.NewVec3(0, 5, 5)
	flag.Var(&camPos, "cam-pos", "camera position \"x,y,z\"")
	flag.Var(&camTarget, "cam-target", "point the camera looks at, \"x,y,z\"")
	flag.Var(&lightPos, "light-pos", "position of a single point light, \"x,y,z\"")
	fov := flag.Float64("cam-fov", 1.0472, "vertical field of view, radians")

	var ambient, background, lightDiffuse colorFlag
	flag.Var(&ambient, "ambient", "scene ambient colour \"r,g,b\" (default 0,0,0)")
	flag.Var(&background, "background", "background colour for primary-ray misses \"r,g,b\"")
	flag.Var(&lightDiffuse, "light-diffuse", "diffuse colour of the point light \"r,g,b\" (default 1,1,1)")
	noLight := flag.Bool("no-light", false, "omit the default point light")

	flag.Parse()

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "aortrender: -scene is required")
		flag.Usage()
		os.Exit(2)
	}

	scene, err := buildScene(*scenePath)
	if err != nil {
		log.Fatalf("aortrender: %v", err)
	}

	scene.Camera = scenegraph.NewCamera(float32(*fov), float32(*width)/float32(*height), 0.1, 1000)
	scene.Camera.SetPosition(camPos.v)
	scene.Camera.LookAt(camTarget.v, aortmath.Vec3Up)

	if ambient.isSet {
		scene.Ambient = ambient.v
	}
	if !*noLight {
		diffuse := core.ColorWhite
		if lightDiffuse.isSet {
			diffuse = lightDiffuse.v
		}
		scene.AddLight(&light.Point{Pos: lightPos.v, Diffuse: diffuse, Specular: diffuse})
	}

	opts := renderer.Options{
		Width:      *width,
		Height:     *height,
		MaxDepth:   *maxDepth,
		Background: background.v,
		Workers:    *workers,
	}

	img, stats, err := renderer.Render(scene, opts)
	if err != nil {
		log.Fatalf("aortrender: render: %v", err)
	}

	if err := writePNG(*outPath, img); err != nil {
		log.Fatalf("aortrender: %v", err)
	}

	fmt.Printf("wrote %s (%dx%d, %d triangles, %d rays, build %s, render %s)\n",
		*outPath, *width, *height, stats.TriangleCount, stats.RayCount, stats.BuildTime, stats.RenderTime)
}

// buildScene loads scenePath via the loader matching its extension and
// assembles a scenegraph.Scene from the resulting nodes. Camera and lights
// are not part of either file format's scope (the loaders import
// geometry/materials only) and are filled in by main from flags.
func buildScene(scenePath string) (*scenegraph.Scene, error) {
	var nodes []*scenegraph.Node
	var err error

	switch ext := strings.ToLower(filepath.Ext(scenePath)); ext {
	case ".obj":
		nodes, err = loader.LoadOBJ(scenePath)
	case ".gltf", ".glb":
		nodes, err = loader.LoadGLTF(scenePath)
	default:
		return nil, fmt.Errorf("unrecognised scene extension %q (want .obj, .gltf or .glb)", ext)
	}
	if err != nil {
		return nil, err
	}

	scene := scenegraph.NewScene()
	for _, n := range nodes {
		scene.Root.AddChild(n)
	}
	return scene, nil
}

func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png %q: %w", path, err)
	}
	return nil
}
