// Package renderer drives the pixel loop: it owns the kd-tree build, the
// Whitted shading pipeline, and the row-parallel worker pool, grounded on
// AortRenderer.cpp for every shading formula and on rt.go's row-channel
// worker pool for the concurrency shape.
package renderer

import (
	"fmt"
	"image"
	"log"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/kdtree"
	"github.com/aort-engine/aort/light"
	"github.com/aort-engine/aort/material"
	"github.com/aort-engine/aort/scenegraph"
)

// defaultMaterial backstops triangles a loader left with a nil Material
// (e.g. a glTF primitive referencing no material slot).
var defaultMaterial = material.NewMaterial("__default")

// epsilon is the one back-off/threshold constant used throughout shading,
// replacing the source's repeated, undocumented 0.001 literal. It serves
// both as the self-intersection back-off distance and the minimum t a
// shadow or reflection ray may report.
const epsilon = 0.001

const maxRayT = 1e30

// viewportEpsilon is the float32 machine epsilon, added to (x/W, y/H) so no
// primary ray is ever exactly axis-aligned.
const viewportEpsilon = 1.1920929e-7

// Options configures a render. The zero value is invalid for Width/Height;
// every other field has a documented default. Ambient light is a scene
// property (scene.Ambient), not a render option.
type Options struct {
	Width, Height int

	MaxDepth   int        // reflection recursion limit; 0 -> 3
	Background core.Color // colour for primary-ray misses; zero value -> black

	KdTreeMaxDepth            int // 0 -> kdtree.MaxDepth
	KdTreeMinTrianglesPerLeaf int // 0 -> kdtree.MinTrianglesPerLeaf

	Workers int // 0 -> runtime.NumCPU()
}

func (o Options) normalized() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 3
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}

// Stats reports post-render counters the original logged to the console.
type Stats struct {
	TriangleCount int
	RayCount      int64
	BuildTime     time.Duration
	RenderTime    time.Duration
}

// Render builds the kd-tree over scene's flattened triangle list and
// produces an RGBA image: one primary ray per pixel through
// scene.Camera.RayForViewport, shaded by traceRay. Rows are independent and
// rendered by a fixed worker pool reading off a channel of row indices —
// each row seeds its own PRNG from its row index so the image is identical
// regardless of how work is scheduled across workers (determinism under
// parallelism).
//
// The Renderer releases the tree, triangles and lights on every exit path:
// none of it is retained beyond this call.
func Render(scene *scenegraph.Scene, opts Options) (*image.RGBA, Stats, error) {
	opts = opts.normalized()
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, Stats{}, fmt.Errorf("renderer: invalid dimensions %dx%d", opts.Width, opts.Height)
	}
	if scene.Camera == nil {
		return nil, Stats{}, fmt.Errorf("renderer: scene has no camera")
	}

	log.Println("Building...")
	buildStart := time.Now()

	triangles := scene.Triangles()
	bounds := scene.Bounds()
	root := kdtree.Build(bounds, triangles, kdtree.BuildParams{
		MaxDepth:            opts.KdTreeMaxDepth,
		MinTrianglesPerLeaf: opts.KdTreeMinTrianglesPerLeaf,
	})
	buildTime := time.Since(buildStart)

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))

	if len(triangles) == 0 {
		fillBackground(img, opts.Background)
		log.Printf("Finished. Number of triangles: 0 Number of rays: 0")
		return img, Stats{BuildTime: buildTime}, nil
	}

	sh := &shader{
		root:       root,
		camera:     scene.Camera,
		lights:     scene.Lights,
		ambient:    scene.Ambient,
		background: opts.Background,
		maxDepth:   opts.MaxDepth,
	}

	log.Println("Rendering...")
	renderStart := time.Now()

	// Must happen before the worker pool starts: RayForViewport lazily
	// recomputes the camera's view/projection matrices on first use, and
	// that recompute is unsynchronized.
	sh.camera.Warm()

	rows := make(chan int, opts.Height)
	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer wg.Done()
			for y := range rows {
				sh.renderRow(img, y, opts.Width, opts.Height)
			}
		}()
	}
	for y := 0; y < opts.Height; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	renderTime := time.Since(renderStart)
	rayCount := atomic.LoadInt64(&sh.rayCount)

	log.Printf("Finished. Number of triangles: %d Number of rays: %d", len(triangles), rayCount)

	return img, Stats{
		TriangleCount: len(triangles),
		RayCount:      rayCount,
		BuildTime:     buildTime,
		RenderTime:    renderTime,
	}, nil
}

func fillBackground(img *image.RGBA, bg core.Color) {
	px := bg.Clamp01().Quantize8()
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := img.PixOffset(x, y)
			copy(img.Pix[i:i+4], px[:])
		}
	}
}

// shader bundles everything traceRay needs, shared read-only across
// workers: the kd-tree, camera, lights and ambient/background colours are
// all built once before the worker pool starts and never mutated during
// rendering.
type shader struct {
	root       *kdtree.Node
	camera     *scenegraph.Camera
	lights     []light.Light
	ambient    core.Color
	background core.Color
	maxDepth   int
	rayCount   int64
}

func (s *shader) renderRow(img *image.RGBA, y, width, height int) {
	rng := rand.New(rand.NewSource(int64(y)))
	invW := 1.0 / float32(width)
	invH := 1.0 / float32(height)

	for x := 0; x < width; x++ {
		u := float32(x)*invW + viewportEpsilon
		v := float32(y)*invH + viewportEpsilon

		ray := s.camera.RayForViewport(u, v)
		colour := s.traceRay(ray, 0, rng)

		px := colour.Clamp01().Quantize8()
		i := img.PixOffset(x, y)
		copy(img.Pix[i:i+4], px[:])
	}
}
