package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/light"
	"github.com/aort-engine/aort/material"
	"github.com/aort-engine/aort/renderer"
	"github.com/aort-engine/aort/scenegraph"
	"github.com/aort-engine/aort/triangle"
)

// quadFacingCamera returns a pair of triangles forming a 10x10 square on the
// Z=0 plane with face normal (0,0,1) — facing a camera sitting at z>0 and
// looking at the origin.
func quadFacingCamera(mat *material.Material) []*triangle.Triangle {
	p0 := aortmath.NewVec3(-5, -5, 0)
	p1 := aortmath.NewVec3(5, -5, 0)
	p2 := aortmath.NewVec3(5, 5, 0)
	p3 := aortmath.NewVec3(-5, 5, 0)
	zero := aortmath.Vec3{}
	zuv := aortmath.Vec2{}
	return []*triangle.Triangle{
		triangle.New(p0, p1, p2, zero, zero, zero, zuv, zuv, zuv, mat),
		triangle.New(p0, p2, p3, zero, zero, zero, zuv, zuv, zuv, mat),
	}
}

func newTestCamera() *scenegraph.Camera {
	cam := scenegraph.NewCamera(1.0472, 1.0, 0.1, 1000)
	cam.SetPosition(aortmath.NewVec3(0, 0, 5))
	cam.LookAt(aortmath.Vec3Zero, aortmath.Vec3Up)
	return cam
}

func TestQuadNoLightIsAmbientOnly(t *testing.T) {
	mat := material.NewMaterial("flat")
	mat.Ambient = core.ColorWhite
	mat.Reflectivity = 0

	scene := scenegraph.NewScene()
	scene.Ambient = core.Color{R: 0.4, G: 0.4, B: 0.4, A: 1}
	scene.Root.Triangles = quadFacingCamera(mat)
	scene.Camera = newTestCamera()

	img, stats, err := renderer.Render(scene, renderer.Options{Width: 8, Height: 8})
	require.NoError(t, err)
	require.Equal(t, 2, stats.TriangleCount)

	i := img.PixOffset(4, 4)
	require.InDelta(t, 0.4*255, float64(img.Pix[i]), 5, "ambient-only pixel should read back scene.Ambient*mat.Ambient")
}

func TestPointLightDiffuseIlluminatesFacingQuad(t *testing.T) {
	mat := material.NewMaterial("flat")
	mat.Reflectivity = 0

	scene := scenegraph.NewScene()
	scene.Ambient = core.Color{}
	scene.Root.Triangles = quadFacingCamera(mat)
	scene.Camera = newTestCamera()
	scene.AddLight(&light.Point{
		Pos:     aortmath.NewVec3(0, 0, 10),
		Diffuse: core.ColorWhite,
	})

	img, _, err := renderer.Render(scene, renderer.Options{Width: 8, Height: 8})
	require.NoError(t, err)

	i := img.PixOffset(4, 4)
	require.GreaterOrEqual(t, img.Pix[i], byte(200), "a light facing the quad head-on should shade it near-white")
}

// wallTriangles builds a flat rectangular occluder spanning [loA,hiA] on axis
// a and [loB,hiB] on axis b, at a fixed value on the third axis.
func wallTriangles(fixedAxis int, fixedValue float32, loA, hiA, loB, hiB float32) []*triangle.Triangle {
	point := func(a, b float32) aortmath.Vec3 {
		switch fixedAxis {
		case 0:
			return aortmath.NewVec3(fixedValue, a, b)
		case 1:
			return aortmath.NewVec3(a, fixedValue, b)
		default:
			return aortmath.NewVec3(a, b, fixedValue)
		}
	}
	p0 := point(loA, loB)
	p1 := point(hiA, loB)
	p2 := point(hiA, hiB)
	p3 := point(loA, hiB)
	zero := aortmath.Vec3{}
	zuv := aortmath.Vec2{}
	mat := material.NewMaterial("wall")
	mat.Reflectivity = 0
	return []*triangle.Triangle{
		triangle.New(p0, p1, p2, zero, zero, zero, zuv, zuv, zuv, mat),
		triangle.New(p0, p2, p3, zero, zero, zero, zuv, zuv, zuv, mat),
	}
}

func TestOccludedPointLightLeavesSurfaceDark(t *testing.T) {
	mat := material.NewMaterial("flat")
	mat.Reflectivity = 0

	scene := scenegraph.NewScene()
	scene.Ambient = core.Color{}
	scene.Root.Triangles = quadFacingCamera(mat)
	scene.Camera = newTestCamera()
	// Off-axis so the shadow ray (surface -> light) and the camera's primary
	// ray (constant y=0) diverge immediately and a blocker can intercept one
	// without the other.
	scene.AddLight(&light.Point{
		Pos:     aortmath.NewVec3(0, 3, 10),
		Diffuse: core.ColorWhite,
	})

	blocker := scenegraph.NewNode("blocker")
	blocker.Triangles = wallTriangles(1, 1.5, -5, 5, 0, 10) // horizontal wall at y=1.5
	scene.Root.AddChild(blocker)

	img, _, err := renderer.Render(scene, renderer.Options{Width: 8, Height: 8})
	require.NoError(t, err)

	i := img.PixOffset(4, 4)
	require.Equal(t, byte(0), img.Pix[i], "a wall between the surface and the light should fully shadow the centre pixel")
}

func TestMirrorReflectionPicksUpReflectedColour(t *testing.T) {
	mirror := material.NewMaterial("mirror")
	mirror.Ambient = core.Color{}
	mirror.Reflectivity = 1

	scene := scenegraph.NewScene()
	scene.Ambient = core.ColorWhite
	scene.Root.Triangles = quadFacingCamera(mirror)
	scene.Camera = newTestCamera()

	redMat := material.NewMaterial("red")
	redMat.Reflectivity = 0
	redMat.Ambient = core.ColorRed
	redMat.Diffuse = core.ColorRed

	// A head-on ray off a mirror facing the camera reflects straight back the
	// way it came (normal incidence) — place the backdrop behind the camera,
	// along the reflected ray's +Z path, not in front of the mirror.
	backdrop := scenegraph.NewNode("backdrop")
	backdrop.Triangles = quadFacingCamera(redMat)
	backdrop.SetPosition(aortmath.NewVec3(0, 0, 15))
	scene.Root.AddChild(backdrop)

	img, _, err := renderer.Render(scene, renderer.Options{Width: 8, Height: 8})
	require.NoError(t, err)

	i := img.PixOffset(4, 4)
	r, g := img.Pix[i], img.Pix[i+1]
	require.GreaterOrEqual(t, r, byte(230), "mirror should reflect the red backdrop's ambient contribution")
	require.LessOrEqual(t, g, byte(20), "the reflected colour should carry no green")
}

func TestAreaLightSoftShadowFallsWithinExpectedRange(t *testing.T) {
	mat := material.NewMaterial("flat")
	mat.Reflectivity = 0
	mat.Ambient = core.Color{}

	scene := scenegraph.NewScene()
	scene.Ambient = core.Color{}
	scene.Root.Triangles = quadFacingCamera(mat)
	scene.Camera = newTestCamera()
	// Samples span x in [-3,3], z in [7,13] at y=3: strongly +Z-aligned with
	// the quad's normal, so diffuse stays high and illumination dominates.
	scene.AddLight(&light.Area{
		Pos:     aortmath.NewVec3(0, 3, 10),
		SizeX:   6,
		SizeY:   6,
		Diffuse: core.ColorWhite,
	})

	// A thin wall just off the x=0 axis catches every shadow ray whose sample
	// has x<0 (about half of the 16 stratified samples) while the camera's
	// centre ray, which runs exactly along x=0, never reaches it.
	blocker := scenegraph.NewNode("half-blocker")
	blocker.Triangles = wallTriangles(0, -0.1, -1, 4, -1, 14)
	scene.Root.AddChild(blocker)

	img, _, err := renderer.Render(scene, renderer.Options{Width: 8, Height: 8})
	require.NoError(t, err)

	i := img.PixOffset(4, 4)
	v := float64(img.Pix[i]) / 255
	require.Greater(t, v, 0.3, "half-blocked area light should not fully darken the surface")
	require.Less(t, v, 0.7, "half-blocked area light should not leave the surface fully lit")
}

func TestEmptySceneFillsBackground(t *testing.T) {
	scene := scenegraph.NewScene()
	scene.Camera = newTestCamera()

	bg := core.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
	img, stats, err := renderer.Render(scene, renderer.Options{Width: 4, Height: 4, Background: bg})
	require.NoError(t, err)
	require.Equal(t, 0, stats.TriangleCount)

	px := bg.Quantize8()
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := img.PixOffset(x, y)
			require.Equal(t, px[0], img.Pix[i])
			require.Equal(t, px[1], img.Pix[i+1])
			require.Equal(t, px[2], img.Pix[i+2])
		}
	}
}

func TestRenderIsDeterministicAcrossRuns(t *testing.T) {
	build := func() *scenegraph.Scene {
		mat := material.NewMaterial("flat")
		scene := scenegraph.NewScene()
		scene.Root.Triangles = quadFacingCamera(mat)
		scene.Camera = newTestCamera()
		scene.AddLight(&light.Area{
			Pos:      aortmath.NewVec3(0, 3, 10),
			SizeX:    6,
			SizeY:    6,
			Diffuse:  core.ColorWhite,
			Specular: core.ColorWhite,
		})
		return scene
	}

	opts := renderer.Options{Width: 16, Height: 16}
	imgA, _, err := renderer.Render(build(), opts)
	require.NoError(t, err)
	imgB, _, err := renderer.Render(build(), opts)
	require.NoError(t, err)

	require.Equal(t, imgA.Pix, imgB.Pix, "identical scenes must render to byte-identical images regardless of worker scheduling")
}

func TestMissingCameraIsRejected(t *testing.T) {
	scene := scenegraph.NewScene()
	_, _, err := renderer.Render(scene, renderer.Options{Width: 4, Height: 4})
	require.Error(t, err)
}

func TestInvalidDimensionsAreRejected(t *testing.T) {
	scene := scenegraph.NewScene()
	scene.Camera = newTestCamera()
	_, _, err := renderer.Render(scene, renderer.Options{Width: 0, Height: 4})
	require.Error(t, err)
}
