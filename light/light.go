// Package light implements point and area light descriptors. Modeled as a
// small sum type (rather than the packed struct original AortLight.cpp
// uses) since either shape is a reasonable representation here.
package light

import (
	"math/rand"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
)

// Samples is the fixed stratified-sample count for area lights: a 4x4
// jittered grid.
const Samples = 16

const gridDim = 4

// Light is implemented by Point and Area.
type Light interface {
	// SamplePoints returns the points toward which shadow rays are cast from
	// a shaded surface point, using rng for jitter. A Point light always
	// returns exactly one point; an Area light returns Samples points.
	SamplePoints(rng *rand.Rand) []aortmath.Vec3
	// Position returns the light's fixed position, used for the
	// diffuse/specular direction independent of any shadow-sample jitter.
	Position() aortmath.Vec3
	DiffuseColour() core.Color
	SpecularColour() core.Color
}

// Point is a point light source.
type Point struct {
	Pos      aortmath.Vec3
	Diffuse  core.Color
	Specular core.Color
}

func (p *Point) SamplePoints(_ *rand.Rand) []aortmath.Vec3 {
	return []aortmath.Vec3{p.Pos}
}

func (p *Point) Position() aortmath.Vec3    { return p.Pos }
func (p *Point) DiffuseColour() core.Color  { return p.Diffuse }
func (p *Point) SpecularColour() core.Color { return p.Specular }

// Area is a horizontal rectangular area light, sampled as a 4x4 jittered
// grid. Direction is carried for API parity with the source
// (Aort::Light::getDirection) but the grid itself always lies in a plane of
// constant Y, as original AortLight.cpp::getPoints computes it.
type Area struct {
	Pos       aortmath.Vec3
	Direction aortmath.Vec3
	SizeX     float32
	SizeY     float32
	Diffuse   core.Color
	Specular  core.Color
}

// NewDirectionalAsArea converts an external directional light into a
// horizontal 100x100 area light at the given position — an intentional
// simplification preserved from the source rather than modeled as a true
// infinite-direction light.
func NewDirectionalAsArea(position, direction aortmath.Vec3, diffuse, specular core.Color) *Area {
	return &Area{
		Pos:       position,
		Direction: direction,
		SizeX:     100,
		SizeY:     100,
		Diffuse:   diffuse,
		Specular:  specular,
	}
}

// SamplePoints draws 16 points on a 4x4 grid centered on Pos with extents
// SizeX x SizeY, each cell's top-left plus a fresh uniform jitter in
// [0, cellSize)^2. Resampled on every call, since resampling each shadow
// call reduces banding — ported from AortLight.cpp::getPoints.
func (a *Area) SamplePoints(rng *rand.Rand) []aortmath.Vec3 {
	cellX := a.SizeX / gridDim
	cellY := a.SizeY / gridDim
	topLeft := aortmath.Vec3{
		X: a.Pos.X - a.SizeX*0.5,
		Y: a.Pos.Y,
		Z: a.Pos.Z - a.SizeY*0.5,
	}

	points := make([]aortmath.Vec3, 0, Samples)
	for i := 0; i < gridDim; i++ {
		for j := 0; j < gridDim; j++ {
			cell := topLeft.Add(aortmath.Vec3{X: float32(i) * cellX, Y: 0, Z: float32(j) * cellY})
			jitter := aortmath.Vec3{X: rng.Float32() * cellX, Y: 0, Z: rng.Float32() * cellY}
			points = append(points, cell.Add(jitter))
		}
	}
	return points
}

func (a *Area) Position() aortmath.Vec3    { return a.Pos }
func (a *Area) DiffuseColour() core.Color  { return a.Diffuse }
func (a *Area) SpecularColour() core.Color { return a.Specular }
