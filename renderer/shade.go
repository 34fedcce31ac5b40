package renderer

import (
	"math/rand"
	"sync/atomic"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/light"
)

// traceRay ports AortRenderer.cpp::traceRay: intersect the scene, shade the
// hit with ambient + per-light diffuse/specular + shadows, then recurse one
// level deeper for mirror reflection. A primary-ray miss returns the
// configured background colour.
func (s *shader) traceRay(ray core.Ray, depth int, rng *rand.Rand) core.Color {
	atomic.AddInt64(&s.rayCount, 1)

	hit, ok := s.root.ClosestHit(ray, epsilon, maxRayT)
	if !ok {
		return s.background
	}

	tri := hit.Triangle
	mat := tri.Material
	if mat == nil {
		mat = defaultMaterial
	}

	v := ray.Direction
	p := ray.At(hit.T - epsilon)
	n := tri.InterpolatedNormal(hit.U, hit.V).Normalize()

	diffuseTex := mat.ColourAt(tri.TexCoord(hit.U, hit.V))
	specularColour := mat.Specular

	out := s.ambient.MulColor(mat.Ambient)

	for _, l := range s.lights {
		illumination := s.illumination(p, l, rng)
		if illumination <= epsilon {
			continue
		}

		lDir := l.Position().Sub(p).Normalize()
		diffuse := calculateDiffuse(n, lDir)
		specular := calculateSpecular(v, n, lDir, mat.Shininess)

		out = out.Add(diffuseTex.MulColor(l.DiffuseColour()).Mul(illumination * diffuse))
		out = out.Add(specularColour.MulColor(l.SpecularColour()).Mul(illumination * specular))
	}

	if mat.Reflectivity > epsilon && depth < s.maxDepth {
		r := reflect(v, n)
		reflected := s.traceRay(core.Ray{Origin: p.Add(r.Mul(epsilon)), Direction: r}, depth+1, rng)
		out = out.Add(reflected.MulColor(diffuseTex).Mul(mat.Reflectivity))
	}

	out = out.Clamp01()
	out.A = 1
	return out
}

// illumination computes the fraction of a light's extent visible from p,
// cast toward each of its SamplePoints independently (16 jittered points for
// an area light, softening its shadow edge; a single point for a point
// light). The direction used for diffuse/specular shading is unrelated to
// this sampling and comes from l.Position() instead.
func (s *shader) illumination(p aortmath.Vec3, l light.Light, rng *rand.Rand) float32 {
	points := l.SamplePoints(rng)
	if len(points) == 0 {
		return 0
	}

	var unoccluded int
	for _, pt := range points {
		toLight := pt.Sub(p)
		length := toLight.Length()
		if length <= 0 {
			continue
		}
		dir := toLight.Div(length)
		if !s.root.AnyHit(core.Ray{Origin: p, Direction: dir}, epsilon, length) {
			unoccluded++
		}
	}

	return float32(unoccluded) / float32(len(points))
}

// calculateDiffuse is the Lambertian term: max(N·L, 0).
func calculateDiffuse(n, l aortmath.Vec3) float32 {
	dot := n.Dot(l)
	if dot > 0 {
		return dot
	}
	return 0
}

// calculateSpecular ports AortRenderer.cpp::calculateSpecular, generalized
// to use the material's shininess when the author set one, falling back to
// the source's hard-coded sharpness of 50.
func calculateSpecular(v, n, l aortmath.Vec3, shininess float32) float32 {
	sharpness := shininess
	if sharpness == 0 {
		sharpness = 50
	}

	r := l.Sub(n.Mul(2 * n.Dot(l)))
	d := v.Dot(r)
	if d <= 0 {
		return 0
	}
	return d / (sharpness - sharpness*d + d)
}

// reflect mirrors v about n: R = V - 2*(N.V)*N.
func reflect(v, n aortmath.Vec3) aortmath.Vec3 {
	return v.Sub(n.Mul(2 * n.Dot(v)))
}
