// Package triangle implements the ray/triangle intersection primitive:
// a triangle stores its vertex attributes plus the data the original
// Triangle.cpp precomputes once at construction (face normal, projection
// axis, edge vectors, reciprocal determinant) so that intersects() is a
// pure 2D solve instead of a general 3D ray/plane/barycentric pipeline.
package triangle

import (
	stdmath "math"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/material"
)

// epsilon is the minimum positive t below which a ray is treated as missing.
// Degeneracy is decided separately, by an exactly-zero face normal.
const epsilon = 1e-6

// mod mirrors original Triangle.cpp's lookup table for picking the two
// projection axes orthogonal to the dominant normal axis.
var mod = [5]int{0, 1, 2, 0, 1}

// Triangle is built once at scene ingest and is immutable thereafter; it is
// borrowed by kd-tree leaves by pointer, never copied or mutated.
type Triangle struct {
	P0, P1, P2 aortmath.Vec3
	N0, N1, N2 aortmath.Vec3
	UV0, UV1, UV2 aortmath.Vec2
	Material   *material.Material

	normal  aortmath.Vec3 // face normal
	k       int           // projection axis: index of largest |normal component|
	uAxis   int
	vAxis   int
	b, c    aortmath.Vec3 // edge vectors p2-p0, p1-p0
	invDet  float32
}

func faceNormal(p0, p1, p2 aortmath.Vec3) aortmath.Vec3 {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}

func axisComponent(v aortmath.Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func fabs32(v float32) float32 {
	return float32(stdmath.Abs(float64(v)))
}

// New builds a Triangle, precomputing its intersection data. A supplied
// vertex normal of zero falls back to the face normal; a triangle whose
// face normal is itself the zero vector (collinear vertices — see
// IsDegenerate) is still constructed — Intersects on it unconditionally
// reports a miss rather than dividing by zero.
func New(p0, p1, p2 aortmath.Vec3, n0, n1, n2 aortmath.Vec3, uv0, uv1, uv2 aortmath.Vec2, mat *material.Material) *Triangle {
	n := faceNormal(p0, p1, p2)

	if n0 == (aortmath.Vec3{}) {
		n0 = n
	}
	if n1 == (aortmath.Vec3{}) {
		n1 = n
	}
	if n2 == (aortmath.Vec3{}) {
		n2 = n
	}

	t := &Triangle{
		P0: p0, P1: p1, P2: p2,
		N0: n0, N1: n1, N2: n2,
		UV0: uv0, UV1: uv1, UV2: uv2,
		Material: mat,
		normal:   n,
		b:        p2.Sub(p0),
		c:        p1.Sub(p0),
	}

	if fabs32(n.X) > fabs32(n.Y) {
		if fabs32(n.X) > fabs32(n.Z) {
			t.k = 0
		} else {
			t.k = 2
		}
	} else {
		if fabs32(n.Y) > fabs32(n.Z) {
			t.k = 1
		} else {
			t.k = 2
		}
	}
	t.uAxis = mod[t.k+1]
	t.vAxis = mod[t.k+2]

	denom := axisComponent(t.b, t.uAxis)*axisComponent(t.c, t.vAxis) - axisComponent(t.b, t.vAxis)*axisComponent(t.c, t.uAxis)
	if denom != 0 {
		t.invDet = 1 / denom
	}
	return t
}

// FaceNormal returns the precomputed (normalized) geometric face normal.
func (t *Triangle) FaceNormal() aortmath.Vec3 {
	return t.normal
}

// IsDegenerate reports whether the triangle's vertices are collinear.
func (t *Triangle) IsDegenerate() bool {
	return t.normal == (aortmath.Vec3{})
}

// Extent returns (min,max) of the triangle's three vertex positions on axis.
func (t *Triangle) Extent(axis int) (min, max float32) {
	p0 := axisComponent(t.P0, axis)
	p1 := axisComponent(t.P1, axis)
	p2 := axisComponent(t.P2, axis)
	min = p0
	if p1 < min {
		min = p1
	}
	if p2 < min {
		min = p2
	}
	max = p0
	if p1 > max {
		max = p1
	}
	if p2 > max {
		max = p2
	}
	return
}

// Bounds returns the triangle's axis-aligned bounding box.
func (t *Triangle) Bounds() core.AABB {
	box := core.EmptyAABB()
	box = box.MergePoint(t.P0)
	box = box.MergePoint(t.P1)
	box = box.MergePoint(t.P2)
	return box
}

// InterpolatedNormal blends the three vertex normals by barycentric (u,v),
// unnormalized — callers normalize where needed.
func (t *Triangle) InterpolatedNormal(u, v float32) aortmath.Vec3 {
	w := 1 - u - v
	return t.N0.Mul(w).Add(t.N1.Mul(u)).Add(t.N2.Mul(v))
}

// TexCoord blends the three UVs by barycentric (u,v).
func (t *Triangle) TexCoord(u, v float32) aortmath.Vec2 {
	w := 1 - u - v
	return t.UV0.Mul(w).Add(t.UV1.Mul(u)).Add(t.UV2.Mul(v))
}

// Intersects solves the ray/triangle hit via 2D axis projection, ported
// from original Triangle.cpp::intersects. On success it returns (t,u,v)
// with ok=true; a degenerate triangle (zero face normal) unconditionally
// reports a miss.
func (t *Triangle) Intersects(ray core.Ray) (tHit, u, v float32, ok bool) {
	if t.IsDegenerate() {
		return 0, 0, 0, false
	}

	denom := ray.Direction.Dot(t.normal)
	if denom == 0 {
		return 0, 0, 0, false // grazing ray, parallel to the plane
	}

	tHit = -(ray.Origin.Sub(t.P0).Dot(t.normal)) / denom
	if tHit < epsilon {
		return 0, 0, 0, false
	}

	hu := axisComponent(ray.Origin, t.uAxis) + tHit*axisComponent(ray.Direction, t.uAxis) - axisComponent(t.P0, t.uAxis)
	hv := axisComponent(ray.Origin, t.vAxis) + tHit*axisComponent(ray.Direction, t.vAxis) - axisComponent(t.P0, t.vAxis)

	bu, bv := axisComponent(t.b, t.uAxis), axisComponent(t.b, t.vAxis)
	cu, cv := axisComponent(t.c, t.uAxis), axisComponent(t.c, t.vAxis)

	u = (bu*hv - bv*hu) * t.invDet
	if u < 0 {
		return 0, 0, 0, false
	}
	v = (cv*hu - cu*hv) * t.invDet
	if v < 0 {
		return 0, 0, 0, false
	}
	if u+v > 1.0 {
		return 0, 0, 0, false
	}
	return tHit, u, v, true
}
