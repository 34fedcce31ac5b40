package triangle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/material"
	"github.com/aort-engine/aort/triangle"
)

func unitTriangle() *triangle.Triangle {
	return triangle.New(
		aortmath.NewVec3(0, 0, 0),
		aortmath.NewVec3(1, 0, 0),
		aortmath.NewVec3(0, 1, 0),
		aortmath.Vec3{}, aortmath.Vec3{}, aortmath.Vec3{},
		aortmath.Vec2{}, aortmath.Vec2{X: 1}, aortmath.Vec2{Y: 1},
		material.NewMaterial("m"),
	)
}

func TestIntersectsHitsInterior(t *testing.T) {
	tri := unitTriangle()
	ray := core.Ray{Origin: aortmath.NewVec3(0.2, 0.2, 1), Direction: aortmath.NewVec3(0, 0, -1)}

	hitT, u, v, ok := tri.Intersects(ray)
	require.True(t, ok)
	require.InDelta(t, 1.0, hitT, 1e-5)
	require.GreaterOrEqual(t, u, float32(0))
	require.GreaterOrEqual(t, v, float32(0))
	require.LessOrEqual(t, u+v, float32(1))
}

func TestIntersectsMissesOutsideEdge(t *testing.T) {
	tri := unitTriangle()
	ray := core.Ray{Origin: aortmath.NewVec3(2, 2, 1), Direction: aortmath.NewVec3(0, 0, -1)}

	_, _, _, ok := tri.Intersects(ray)
	require.False(t, ok)
}

func TestIntersectsRejectsParallelRay(t *testing.T) {
	tri := unitTriangle()
	ray := core.Ray{Origin: aortmath.NewVec3(0.1, 0.1, 1), Direction: aortmath.NewVec3(1, 0, 0)}

	_, _, _, ok := tri.Intersects(ray)
	require.False(t, ok)
}

func TestIntersectsRejectsBehindOrigin(t *testing.T) {
	tri := unitTriangle()
	ray := core.Ray{Origin: aortmath.NewVec3(0.2, 0.2, -1), Direction: aortmath.NewVec3(0, 0, -1)}

	_, _, _, ok := tri.Intersects(ray)
	require.False(t, ok)
}

func TestInterpolatedNormalAtVerticesMatchesVertexNormal(t *testing.T) {
	tri := triangle.New(
		aortmath.NewVec3(0, 0, 0),
		aortmath.NewVec3(1, 0, 0),
		aortmath.NewVec3(0, 1, 0),
		aortmath.NewVec3(1, 0, 0), aortmath.NewVec3(0, 1, 0), aortmath.NewVec3(0, 0, 1),
		aortmath.Vec2{}, aortmath.Vec2{}, aortmath.Vec2{},
		material.NewMaterial("m"),
	)

	// u=0,v=0 -> w=1 -> N0
	n := tri.InterpolatedNormal(0, 0)
	require.Equal(t, aortmath.NewVec3(1, 0, 0), n)

	// u=1,v=0 -> N1
	n = tri.InterpolatedNormal(1, 0)
	require.Equal(t, aortmath.NewVec3(0, 1, 0), n)
}

func TestDegenerateTriangleAlwaysMisses(t *testing.T) {
	tri := triangle.New(
		aortmath.NewVec3(0, 0, 0),
		aortmath.NewVec3(1, 0, 0),
		aortmath.NewVec3(2, 0, 0), // collinear
		aortmath.Vec3{}, aortmath.Vec3{}, aortmath.Vec3{},
		aortmath.Vec2{}, aortmath.Vec2{}, aortmath.Vec2{},
		material.NewMaterial("m"),
	)
	require.True(t, tri.IsDegenerate())

	ray := core.Ray{Origin: aortmath.NewVec3(0.5, 1, 0), Direction: aortmath.NewVec3(0, -1, 0)}
	_, _, _, ok := tri.Intersects(ray)
	require.False(t, ok)
}

func TestBoundsCoversAllVertices(t *testing.T) {
	tri := unitTriangle()
	b := tri.Bounds()
	require.Equal(t, float32(0), b.Min.X)
	require.Equal(t, float32(0), b.Min.Y)
	require.Equal(t, float32(1), b.Max.X)
	require.Equal(t, float32(1), b.Max.Y)
}
