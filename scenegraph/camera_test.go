package scenegraph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/scenegraph"
)

func TestRayForViewportCentreAimsAtLookAtTarget(t *testing.T) {
	cam := scenegraph.NewCamera(1.0472, 1.0, 0.1, 1000)
	cam.SetPosition(aortmath.NewVec3(0, 0, 5))
	cam.LookAt(aortmath.Vec3Zero, aortmath.Vec3Up)

	ray := cam.RayForViewport(0.5, 0.5)

	require.InDelta(t, 0, ray.Direction.X, 1e-3)
	require.InDelta(t, 0, ray.Direction.Y, 1e-3)
	require.Less(t, ray.Direction.Z, float32(0), "centre ray should point toward -Z, toward the origin")
}

func TestRayForViewportVariesAcrossPixels(t *testing.T) {
	cam := scenegraph.NewCamera(1.0472, 1.0, 0.1, 1000)
	cam.SetPosition(aortmath.NewVec3(0, 0, 5))
	cam.LookAt(aortmath.Vec3Zero, aortmath.Vec3Up)

	left := cam.RayForViewport(0.01, 0.5)
	right := cam.RayForViewport(0.99, 0.5)

	require.NotEqual(t, left.Direction, right.Direction)
	require.Less(t, left.Direction.X, right.Direction.X)
}
