package kdtree_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/kdtree"
	"github.com/aort-engine/aort/material"
	"github.com/aort-engine/aort/triangle"
)

// randomTriangle builds a small, non-degenerate triangle whose first vertex
// is placed randomly inside [-bound, bound]^3.
func randomTriangle(rng *rand.Rand, bound float32, mat *material.Material) *triangle.Triangle {
	cx := (rng.Float32()*2 - 1) * bound
	cy := (rng.Float32()*2 - 1) * bound
	cz := (rng.Float32()*2 - 1) * bound
	center := aortmath.NewVec3(cx, cy, cz)

	p0 := center.Add(aortmath.NewVec3(0, 0, 0))
	p1 := center.Add(aortmath.NewVec3(1, 0, 0))
	p2 := center.Add(aortmath.NewVec3(0, 1, 0))

	return triangle.New(p0, p1, p2,
		aortmath.Vec3{}, aortmath.Vec3{}, aortmath.Vec3{},
		aortmath.Vec2{}, aortmath.Vec2{X: 1}, aortmath.Vec2{Y: 1},
		mat)
}

func boundsOf(triangles []*triangle.Triangle) core.AABB {
	box := core.EmptyAABB()
	for _, t := range triangles {
		box = box.Merge(t.Bounds())
	}
	return box
}

// bruteForceClosest is the O(n) reference oracle the kd-tree must agree with.
func bruteForceClosest(triangles []*triangle.Triangle, ray core.Ray, tMin, tMax float32) (*triangle.Triangle, float32, bool) {
	var best *triangle.Triangle
	bestT := float32(0)
	found := false
	for _, tri := range triangles {
		t, _, _, ok := tri.Intersects(ray)
		if !ok || t < tMin || t > tMax {
			continue
		}
		if !found || t < bestT {
			best, bestT, found = tri, t, true
		}
	}
	return best, bestT, found
}

func buildScene(n int, seed int64) ([]*triangle.Triangle, *kdtree.Node, core.AABB) {
	rng := rand.New(rand.NewSource(seed))
	mat := material.NewMaterial("m")
	triangles := make([]*triangle.Triangle, n)
	for i := range triangles {
		triangles[i] = randomTriangle(rng, 20, mat)
	}
	bounds := boundsOf(triangles)
	root := kdtree.Build(bounds, triangles, kdtree.BuildParams{})
	return triangles, root, bounds
}

func TestClosestHitMatchesBruteForce(t *testing.T) {
	triangles, root, bounds := buildScene(200, 1)

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		origin := aortmath.NewVec3(
			(rng.Float32()*2-1)*30,
			(rng.Float32()*2-1)*30,
			(rng.Float32()*2-1)*30,
		)
		target := aortmath.NewVec3(
			bounds.Min.X+rng.Float32()*(bounds.Max.X-bounds.Min.X),
			bounds.Min.Y+rng.Float32()*(bounds.Max.Y-bounds.Min.Y),
			bounds.Min.Z+rng.Float32()*(bounds.Max.Z-bounds.Min.Z),
		)
		dir := target.Sub(origin).Normalize()
		ray := core.Ray{Origin: origin, Direction: dir}

		wantTri, wantT, wantOK := bruteForceClosest(triangles, ray, 1e-4, 1e6)
		gotHit, gotOK := root.ClosestHit(ray, 1e-4, 1e6)

		require.Equal(t, wantOK, gotOK)
		if wantOK {
			require.InDelta(t, wantT, gotHit.T, 1e-2)
			require.Equal(t, wantTri, gotHit.Triangle)
		}
	}
}

func TestAnyHitAgreesWithClosestHit(t *testing.T) {
	_, root, bounds := buildScene(150, 3)

	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 300; i++ {
		origin := aortmath.NewVec3(
			(rng.Float32()*2-1)*30,
			(rng.Float32()*2-1)*30,
			(rng.Float32()*2-1)*30,
		)
		target := aortmath.NewVec3(
			bounds.Min.X+rng.Float32()*(bounds.Max.X-bounds.Min.X),
			bounds.Min.Y+rng.Float32()*(bounds.Max.Y-bounds.Min.Y),
			bounds.Min.Z+rng.Float32()*(bounds.Max.Z-bounds.Min.Z),
		)
		dir := target.Sub(origin).Normalize()
		ray := core.Ray{Origin: origin, Direction: dir}

		_, gotOK := root.ClosestHit(ray, 1e-4, 1e6)
		require.Equal(t, gotOK, root.AnyHit(ray, 1e-4, 1e6))
	}
}

// collectLeafTriangles walks the tree and gathers the union of all leaf
// triangle references (a triangle straddling a split lives in both children).
func collectLeafTriangles(n *kdtree.Node, seen map[*triangle.Triangle]bool) {
	if n.IsLeaf {
		for _, t := range n.Triangles {
			seen[t] = true
		}
		return
	}
	collectLeafTriangles(n.Children[0], seen)
	collectLeafTriangles(n.Children[1], seen)
}

func TestBuildReachesEveryTriangle(t *testing.T) {
	triangles, root, _ := buildScene(80, 5)

	seen := make(map[*triangle.Triangle]bool)
	collectLeafTriangles(root, seen)

	for _, tri := range triangles {
		require.True(t, seen[tri], "every input triangle must be reachable from root")
	}
}

func TestBuildOnEmptySceneYieldsEmptyLeaf(t *testing.T) {
	root := kdtree.Build(core.EmptyAABB(), nil, kdtree.BuildParams{})
	require.True(t, root.IsLeaf)
	require.Empty(t, root.Triangles)
}

func TestBuildRespectsMinTrianglesPerLeaf(t *testing.T) {
	triangles, root, bounds := buildScene(4, 9)
	_ = bounds
	// At or below the minimum, Build must hand back a single leaf rather
	// than splitting further.
	root2 := kdtree.Build(boundsOf(triangles), triangles, kdtree.BuildParams{MinTrianglesPerLeaf: 8})
	require.True(t, root2.IsLeaf)
	require.NotNil(t, root)
}
