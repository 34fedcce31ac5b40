// Package kdtree implements a surface-area-heuristic spatial partition over
// triangles. The build sweeps a sorted event list exactly as original
// KdTree.cpp::subdivide does (same SAL/SAR/cost formulas); traversal ports
// AortSceneNode.cpp's near/far recursion. Nodes are a tagged Go sum type
// rather than the packed-pointer word the source uses, trading eight bytes
// per node for memory safety.
package kdtree

import (
	"sort"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/triangle"
)

// MaxDepth and MinTrianglesPerLeaf are the build termination defaults:
// max depth 32, minimum 4 triangles per leaf.
const (
	MaxDepth            = 32
	MinTrianglesPerLeaf = 4
)

// hitEpsilon is the tolerance closestHit uses when comparing a candidate t
// against the caller's [t_min, t_max] interval, matching original
// SceneNode.cpp's "-0.00001" slack around the bounds.
const hitEpsilon = 1e-5

// Node is either an Interior split node or a Leaf holding triangle
// references. Exactly one of the two field groups is meaningful; callers
// switch on IsLeaf.
type Node struct {
	IsLeaf bool

	// Interior fields.
	Axis     int
	Split    float32
	Children [2]*Node

	// Leaf fields.
	Triangles []*triangle.Triangle
}

// Hit is the result of a successful ClosestHit query.
type Hit struct {
	Triangle *triangle.Triangle
	T, U, V  float32
}

// BuildParams configures the SAH build; the zero value uses MaxDepth/
// MinTrianglesPerLeaf.
type BuildParams struct {
	MaxDepth            int
	MinTrianglesPerLeaf int
}

func (p BuildParams) normalized() BuildParams {
	if p.MaxDepth <= 0 {
		p.MaxDepth = MaxDepth
	}
	if p.MinTrianglesPerLeaf <= 0 {
		p.MinTrianglesPerLeaf = MinTrianglesPerLeaf
	}
	return p
}

// Build constructs the kd-tree root over the given triangles and bounding
// box. An empty triangle list yields a single empty leaf; reporting that
// as an empty-scene condition is the renderer's job — Build itself never
// errors.
func Build(bounds core.AABB, triangles []*triangle.Triangle, params BuildParams) *Node {
	params = params.normalized()
	return buildNode(bounds, triangles, 0, params)
}

type eventType int

const (
	eventEnd eventType = iota // End sorts before Start at equal positions
	eventStart
)

type event struct {
	position float32
	kind     eventType
}

func buildNode(bounds core.AABB, triangles []*triangle.Triangle, depth int, params BuildParams) *Node {
	if depth >= params.MaxDepth || len(triangles) <= params.MinTrianglesPerLeaf {
		return &Node{IsLeaf: true, Triangles: triangles}
	}

	axis := bounds.LongestAxis()
	boxMin := axisOf(bounds.Min, axis)
	boxMax := axisOf(bounds.Max, axis)
	a, b := otherAxesSize(bounds, axis)

	events := make([]event, 0, len(triangles)*2)
	mins := make([]float32, len(triangles))
	maxs := make([]float32, len(triangles))
	for i, t := range triangles {
		lo, hi := t.Extent(axis)
		mins[i], maxs[i] = lo, hi
		events = append(events, event{position: lo, kind: eventStart})
		events = append(events, event{position: hi, kind: eventEnd})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].position != events[j].position {
			return events[i].position < events[j].position
		}
		return events[i].kind < events[j].kind // End (0) before Start (1)
	})

	n := float32(len(triangles))
	noSplitCost := (bounds.AxisSize(axis) * (a + b) + a*b) * n

	bestCost := float32(-1)
	var bestSplit float32
	left, right := 0, len(triangles)

	i := 0
	for i < len(events) {
		position := events[i].position
		starts, ends := 0, 0
		for i < len(events) && events[i].position == position {
			if events[i].kind == eventStart {
				starts++
			} else {
				ends++
			}
			i++
		}
		right -= ends
		left += starts
		// tie-break: skip candidates that leave one side empty
		if position > boxMin && position < boxMax {
			sal := (position-boxMin)*(a+b) + a*b
			sar := (boxMax-position)*(a+b) + a*b
			cost := sal*float32(left) + sar*float32(right)
			if bestCost < 0 || cost < bestCost {
				bestCost = cost
				bestSplit = position
			}
		}
	}

	if bestCost < 0 || bestCost > noSplitCost {
		return &Node{IsLeaf: true, Triangles: triangles}
	}

	var leftTriangles, rightTriangles []*triangle.Triangle
	for i, t := range triangles {
		if mins[i] <= bestSplit {
			leftTriangles = append(leftTriangles, t)
		}
		if maxs[i] > bestSplit {
			rightTriangles = append(rightTriangles, t)
		}
	}

	leftBounds := bounds.SplitLeft(axis, bestSplit)
	rightBounds := bounds.SplitRight(axis, bestSplit)

	return &Node{
		Axis:  axis,
		Split: bestSplit,
		Children: [2]*Node{
			buildNode(leftBounds, leftTriangles, depth+1, params),
			buildNode(rightBounds, rightTriangles, depth+1, params),
		},
	}
}

func axisOf(v aortmath.Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func otherAxesSize(bounds core.AABB, axis int) (a, b float32) {
	size := bounds.Size()
	switch axis {
	case 0:
		return size.Y, size.Z
	case 1:
		return size.X, size.Z
	default:
		return size.X, size.Y
	}
}

// ClosestHit finds the nearest triangle intersection within [tMin, tMax],
// descending near-child-first so a leaf hit can prune the far child
// entirely — ported from original AortSceneNode.cpp's traversal. Leaves
// scan every resident triangle and keep the smallest in-interval t.
func (n *Node) ClosestHit(ray core.Ray, tMin, tMax float32) (Hit, bool) {
	if n.IsLeaf {
		var best Hit
		found := false
		for _, tri := range n.Triangles {
			t, u, v, ok := tri.Intersects(ray)
			if !ok {
				continue
			}
			if t < tMin-hitEpsilon || t > tMax+hitEpsilon {
				continue
			}
			if !found || t < best.T {
				best = Hit{Triangle: tri, T: t, U: u, V: v}
				found = true
			}
		}
		return best, found
	}

	dir := axisOf(ray.Direction, n.Axis)
	origin := axisOf(ray.Origin, n.Axis)

	near, far := n.Children[0], n.Children[1]
	if dir < 0 {
		near, far = far, near
	}

	if dir == 0 {
		// Ray runs parallel to the split plane: the origin's side is the
		// only side it can ever reach.
		if origin <= n.Split {
			return near.ClosestHit(ray, tMin, tMax)
		}
		return far.ClosestHit(ray, tMin, tMax)
	}

	tSplit := (n.Split - origin) / dir

	switch {
	case tSplit <= tMin:
		return far.ClosestHit(ray, tMin, tMax)
	case tSplit >= tMax:
		return near.ClosestHit(ray, tMin, tMax)
	default:
		if hit, ok := near.ClosestHit(ray, tMin, tSplit); ok {
			return hit, true
		}
		return far.ClosestHit(ray, tSplit, tMax)
	}
}

// AnyHit reports whether any triangle intersects within [tMin, tMax],
// short-circuiting on the first hit found. Used for shadow-ray probes,
// where only occlusion — not the closest surface — matters.
func (n *Node) AnyHit(ray core.Ray, tMin, tMax float32) bool {
	if n.IsLeaf {
		for _, tri := range n.Triangles {
			t, _, _, ok := tri.Intersects(ray)
			if !ok {
				continue
			}
			if t < tMin-hitEpsilon || t > tMax+hitEpsilon {
				continue
			}
			return true
		}
		return false
	}

	dir := axisOf(ray.Direction, n.Axis)
	origin := axisOf(ray.Origin, n.Axis)

	near, far := n.Children[0], n.Children[1]
	if dir < 0 {
		near, far = far, near
	}

	if dir == 0 {
		if origin <= n.Split {
			return near.AnyHit(ray, tMin, tMax)
		}
		return far.AnyHit(ray, tMin, tMax)
	}

	tSplit := (n.Split - origin) / dir

	switch {
	case tSplit <= tMin:
		return far.AnyHit(ray, tMin, tMax)
	case tSplit >= tMax:
		return near.AnyHit(ray, tMin, tMax)
	default:
		if near.AnyHit(ray, tMin, tSplit) {
			return true
		}
		return far.AnyHit(ray, tSplit, tMax)
	}
}
