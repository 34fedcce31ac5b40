package scenegraph

import (
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/light"
	"github.com/aort-engine/aort/triangle"
)

// Scene is the static bundle the renderer consumes: a triangle list, light
// list, scene AABB, plus a Camera. It is built once by a loader and never
// mutated afterward.
type Scene struct {
	Root    *Node
	Camera  *Camera
	Lights  []light.Light
	Ambient core.Color
}

func NewScene() *Scene {
	return &Scene{
		Root:    NewNode("root"),
		Ambient: core.Color{R: 0, G: 0, B: 0, A: 1},
	}
}

func (s *Scene) AddLight(l light.Light) {
	s.Lights = append(s.Lights, l)
}

// Triangles flattens the node hierarchy into a single world-space list,
// the shape kdtree.Build and the renderer expect.
func (s *Scene) Triangles() []*triangle.Triangle {
	var out []*triangle.Triangle
	s.Root.Traverse(func(n *Node) {
		if !n.Visible {
			return
		}
		out = append(out, n.WorldTriangles()...)
	})
	return out
}

// Bounds computes the AABB enclosing every triangle in the scene.
func (s *Scene) Bounds() core.AABB {
	box := core.EmptyAABB()
	for _, t := range s.Triangles() {
		box = box.Merge(t.Bounds())
	}
	return box
}
