// Package scenegraph adapts a node/camera/scene hierarchy (scene/node.go,
// scene/camera.go, scene/scene.go) from a live rasterizer graph into the
// static bundle the renderer consumes: a triangle list, light list, scene
// AABB and a camera the renderer queries for primary rays.
package scenegraph

import (
	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/triangle"
)

// Node is a transform hierarchy entry. Unlike a rasterizer's Node it
// carries triangles directly (no separate Mesh/Vertex indirection) since
// the renderer consumes a flat, world-space triangle list.
type Node struct {
	Name      string
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Triangles []*triangle.Triangle
	Visible   bool

	worldMatrixDirty bool
	worldMatrix      aortmath.Mat4
}

func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Transform:        core.NewTransform(),
		Visible:          true,
		worldMatrixDirty: true,
	}
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.markWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.markWorldMatrixDirty()
			return
		}
	}
}

// WorldMatrix returns the node's transform composed with its ancestors',
// caching until the subtree is next mutated.
func (n *Node) WorldMatrix() aortmath.Mat4 {
	if n.worldMatrixDirty {
		local := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = n.Parent.WorldMatrix().Mul(local)
		} else {
			n.worldMatrix = local
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

func (n *Node) markWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.markWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos aortmath.Vec3) {
	n.Transform.Position = pos
	n.markWorldMatrixDirty()
}

func (n *Node) SetRotation(rot aortmath.Quaternion) {
	n.Transform.Rotation = rot
	n.markWorldMatrixDirty()
}

func (n *Node) SetScale(scale aortmath.Vec3) {
	n.Transform.Scale = scale
	n.markWorldMatrixDirty()
}

// Traverse visits n and every descendant, depth-first.
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find locates the first descendant (including n itself) with the given name.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// WorldTriangles returns n's own triangles transformed into world space by
// n's world matrix. Normals are transformed by the matrix's linear part and
// renormalized, not by its inverse-transpose, so they are exact only under
// uniform scale; a node with non-uniform scale (which LoadGLTF can produce)
// gets skewed normals.
func (n *Node) WorldTriangles() []*triangle.Triangle {
	if len(n.Triangles) == 0 {
		return nil
	}
	m := n.WorldMatrix()
	out := make([]*triangle.Triangle, 0, len(n.Triangles))
	for _, t := range n.Triangles {
		p0 := m.MulVec3(t.P0)
		p1 := m.MulVec3(t.P1)
		p2 := m.MulVec3(t.P2)
		n0 := m.MulVec3(t.N0).Sub(m.MulVec3(aortmath.Vec3{})).Normalize()
		n1 := m.MulVec3(t.N1).Sub(m.MulVec3(aortmath.Vec3{})).Normalize()
		n2 := m.MulVec3(t.N2).Sub(m.MulVec3(aortmath.Vec3{})).Normalize()
		out = append(out, triangle.New(p0, p1, p2, n0, n1, n2, t.UV0, t.UV1, t.UV2, t.Material))
	}
	return out
}
