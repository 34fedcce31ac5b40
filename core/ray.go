package core

import (
	stdmath "math"

	"github.com/aort-engine/aort/aortmath"
)

// Ray is a parametric ray: hit point = Origin + t*Direction.
type Ray struct {
	Origin    aortmath.Vec3
	Direction aortmath.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) aortmath.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min aortmath.Vec3
	Max aortmath.Vec3
}

// EmptyAABB returns a degenerate box suitable as the identity for Merge.
func EmptyAABB() AABB {
	max := float32(stdmath.MaxFloat32)
	return AABB{
		Min: aortmath.Vec3{X: max, Y: max, Z: max},
		Max: aortmath.Vec3{X: -max, Y: -max, Z: -max},
	}
}

// Merge grows the box to also contain other.
func (b AABB) Merge(other AABB) AABB {
	return AABB{
		Min: aortmath.Vec3{X: min32(b.Min.X, other.Min.X), Y: min32(b.Min.Y, other.Min.Y), Z: min32(b.Min.Z, other.Min.Z)},
		Max: aortmath.Vec3{X: max32(b.Max.X, other.Max.X), Y: max32(b.Max.Y, other.Max.Y), Z: max32(b.Max.Z, other.Max.Z)},
	}
}

// MergePoint grows the box to also contain p.
func (b AABB) MergePoint(p aortmath.Vec3) AABB {
	return AABB{
		Min: aortmath.Vec3{X: min32(b.Min.X, p.X), Y: min32(b.Min.Y, p.Y), Z: min32(b.Min.Z, p.Z)},
		Max: aortmath.Vec3{X: max32(b.Max.X, p.X), Y: max32(b.Max.Y, p.Y), Z: max32(b.Max.Z, p.Z)},
	}
}

// Size returns the extent of the box along each axis.
func (b AABB) Size() aortmath.Vec3 {
	return b.Max.Sub(b.Min)
}

// AxisSize returns the extent along a single axis (0=X, 1=Y, 2=Z).
func (b AABB) AxisSize(axis int) float32 {
	return axisOf(b.Max, axis) - axisOf(b.Min, axis)
}

// LongestAxis returns the axis (0,1,2) of the box's largest extent, matching
// original KdTree.cpp::subdivide's axis-choice rule (ties broken toward the
// lower-numbered axis).
func (b AABB) LongestAxis() int {
	size := b.Size()
	if size.X >= size.Y && size.X >= size.Z {
		return 0
	}
	if size.Y >= size.X && size.Y >= size.Z {
		return 1
	}
	return 2
}

// SplitLeft returns the box truncated at position on axis, keeping the
// min-ward half (the "left" child of a kd-tree split).
func (b AABB) SplitLeft(axis int, position float32) AABB {
	out := b
	setAxis(&out.Max, axis, position)
	return out
}

// SplitRight returns the box truncated at position on axis, keeping the
// max-ward half (the "right" child of a kd-tree split).
func (b AABB) SplitRight(axis int, position float32) AABB {
	out := b
	setAxis(&out.Min, axis, position)
	return out
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

func setAxis(v *aortmath.Vec3, axis int, value float32) {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
