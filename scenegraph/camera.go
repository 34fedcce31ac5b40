package scenegraph

import (
	stdmath "math"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
)

// Camera is a perspective pinhole camera. It implements the single
// operation the renderer needs — RayForViewport — by unprojecting a
// viewport coordinate through the inverse view-projection matrix, the same
// technique editor/raycast.go's mouse-picking helper used, run in reverse
// (pixel -> world instead of world -> pixel).
type Camera struct {
	Position    aortmath.Vec3
	Rotation    aortmath.Quaternion
	FOV         float32 // vertical field of view, radians
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	viewMatrix       aortmath.Mat4
	projectionMatrix aortmath.Mat4
	dirty            bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    aortmath.Vec3Zero,
		Rotation:    aortmath.QuaternionIdentity(),
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

func (c *Camera) SetPosition(pos aortmath.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) SetRotation(rot aortmath.Quaternion) {
	c.Rotation = rot
	c.dirty = true
}

// LookAt orients the camera toward target from its current Position. It
// also derives Rotation so a later dirty recompute (triggered by any
// SetPosition/SetRotation call) rebuilds the same view matrix rather than
// silently reverting to the identity orientation.
func (c *Camera) LookAt(target, up aortmath.Vec3) {
	c.Rotation = quaternionFromLookAt(c.Position, target, up)
	c.dirty = true
}

// quaternionFromLookAt ports camera.go's rotation-matrix -> quaternion
// conversion (Shepperd's method) used by its own LookAt.
func quaternionFromLookAt(position, target, up aortmath.Vec3) aortmath.Quaternion {
	forward := target.Sub(position).Normalize()
	right := forward.Cross(up).Normalize()
	upNew := right.Cross(forward)

	m := aortmath.Mat4{
		{right.X, upNew.X, -forward.X, 0},
		{right.Y, upNew.Y, -forward.Y, 0},
		{right.Z, upNew.Z, -forward.Z, 0},
		{0, 0, 0, 1},
	}

	trace := m[0][0] + m[1][1] + m[2][2]

	var q aortmath.Quaternion
	switch {
	case trace > 0:
		s := float32(0.5 / stdmath.Sqrt(float64(trace+1)))
		q.W = 0.25 / s
		q.X = (m[2][1] - m[1][2]) * s
		q.Y = (m[0][2] - m[2][0]) * s
		q.Z = (m[1][0] - m[0][1]) * s
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := 2 * float32(stdmath.Sqrt(float64(1+m[0][0]-m[1][1]-m[2][2])))
		q.W = (m[2][1] - m[1][2]) / s
		q.X = 0.25 * s
		q.Y = (m[0][1] + m[1][0]) / s
		q.Z = (m[0][2] + m[2][0]) / s
	case m[1][1] > m[2][2]:
		s := 2 * float32(stdmath.Sqrt(float64(1+m[1][1]-m[0][0]-m[2][2])))
		q.W = (m[0][2] - m[2][0]) / s
		q.X = (m[0][1] + m[1][0]) / s
		q.Y = 0.25 * s
		q.Z = (m[1][2] + m[2][1]) / s
	default:
		s := 2 * float32(stdmath.Sqrt(float64(1+m[2][2]-m[0][0]-m[1][1])))
		q.W = (m[1][0] - m[0][1]) / s
		q.X = (m[0][2] + m[2][0]) / s
		q.Y = (m[1][2] + m[2][1]) / s
		q.Z = 0.25 * s
	}

	return q.Normalize()
}

func (c *Camera) GetForward() aortmath.Vec3 { return c.Rotation.RotateVector(aortmath.Vec3Front) }
func (c *Camera) GetRight() aortmath.Vec3   { return c.Rotation.RotateVector(aortmath.Vec3Right) }
func (c *Camera) GetUp() aortmath.Vec3      { return c.Rotation.RotateVector(aortmath.Vec3Up) }

// Warm forces the lazy view/projection matrices to be computed now. Callers
// that will later invoke RayForViewport from multiple goroutines must call
// Warm once, single-threaded, first — the lazy dirty/viewMatrix/
// projectionMatrix recompute inside RayForViewport is unsynchronized and
// racy if two goroutines can both observe c.dirty true at once.
func (c *Camera) Warm() {
	if c.dirty {
		c.updateMatrices()
	}
}

func (c *Camera) updateMatrices() {
	rotation := c.Rotation.ToMat4()
	translation := aortmath.Mat4Translation(c.Position.Negate())
	c.viewMatrix = translation.Mul(rotation.Transpose())
	c.projectionMatrix = aortmath.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.dirty = false
}

// RayForViewport returns the primary ray for viewport coordinate (u,v) in
// (0,1]²: unproject the near-plane point at the corresponding NDC
// coordinate and aim a ray from the camera position through it.
func (c *Camera) RayForViewport(u, v float32) core.Ray {
	if c.dirty {
		c.updateMatrices()
	}

	ndcX := 2*u - 1
	ndcY := 1 - 2*v // screen-space v grows downward; NDC y grows upward

	invProj := c.projectionMatrix.Inverse()
	invView := c.viewMatrix.Inverse()

	clipNear := aortmath.Vec4{X: ndcX, Y: ndcY, Z: -1, W: 1}
	viewNear4 := invProj.MulVec(clipNear)
	viewNear := viewNear4.ToVec3DivW()

	worldNear := invView.MulVec(aortmath.Vec4{X: viewNear.X, Y: viewNear.Y, Z: viewNear.Z, W: 1})

	direction := aortmath.Vec3{
		X: worldNear.X - c.Position.X,
		Y: worldNear.Y - c.Position.Y,
		Z: worldNear.Z - c.Position.Z,
	}.Normalize()

	return core.Ray{Origin: c.Position, Direction: direction}
}
