package core

import (
	"github.com/aort-engine/aort/aortmath"
)

// Color is a linear RGBA colour with components nominally in [0,1].
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite  = Color{1, 1, 1, 1}
	ColorBlack  = Color{0, 0, 0, 1}
	ColorRed    = Color{1, 0, 0, 1}
	ColorGreen  = Color{0, 1, 0, 1}
	ColorBlue   = Color{0, 0, 1, 1}
	ColorYellow = Color{1, 1, 0, 1}
)

// Add returns the componentwise sum of c and other (alpha untouched).
func (c Color) Add(other Color) Color {
	return Color{R: c.R + other.R, G: c.G + other.G, B: c.B + other.B, A: c.A}
}

// Mul returns c scaled by a scalar factor.
func (c Color) Mul(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A}
}

// MulColor returns the componentwise (Hadamard) product of c and other.
func (c Color) MulColor(other Color) Color {
	return Color{R: c.R * other.R, G: c.G * other.G, B: c.B * other.B, A: c.A}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp01 clamps r,g,b to [0,1] and forces full opacity, the conversion
// performed before a pixel is written.
func (c Color) Clamp01() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: 1}
}

// Quantize8 converts the (already clamped) colour to 8-bit RGBA bytes.
func (c Color) Quantize8() [4]byte {
	return [4]byte{
		byte(clamp01(c.R) * 255),
		byte(clamp01(c.G) * 255),
		byte(clamp01(c.B) * 255),
		byte(clamp01(c.A) * 255),
	}
}

// Transform is a TRS affine transform for scene-graph nodes.
type Transform struct {
	Position aortmath.Vec3
	Rotation aortmath.Quaternion
	Scale    aortmath.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: aortmath.Vec3Zero,
		Rotation: aortmath.QuaternionIdentity(),
		Scale:    aortmath.Vec3One,
	}
}

func (t Transform) GetMatrix() aortmath.Mat4 {
	translation := aortmath.Mat4Translation(t.Position)
	rotation := t.Rotation.ToMat4()
	scale := aortmath.Mat4Scale(t.Scale)
	return translation.Mul(rotation).Mul(scale)
}

func (t Transform) GetForward() aortmath.Vec3 {
	return t.Rotation.RotateVector(aortmath.Vec3Front)
}

func (t Transform) GetRight() aortmath.Vec3 {
	return t.Rotation.RotateVector(aortmath.Vec3Right)
}

func (t Transform) GetUp() aortmath.Vec3 {
	return t.Rotation.RotateVector(aortmath.Vec3Up)
}
