package material

import (
	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
)

// Material bundles the reflectance parameters a triangle shades with.
// Adapted from scene/material.go and original AortMaterial.cpp; the
// PBR/emissive/normal-map fields a GPU rasterizer carries are dropped — the
// Whitted shader only ever reads Ambient, Diffuse, Specular, Shininess and
// Reflectivity.
type Material struct {
	Name string

	Ambient      core.Color
	Diffuse      core.Color
	Specular     core.Color
	Shininess    float32 // 0 means "use the renderer's fixed sharpness"
	Reflectivity float32 // [0,1]

	Texture *Texture // optional; overrides Diffuse when bound
}

// NewMaterial returns a material with the original source's defaults
// (AortMaterial.cpp: ambient/diffuse white, specular black, reflectivity 0.25).
func NewMaterial(name string) *Material {
	return &Material{
		Name:         name,
		Ambient:      core.ColorWhite,
		Diffuse:      core.ColorWhite,
		Specular:     core.Color{R: 0, G: 0, B: 0, A: 1},
		Shininess:    0,
		Reflectivity: 0.25,
	}
}

// ColourAt returns the texture sample at uv if a texture is bound, otherwise
// the material's diffuse colour.
func (m *Material) ColourAt(uv aortmath.Vec2) core.Color {
	if m.Texture != nil {
		return m.Texture.ColourAt(uv)
	}
	return m.Diffuse
}
