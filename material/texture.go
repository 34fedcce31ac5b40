package material

import (
	stdmath "math"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Filter selects how Texture.ColourAt resamples texel data.
type Filter int

const (
	FilterNearest Filter = iota
	FilterBilinear
	// FilterAnisotropic falls back to bilinear — the source never implemented
	// true anisotropic filtering either.
	FilterAnisotropic
)

// Texture holds CPU-side RGBA8 pixel data plus the UV transform and filter
// mode original AortTexture.cpp applies before sampling.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels is RGBA8, row-major, top-to-bottom, 4 bytes per texel.
	Pixels []byte

	// Transform is the 3x3 affine UV transform applied before sampling.
	Transform aortmath.Mat4
	Filter    Filter
	// Anisotropy is kept for API parity with the source; it has no effect
	// until true anisotropic filtering is implemented.
	Anisotropy uint
}

// NewTexture wraps raw RGBA8 pixels (no transform, nearest filtering).
func NewTexture(name string, width, height int, pixels []byte) *Texture {
	return &Texture{
		Name:      name,
		Width:     width,
		Height:    height,
		Pixels:    pixels,
		Transform: aortmath.Mat4Identity(),
		Filter:    FilterNearest,
	}
}

// NewSolidTexture creates a 1x1 texture from a single RGBA8 colour.
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return NewTexture(name, 1, 1, []byte{r, g, b, a})
}

// LoadTexture decodes a PNG or JPEG file from disk into an RGBA8 Texture.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}

	return NewTexture(path, w, h, rgba.Pix), nil
}

func (t *Texture) texelAt(x, y int) core.Color {
	x = ((x % t.Width) + t.Width) % t.Width
	y = ((y % t.Height) + t.Height) % t.Height
	i := (y*t.Width + x) * 4
	return core.Color{
		R: float32(t.Pixels[i+0]) / 255,
		G: float32(t.Pixels[i+1]) / 255,
		B: float32(t.Pixels[i+2]) / 255,
		A: float32(t.Pixels[i+3]) / 255,
	}
}

// ColourAt samples the texture at the given UV, applying the bound affine
// transform and filter mode, including the R/B channel swap the source
// performs on every return path — a documented compatibility quirk, not a
// bug to silently fix.
func (t *Texture) ColourAt(uv aortmath.Vec2) core.Color {
	if t == nil || len(t.Pixels) == 0 {
		return core.ColorWhite
	}

	u := (t.Transform[0][0]*uv.X + t.Transform[1][0]*uv.Y + t.Transform[2][0]) * float32(t.Width)
	v := (t.Transform[0][1]*uv.X + t.Transform[1][1]*uv.Y + t.Transform[2][1]) * float32(t.Height)

	var result core.Color
	switch t.Filter {
	case FilterNearest:
		x := int(stdmath.Floor(float64(u + 0.5)))
		y := int(stdmath.Floor(float64(v + 0.5)))
		result = t.texelAt(x, y)
	default: // FilterBilinear, FilterAnisotropic
		u1 := int(stdmath.Floor(float64(u)))
		v1 := int(stdmath.Floor(float64(v)))
		u2, v2 := u1+1, v1+1
		fu := u - float32(stdmath.Floor(float64(u)))
		fv := v - float32(stdmath.Floor(float64(v)))

		w1 := (1 - fu) * (1 - fv)
		w2 := fu * (1 - fv)
		w3 := (1 - fu) * fv
		w4 := fu * fv

		c1 := t.texelAt(u1, v1)
		c2 := t.texelAt(u2, v1)
		c3 := t.texelAt(u1, v2)
		c4 := t.texelAt(u2, v2)

		result = c1.Mul(w1).Add(c2.Mul(w2)).Add(c3.Mul(w3)).Add(c4.Mul(w4))
	}

	// HACK: swap r and b components -- matches the original renderer's output
	// channel order.
	return core.Color{R: result.B, G: result.G, B: result.R, A: result.A}
}
