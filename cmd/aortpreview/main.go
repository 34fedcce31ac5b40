// Command aortpreview renders a scene through the same loaders and
// renderer.Render call as cmd/aortrender (with its own fixed camera pose and,
// when no -scene is given, a built-in demo scene), then displays the
// resulting buffer in a window instead of writing a PNG. It
// never reaches into renderer/kdtree internals, only the finished image
// the render already produced — kept outside the core engine, a
// user-facing shell and nothing more. The GLFW window and shader-compile
// shape follow internal/opengl/renderer.go; the texture upload follows
// internal/opengl/texture.go; the "upload one static image to a textured
// quad" display pattern follows rt.go, adapted from its (unwired)
// gazed/vu binding to our own go-gl/v4.1-core one.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/light"
	"github.com/aort-engine/aort/loader"
	"github.com/aort-engine/aort/material"
	"github.com/aort-engine/aort/renderer"
	"github.com/aort-engine/aort/scenegraph"
	"github.com/aort-engine/aort/triangle"
)

func init() {
	// GLFW and GL context calls must run on the thread that owns them.
	runtime.LockOSThread()
}

const vertexShaderSrc = `
#version 410
layout(location = 0) in vec2 position;
layout(location = 1) in vec2 texCoord;
out vec2 fragUV;
void main() {
	fragUV = texCoord;
	gl_Position = vec4(position, 0.0, 1.0);
}
` + "\x00"

const fragmentShaderSrc = `
#version 410
in vec2 fragUV;
out vec4 outColour;
uniform sampler2D image;
void main() {
	outColour = texture(image, fragUV);
}
` + "\x00"

// quadVertices is a full-screen triangle strip: (x, y, u, v) per vertex.
// UV's V is flipped relative to position's Y since image.RGBA's row 0 is
// the top of the image but GL texture row 0 is its bottom.
var quadVertices = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	-1, 1, 0, 0,
	1, 1, 1, 0,
}

func main() {
	width := flag.Int("width", 800, "image width in pixels")
	height := flag.Int("height", 600, "image height in pixels")
	scenePath := flag.String("scene", "", "path to a .obj or .gltf/.glb scene file (empty -> a built-in demo scene)")
	flag.Parse()

	scene, err := loadOrDemoScene(*scenePath)
	if err != nil {
		log.Fatalf("aortpreview: %v", err)
	}
	scene.Camera = scenegraph.NewCamera(1.0472, float32(*width)/float32(*height), 0.1, 1000)
	scene.Camera.SetPosition(aortmath.NewVec3(0, 1, 5))
	scene.Camera.LookAt(aortmath.Vec3Zero, aortmath.Vec3Up)

	log.Println("rendering...")
	img, stats, err := renderer.Render(scene, renderer.Options{Width: *width, Height: *height})
	if err != nil {
		log.Fatalf("aortpreview: render: %v", err)
	}
	log.Printf("rendered %d triangles, %d rays, in %s", stats.TriangleCount, stats.RayCount, stats.RenderTime)

	if err := glfw.Init(); err != nil {
		log.Fatalf("aortpreview: glfw init: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(*width, *height, "aortpreview", nil, nil)
	if err != nil {
		log.Fatalf("aortpreview: create window: %v", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		log.Fatalf("aortpreview: gl init: %v", err)
	}
	log.Printf("opengl version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	prog, err := newProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		log.Fatalf("aortpreview: %v", err)
	}
	defer gl.DeleteProgram(prog)

	vao, tex := setupQuad(img.Pix, *width, *height)
	defer gl.DeleteVertexArrays(1, &vao)
	defer gl.DeleteTextures(1, &tex)

	imageUniform := gl.GetUniformLocation(prog, gl.Str("image\x00"))

	gl.Viewport(0, 0, int32(*width), int32(*height))
	gl.ClearColor(0, 0, 0, 1)

	for !window.ShouldClose() {
		glfw.PollEvents()

		gl.Clear(gl.COLOR_BUFFER_BIT)
		gl.UseProgram(prog)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.Uniform1i(imageUniform, 0)
		gl.BindVertexArray(vao)
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)

		window.SwapBuffers()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
		}
	}
}

// loadOrDemoScene builds a small default scene (a lit quad) when no -scene
// flag is given, so the viewer has something to show without requiring an
// asset on disk.
func loadOrDemoScene(path string) (*scenegraph.Scene, error) {
	if path != "" {
		var nodes []*scenegraph.Node
		var err error
		switch ext := filepath.Ext(path); ext {
		case ".obj":
			nodes, err = loader.LoadOBJ(path)
		case ".gltf", ".glb":
			nodes, err = loader.LoadGLTF(path)
		default:
			return nil, fmt.Errorf("unrecognised scene extension %q", ext)
		}
		if err != nil {
			return nil, err
		}
		scene := scenegraph.NewScene()
		for _, n := range nodes {
			scene.Root.AddChild(n)
		}
		return scene, nil
	}

	mat := material.NewMaterial("demo")
	scene := scenegraph.NewScene()
	scene.Root.Triangles = demoQuad(mat)
	scene.AddLight(&light.Point{
		Pos:     aortmath.NewVec3(2, 4, 4),
		Diffuse: core.ColorWhite,
	})
	return scene, nil
}

// demoQuad is a 10x10 floor quad facing +Y, matching the default camera
// pose set in main (looking down and forward from (0,1,5)).
func demoQuad(mat *material.Material) []*triangle.Triangle {
	p0 := aortmath.NewVec3(-5, 0, -5)
	p1 := aortmath.NewVec3(5, 0, -5)
	p2 := aortmath.NewVec3(5, 0, 5)
	p3 := aortmath.NewVec3(-5, 0, 5)
	zero := aortmath.Vec3{}
	zuv := aortmath.Vec2{}
	return []*triangle.Triangle{
		triangle.New(p0, p2, p1, zero, zero, zero, zuv, zuv, zuv, mat),
		triangle.New(p0, p3, p2, zero, zero, zero, zuv, zuv, zuv, mat),
	}
}

// setupQuad uploads pixels as a GL texture and builds the VAO/VBO for a
// full-screen quad, following internal/opengl/texture.go's upload pattern
// (GenTextures/TexParameteri/TexImage2D/unsafe.Pointer).
func setupQuad(pixels []byte, width, height int) (vao, tex uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	const stride = 4 * 4
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)

	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(width),
		int32(height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		unsafe.Pointer(&pixels[0]),
	)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return vao, tex
}

// newProgram compiles and links a shader program, ported from
// internal/opengl/renderer.go's newProgram/compileShader pair.
func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
