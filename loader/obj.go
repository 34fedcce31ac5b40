// Package loader builds scenegraph.Node hierarchies from on-disk scene
// files. It adapts scene/obj_loader.go and scene/gltf_loader.go: the
// parsing logic survives largely unchanged, but the vertex/index soup
// those loaders built for a rasterizer's draw calls is converted here into
// triangle.Triangle instances for the kd-tree, one per face, since the
// renderer has no concept of an indexed mesh.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/material"
	"github.com/aort-engine/aort/scenegraph"
	"github.com/aort-engine/aort/triangle"
)

type objFace struct {
	vIdx, vtIdx, vnIdx [3]int
}

// LoadOBJ parses a Wavefront .obj file, triangulating any n-gon faces by
// fan triangulation, and returns one scenegraph.Node per object/group. A
// companion .mtl referenced via "mtllib" is loaded automatically.
func LoadOBJ(path string) ([]*scenegraph.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)

	var positions []aortmath.Vec3
	var normals []aortmath.Vec3
	var uvs []aortmath.Vec2

	materials := map[string]*material.Material{}

	type objObject struct {
		name    string
		matName string
		faces   []objFace
	}

	var objects []objObject
	cur := &objObject{name: "default"}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				continue
			}
			x, _ := strconv.ParseFloat(fields[1], 32)
			y, _ := strconv.ParseFloat(fields[2], 32)
			z, _ := strconv.ParseFloat(fields[3], 32)
			positions = append(positions, aortmath.NewVec3(float32(x), float32(y), float32(z)))

		case "vn":
			if len(fields) < 4 {
				continue
			}
			x, _ := strconv.ParseFloat(fields[1], 32)
			y, _ := strconv.ParseFloat(fields[2], 32)
			z, _ := strconv.ParseFloat(fields[3], 32)
			normals = append(normals, aortmath.NewVec3(float32(x), float32(y), float32(z)))

		case "vt":
			if len(fields) < 3 {
				continue
			}
			u, _ := strconv.ParseFloat(fields[1], 32)
			v, _ := strconv.ParseFloat(fields[2], 32)
			uvs = append(uvs, aortmath.NewVec2(float32(u), float32(v)))

		case "o", "g":
			if len(cur.faces) > 0 {
				objects = append(objects, *cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objObject{name: name, matName: cur.matName}

		case "usemtl":
			if len(fields) > 1 {
				cur.matName = fields[1]
			}

		case "mtllib":
			if len(fields) > 1 {
				mtlPath := filepath.Join(dir, fields[1])
				loaded, err := loadMTL(mtlPath)
				if err == nil {
					for k, v := range loaded {
						materials[k] = v
					}
				}
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			var fverts []struct{ v, vt, vn int }
			for _, tok := range fields[1:] {
				fverts = append(fverts, parseFaceVertex(tok))
			}
			for i := 1; i+1 < len(fverts); i++ {
				f0, f1, f2 := fverts[0], fverts[i], fverts[i+1]
				cur.faces = append(cur.faces, objFace{
					vIdx:  [3]int{f0.v, f1.v, f2.v},
					vtIdx: [3]int{f0.vt, f1.vt, f2.vt},
					vnIdx: [3]int{f0.vn, f1.vn, f2.vn},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}
	if len(cur.faces) > 0 {
		objects = append(objects, *cur)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}

	safePos := func(i int) aortmath.Vec3 {
		if i >= 0 && i < len(positions) {
			return positions[i]
		}
		return aortmath.Vec3Zero
	}
	safeNorm := func(i int) aortmath.Vec3 {
		if i >= 0 && i < len(normals) {
			return normals[i]
		}
		return aortmath.Vec3{}
	}
	safeUV := func(i int) aortmath.Vec2 {
		if i >= 0 && i < len(uvs) {
			return uvs[i]
		}
		return aortmath.Vec2{}
	}

	nodes := make([]*scenegraph.Node, 0, len(objects))
	for _, obj := range objects {
		mat, ok := materials[obj.matName]
		if !ok {
			mat = material.NewMaterial("default")
		}

		node := scenegraph.NewNode(obj.name)
		node.Triangles = make([]*triangle.Triangle, 0, len(obj.faces))
		for _, face := range obj.faces {
			node.Triangles = append(node.Triangles, triangle.New(
				safePos(face.vIdx[0]), safePos(face.vIdx[1]), safePos(face.vIdx[2]),
				safeNorm(face.vnIdx[0]), safeNorm(face.vnIdx[1]), safeNorm(face.vnIdx[2]),
				safeUV(face.vtIdx[0]), safeUV(face.vtIdx[1]), safeUV(face.vtIdx[2]),
				mat,
			))
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn", "v/vt/vn".
// Returns 0-based indices (-1 if absent); OBJ itself is 1-based.
func parseFaceVertex(tok string) struct{ v, vt, vn int } {
	parseIdx := func(s string) int {
		if s == "" {
			return -1
		}
		n, _ := strconv.Atoi(s)
		if n > 0 {
			return n - 1
		}
		return n
	}
	parts := strings.Split(tok, "/")
	res := struct{ v, vt, vn int }{v: -1, vt: -1, vn: -1}
	if len(parts) > 0 {
		res.v = parseIdx(parts[0])
	}
	if len(parts) > 1 {
		res.vt = parseIdx(parts[1])
	}
	if len(parts) > 2 {
		res.vn = parseIdx(parts[2])
	}
	return res
}

func loadMTL(path string) (map[string]*material.Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats := map[string]*material.Material{}
	var cur *material.Material

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) > 1 {
				m := material.NewMaterial(fields[1])
				mats[fields[1]] = m
				cur = m
			}
		case "Ka":
			if cur != nil && len(fields) >= 4 {
				cur.Ambient = parseRGB(fields)
			}
		case "Kd":
			if cur != nil && len(fields) >= 4 {
				cur.Diffuse = parseRGB(fields)
			}
		case "Ks":
			if cur != nil && len(fields) >= 4 {
				cur.Specular = parseRGB(fields)
			}
		case "Ns":
			if cur != nil && len(fields) >= 2 {
				v, _ := strconv.ParseFloat(fields[1], 32)
				cur.Shininess = float32(v)
			}
		case "map_Kd":
			if cur != nil && len(fields) > 1 {
				tex, err := material.LoadTexture(filepath.Join(filepath.Dir(path), fields[len(fields)-1]))
				if err == nil {
					cur.Texture = tex
				}
			}
		}
	}
	return mats, scanner.Err()
}

func parseRGB(fields []string) core.Color {
	r, _ := strconv.ParseFloat(fields[1], 32)
	g, _ := strconv.ParseFloat(fields[2], 32)
	b, _ := strconv.ParseFloat(fields[3], 32)
	return core.Color{R: float32(r), G: float32(g), B: float32(b), A: 1}
}
