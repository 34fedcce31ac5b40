package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/aort-engine/aort/aortmath"
	"github.com/aort-engine/aort/core"
	"github.com/aort-engine/aort/material"
	"github.com/aort-engine/aort/scenegraph"
	"github.com/aort-engine/aort/triangle"
)

// LoadGLTF opens a .glb or .gltf file and returns the scene's root nodes,
// with base-colour textures, PBR-to-Phong approximated materials, and
// triangulated geometry. Adapted from scene/gltf_loader.go; PBR
// metallic-roughness is approximated to the Ambient/Diffuse/Specular/
// Shininess model the shader reads (roughness -> shininess, metallic ->
// specular intensity), the same approximation the source used.
func LoadGLTF(path string) ([]*scenegraph.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)

	texCache := make([]*material.Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		img := doc.Images[*gt.Source]

		var tex *material.Texture
		switch {
		case img.BufferView != nil:
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				continue
			}
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("gltf_img_%d", *gt.Source)
			}
			tex, err = decodeImageBytes(name, raw)
			if err != nil {
				continue
			}
		case img.URI != "" && !img.IsEmbeddedResource():
			tex, err = material.LoadTexture(filepath.Join(dir, img.URI))
			if err != nil {
				continue
			}
		}
		texCache[i] = tex
	}

	matCache := make([]*material.Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := material.NewMaterial(gm.Name)

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Diffuse = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
			if pbr.BaseColorTexture != nil {
				idx := pbr.BaseColorTexture.Index
				if idx < len(texCache) && texCache[idx] != nil {
					mat.Texture = texCache[idx]
				}
			}
			roughness := float32(pbr.RoughnessFactorOrDefault())
			metallic := float32(pbr.MetallicFactorOrDefault())
			mat.Shininess = (1-roughness)*(1-roughness)*128 + 1
			s := metallic * 0.7
			mat.Specular = core.Color{R: s, G: s, B: s, A: 1}
		}
		matCache[i] = mat
	}

	meshTriangles := make([][]*triangle.Triangle, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for _, prim := range gm.Primitives {
			tris, err := loadGLTFPrimitive(doc, *prim)
			if err != nil {
				continue
			}
			if prim.Material != nil && *prim.Material < len(matCache) {
				mat := matCache[*prim.Material]
				for _, t := range tris {
					t.Material = mat
				}
			}
			meshTriangles[mi] = append(meshTriangles[mi], tris...)
		}
	}

	nodes := make([]*scenegraph.Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := scenegraph.NewNode(name)

		t := gn.TranslationOrDefault()
		n.SetPosition(aortmath.NewVec3(float32(t[0]), float32(t[1]), float32(t[2])))

		sc := gn.ScaleOrDefault()
		n.SetScale(aortmath.NewVec3(float32(sc[0]), float32(sc[1]), float32(sc[2])))

		r := gn.RotationOrDefault()
		n.SetRotation(aortmath.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])})

		if gn.Mesh != nil && *gn.Mesh < len(meshTriangles) {
			n.Triangles = meshTriangles[*gn.Mesh]
		}
		nodes[i] = n
	}

	for i, gn := range doc.Nodes {
		if nodes[i] == nil {
			continue
		}
		for _, childIdx := range gn.Children {
			if int(childIdx) < len(nodes) && nodes[childIdx] != nil {
				nodes[i].AddChild(nodes[childIdx])
			}
		}
	}

	var roots []*scenegraph.Node
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if int(rootIdx) < len(nodes) && nodes[rootIdx] != nil {
				roots = append(roots, nodes[rootIdx])
			}
		}
	} else {
		hasParent := make([]bool, len(nodes))
		for _, gn := range doc.Nodes {
			for _, c := range gn.Children {
				if int(c) < len(hasParent) {
					hasParent[c] = true
				}
			}
		}
		for i, n := range nodes {
			if n != nil && !hasParent[i] {
				roots = append(roots, n)
			}
		}
	}

	return roots, nil
}

func loadGLTFPrimitive(doc *gltf.Document, prim gltf.Primitive) ([]*triangle.Triangle, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	vec3At := func(i int) aortmath.Vec3 {
		p := positions[i]
		return aortmath.NewVec3(p[0], p[1], p[2])
	}
	normAt := func(i int) aortmath.Vec3 {
		if i >= len(normals) {
			return aortmath.Vec3{}
		}
		n := normals[i]
		return aortmath.NewVec3(n[0], n[1], n[2])
	}
	uvAt := func(i int) aortmath.Vec2 {
		if i >= len(uvs) {
			return aortmath.Vec2{}
		}
		return aortmath.NewVec2(uvs[i][0], uvs[i][1])
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	tris := make([]*triangle.Triangle, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		tris = append(tris, triangle.New(
			vec3At(a), vec3At(b), vec3At(c),
			normAt(a), normAt(b), normAt(c),
			uvAt(a), uvAt(b), uvAt(c),
			nil,
		))
	}
	return tris, nil
}

func decodeImageBytes(name string, data []byte) (*material.Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return material.NewTexture(name, bounds.Dx(), bounds.Dy(), rgba.Pix), nil
}
