package mesh

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"hero-engine/core"
	"hero-engine/math"
)

var lodSuffix = regexp.MustCompile(`(?i)_lod(\d+)$`)

// LoadLODChain opens a .glb or .gltf file and returns its level-of-detail
// meshes, finest first. Nodes named "<base>_LOD<n>" are ordered by n. A file
// without such nodes yields one level per mesh in document order.
func LoadLODChain(path string) ([]*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	chain, err := LODChainFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("gltf %q: %w", path, err)
	}
	return chain, nil
}

type lodNode struct {
	level int
	mesh  int
}

// LODChainFromDocument extracts a chain from an already decoded document.
func LODChainFromDocument(doc *gltf.Document) ([]*Mesh, error) {
	var levels []lodNode
	for _, n := range doc.Nodes {
		if n.Mesh == nil {
			continue
		}
		m := lodSuffix.FindStringSubmatch(n.Name)
		if m == nil {
			continue
		}
		level, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		levels = append(levels, lodNode{level: level, mesh: *n.Mesh})
	}
	if len(levels) == 0 {
		for i := range doc.Meshes {
			levels = append(levels, lodNode{level: i, mesh: i})
		}
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].level < levels[j].level })

	chain := make([]*Mesh, 0, len(levels))
	for _, l := range levels {
		if l.mesh < 0 || l.mesh >= len(doc.Meshes) {
			return nil, fmt.Errorf("lod %d: mesh index %d out of range", l.level, l.mesh)
		}
		gm := doc.Meshes[l.mesh]
		if len(gm.Primitives) == 0 {
			return nil, fmt.Errorf("lod %d: mesh %q has no primitives", l.level, gm.Name)
		}
		m, err := loadPrimitive(doc, fmt.Sprintf("%s_lod%d", gm.Name, l.level), gm.Primitives[0])
		if err != nil {
			return nil, fmt.Errorf("lod %d: %w", l.level, err)
		}
		chain = append(chain, m)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no meshes")
	}
	return chain, nil
}

// loadPrimitive converts one glTF mesh primitive into a Mesh.
func loadPrimitive(doc *gltf.Document, name string, prim *gltf.Primitive) (*Mesh, error) {
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

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	return CreateMeshFromData(name, verts, indices), nil
}
