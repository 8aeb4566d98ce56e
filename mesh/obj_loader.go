package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"hero-engine/core"
	"hero-engine/math"
)

// objGroup is one "o" or "g" block of an OBJ file.
type objGroup struct {
	name     string
	vertices []core.Vertex
	indices  []uint32
}

// LoadOBJLODChain reads a Wavefront .obj file and returns its level-of-detail
// meshes, finest first. Groups follow the same "<base>_LOD<n>" naming as
// glTF nodes; a file without them yields one level per group.
func LoadOBJLODChain(path string) ([]*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()
	chain, err := OBJLODChain(f)
	if err != nil {
		return nil, fmt.Errorf("obj %q: %w", path, err)
	}
	return chain, nil
}

// OBJLODChain parses OBJ text from r.
func OBJLODChain(r io.Reader) ([]*Mesh, error) {
	groups, err := parseOBJ(r)
	if err != nil {
		return nil, err
	}

	type level struct {
		n int
		g objGroup
	}
	var levels []level
	for _, g := range groups {
		m := lodSuffix.FindStringSubmatch(g.name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		levels = append(levels, level{n: n, g: g})
	}
	if len(levels) == 0 {
		for i, g := range groups {
			levels = append(levels, level{n: i, g: g})
		}
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].n < levels[j].n })

	chain := make([]*Mesh, 0, len(levels))
	for _, l := range levels {
		if len(l.g.indices) == 0 {
			return nil, fmt.Errorf("lod %d: group %q has no faces", l.n, l.g.name)
		}
		chain = append(chain, CreateMeshFromData(l.g.name, l.g.vertices, l.g.indices))
	}
	return chain, nil
}

func parseOBJ(r io.Reader) ([]objGroup, error) {
	var (
		positions []math.Vec3
		normals   []math.Vec3
		uvs       []math.Vec2
		groups    []objGroup
	)
	current := objGroup{name: "default"}
	vertexMap := make(map[string]uint32) // "v/vt/vn" -> vertex index

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.Fields(text)

		switch parts[0] {
		case "v", "vn":
			v, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			p := math.Vec3{X: v[0], Y: v[1], Z: v[2]}
			if parts[0] == "v" {
				positions = append(positions, p)
			} else {
				normals = append(normals, p)
			}
		case "vt":
			v, err := parseFloats(parts[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			uvs = append(uvs, math.Vec2{X: v[0], Y: v[1]})
		case "f":
			if len(parts) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", line)
			}
			face := make([]uint32, 0, len(parts)-1)
			for _, spec := range parts[1:] {
				if idx, ok := vertexMap[spec]; ok {
					face = append(face, idx)
					continue
				}
				v, err := faceVertex(spec, positions, normals, uvs)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				idx := uint32(len(current.vertices))
				current.vertices = append(current.vertices, v)
				vertexMap[spec] = idx
				face = append(face, idx)
			}
			// Fan triangulation
			for i := 2; i < len(face); i++ {
				current.indices = append(current.indices, face[0], face[i-1], face[i])
			}
		case "o", "g":
			if len(current.vertices) > 0 {
				groups = append(groups, current)
			}
			name := "unnamed"
			if len(parts) > 1 {
				name = parts[1]
			}
			current = objGroup{name: name}
			vertexMap = make(map[string]uint32)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(current.vertices) > 0 {
		groups = append(groups, current)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no mesh data found")
	}
	return groups, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// objIndex resolves a 1-based, possibly negative OBJ index.
func objIndex(s string, n int) (int, bool) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if idx < 0 {
		idx = n + idx + 1
	}
	return idx - 1, idx > 0 && idx <= n
}

// faceVertex parses a face vertex spec like "v/vt/vn".
func faceVertex(spec string, positions, normals []math.Vec3, uvs []math.Vec2) (core.Vertex, error) {
	var v core.Vertex
	parts := strings.Split(spec, "/")

	i, ok := objIndex(parts[0], len(positions))
	if !ok {
		return v, fmt.Errorf("vertex %q: position out of range", spec)
	}
	v.Position = positions[i]
	if len(parts) >= 2 && parts[1] != "" {
		if i, ok := objIndex(parts[1], len(uvs)); ok {
			v.UV = uvs[i]
		}
	}
	if len(parts) >= 3 && parts[2] != "" {
		if i, ok := objIndex(parts[2], len(normals)); ok {
			v.Normal = normals[i]
		}
	}
	return v, nil
}
