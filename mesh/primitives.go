package mesh

import (
	"fmt"

	"hero-engine/core"
	"hero-engine/math"
)

// surfaceFunc maps grid coordinates in [0,1]² to a point and its normal.
type surfaceFunc func(u, v float32) (position, normal math.Vec3)

// parametric tessellates f over a (rows+1)×(cols+1) vertex grid. UV follows
// (col, row) so the seams line up with the texture edges.
func parametric(name string, rows, cols int, f surfaceFunc) *Mesh {
	vertices := make([]core.Vertex, 0, (rows+1)*(cols+1))
	indices := make([]uint32, 0, rows*cols*6)

	for r := 0; r <= rows; r++ {
		v := float32(r) / float32(rows)
		for c := 0; c <= cols; c++ {
			u := float32(c) / float32(cols)
			p, n := f(u, v)
			vertices = append(vertices, core.Vertex{Position: p, Normal: n, UV: math.Vec2{X: u, Y: v}})
		}
	}

	stride := uint32(cols + 1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := uint32(r)*stride + uint32(c)
			indices = append(indices, i, i+stride, i+1, i+1, i+stride, i+stride+1)
		}
	}
	return CreateMeshFromData(name, vertices, indices)
}

// CreateSphere generates a UV sphere.
func CreateSphere(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)
	return parametric(fmt.Sprintf("sphere_%dx%d", segments, rings), rings, segments,
		func(u, v float32) (math.Vec3, math.Vec3) {
			phi, theta := v*math.Pi, u*2*math.Pi
			n := math.Vec3{X: math.Sin(phi) * math.Cos(theta), Y: math.Cos(phi), Z: math.Sin(phi) * math.Sin(theta)}
			return n.Mul(radius), n
		})
}

// CreateTorus generates a ring torus around the Y axis.
func CreateTorus(majorRadius, minorRadius float32, majorSegments, minorSegments int) *Mesh {
	majorSegments = max(majorSegments, 3)
	minorSegments = max(minorSegments, 3)
	return parametric(fmt.Sprintf("torus_%dx%d", majorSegments, minorSegments), majorSegments, minorSegments,
		func(u, v float32) (math.Vec3, math.Vec3) {
			// v runs around the major circle, u around the tube.
			theta, phi := v*2*math.Pi, u*2*math.Pi
			ring := majorRadius + minorRadius*math.Cos(phi)
			p := math.Vec3{X: ring * math.Cos(theta), Y: minorRadius * math.Sin(phi), Z: ring * math.Sin(theta)}
			n := math.Vec3{X: math.Cos(phi) * math.Cos(theta), Y: math.Sin(phi), Z: math.Cos(phi) * math.Sin(theta)}
			return p, n
		})
}

// lodChain builds levels finest first, halving segments per level down to 6.
func lodChain(segments, levels int, build func(seg int) *Mesh) []*Mesh {
	chain := make([]*Mesh, 0, levels)
	for i := 0; i < levels; i++ {
		chain = append(chain, build(max(segments>>i, 6)))
	}
	return chain
}

// SphereChain builds levels of decreasing tessellation, finest first.
// Level i uses segments>>i (at least 6) around and half as many rings.
func SphereChain(radius float32, segments, levels int) []*Mesh {
	return lodChain(segments, levels, func(seg int) *Mesh {
		return CreateSphere(radius, seg, seg/2)
	})
}

// TorusChain is SphereChain for a torus.
func TorusChain(majorRadius, minorRadius float32, segments, levels int) []*Mesh {
	return lodChain(segments, levels, func(seg int) *Mesh {
		return CreateTorus(majorRadius, minorRadius, seg, seg/3+3)
	})
}
