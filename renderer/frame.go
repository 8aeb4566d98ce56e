package renderer

import (
	"hero-engine/core"
	"hero-engine/math"
	"hero-engine/mesh"
	"hero-engine/particles"
	"hero-engine/quality"
	"hero-engine/shader"
)

// Frame is everything the presentation surface needs for one tick. The
// engine builds one every tick, even when nothing is visible.
type Frame struct {
	Index      uint64
	Time       float32 // seconds since the engine started
	Viewport   core.Viewport
	Profile    quality.Profile
	ClearColor core.Color
	Layers     []Layer // drawn in order, outgoing scene first
}

// Layer is one scene's contribution, composited at Opacity.
type Layer struct {
	SceneID    string
	Opacity    float32
	View       math.Mat4
	Projection math.Mat4
	Eye        math.Vec3
	Background *shader.Instance
	Particles  []ParticleBatch
	Meshes     []MeshDraw
}

// ParticleBatch draws one system's [0, HighWater) slots as point sprites.
type ParticleBatch struct {
	System   *particles.System
	Material *shader.Instance
}

// MeshDraw draws the selected level of an LOD object.
type MeshDraw struct {
	Mesh     *mesh.Mesh
	Material *shader.Instance
	Model    math.Mat4
	Level    int
}

// Empty reports whether the frame has nothing but a clear.
func (f *Frame) Empty() bool {
	return len(f.Layers) == 0
}

// Particles counts live particles across layers.
func (f *Frame) Particles() int {
	n := 0
	for _, l := range f.Layers {
		for _, b := range l.Particles {
			n += b.System.LiveCount()
		}
	}
	return n
}

// Triangles counts mesh triangles across layers.
func (f *Frame) Triangles() int {
	n := 0
	for _, l := range f.Layers {
		for _, m := range l.Meshes {
			n += m.Mesh.TriangleCount()
		}
	}
	return n
}
