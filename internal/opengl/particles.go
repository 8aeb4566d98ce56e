package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"hero-engine/particles"
)

// particleBuffers are the GPU copies of one system's position, color and
// scale arrays. They only grow.
type particleBuffers struct {
	vao      uint32
	vbo      [3]uint32 // position, color, scale
	capacity int       // slots
}

func newParticleBuffers() *particleBuffers {
	pb := &particleBuffers{}
	gl.GenVertexArrays(1, &pb.vao)
	gl.GenBuffers(3, &pb.vbo[0])

	gl.BindVertexArray(pb.vao)
	sizes := [3]int32{3, 3, 1}
	for i, vbo := range pb.vbo {
		gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), sizes[i], gl.FLOAT, false, 0, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return pb
}

// upload copies slots [0, n) into the buffers, reallocating only when n
// exceeds what was allocated before.
func (pb *particleBuffers) upload(s *particles.System, n int) {
	grow := n > pb.capacity
	if grow {
		pb.capacity = s.Capacity()
	}
	data := [3][]float32{s.Position[:n*3], s.Color[:n*3], s.Scale[:n]}
	full := [3]int{pb.capacity * 3, pb.capacity * 3, pb.capacity}
	for i, vbo := range pb.vbo {
		gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
		if grow {
			gl.BufferData(gl.ARRAY_BUFFER, full[i]*4, nil, gl.STREAM_DRAW)
		}
		if len(data[i]) > 0 {
			gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data[i])*4, gl.Ptr(data[i]))
		}
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (pb *particleBuffers) destroy() {
	gl.DeleteVertexArrays(1, &pb.vao)
	gl.DeleteBuffers(3, &pb.vbo[0])
}

// ParticleRenderer draws particle systems as point sprites. Dead slots have
// zero scale and rasterize to nothing, so [0, HighWater) is drawn as is.
type ParticleRenderer struct {
	buffers map[*particles.System]*particleBuffers
}

func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{buffers: make(map[*particles.System]*particleBuffers)}
}

// Draw uploads and draws s with the program already bound and its
// uniforms set.
func (pr *ParticleRenderer) Draw(s *particles.System) {
	if s == nil || s.Destroyed() {
		return
	}
	n := s.HighWater()
	if n == 0 {
		return
	}
	pb, ok := pr.buffers[s]
	if !ok {
		pb = newParticleBuffers()
		pr.buffers[s] = pb
	}
	pb.upload(s, n)

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	// Read depth, never write it: particles don't occlude.
	gl.DepthMask(false)
	gl.BindVertexArray(pb.vao)
	gl.DrawArrays(gl.POINTS, 0, int32(n))
	gl.BindVertexArray(0)
	gl.DepthMask(true)
}

// Sweep frees buffers of destroyed systems.
func (pr *ParticleRenderer) Sweep() {
	for s, pb := range pr.buffers {
		if s.Destroyed() {
			pb.destroy()
			delete(pr.buffers, s)
		}
	}
}

func (pr *ParticleRenderer) Destroy() {
	for s, pb := range pr.buffers {
		pb.destroy()
		delete(pr.buffers, s)
	}
}
