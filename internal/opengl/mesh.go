package opengl

import (
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"hero-engine/core"
	"hero-engine/mesh"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	VertCount  int32
	HasIndices bool
}

// MeshCache uploads meshes on first draw.
type MeshCache struct {
	meshes map[*mesh.Mesh]*GPUMesh
}

func NewMeshCache() *MeshCache {
	return &MeshCache{meshes: make(map[*mesh.Mesh]*GPUMesh)}
}

func (c *MeshCache) ensureUploaded(m *mesh.Mesh) *GPUMesh {
	if gpu, ok := c.meshes[m]; ok {
		return gpu
	}
	if len(m.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	gpu := &GPUMesh{
		IndexCount: int32(len(m.Indices)),
		VertCount:  int32(len(m.Vertices)),
		HasIndices: len(m.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(stride), gl.Ptr(m.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Position))))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Normal))))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.UV))))

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)

	c.meshes[m] = gpu
	m.GPUData = gpu
	return gpu
}

// Draw issues the draw call for m with the bound program.
func (c *MeshCache) Draw(m *mesh.Mesh) {
	gpu := c.ensureUploaded(m)
	if gpu == nil {
		return
	}
	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, gpu.VertCount)
	}
	gl.BindVertexArray(0)
}

func (c *MeshCache) Release(m *mesh.Mesh) {
	gpu, ok := c.meshes[m]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.VAO)
	gl.DeleteBuffers(1, &gpu.VBO)
	if gpu.EBO != 0 {
		gl.DeleteBuffers(1, &gpu.EBO)
	}
	delete(c.meshes, m)
	m.GPUData = nil
}

func (c *MeshCache) Destroy() {
	for m := range c.meshes {
		c.Release(m)
	}
}
