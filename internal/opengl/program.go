package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"hero-engine/math"
	"hero-engine/shader"
)

// Program is a linked GL program with its uniform locations cached by name.
type Program struct {
	ID   uint32
	locs map[string]int32
}

func (p *Program) loc(name string) int32 {
	if l, ok := p.locs[name]; ok {
		return l
	}
	l := gl.GetUniformLocation(p.ID, gl.Str(name+"\x00"))
	p.locs[name] = l
	return l
}

func (p *Program) Use() { gl.UseProgram(p.ID) }

func (p *Program) SetMat4(name string, m math.Mat4) {
	if l := p.loc(name); l >= 0 {
		gl.UniformMatrix4fv(l, 1, false, m.Ptr())
	}
}

func (p *Program) SetFloat(name string, f float32) {
	if l := p.loc(name); l >= 0 {
		gl.Uniform1f(l, f)
	}
}

func (p *Program) SetInt(name string, i int32) {
	if l := p.loc(name); l >= 0 {
		gl.Uniform1i(l, i)
	}
}

func (p *Program) SetVec3(name string, v math.Vec3) {
	if l := p.loc(name); l >= 0 {
		gl.Uniform3f(l, v.X, v.Y, v.Z)
	}
}

// Apply uploads every material uniform of in.
func (p *Program) Apply(in *shader.Instance) {
	for name, v := range in.Uniforms() {
		l := p.loc(name)
		if l < 0 {
			continue
		}
		switch v.Kind {
		case shader.KindFloat:
			gl.Uniform1f(l, v.Float)
		case shader.KindVec3:
			gl.Uniform3f(l, v.Vec3.X, v.Vec3.Y, v.Vec3.Z)
		case shader.KindColor:
			gl.Uniform4f(l, v.Color.R, v.Color.G, v.Color.B, v.Color.A)
		}
	}
}

func (p *Program) Destroy() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// ProgramCache compiles one program per descriptor name. Instances created
// from the same descriptor share it.
type ProgramCache struct {
	programs map[string]*Program
	failed   map[string]error
}

func NewProgramCache() *ProgramCache {
	return &ProgramCache{
		programs: make(map[string]*Program),
		failed:   make(map[string]error),
	}
}

// Get returns the program for in, compiling it on first use. A descriptor
// that failed to compile is not retried.
func (c *ProgramCache) Get(in *shader.Instance) (*Program, error) {
	name := in.Name()
	if p, ok := c.programs[name]; ok {
		return p, nil
	}
	if err, ok := c.failed[name]; ok {
		return nil, err
	}
	p, err := NewProgram(in.VertexSource(), in.FragmentSource())
	if err != nil {
		err = fmt.Errorf("program %q: %w", name, err)
		c.failed[name] = err
		return nil, err
	}
	c.programs[name] = p
	return p, nil
}

func (c *ProgramCache) Destroy() {
	for name, p := range c.programs {
		p.Destroy()
		delete(c.programs, name)
	}
}

// NewProgram compiles and links a vertex/fragment pair. Sources must be
// NUL-terminated.
func NewProgram(vertSrc, fragSrc string) (*Program, error) {
	id, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, err
	}
	return &Program{ID: id, locs: make(map[string]int32)}, nil
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return sh, nil
}

// applyBlend sets the GL blend state for a material.
func applyBlend(mode shader.BlendMode) {
	gl.Enable(gl.BLEND)
	switch mode {
	case shader.BlendAdditive:
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	default:
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
}
