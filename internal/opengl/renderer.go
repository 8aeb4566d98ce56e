package opengl

import (
	"fmt"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"hero-engine/core"
	"hero-engine/math"
	"hero-engine/mesh"
	"hero-engine/particles"
	"hero-engine/shader"
)

// Renderer is the OpenGL backend. It draws into an HDR target that is
// tone-mapped to the window on EndFrame. All methods must run on the
// thread that owns the GL context.
type Renderer struct {
	programs  *ProgramCache
	particles *ParticleRenderer
	meshes    *MeshCache
	post      *PostProcess
	shadow    *ShadowMap

	bgVAO  uint32
	width  int
	height int
}

var (
	initOnce sync.Once
	initErr  error
)

// Init loads GL function pointers for the current context. Safe to call
// more than once.
func Init() error {
	initOnce.Do(func() {
		initErr = gl.Init()
	})
	return initErr
}

func NewRenderer(width, height, shadowSize int) (*Renderer, error) {
	if err := Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	post, err := NewPostProcess(width, height)
	if err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}
	sm, err := NewShadowMap(shadowSize)
	if err != nil {
		post.Destroy()
		return nil, fmt.Errorf("shadow map: %w", err)
	}
	r := &Renderer{
		programs:  NewProgramCache(),
		particles: NewParticleRenderer(),
		meshes:    NewMeshCache(),
		post:      post,
		shadow:    sm,
		width:     width,
		height:    height,
	}
	gl.GenVertexArrays(1, &r.bgVAO)
	return r, nil
}

func (r *Renderer) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width = width
	r.height = height
	r.post.Resize(width, height)
}

// Configure applies the quality switches for this frame.
func (r *Renderer) Configure(bloom bool, shadowSize int) error {
	r.post.SetBloom(bloom)
	if err := r.shadow.Resize(shadowSize); err != nil {
		return fmt.Errorf("shadow resize: %w", err)
	}
	return nil
}

// BeginFrame binds the HDR target and clears it.
func (r *Renderer) BeginFrame(clear core.Color) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.post.Framebuffer())
	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.ClearColor(clear.R, clear.G, clear.B, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
}

// ClearDepth lets the next layer draw over the previous one.
func (r *Renderer) ClearDepth() {
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

// bind compiles or fetches the program for in and uploads its uniforms plus
// the per-draw opacity.
func (r *Renderer) bind(in *shader.Instance, opacity float32) (*Program, error) {
	p, err := r.programs.Get(in)
	if err != nil {
		return nil, err
	}
	p.Use()
	p.Apply(in)
	p.SetFloat("uOpacity", opacity)
	applyBlend(in.BlendMode())
	return p, nil
}

// DrawBackground draws a fullscreen material behind everything else.
func (r *Renderer) DrawBackground(in *shader.Instance, opacity float32) error {
	if _, err := r.bind(in, opacity); err != nil {
		return err
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(r.bgVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	return nil
}

func (r *Renderer) DrawParticles(s *particles.System, in *shader.Instance, viewProj math.Mat4, opacity float32) error {
	p, err := r.bind(in, opacity)
	if err != nil {
		return err
	}
	p.SetMat4("uViewProj", viewProj)
	p.SetMat4("uModel", math.Mat4Identity())
	r.particles.Draw(s)
	gl.Disable(gl.BLEND)
	return nil
}

func (r *Renderer) DrawMesh(m *mesh.Mesh, in *shader.Instance, viewProj, model math.Mat4, opacity float32) error {
	p, err := r.bind(in, opacity)
	if err != nil {
		return err
	}
	p.SetMat4("uViewProj", viewProj)
	p.SetMat4("uModel", model)
	if in.Transparent() {
		gl.DepthMask(false)
	}
	r.meshes.Draw(m)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	return nil
}

// BeginShadowPass renders subsequent ShadowCaster calls into the depth map.
func (r *Renderer) BeginShadowPass(lightVP math.Mat4) {
	r.shadow.Begin(lightVP)
}

func (r *Renderer) ShadowCaster(m *mesh.Mesh, model math.Mat4) {
	r.shadow.SetModel(model)
	r.meshes.Draw(m)
}

func (r *Renderer) EndShadowPass() {
	r.shadow.End(r.post.Framebuffer(), int32(r.width), int32(r.height))
}

// DrawShadowGround composites the shadow map onto a ground disc.
func (r *Renderer) DrawShadowGround(viewProj, lightVP math.Mat4, height, extent, opacity float32) {
	r.shadow.DrawGround(viewProj, lightVP, height, extent, opacity)
	gl.Disable(gl.BLEND)
}

// EndFrame tone-maps the HDR target to the window and frees buffers of
// destroyed particle systems.
func (r *Renderer) EndFrame() {
	r.post.Blit()
	r.particles.Sweep()
}

func (r *Renderer) ReleaseMesh(m *mesh.Mesh) {
	r.meshes.Release(m)
}

func (r *Renderer) Destroy() {
	r.particles.Destroy()
	r.meshes.Destroy()
	r.programs.Destroy()
	r.post.Destroy()
	r.shadow.Destroy()
	if r.bgVAO != 0 {
		gl.DeleteVertexArrays(1, &r.bgVAO)
		r.bgVAO = 0
	}
}
