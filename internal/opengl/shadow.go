package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"hero-engine/math"
)

// ShadowMap wraps a depth-only framebuffer used for shadow mapping.
type ShadowMap struct {
	FBO      uint32
	DepthTex uint32
	Size     int32

	depthProg  *Program
	groundProg *Program
	groundVAO  uint32
}

const shadowDepthVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPos;
uniform mat4 uLightViewProj;
uniform mat4 uModel;
void main() {
    gl_Position = uLightViewProj * uModel * vec4(inPos, 1.0);
}
` + "\x00"

const shadowDepthFragSrc = `
#version 410 core
void main() {}
` + "\x00"

// Ground disc generated from gl_VertexID as a two-triangle quad.
const groundVertSrc = `
#version 410 core
uniform mat4  uViewProj;
uniform mat4  uLightViewProj;
uniform float uHeight;
uniform float uExtent;
out vec4 lightPos;
out vec2 local;
void main() {
    const vec2 c[6] = vec2[6](vec2(-1,-1), vec2(1,-1), vec2(1,1), vec2(-1,-1), vec2(1,1), vec2(-1,1));
    local = c[gl_VertexID];
    vec4 world = vec4(local.x * uExtent, uHeight, local.y * uExtent, 1.0);
    lightPos = uLightViewProj * world;
    gl_Position = uViewProj * world;
}
` + "\x00"

// Darkens the ground where the shadow map is occluded, fading at the rim.
const groundFragSrc = `
#version 410 core
in vec4 lightPos;
in vec2 local;
uniform sampler2DShadow uShadowMap;
uniform float uOpacity;
out vec4 outColor;
void main() {
    vec3 p = lightPos.xyz / lightPos.w * 0.5 + 0.5;
    float lit = texture(uShadowMap, vec3(p.xy, p.z - 0.002));
    float fade = clamp(1.0 - length(local), 0.0, 1.0);
    outColor = vec4(0.0, 0.0, 0.0, (1.0 - lit) * 0.6 * fade * uOpacity);
}
` + "\x00"

// NewShadowMap creates a depth-only FBO of size×size resolution.
// Uses a 32-bit float depth texture with hardware PCF (COMPARE_REF_TO_TEXTURE).
func NewShadowMap(size int) (*ShadowMap, error) {
	sm := &ShadowMap{}
	var err error
	if sm.depthProg, err = NewProgram(shadowDepthVertSrc, shadowDepthFragSrc); err != nil {
		return nil, fmt.Errorf("shadow depth shader: %w", err)
	}
	if sm.groundProg, err = NewProgram(groundVertSrc, groundFragSrc); err != nil {
		sm.depthProg.Destroy()
		return nil, fmt.Errorf("shadow ground shader: %w", err)
	}
	gl.GenVertexArrays(1, &sm.groundVAO)
	if err := sm.alloc(size); err != nil {
		sm.Destroy()
		return nil, err
	}
	return sm, nil
}

func (sm *ShadowMap) alloc(size int) error {
	sm.Size = int32(size)

	gl.GenTextures(1, &sm.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, sm.DepthTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F,
		int32(size), int32(size), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	// Outside the map counts as lit.
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)

	gl.GenFramebuffers(1, &sm.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, sm.DepthTex, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		sm.free()
		return fmt.Errorf("shadow FBO incomplete: status=0x%X", status)
	}
	return nil
}

func (sm *ShadowMap) free() {
	if sm.FBO != 0 {
		gl.DeleteFramebuffers(1, &sm.FBO)
		sm.FBO = 0
	}
	if sm.DepthTex != 0 {
		gl.DeleteTextures(1, &sm.DepthTex)
		sm.DepthTex = 0
	}
}

// Resize reallocates the depth texture when the profile's shadow
// resolution changes.
func (sm *ShadowMap) Resize(size int) error {
	if int32(size) == sm.Size {
		return nil
	}
	sm.free()
	return sm.alloc(size)
}

// LightViewProj frames a square region of half-size extent around target,
// seen from direction dir.
func LightViewProj(target, dir math.Vec3, extent float32) math.Mat4 {
	eye := target.Sub(dir.Normalize().Mul(extent * 2))
	view := math.Mat4LookAt(eye, target, math.Vec3{X: 0, Y: 0, Z: 1})
	proj := math.Mat4Orthographic(-extent, extent, -extent, extent, 0.1, extent*4)
	return view.Mul(proj)
}

// Begin binds the depth FBO and the depth-only program.
func (sm *ShadowMap) Begin(lightVP math.Mat4) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.Viewport(0, 0, sm.Size, sm.Size)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	sm.depthProg.Use()
	sm.depthProg.SetMat4("uLightViewProj", lightVP)
}

// SetModel sets the caster transform for the next draw.
func (sm *ShadowMap) SetModel(model math.Mat4) {
	sm.depthProg.SetMat4("uModel", model)
}

// End restores target as the draw framebuffer.
func (sm *ShadowMap) End(target uint32, width, height int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, target)
	gl.Viewport(0, 0, width, height)
}

// DrawGround composites the shadow onto a horizontal disc at height.
func (sm *ShadowMap) DrawGround(viewProj, lightVP math.Mat4, height, extent, opacity float32) {
	sm.groundProg.Use()
	sm.groundProg.SetMat4("uViewProj", viewProj)
	sm.groundProg.SetMat4("uLightViewProj", lightVP)
	sm.groundProg.SetFloat("uHeight", height)
	sm.groundProg.SetFloat("uExtent", extent)
	sm.groundProg.SetFloat("uOpacity", opacity)
	sm.groundProg.SetInt("uShadowMap", 3)
	gl.ActiveTexture(gl.TEXTURE3)
	gl.BindTexture(gl.TEXTURE_2D, sm.DepthTex)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	gl.BindVertexArray(sm.groundVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.DepthMask(true)
	gl.ActiveTexture(gl.TEXTURE0)
}

// Destroy frees GPU resources.
func (sm *ShadowMap) Destroy() {
	sm.free()
	if sm.depthProg != nil {
		sm.depthProg.Destroy()
	}
	if sm.groundProg != nil {
		sm.groundProg.Destroy()
	}
	if sm.groundVAO != 0 {
		gl.DeleteVertexArrays(1, &sm.groundVAO)
		sm.groundVAO = 0
	}
}
