package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"hero-engine/core"
)

// renderTarget is an RGBA16F color texture attached to a framebuffer,
// with an optional depth renderbuffer.
type renderTarget struct {
	fbo   uint32
	tex   uint32
	depth uint32
	w, h  int32
}

func newRenderTarget(width, height int32, withDepth bool) renderTarget {
	rt := renderTarget{w: max(width, 1), h: max(height, 1)}

	gl.GenTextures(1, &rt.tex)
	gl.BindTexture(gl.TEXTURE_2D, rt.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, rt.w, rt.h, 0, gl.RGBA, gl.HALF_FLOAT, nil)
	for _, p := range [][2]int32{
		{gl.TEXTURE_MIN_FILTER, gl.LINEAR},
		{gl.TEXTURE_MAG_FILTER, gl.LINEAR},
		{gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE},
		{gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE},
	} {
		gl.TexParameteri(gl.TEXTURE_2D, uint32(p[0]), p[1])
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &rt.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, rt.tex, 0)
	if withDepth {
		gl.GenRenderbuffers(1, &rt.depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, rt.depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, rt.w, rt.h)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, rt.depth)
	}
	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		core.Logger().Warn("framebuffer incomplete", "status", fmt.Sprintf("0x%X", s), "width", rt.w, "height", rt.h)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return rt
}

func (rt *renderTarget) free() {
	if rt.fbo != 0 {
		gl.DeleteFramebuffers(1, &rt.fbo)
	}
	if rt.tex != 0 {
		gl.DeleteTextures(1, &rt.tex)
	}
	if rt.depth != 0 {
		gl.DeleteRenderbuffers(1, &rt.depth)
	}
	*rt = renderTarget{}
}

// PostProcess owns the HDR scene target and resolves it to the default
// framebuffer with tone mapping and, when the profile allows it, bloom
// (bright-pass, separable Gaussian blur, additive composite).
type PostProcess struct {
	scene renderTarget
	bloom [2]renderTarget // half resolution ping-pong pair

	composite *Program
	bright    *Program
	blur      *Program
	quadVAO   uint32

	Exposure       float32
	BloomEnabled   bool
	BloomThreshold float32 // luminance cut-off
	BloomStrength  float32
	BloomPasses    int // H+V blur pairs
}

// Fullscreen triangle via gl_VertexID.
const ppVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// Exposure, Reinhard-style tone map, gamma 2.2, optional bloom add.
const ppFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer;
uniform sampler2D bloomTex;
uniform float     exposure;
uniform float     bloomStrength;
uniform bool      hasBloom;

void main() {
    vec3 hdr = texture(hdrBuffer, fragUV).rgb;
    if (hasBloom) {
        hdr += texture(bloomTex, fragUV).rgb * bloomStrength;
    }
    vec3 mapped = vec3(1.0) - exp(-hdr * exposure);
    mapped = pow(mapped, vec3(1.0 / 2.2));
    outColor = vec4(mapped, 1.0);
}
` + "\x00"

const ppBrightFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D hdrBuffer;
uniform float     threshold;

void main() {
    vec3  color = texture(hdrBuffer, fragUV).rgb;
    float luma  = dot(color, vec3(0.2126, 0.7152, 0.0722));
    outColor = vec4(color * step(threshold, luma), 1.0);
}
` + "\x00"

// Single-axis 5-tap Gaussian. texelDir is (1/w, 0) or (0, 1/h).
const ppBlurFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D blurTex;
uniform vec2      texelDir;

void main() {
    const float w[5] = float[](0.0625, 0.25, 0.375, 0.25, 0.0625);
    vec3 result = vec3(0.0);
    for (int i = -2; i <= 2; i++) {
        result += texture(blurTex, fragUV + float(i) * texelDir).rgb * w[i + 2];
    }
    outColor = vec4(result, 1.0);
}
` + "\x00"

func NewPostProcess(width, height int) (*PostProcess, error) {
	pp := &PostProcess{
		Exposure:       1.0,
		BloomThreshold: 0.8,
		BloomStrength:  0.7,
		BloomPasses:    4,
	}
	var err error
	for _, step := range []struct {
		name string
		frag string
		dst  **Program
	}{
		{"composite", ppFragSrc, &pp.composite},
		{"bright-pass", ppBrightFragSrc, &pp.bright},
		{"blur", ppBlurFragSrc, &pp.blur},
	} {
		if *step.dst, err = NewProgram(ppVertSrc, step.frag); err != nil {
			pp.Destroy()
			return nil, fmt.Errorf("%s shader: %w", step.name, err)
		}
	}
	pp.composite.Use()
	pp.composite.SetInt("hdrBuffer", 0)
	pp.composite.SetInt("bloomTex", 1)
	pp.bright.Use()
	pp.bright.SetInt("hdrBuffer", 0)
	pp.blur.Use()
	pp.blur.SetInt("blurTex", 0)

	gl.GenVertexArrays(1, &pp.quadVAO)
	pp.alloc(int32(width), int32(height))
	return pp, nil
}

func (pp *PostProcess) alloc(width, height int32) {
	pp.scene = newRenderTarget(width, height, true)
	for i := range pp.bloom {
		pp.bloom[i] = newRenderTarget(width/2, height/2, false)
	}
}

func (pp *PostProcess) free() {
	pp.scene.free()
	for i := range pp.bloom {
		pp.bloom[i].free()
	}
}

// Framebuffer is the HDR target every scene pass draws into.
func (pp *PostProcess) Framebuffer() uint32 { return pp.scene.fbo }

// SetBloom toggles the bloom passes. The half-resolution targets stay
// allocated either way.
func (pp *PostProcess) SetBloom(enabled bool) {
	pp.BloomEnabled = enabled
}

// Resize recreates every target at the new pixel dimensions.
func (pp *PostProcess) Resize(width, height int) {
	if int32(width) == pp.scene.w && int32(height) == pp.scene.h {
		return
	}
	pp.free()
	pp.alloc(int32(width), int32(height))
}

func (pp *PostProcess) Destroy() {
	pp.free()
	for _, p := range []*Program{pp.composite, pp.bright, pp.blur} {
		if p != nil {
			p.Destroy()
		}
	}
	if pp.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &pp.quadVAO)
		pp.quadVAO = 0
	}
}

// runBloom leaves the blurred highlights in bloom[0].
func (pp *PostProcess) runBloom() {
	half := pp.bloom[0]
	gl.BindFramebuffer(gl.FRAMEBUFFER, half.fbo)
	gl.Viewport(0, 0, half.w, half.h)
	pp.bright.Use()
	pp.bright.SetFloat("threshold", pp.BloomThreshold)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, pp.scene.tex)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)

	pp.blur.Use()
	texel := pp.blur.loc("texelDir")
	for i := 0; i < pp.BloomPasses; i++ {
		// Horizontal into bloom[1], vertical back into bloom[0].
		gl.BindFramebuffer(gl.FRAMEBUFFER, pp.bloom[1].fbo)
		gl.Uniform2f(texel, 1/float32(half.w), 0)
		gl.BindTexture(gl.TEXTURE_2D, pp.bloom[0].tex)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)

		gl.BindFramebuffer(gl.FRAMEBUFFER, pp.bloom[0].fbo)
		gl.Uniform2f(texel, 0, 1/float32(half.h))
		gl.BindTexture(gl.TEXTURE_2D, pp.bloom[1].tex)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
	}
}

// Blit resolves the HDR target to the default framebuffer.
func (pp *PostProcess) Blit() {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(pp.quadVAO)

	bloom := pp.BloomEnabled && pp.BloomPasses > 0
	if bloom {
		pp.runBloom()
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, pp.scene.w, pp.scene.h)
	pp.composite.Use()
	pp.composite.SetFloat("exposure", pp.Exposure)
	pp.composite.SetFloat("bloomStrength", pp.BloomStrength)
	hasBloom := int32(0)
	if bloom {
		hasBloom = 1
	}
	pp.composite.SetInt("hasBloom", hasBloom)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, pp.scene.tex)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, pp.bloom[0].tex)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.ActiveTexture(gl.TEXTURE0)

	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}
