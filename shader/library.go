package shader

import (
	"fmt"

	"hero-engine/core"
)

// Names of the built-in descriptors registered by RegisterBuiltins.
const (
	ParticlePoints = "particle-points"
	Nebula         = "nebula"
	GlowSurface    = "glow-surface"
)

// Every built-in program receives uViewProj, uModel and uOpacity from the
// presenter; the schema only lists material uniforms.

// Point-sprite vertex shader fed from struct-of-arrays particle buffers.
const particleVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPos;
layout(location = 1) in vec3 inColor;
layout(location = 2) in float inScale;

uniform mat4  uViewProj;
uniform mat4  uModel;
uniform float uPointSize;
uniform float uTime;

out vec3 fragColor;

void main() {
    vec4 clip = uViewProj * uModel * vec4(inPos, 1.0);
    gl_Position  = clip;
    gl_PointSize = uPointSize * inScale / max(clip.w, 0.1);
    fragColor    = inColor;
}
` + "\x00"

// Soft round sprite; alpha rolls off quadratically at the edge.
const particleFragSrc = `
#version 410 core
in vec3 fragColor;

uniform vec4  uTint;
uniform float uOpacity;

out vec4 outColor;

void main() {
    float d = length(gl_PointCoord - vec2(0.5)) * 2.0;
    float a = clamp(1.0 - d * d, 0.0, 1.0);
    outColor = vec4(fragColor * uTint.rgb, a * uTint.a * uOpacity);
}
` + "\x00"

// Fullscreen triangle generated from gl_VertexID; no vertex buffer.
const fullscreenVertSrc = `
#version 410 core
out vec2 fragUV;

void main() {
    vec2 pos = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
    fragUV = pos;
    gl_Position = vec4(pos * 2.0 - 1.0, 0.0, 1.0);
}
` + "\x00"

const nebulaFragSrc = `
#version 410 core
in vec2 fragUV;

uniform float uTime;
uniform float uSpeed;
uniform vec4  uColorA;
uniform vec4  uColorB;
uniform vec3  uPointer;
uniform float uOpacity;

out vec4 outColor;

float hash(vec2 p) {
    return fract(sin(dot(p, vec2(127.1, 311.7))) * 43758.5453);
}

float noise(vec2 p) {
    vec2 i = floor(p);
    vec2 f = fract(p);
    vec2 u = f * f * (3.0 - 2.0 * f);
    return mix(mix(hash(i), hash(i + vec2(1, 0)), u.x),
               mix(hash(i + vec2(0, 1)), hash(i + vec2(1, 1)), u.x), u.y);
}

void main() {
    vec2 p = fragUV * 3.0 + vec2(uTime * uSpeed, uTime * uSpeed * 0.5);
    float n = noise(p) * 0.5 + noise(p * 2.0) * 0.25 + noise(p * 4.0) * 0.125;
    float glow = uPointer.z * exp(-8.0 * length(fragUV - uPointer.xy));
    vec3 col = mix(uColorA.rgb, uColorB.rgb, n) + glow * uColorB.rgb;
    outColor = vec4(col, uOpacity);
}
` + "\x00"

const meshVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPos;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;

uniform mat4 uViewProj;
uniform mat4 uModel;

out vec3 fragNormal;
out vec2 fragUV;

void main() {
    gl_Position = uViewProj * uModel * vec4(inPos, 1.0);
    fragNormal  = mat3(uModel) * inNormal;
    fragUV      = inUV;
}
` + "\x00"

// Fresnel-style rim glow.
const glowFragSrc = `
#version 410 core
in vec3 fragNormal;
in vec2 fragUV;

uniform vec4  uColor;
uniform float uGlow;
uniform float uTime;
uniform float uOpacity;

out vec4 outColor;

void main() {
    vec3 n = normalize(fragNormal);
    float rim = pow(1.0 - abs(n.z), 2.0);
    float pulse = 0.85 + 0.15 * sin(uTime * 2.0);
    outColor = vec4(uColor.rgb * (0.2 + rim * uGlow * pulse), uColor.a * uOpacity);
}
` + "\x00"

const flatFragSrc = `
#version 410 core
uniform vec4  uColor;
uniform float uOpacity;

out vec4 outColor;

void main() {
    outColor = vec4(uColor.rgb, uColor.a * uOpacity);
}
` + "\x00"

func placeholderDescriptor() Descriptor {
	return Descriptor{
		Name:           PlaceholderName,
		VertexSource:   meshVertSrc,
		FragmentSource: flatFragSrc,
		UniformSchema: map[string]UniformValue{
			"uColor": Color(core.ColorMagenta),
		},
	}
}

// Builtins returns the descriptors shipped with the engine, excluding the
// placeholder which every registry already holds.
func Builtins() []Descriptor {
	return []Descriptor{
		{
			Name:           ParticlePoints,
			VertexSource:   particleVertSrc,
			FragmentSource: particleFragSrc,
			UniformSchema: map[string]UniformValue{
				TimeUniform:  Float(0),
				"uPointSize": Float(24),
				"uTint":      Color(core.ColorWhite),
			},
			BlendMode:   BlendAdditive,
			Transparent: true,
		},
		{
			Name:           Nebula,
			VertexSource:   fullscreenVertSrc,
			FragmentSource: nebulaFragSrc,
			UniformSchema: map[string]UniformValue{
				TimeUniform: Float(0),
				"uSpeed":    Float(0.05),
				"uColorA":   Color(core.RGB(8, 6, 28)),
				"uColorB":   Color(core.RGB(92, 40, 160)),
				"uPointer":  Vec3(0.5, 0.5, 0),
			},
			BlendMode: BlendAlpha,
		},
		{
			Name:           GlowSurface,
			VertexSource:   meshVertSrc,
			FragmentSource: glowFragSrc,
			UniformSchema: map[string]UniformValue{
				TimeUniform: Float(0),
				"uColor":    Color(core.RGB(120, 200, 255)),
				"uGlow":     Float(1.5),
			},
			BlendMode:   BlendAdditive,
			Transparent: true,
		},
	}
}

// RegisterBuiltins adds every built-in descriptor to r.
func RegisterBuiltins(r *Registry) error {
	for _, d := range Builtins() {
		if err := r.Register(d); err != nil {
			return fmt.Errorf("builtin shaders: %w", err)
		}
	}
	return nil
}
