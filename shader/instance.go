package shader

import (
	"sort"

	"hero-engine/core"
	"hero-engine/math"
)

// Instance is a material created from a Descriptor. It owns its uniform
// values; nothing is shared with the descriptor or other instances.
type Instance struct {
	desc        *Descriptor
	uniforms    map[string]UniformValue
	elapsed     float32
	placeholder bool
	destroyed   bool
}

func (in *Instance) Name() string { return in.desc.Name }

func (in *Instance) BlendMode() BlendMode { return in.desc.BlendMode }

func (in *Instance) Transparent() bool { return in.desc.Transparent }

func (in *Instance) VertexSource() string { return in.desc.VertexSource }

func (in *Instance) FragmentSource() string { return in.desc.FragmentSource }

// Placeholder reports whether this instance stands in for a missing shader.
func (in *Instance) Placeholder() bool { return in.placeholder }

// Elapsed is the total time advanced on this instance, in seconds.
func (in *Instance) Elapsed() float32 { return in.elapsed }

func (in *Instance) Destroyed() bool { return in.destroyed }

// Uniform returns the current value of a uniform.
func (in *Instance) Uniform(name string) (UniformValue, bool) {
	v, ok := in.uniforms[name]
	return v, ok
}

// UniformNames returns uniform names in a stable order for upload.
func (in *Instance) UniformNames() []string {
	names := make([]string, 0, len(in.uniforms))
	for k := range in.uniforms {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Uniforms returns a copy of the current values.
func (in *Instance) Uniforms() map[string]UniformValue {
	out := make(map[string]UniformValue, len(in.uniforms))
	for k, v := range in.uniforms {
		out[k] = v
	}
	return out
}

// Set replaces a uniform value. The name must exist in the schema and the
// kind must match.
func (in *Instance) Set(name string, v UniformValue) error {
	cur, ok := in.uniforms[name]
	if !ok {
		return &UniformError{Shader: in.desc.Name, Name: name}
	}
	if cur.Kind != v.Kind {
		return &UniformError{Shader: in.desc.Name, Name: name, Want: cur.Kind, Got: v.Kind, Known: true}
	}
	in.uniforms[name] = v
	return nil
}

func (in *Instance) SetFloat(name string, f float32) error {
	return in.Set(name, Float(f))
}

func (in *Instance) SetVec3(name string, v math.Vec3) error {
	return in.Set(name, Vec3(v.X, v.Y, v.Z))
}

func (in *Instance) SetColor(name string, c core.Color) error {
	return in.Set(name, Color(c))
}

// AdvanceTime is the per-frame mutation: it moves the instance clock and the
// time uniform forward by dt seconds.
func (in *Instance) AdvanceTime(dt float32) {
	if in.destroyed || dt <= 0 {
		return
	}
	in.elapsed += dt
	if cur, ok := in.uniforms[TimeUniform]; ok {
		cur.Float += dt
		in.uniforms[TimeUniform] = cur
	}
}
