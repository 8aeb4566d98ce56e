package shader

import (
	"errors"
	"testing"

	"hero-engine/core"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}
	return r
}

func TestInstantiateNoOverrides(t *testing.T) {
	r := newTestRegistry(t)
	for _, d := range Builtins() {
		in, err := r.Instantiate(d.Name, nil)
		if err != nil {
			t.Fatalf("Instantiate(%s): %v", d.Name, err)
		}
		for name, want := range d.UniformSchema {
			got, ok := in.Uniform(name)
			if !ok || got != want {
				t.Errorf("%s.%s: expected %v, got %v", d.Name, name, want, got)
			}
		}
	}
}

func TestInstantiateOverridesShallowMerge(t *testing.T) {
	r := newTestRegistry(t)
	red := core.Color{R: 1, A: 1}
	in, err := r.Instantiate(GlowSurface, map[string]UniformValue{"uColor": Color(red)})
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if got, _ := in.Uniform("uColor"); got.Color != red {
		t.Errorf("uColor: expected %v, got %v", red, got)
	}
	if got, _ := in.Uniform("uGlow"); got.Float != 1.5 {
		t.Errorf("uGlow: expected default 1.5, got %v", got)
	}
}

func TestInstancesDoNotShareState(t *testing.T) {
	r := newTestRegistry(t)
	a, _ := r.Instantiate(GlowSurface, nil)
	b, _ := r.Instantiate(GlowSurface, nil)

	if err := a.SetFloat("uGlow", 9); err != nil {
		t.Fatalf("SetFloat: %v", err)
	}
	a.AdvanceTime(1)

	if got, _ := b.Uniform("uGlow"); got.Float != 1.5 {
		t.Errorf("sibling instance changed: uGlow = %v", got)
	}
	if got, _ := b.Uniform(TimeUniform); got.Float != 0 {
		t.Errorf("sibling instance time advanced: %v", got)
	}
	c, _ := r.Instantiate(GlowSurface, nil)
	if got, _ := c.Uniform("uGlow"); got.Float != 1.5 {
		t.Errorf("descriptor default changed: uGlow = %v", got)
	}
}

func TestInstantiateUnknown(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Instantiate("does-not-exist", nil)
	var unknown *UnknownShaderError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownShaderError, got %v", err)
	}
	if unknown.Name != "does-not-exist" {
		t.Errorf("expected name in error, got %q", unknown.Name)
	}

	in := r.InstantiateOrPlaceholder("does-not-exist", nil)
	if !in.Placeholder() {
		t.Error("expected placeholder instance")
	}
	if got, _ := in.Uniform("uColor"); got.Color != core.ColorMagenta {
		t.Errorf("placeholder color: expected magenta, got %v", got)
	}
}

func TestOverrideValidation(t *testing.T) {
	r := newTestRegistry(t)
	var uerr *UniformError

	_, err := r.Instantiate(GlowSurface, map[string]UniformValue{"uNope": Float(1)})
	if !errors.As(err, &uerr) || uerr.Known {
		t.Errorf("unknown uniform: expected UniformError, got %v", err)
	}
	_, err = r.Instantiate(GlowSurface, map[string]UniformValue{"uGlow": Vec3(1, 2, 3)})
	if !errors.As(err, &uerr) || !uerr.Known || uerr.Want != KindFloat {
		t.Errorf("kind mismatch: expected UniformError, got %v", err)
	}
}

func TestRegisterRejects(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Register(Builtins()[0]); !errors.Is(err, ErrDuplicateShader) {
		t.Errorf("duplicate: expected ErrDuplicateShader, got %v", err)
	}
	if err := r.Register(Descriptor{Name: "x"}); !errors.Is(err, ErrMissingSource) {
		t.Errorf("no source: expected ErrMissingSource, got %v", err)
	}
	bad := Descriptor{
		Name: "bad-time", VertexSource: "v", FragmentSource: "f",
		UniformSchema: map[string]UniformValue{TimeUniform: Vec3(0, 0, 0)},
	}
	if err := r.Register(bad); err == nil {
		t.Error("vec3 time uniform: expected error")
	}
}

func TestRegisterCopiesSchema(t *testing.T) {
	r := NewRegistry()
	schema := map[string]UniformValue{"uA": Float(1)}
	if err := r.Register(Descriptor{Name: "s", VertexSource: "v", FragmentSource: "f", UniformSchema: schema}); err != nil {
		t.Fatal(err)
	}
	schema["uA"] = Float(99)
	in, _ := r.Instantiate("s", nil)
	if got, _ := in.Uniform("uA"); got.Float != 1 {
		t.Errorf("registered schema aliased caller map: got %v", got)
	}
}

func TestAdvanceTime(t *testing.T) {
	r := newTestRegistry(t)
	in, _ := r.Instantiate(ParticlePoints, nil)
	in.AdvanceTime(0.5)
	in.AdvanceTime(0.25)
	if got, _ := in.Uniform(TimeUniform); got.Float != 0.75 {
		t.Errorf("uTime: expected 0.75, got %v", got.Float)
	}
	if in.Elapsed() != 0.75 {
		t.Errorf("Elapsed: expected 0.75, got %v", in.Elapsed())
	}
}

func TestDestroyIdempotent(t *testing.T) {
	r := newTestRegistry(t)
	in, _ := r.Instantiate(Nebula, nil)
	if r.Live() != 1 {
		t.Fatalf("expected 1 live instance, got %d", r.Live())
	}
	r.Destroy(in)
	r.Destroy(in)
	if r.Live() != 0 {
		t.Errorf("expected 0 live instances, got %d", r.Live())
	}
	in.AdvanceTime(1)
	if in.Elapsed() != 0 {
		t.Error("destroyed instance still advancing")
	}
}
