package presets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hero-engine/particles"
	"hero-engine/quality"
	"hero-engine/scene"
	"hero-engine/shader"
)

func testResources(t *testing.T, tier quality.Tier) scene.Resources {
	t.Helper()
	reg := shader.NewRegistry()
	if err := shader.RegisterBuiltins(reg); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}
	p := quality.Resolve(tier)
	return scene.Resources{
		Particles: particles.NewManager(),
		Shaders:   reg,
		Profile:   p,
		Ceiling:   p,
	}
}

func show(t *testing.T, res scene.Resources, sc *scene.Scene) {
	t.Helper()
	o := scene.NewOrchestrator(res, 0)
	if err := o.Add(sc); err != nil {
		t.Fatal(err)
	}
	if err := o.Start(sc.ID); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultsValidate(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Defaults() {
		if err := s.Validate(); err != nil {
			t.Errorf("%s: unexpected error %v", s.ID, err)
		}
		if seen[s.ID] {
			t.Errorf("duplicate id %q", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"no id", Spec{}, ErrNoID},
		{"zero share", Spec{ID: "a", Emitters: []EmitterSpec{{Share: 0}}}, ErrBadShare},
		{"over budget", Spec{ID: "a", Emitters: []EmitterSpec{{Share: 0.7}, {Share: 0.6}}}, ErrBadShare},
		{"bad kind", Spec{ID: "a", Objects: []ObjectSpec{{Kind: "cube"}}}, ErrBadObject},
		{"gltf path", Spec{ID: "a", Objects: []ObjectSpec{{Kind: ObjectGLTF}}}, ErrMissingPath},
	}
	for _, tt := range tests {
		if err := tt.spec.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestOrbBuildsOnFirstActivation(t *testing.T) {
	res := testResources(t, quality.TierMedium)
	sc := Orb().Scene()
	if sc.Built() {
		t.Fatal("scene built before activation")
	}
	show(t, res, sc)

	if len(sc.Emitters) != 2 {
		t.Fatalf("Emitters: expected 2, got %d", len(sc.Emitters))
	}
	if sc.Background == nil || sc.Background.Name() != shader.Nebula {
		t.Errorf("Background: expected %s, got %v", shader.Nebula, sc.Background)
	}
	if len(sc.Objects) != 1 {
		t.Fatalf("Objects: expected 1, got %d", len(sc.Objects))
	}
	// Medium reaches LOD index 2, so three levels.
	if got := len(sc.Objects[0].Entries); got != 3 {
		t.Errorf("LOD levels: expected 3, got %d", got)
	}
	shell := sc.Emitters[0]
	if got := shell.System.LiveCount(); got != 20000 {
		t.Errorf("shell live: expected 20000, got %d", got)
	}
	dust := sc.Emitters[1]
	if got := dust.System.LiveCount(); got != 0 {
		t.Errorf("rate-limited emitter should start empty, got %d", got)
	}
	if dust.Ambient == nil {
		t.Error("dust emitter: expected gravity field")
	}
}

func TestUnknownShaderFallsBackToPlaceholder(t *testing.T) {
	res := testResources(t, quality.TierLow)
	spec := Spec{
		ID:         "odd",
		Background: "does-not-exist",
		Emitters:   []EmitterSpec{{Preset: particles.PresetField, Share: 1, Shader: "nope"}},
	}
	sc := spec.Scene()
	show(t, res, sc)
	if !sc.Background.Placeholder() {
		t.Error("Background: expected placeholder")
	}
	if !sc.Emitters[0].Material.Placeholder() {
		t.Error("emitter material: expected placeholder")
	}
}

func TestMissingGLTFKeepsRestOfScene(t *testing.T) {
	res := testResources(t, quality.TierLow)
	spec := Spec{
		ID:       "broken",
		Emitters: []EmitterSpec{{Preset: particles.PresetShell, Share: 1}},
		Objects:  []ObjectSpec{{Name: "ghost", Kind: ObjectGLTF, Path: "testdata/missing.glb"}},
	}
	sc := spec.Scene()
	show(t, res, sc)
	if len(sc.Objects) != 0 {
		t.Errorf("Objects: expected 0, got %d", len(sc.Objects))
	}
	if got := sc.LiveParticles(); got != 10000 {
		t.Errorf("LiveParticles: expected 10000, got %d", got)
	}
}

func TestOBJObjectLoadsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rock.obj")
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\n" +
		"o rock_LOD0\nf 1 2 3 4\no rock_LOD1\nf 1 2 3\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	res := testResources(t, quality.TierLow)
	spec := Spec{
		ID:       "rocks",
		Emitters: []EmitterSpec{{Preset: particles.PresetField, Share: 1}},
		Objects:  []ObjectSpec{{Name: "rock", Kind: ObjectOBJ, Path: path}},
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	sc := spec.Scene()
	show(t, res, sc)
	if len(sc.Objects) != 1 {
		t.Fatalf("Objects: expected 1, got %d", len(sc.Objects))
	}
	if got := len(sc.Objects[0].Entries); got != 2 {
		t.Errorf("Entries: expected 2, got %d", got)
	}
}
