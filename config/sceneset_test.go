package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hero-engine/engine"
	"hero-engine/particles"
	"hero-engine/presets"
	"hero-engine/quality"
)

const sample = `{
  "version": "1.0",
  "engine": {
    "tier": "medium",
    "frame_budget_ms": 8.3,
    "transition_ms": 750,
    "min_particle_floor": 2000
  },
  "scenes": [
    {
      "id": "dust",
      "background": "nebula",
      "bg_color_b": [0.4, 0.1, 0.6, 1],
      "clear_color": [0.01, 0.01, 0.03, 1],
      "dwell_ms": 9000,
      "emitters": [
        {"preset": "field", "share": 0.5, "boundary": "kill", "rate": 500,
         "color_a": [1, 0.5, 0.2, 1], "color_b": [1, 1, 1, 1], "gravity": 0.5}
      ],
      "objects": [
        {"name": "core", "kind": "sphere", "position": [0, 1, 0], "radius": 2, "lod_base": 6}
      ]
    }
  ]
}`

func TestParseSceneSet(t *testing.T) {
	s, err := ParseSceneSet(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ParseSceneSet: %v", err)
	}

	cfg := engine.DefaultConfig()
	for _, opt := range s.Options() {
		opt(&cfg)
	}
	if cfg.InitialTier == nil || *cfg.InitialTier != quality.TierMedium {
		t.Errorf("InitialTier: expected medium, got %v", cfg.InitialTier)
	}
	if cfg.TransitionDuration != 750*time.Millisecond {
		t.Errorf("TransitionDuration: expected 750ms, got %v", cfg.TransitionDuration)
	}
	if cfg.MinParticleFloor != 2000 {
		t.Errorf("MinParticleFloor: expected 2000, got %d", cfg.MinParticleFloor)
	}
	if d := cfg.TargetFrameBudget; d < 8*time.Millisecond || d > 9*time.Millisecond {
		t.Errorf("TargetFrameBudget: expected ~8.3ms, got %v", d)
	}

	specs := s.Specs()
	if len(specs) != 1 {
		t.Fatalf("Specs: expected 1, got %d", len(specs))
	}
	sp := specs[0]
	if sp.Dwell != 9*time.Second {
		t.Errorf("Dwell: expected 9s, got %v", sp.Dwell)
	}
	if sp.BgColorA != nil {
		t.Errorf("BgColorA: expected nil, got %v", sp.BgColorA)
	}
	if sp.BgColorB == nil || sp.BgColorB.B != 0.6 {
		t.Errorf("BgColorB: unexpected %v", sp.BgColorB)
	}
	em := sp.Emitters[0]
	if em.Boundary != particles.BoundaryKill {
		t.Errorf("Boundary: expected kill, got %v", em.Boundary)
	}
	if em.Rate != 500 {
		t.Errorf("Rate: expected 500, got %v", em.Rate)
	}
	if sp.Objects[0].Position.Y != 1 {
		t.Errorf("object position: expected y=1, got %v", sp.Objects[0].Position)
	}
}

func TestParseSceneSetRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"no scenes", `{"version": "1.0", "scenes": []}`, ErrNoScenes},
		{"bad share", `{"scenes": [{"id": "a", "emitters": [{"preset": "field", "share": 2}]}]}`, presets.ErrBadShare},
		{"no id", `{"scenes": [{"emitters": []}]}`, presets.ErrNoID},
	}
	for _, tt := range tests {
		_, err := ParseSceneSet(strings.NewReader(tt.doc))
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}

	bad := []struct {
		name string
		doc  string
	}{
		{"unknown tier", `{"engine": {"tier": "ultra"}, "scenes": [{"id": "a"}]}`},
		{"unknown field", `{"scenes": [{"id": "a", "sparkle": true}]}`},
		{"bad boundary", `{"scenes": [{"id": "a", "emitters": [{"share": 1, "boundary": "bounce"}]}]}`},
		{"duplicate id", `{"scenes": [{"id": "a"}, {"id": "a"}]}`},
	}
	for _, tt := range bad {
		if _, err := ParseSceneSet(strings.NewReader(tt.doc)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestExportedDefaultsLoadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.heroscenes")
	if err := SaveSceneSet(path, FromSpecs(presets.Defaults())); err != nil {
		t.Fatalf("SaveSceneSet: %v", err)
	}
	s, err := LoadSceneSet(path)
	if err != nil {
		t.Fatalf("LoadSceneSet: %v", err)
	}
	want := presets.Defaults()
	got := s.Specs()
	if len(got) != len(want) {
		t.Fatalf("scenes: expected %d, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Dwell != want[i].Dwell || len(got[i].Emitters) != len(want[i].Emitters) {
			t.Errorf("scene %d: expected %s/%v/%d emitters, got %s/%v/%d",
				i, want[i].ID, want[i].Dwell, len(want[i].Emitters),
				got[i].ID, got[i].Dwell, len(got[i].Emitters))
		}
	}
}

func TestLoadSceneSetMissingFile(t *testing.T) {
	if _, err := LoadSceneSet(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
