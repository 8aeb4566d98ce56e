package lod

import (
	"errors"
	gomath "math"
	"testing"

	"hero-engine/math"
	"hero-engine/mesh"
)

func chainOf(thresholds ...float32) []Entry {
	entries := make([]Entry, len(thresholds))
	for i, d := range thresholds {
		entries[i] = Entry{
			Representation:    Representation{Mesh: &mesh.Mesh{Name: string(rune('a' + i))}},
			DistanceThreshold: d,
		}
	}
	return entries
}

func TestSelect(t *testing.T) {
	entries := chainOf(5, 15, 40)
	inf := float32(gomath.Inf(1))

	tests := []struct {
		name     string
		distance float32
		ceiling  int
		want     int
	}{
		{"at camera", 0, 2, 0},
		{"near", 4.9, 2, 0},
		{"on threshold", 5, 2, 1},
		{"mid", 20, 2, 2},
		{"infinity", inf, 2, 2},
		{"infinity clipped", inf, 1, 1},
		{"mid clipped", 20, 0, 0},
		{"ceiling beyond chain", 20, 9, 2},
		{"negative ceiling", 20, -1, 0},
	}
	for _, tt := range tests {
		got := Index(entries, tt.distance, tt.ceiling)
		if got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
		if sel := Select(entries, tt.distance, tt.ceiling); sel.Representation.Mesh != entries[tt.want].Representation.Mesh {
			t.Errorf("%s: Select returned a different entry than Index", tt.name)
		}
	}
}

func TestSelectEmpty(t *testing.T) {
	if got := Index(nil, 1, 3); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
	if got := Select(nil, 1, 3); got.Representation.Mesh != nil {
		t.Errorf("expected zero entry, got %+v", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(chainOf(1, 2, 3)); err != nil {
		t.Errorf("ascending: unexpected error %v", err)
	}
	if err := Validate(chainOf(1, 1)); !errors.Is(err, ErrThresholdOrder) {
		t.Errorf("equal: expected ErrThresholdOrder, got %v", err)
	}
	if err := Validate(chainOf(3, 2)); !errors.Is(err, ErrThresholdOrder) {
		t.Errorf("descending: expected ErrThresholdOrder, got %v", err)
	}
	if err := Validate(nil); !errors.Is(err, ErrEmptyChain) {
		t.Errorf("empty: expected ErrEmptyChain, got %v", err)
	}
}

func TestChainThresholds(t *testing.T) {
	entries := Chain(mesh.SphereChain(1, 32, 3), nil, 4, 2.5)
	want := []float32{4, 10, 25}
	for i, e := range entries {
		if e.DistanceThreshold != want[i] {
			t.Errorf("entry %d: expected %v, got %v", i, want[i], e.DistanceThreshold)
		}
	}
	if err := Validate(entries); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestObjectSelectsOncePerFrame(t *testing.T) {
	o, err := NewObject("orb", chainOf(5, 15, 40))
	if err != nil {
		t.Fatal(err)
	}
	if got := o.SelectFor(1, math.Vec3{Z: 1}, 2); got != 0 {
		t.Fatalf("near: expected 0, got %d", got)
	}
	if got := o.SelectFor(1, math.Vec3{Z: 100}, 2); got != 0 {
		t.Errorf("same frame: expected cached 0, got %d", got)
	}
	if got := o.SelectFor(2, math.Vec3{Z: 100}, 2); got != 2 {
		t.Errorf("next frame: expected 2, got %d", got)
	}
}

func TestNewObjectRejectsBadChain(t *testing.T) {
	if _, err := NewObject("bad", chainOf(2, 1)); !errors.Is(err, ErrThresholdOrder) {
		t.Errorf("expected ErrThresholdOrder, got %v", err)
	}
}
