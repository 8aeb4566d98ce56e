package math

import (
	"math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	result := v1.Add(v2)
	expected := NewVec3(5, 7, 9)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	result = v2.Sub(v1)
	expected = NewVec3(3, 3, 3)
	if result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}

	dot := v1.Dot(v2)
	if dot != 32 {
		t.Errorf("Dot: expected 32, got %v", dot)
	}

	cross := Vec3Right.Cross(Vec3Up)
	if cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3SliceRoundTrip(t *testing.T) {
	buf := make([]float32, 6)
	NewVec3(7, 8, 9).Slice(buf, 3)
	got := Vec3At(buf, 3)
	if got != NewVec3(7, 8, 9) {
		t.Errorf("Vec3At: expected (7,8,9), got %v", got)
	}
	if buf[0] != 0 || buf[2] != 0 {
		t.Errorf("Slice wrote outside its range: %v", buf)
	}
}

func TestMat4TranslationMulPoint(t *testing.T) {
	m := Mat4Translation(NewVec3(1, 2, 3)).Mul(Mat4Scale(2))
	p := Mat4Scale(2).Mul(Mat4Translation(NewVec3(1, 2, 3))).MulPoint(NewVec3(1, 1, 1))
	expected := NewVec3(3, 4, 5)
	if p != expected {
		t.Errorf("MulPoint: expected %v, got %v", expected, p)
	}
	if m[3][0] != 2 {
		t.Errorf("translation row: expected 2 after scale, got %v", m[3][0])
	}
}

func TestMat4LookAtOrigin(t *testing.T) {
	view := Mat4LookAt(NewVec3(0, 0, 5), Vec3Zero, Vec3Up)
	p := view.MulPoint(Vec3Zero)
	if math.Abs(float64(p.Z+5)) > 1e-5 {
		t.Errorf("LookAt: expected target at z=-5, got %v", p)
	}
}

func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.875},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		if got := EaseOutCubic(tt.in); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("EaseOutCubic(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float32
	}{
		{5, -10, 10, 5},
		{11, -10, 10, -9},
		{-11, -10, 10, 9},
		{10, -10, 10, -10},
	}
	for _, tt := range tests {
		if got := Wrap(tt.v, tt.lo, tt.hi); math.Abs(float64(got-tt.want)) > 1e-5 {
			t.Errorf("Wrap(%v, %v, %v): expected %v, got %v", tt.v, tt.lo, tt.hi, tt.want, got)
		}
	}
}

func TestMat4MirrorY(t *testing.T) {
	m := Mat4MirrorY(-1)
	got := m.MulPoint(NewVec3(2, 3, 4))
	if got != NewVec3(2, -5, 4) {
		t.Errorf("MirrorY: expected (2, -5, 4), got %v", got)
	}
}

func TestMat4OrthographicMapsBoxToClip(t *testing.T) {
	m := Mat4Orthographic(-2, 2, -1, 1, 0, 10)
	got := m.MulPoint(NewVec3(2, 1, -10))
	want := NewVec3(1, 1, 1)
	if got.Distance(want) > 1e-5 {
		t.Errorf("Orthographic corner: expected %v, got %v", want, got)
	}
}
