package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"hero-engine/core"
	"hero-engine/particles"
	"hero-engine/quality"
	"hero-engine/renderer"
	"hero-engine/scene"
)

func fieldScene(id string) *scene.Scene {
	return scene.New(id, func(sc *scene.Scene, res scene.Resources) error {
		mat, err := res.Shaders.Instantiate("particle-points", nil)
		if err != nil {
			return err
		}
		opts := particles.DefaultOptions()
		sc.AddEmitter(res, 1, opts, particles.Field(opts.Bounds, core.ColorWhite), mat)
		return nil
	})
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *renderer.Recorder) {
	t.Helper()
	rec := renderer.NewRecorder(8)
	e, err := New(rec, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, rec
}

func TestEngineDowngradesAfterSustainedOverBudget(t *testing.T) {
	e, rec := newTestEngine(t, WithInitialTier(quality.TierLow))
	if err := e.AddScene(fieldScene("a")); err != nil {
		t.Fatalf("AddScene: %v", err)
	}

	for i := 0; i < 3; i++ {
		e.Tick(25 * time.Millisecond)
	}

	p := e.Profile()
	if p.ParticleCount != 7000 {
		t.Errorf("ParticleCount: expected 7000, got %d", p.ParticleCount)
	}
	if p.ReflectionsEnabled {
		t.Errorf("ReflectionsEnabled: expected false, got true")
	}
	if got := e.Particles().TotalLive(); got != 7000 {
		t.Errorf("live particles: expected 7000, got %d", got)
	}
	last, ok := rec.Last()
	if !ok {
		t.Fatal("expected a recorded frame")
	}
	if last.Particles != 7000 {
		t.Errorf("frame particles: expected 7000, got %d", last.Particles)
	}
	if s := e.Stats(); s.Scene != "a" || !s.TierKnown || s.Tier != quality.TierLow {
		t.Errorf("stats: unexpected %+v", s)
	}
}

func TestEngineZeroDeltaIsNotSampled(t *testing.T) {
	e, _ := newTestEngine(t, WithInitialTier(quality.TierHigh))
	if err := e.AddScene(fieldScene("a")); err != nil {
		t.Fatalf("AddScene: %v", err)
	}
	for i := 0; i < 3; i++ {
		e.Tick(25 * time.Millisecond)
	}
	if got := e.Monitor().Steps(); got != 1 {
		t.Fatalf("steps after slow frames: expected 1, got %d", got)
	}
	// In-band frames run out the cooldown without building either run.
	for i := 0; i < 150; i++ {
		e.Tick(15 * time.Millisecond)
	}
	down := e.Profile()

	for i := 0; i < 200; i++ {
		e.Tick(0)
	}
	if got := e.Monitor().Steps(); got != 1 {
		t.Errorf("steps after zero ticks: expected 1, got %d", got)
	}
	if got := e.Profile(); got != down {
		t.Errorf("profile: expected %+v, got %+v", down, got)
	}
	if got := e.Stats().Frames; got != 353 {
		t.Errorf("frames: expected 353, got %d", got)
	}
}

func TestEngineSubmitsEveryTick(t *testing.T) {
	e, rec := newTestEngine(t)
	if err := e.AddScene(fieldScene("a")); err != nil {
		t.Fatal(err)
	}

	// No tier yet: frames are empty but still submitted.
	e.Tick(16 * time.Millisecond)
	e.Tick(16 * time.Millisecond)
	if rec.Total() != 2 {
		t.Errorf("Total: expected 2, got %d", rec.Total())
	}
	last, _ := rec.Last()
	if len(last.Layers) != 0 {
		t.Errorf("layers before tier: expected 0, got %d", len(last.Layers))
	}

	rec.FailNext = 2
	for i := 0; i < 4; i++ {
		e.Tick(16 * time.Millisecond)
	}
	if rec.Total() != 6 {
		t.Errorf("Total: expected 6, got %d", rec.Total())
	}
	if s := e.Stats(); s.SubmitErrors != 2 {
		t.Errorf("SubmitErrors: expected 2, got %d", s.SubmitErrors)
	}
	if e.LastError() == nil {
		t.Error("LastError: expected non-nil")
	}
}

func TestEngineProbeDeliversTier(t *testing.T) {
	e, rec := newTestEngine(t)
	if err := e.AddScene(fieldScene("a")); err != nil {
		t.Fatal(err)
	}
	surface := quality.HostSurfaceFunc(func() (quality.CapabilityInfo, error) {
		return quality.CapabilityInfo{Renderer: "NVIDIA GeForce RTX 3080", MaxTextureSize: 16384}, nil
	})
	e.Probe(context.Background(), surface)

	deadline := time.Now().Add(2 * time.Second)
	for e.Resolver() == nil && time.Now().Before(deadline) {
		e.Tick(time.Millisecond)
		time.Sleep(time.Millisecond)
	}
	if e.Resolver() == nil {
		t.Fatal("tier was never delivered")
	}
	e.Tick(time.Millisecond)
	last, _ := rec.Last()
	if len(last.Layers) != 1 || last.Layers[0] != "a" {
		t.Errorf("layers: expected [a], got %v", last.Layers)
	}
}

func TestEngineProbeFailureFallsBackToLow(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Probe(context.Background(), quality.HostSurfaceFunc(func() (quality.CapabilityInfo, error) {
		return quality.CapabilityInfo{}, errors.New("context lost")
	}))
	deadline := time.Now().Add(2 * time.Second)
	for e.Resolver() == nil && time.Now().Before(deadline) {
		e.Tick(time.Millisecond)
		time.Sleep(time.Millisecond)
	}
	if e.Resolver() == nil {
		t.Fatal("tier was never delivered")
	}
	if got := e.Resolver().Tier(); got != quality.TierLow {
		t.Errorf("Tier: expected %v, got %v", quality.TierLow, got)
	}
}

func TestEngineSelectBeforeTierPicksFirstScene(t *testing.T) {
	e, _ := newTestEngine(t)
	for _, id := range []string{"a", "b"} {
		if err := e.AddScene(fieldScene(id)); err != nil {
			t.Fatal(err)
		}
	}
	e.Select("b")
	e.Tick(time.Millisecond)
	e.Queue().Push(Event{Kind: EventTier, Tier: quality.TierMedium})
	e.Tick(time.Millisecond)

	if s := e.Stats(); s.Scene != "b" {
		t.Errorf("Scene: expected b, got %q", s.Scene)
	}
}

func TestEngineTransitionLayers(t *testing.T) {
	e, rec := newTestEngine(t, WithInitialTier(quality.TierLow), WithTransitionDuration(100*time.Millisecond))
	for _, id := range []string{"a", "b"} {
		if err := e.AddScene(fieldScene(id)); err != nil {
			t.Fatal(err)
		}
	}
	e.Tick(time.Millisecond)
	e.Next()
	e.Tick(10 * time.Millisecond)
	e.Tick(50 * time.Millisecond)

	last, _ := rec.Last()
	if len(last.Layers) != 2 {
		t.Fatalf("layers: expected 2, got %v", last.Layers)
	}
	if last.Layers[0] != "a" || last.Layers[1] != "b" {
		t.Errorf("layer order: expected [a b], got %v", last.Layers)
	}
	sum := last.Opacities[0] + last.Opacities[1]
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("opacity sum: expected 1, got %v", sum)
	}

	e.Tick(100 * time.Millisecond)
	if s := e.Stats(); s.Phase != scene.Active || s.Scene != "b" {
		t.Errorf("after transition: expected active b, got %v %q", s.Phase, s.Scene)
	}
}

func TestEngineResizeReevaluatesCeiling(t *testing.T) {
	e, rec := newTestEngine(t, WithInitialTier(quality.TierHigh))
	e.Tick(time.Millisecond)
	if got := e.Profile().ParticleCount; got != 50000 {
		t.Fatalf("ParticleCount: expected 50000, got %d", got)
	}

	e.Resize(3840, 2160)
	e.Tick(time.Millisecond)
	if got := e.Profile().ParticleCount; got != 35000 {
		t.Errorf("ParticleCount after resize: expected 35000, got %d", got)
	}
	if vp := rec.Viewport(); vp.Width != 3840 || vp.Height != 2160 {
		t.Errorf("Viewport: expected 3840x2160, got %dx%d", vp.Width, vp.Height)
	}

	e.Resize(0, 0)
	e.Tick(time.Millisecond)
	if vp := rec.Viewport(); vp.Width != 3840 {
		t.Errorf("zero resize should be ignored, got %dx%d", vp.Width, vp.Height)
	}
}

func TestEnginePulseReachesDominantScene(t *testing.T) {
	e, _ := newTestEngine(t, WithInitialTier(quality.TierLow))
	sc := fieldScene("a")
	if err := e.AddScene(sc); err != nil {
		t.Fatal(err)
	}
	e.Tick(time.Millisecond)
	e.Pulse(2)
	e.Tick(0)
	if got := sc.PulseStrength(); got != 2 {
		t.Errorf("PulseStrength: expected 2, got %v", got)
	}
}

func TestEngineShutdownIsIdempotent(t *testing.T) {
	e, rec := newTestEngine(t, WithInitialTier(quality.TierLow))
	if err := e.AddScene(fieldScene("a")); err != nil {
		t.Fatal(err)
	}
	e.Tick(time.Millisecond)

	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
	if n := e.Particles().Systems(); n != 0 {
		t.Errorf("Systems: expected 0, got %d", n)
	}
	if n := e.Shaders().Live(); n != 0 {
		t.Errorf("live shaders: expected 0, got %d", n)
	}
	total := rec.Total()
	e.Tick(time.Millisecond)
	if rec.Total() != total {
		t.Errorf("tick after shutdown submitted a frame")
	}
	if err := e.AddScene(fieldScene("b")); !errors.Is(err, ErrShutdown) {
		t.Errorf("AddScene after shutdown: expected ErrShutdown, got %v", err)
	}
}

func TestNewRejectsNilSubmitter(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil submitter")
	}
}
