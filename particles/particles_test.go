package particles

import (
	"math/rand"
	"testing"

	"hero-engine/core"
	"hero-engine/math"
)

func at(pos math.Vec3, vel math.Vec3) SpawnFunc {
	return func(_ int, rng *rand.Rand, p *Particle) {
		p.Position = pos
		p.Velocity = vel
		p.Scale = 1
	}
}

func TestSpawnSaturates(t *testing.T) {
	m := NewManager()
	s := m.Create(50, DefaultOptions())
	if got := m.Spawn(s, 45, nil); got != 45 {
		t.Fatalf("initial spawn: expected 45, got %d", got)
	}

	got := m.Spawn(s, 20, nil)
	if got != 5 {
		t.Errorf("expected 5 fulfilled, got %d", got)
	}
	if s.LiveCount() != 50 {
		t.Errorf("expected live count 50, got %d", s.LiveCount())
	}
	if s.Dropped != 15 {
		t.Errorf("expected 15 dropped, got %d", s.Dropped)
	}
	if got := m.Spawn(s, 3, nil); got != 0 || s.LiveCount() != 50 {
		t.Errorf("full system: expected no-op, got %d spawned, live %d", got, s.LiveCount())
	}
}

func TestLiveCountNeverExceedsCapacity(t *testing.T) {
	m := NewManager()
	opts := DefaultOptions()
	opts.Boundary = BoundaryKill
	s := m.Create(64, opts)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		s.Spawn(rng.Intn(40), Sparks(math.Vec3Zero, 30, 0.5, core.ColorWhite))
		s.Step(1.0/60, nil)
		if s.LiveCount() > s.Capacity() {
			t.Fatalf("frame %d: live %d > capacity %d", i, s.LiveCount(), s.Capacity())
		}
	}
}

func TestStepIntegratesWithFriction(t *testing.T) {
	m := NewManager()
	s := m.Create(1, DefaultOptions())
	s.Spawn(1, at(math.Vec3Zero, math.Vec3{X: 1}))

	s.Step(1, nil)
	pos := math.Vec3At(s.Position, 0)
	vel := math.Vec3At(s.Velocity, 0)
	if vel.X != 0.99 {
		t.Errorf("velocity: expected 0.99, got %v", vel.X)
	}
	if pos.X != 0.99 {
		t.Errorf("position: expected 0.99, got %v", pos.X)
	}
}

func TestStepDeterministic(t *testing.T) {
	run := func() []float32 {
		m := NewManager()
		opts := DefaultOptions()
		opts.Seed = 42
		s := m.Create(500, opts)
		s.Spawn(500, Galaxy(5, 3, core.ColorWhite, core.ColorBlack))
		field := Attract(math.Vec3{X: 1}, 4, 6)
		for i := 0; i < 30; i++ {
			s.Step(1.0/60, field)
		}
		return append([]float32(nil), s.Position...)
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestBoundaryWrap(t *testing.T) {
	m := NewManager()
	s := m.Create(1, DefaultOptions())
	s.Spawn(1, at(math.Vec3{X: 9.9}, math.Vec3{X: 10}))
	s.Step(0.1, nil)
	if s.LiveCount() != 1 {
		t.Fatalf("wrap: expected particle to survive, live %d", s.LiveCount())
	}
	x := s.Position[0]
	if x >= 0 {
		t.Errorf("wrap: expected particle on the negative side, got x=%v", x)
	}
}

func TestBoundaryKillFreesSlot(t *testing.T) {
	m := NewManager()
	opts := DefaultOptions()
	opts.Boundary = BoundaryKill
	s := m.Create(2, opts)
	s.Spawn(2, at(math.Vec3{X: 9.9}, math.Vec3{X: 10}))
	s.Step(0.1, nil)
	if s.LiveCount() != 0 {
		t.Fatalf("kill: expected 0 live, got %d", s.LiveCount())
	}
	if s.Scale[0] != 0 || s.Scale[1] != 0 {
		t.Errorf("kill: expected dead slots hidden, scales %v", s.Scale)
	}
	if got := s.Spawn(2, nil); got != 2 {
		t.Errorf("expected freed slots to be reused, spawned %d", got)
	}
}

func TestSpawnPassesClaimedSlot(t *testing.T) {
	m := NewManager()
	s := m.Create(8, DefaultOptions())
	var seen []int
	s.Spawn(8, func(index int, rng *rand.Rand, p *Particle) {
		seen = append(seen, index)
		p.Position = math.Vec3{X: float32(index)}
		p.Scale = 1
	})
	if len(seen) != 8 {
		t.Fatalf("expected 8 calls, got %d", len(seen))
	}
	for _, i := range seen {
		if !s.Alive(i) {
			t.Errorf("slot %d: expected alive", i)
		}
		if got := s.Position[i*3]; got != float32(i) {
			t.Errorf("slot %d: expected x %d, got %v", i, i, got)
		}
	}

	// Killed slots are handed back to the spawner by index.
	s.kill(seen[3])
	var again []int
	s.Spawn(1, func(index int, rng *rand.Rand, p *Particle) { again = append(again, index) })
	if len(again) != 1 || again[0] != seen[3] {
		t.Errorf("reuse: expected slot %d, got %v", seen[3], again)
	}
}

func TestRingPlacesBySlot(t *testing.T) {
	m := NewManager()
	s := m.Create(4, DefaultOptions())
	s.Spawn(4, Ring(2, 4, core.ColorWhite))
	for i := 0; i < 4; i++ {
		p := math.Vec3At(s.Position, i*3)
		want := math.Vec3{X: 2 * math.Cos(float32(i)*math.Pi/2), Z: 2 * math.Sin(float32(i)*math.Pi/2)}
		if p.Distance(want) > 1e-4 {
			t.Errorf("slot %d: expected %v, got %v", i, want, p)
		}
	}
}

func TestLifetimeExpires(t *testing.T) {
	m := NewManager()
	s := m.Create(10, DefaultOptions())
	s.Spawn(10, func(_ int, rng *rand.Rand, p *Particle) {
		p.Scale = 2
		p.Life = 1
	})
	s.Step(0.5, nil)
	if s.Scale[0] != 1 {
		t.Errorf("half life: expected scale 1, got %v", s.Scale[0])
	}
	s.Step(0.6, nil)
	if s.LiveCount() != 0 {
		t.Errorf("expected all expired, live %d", s.LiveCount())
	}
}

func TestForceField(t *testing.T) {
	attract := Attract(math.Vec3Zero, 2, 4)
	a := attract.Accel(math.Vec3{X: 2})
	if a.X != -1 {
		t.Errorf("attract at half radius: expected -1, got %v", a.X)
	}
	if got := attract.Accel(math.Vec3{X: 5}); got != math.Vec3Zero {
		t.Errorf("outside radius: expected zero, got %v", got)
	}
	repel := Repel(math.Vec3Zero, 2, 0)
	if got := repel.Accel(math.Vec3{Y: 3}); got.Y != 2 {
		t.Errorf("repel: expected +2, got %v", got)
	}
	sum := Combine(Uniform(math.Vec3{Y: -1}), nil, repel)
	if got := sum.Accel(math.Vec3{Y: 3}); got.Y != 1 {
		t.Errorf("combined: expected 1, got %v", got)
	}
	if Combine(nil, nil) != nil {
		t.Error("expected nil for empty combine")
	}
}

func TestSetCeilingInPlace(t *testing.T) {
	m := NewManager()
	s := m.Create(100, DefaultOptions())
	s.Spawn(100, nil)
	buf := &s.Position[0]

	s.SetCeiling(70)
	if s.LiveCount() != 70 {
		t.Errorf("expected 70 live after lowering ceiling, got %d", s.LiveCount())
	}
	if s.HighWater() > 70 {
		t.Errorf("expected high water <= 70, got %d", s.HighWater())
	}
	if got := s.Spawn(10, nil); got != 0 {
		t.Errorf("at ceiling: expected 0 spawned, got %d", got)
	}
	s.SetCeiling(100)
	if got := s.Spawn(50, nil); got != 30 {
		t.Errorf("raised ceiling: expected 30 spawned, got %d", got)
	}
	if &s.Position[0] != buf {
		t.Error("ceiling change reallocated buffers")
	}
}

func TestDestroyIdempotent(t *testing.T) {
	m := NewManager()
	s := m.Create(10, DefaultOptions())
	s.Spawn(5, nil)
	m.Destroy(s)
	m.Destroy(s)
	if m.Systems() != 0 {
		t.Errorf("expected 0 systems, got %d", m.Systems())
	}
	if s.Spawn(1, nil) != 0 || s.Alive(0) {
		t.Error("destroyed system still usable")
	}
	s.Step(1, nil)
}
