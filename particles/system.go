package particles

import (
	"fmt"
	"math/rand"

	"hero-engine/core"
	"hero-engine/math"
)

// BoundaryPolicy decides what happens to a particle leaving Bounds.
type BoundaryPolicy int

const (
	BoundaryWrap BoundaryPolicy = iota // re-enter from the opposite face
	BoundaryKill                       // free the slot
)

func (b BoundaryPolicy) String() string {
	switch b {
	case BoundaryWrap:
		return "wrap"
	case BoundaryKill:
		return "kill"
	}
	return fmt.Sprintf("boundary(%d)", int(b))
}

func (b BoundaryPolicy) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BoundaryPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "wrap", "":
		*b = BoundaryWrap
	case "kill":
		*b = BoundaryKill
	default:
		return fmt.Errorf("unknown boundary policy %q", text)
	}
	return nil
}

// DefaultFriction is the per-step velocity damping factor.
const DefaultFriction = 0.99

type Bounds struct {
	Min, Max math.Vec3
}

func (b Bounds) Contains(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y &&
		p.Z >= b.Min.Z && p.Z < b.Max.Z
}

// Options configure a System at creation.
type Options struct {
	Bounds   Bounds
	Boundary BoundaryPolicy
	Friction float32 // velocity multiplier per step; 0 means DefaultFriction
	Seed     int64
}

func DefaultOptions() Options {
	return Options{
		Bounds: Bounds{
			Min: math.Vec3{X: -10, Y: -10, Z: -10},
			Max: math.Vec3{X: 10, Y: 10, Z: 10},
		},
		Boundary: BoundaryWrap,
		Friction: DefaultFriction,
		Seed:     1,
	}
}

// Particle is the spawn-time description written by a SpawnFunc.
type Particle struct {
	Position math.Vec3
	Velocity math.Vec3
	Color    core.Color
	Scale    float32
	Life     float32 // seconds; 0 lives until killed by the boundary
}

// SpawnFunc fills p for a newly claimed slot.
type SpawnFunc func(index int, rng *rand.Rand, p *Particle)

// System is a fixed-capacity particle pool in struct-of-arrays layout.
// Position, Color and Velocity hold 3 floats per slot, Scale one. Dead slots
// keep Scale 0 so a renderer can upload [0, HighWater) without compaction.
type System struct {
	Position []float32
	Color    []float32
	Scale    []float32
	Velocity []float32

	life      []float32
	maxLife   []float32
	baseScale []float32
	alive     []bool
	free      []int

	capacity  int
	ceiling   int
	liveCount int
	highWater int

	// Dropped counts spawn requests that could not be fulfilled.
	Dropped int

	opts      Options
	rng       *rand.Rand
	destroyed bool
}

func newSystem(capacity int, opts Options) *System {
	if capacity < 0 {
		capacity = 0
	}
	if opts.Friction == 0 {
		opts.Friction = DefaultFriction
	}
	s := &System{
		Position:  make([]float32, capacity*3),
		Color:     make([]float32, capacity*3),
		Scale:     make([]float32, capacity),
		Velocity:  make([]float32, capacity*3),
		life:      make([]float32, capacity),
		maxLife:   make([]float32, capacity),
		baseScale: make([]float32, capacity),
		alive:     make([]bool, capacity),
		free:      make([]int, 0, capacity),
		capacity:  capacity,
		ceiling:   capacity,
		opts:      opts,
		rng:       rand.New(rand.NewSource(opts.Seed)),
	}
	s.rebuildFree()
	return s
}

func (s *System) Capacity() int { return s.capacity }

func (s *System) LiveCount() int { return s.liveCount }

// Ceiling is the live-count limit set by the quality profile.
func (s *System) Ceiling() int { return s.ceiling }

// HighWater is one past the highest slot that may be alive.
func (s *System) HighWater() int { return s.highWater }

func (s *System) Options() Options { return s.opts }

func (s *System) Destroyed() bool { return s.destroyed }

// Alive reports whether slot i holds a live particle.
func (s *System) Alive(i int) bool {
	return !s.destroyed && i >= 0 && i < s.capacity && s.alive[i]
}

// Spawn claims up to count free slots and fills each through fn. It never
// exceeds the ceiling; the shortfall is added to Dropped. Returns the number
// spawned.
func (s *System) Spawn(count int, fn SpawnFunc) int {
	if s.destroyed || count <= 0 {
		return 0
	}
	room := s.ceiling - s.liveCount
	n := count
	if n > room {
		n = room
	}
	if n > len(s.free) {
		n = len(s.free)
	}
	if n < 0 {
		n = 0
	}
	if short := count - n; short > 0 {
		s.Dropped += short
		core.Logger().Debug("particle spawn saturated", "requested", count, "spawned", n, "live", s.liveCount)
	}

	var p Particle
	for k := 0; k < n; k++ {
		slot := s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]

		p = Particle{Color: core.ColorWhite, Scale: 1}
		if fn != nil {
			fn(slot, s.rng, &p)
		}
		s.write(slot, p)
	}
	return n
}

func (s *System) write(i int, p Particle) {
	p.Position.Slice(s.Position, i*3)
	p.Velocity.Slice(s.Velocity, i*3)
	s.Color[i*3] = p.Color.R
	s.Color[i*3+1] = p.Color.G
	s.Color[i*3+2] = p.Color.B
	s.Scale[i] = p.Scale
	s.baseScale[i] = p.Scale
	s.life[i] = p.Life
	s.maxLife[i] = p.Life
	s.alive[i] = true
	s.liveCount++
	if i+1 > s.highWater {
		s.highWater = i + 1
	}
}

func (s *System) kill(i int) {
	if !s.alive[i] {
		return
	}
	s.alive[i] = false
	s.Scale[i] = 0
	s.Velocity[i*3] = 0
	s.Velocity[i*3+1] = 0
	s.Velocity[i*3+2] = 0
	s.liveCount--
	if i < s.ceiling {
		s.free = append(s.free, i)
	}
}

// Step advances every live particle by dt seconds: force, friction,
// integration, lifetime, boundary. One pass over [0, HighWater).
func (s *System) Step(dt float32, field *ForceField) {
	if s.destroyed || dt <= 0 {
		return
	}
	friction := s.opts.Friction
	bounds := s.opts.Bounds
	top := 0
	for i := 0; i < s.highWater; i++ {
		if !s.alive[i] {
			continue
		}
		j := i * 3
		pos := math.Vec3At(s.Position, j)
		vel := math.Vec3At(s.Velocity, j)

		if field != nil {
			vel = vel.Add(field.Accel(pos).Mul(dt))
		}
		vel = vel.Mul(friction)
		pos = pos.Add(vel.Mul(dt))

		if s.maxLife[i] > 0 {
			s.life[i] -= dt
			if s.life[i] <= 0 {
				s.kill(i)
				continue
			}
			s.Scale[i] = s.baseScale[i] * (s.life[i] / s.maxLife[i])
		}

		if !bounds.Contains(pos) {
			if s.opts.Boundary == BoundaryKill {
				s.kill(i)
				continue
			}
			pos.X = math.Wrap(pos.X, bounds.Min.X, bounds.Max.X)
			pos.Y = math.Wrap(pos.Y, bounds.Min.Y, bounds.Max.Y)
			pos.Z = math.Wrap(pos.Z, bounds.Min.Z, bounds.Max.Z)
		}

		pos.Slice(s.Position, j)
		vel.Slice(s.Velocity, j)
		top = i + 1
	}
	s.highWater = top
}

// SetCeiling changes the live-count limit in place. Lowering it kills
// particles in slots at or above the new ceiling; buffers are never
// reallocated. Values are clamped to [0, Capacity].
func (s *System) SetCeiling(n int) {
	if s.destroyed {
		return
	}
	if n < 0 {
		n = 0
	}
	if n > s.capacity {
		n = s.capacity
	}
	if n == s.ceiling {
		return
	}
	if n < s.ceiling {
		for i := n; i < s.highWater; i++ {
			s.kill(i)
		}
		if s.highWater > n {
			s.highWater = n
		}
	}
	s.ceiling = n
	s.rebuildFree()
}

// rebuildFree lists dead slots below the ceiling, lowest slot on top of the
// stack so spawns pack toward the start of the buffers.
func (s *System) rebuildFree() {
	s.free = s.free[:0]
	for i := s.ceiling - 1; i >= 0; i-- {
		if !s.alive[i] {
			s.free = append(s.free, i)
		}
	}
}

// Clear kills every particle.
func (s *System) Clear() {
	for i := 0; i < s.highWater; i++ {
		s.kill(i)
	}
	s.highWater = 0
	s.rebuildFree()
}

func (s *System) destroy() {
	s.destroyed = true
	s.Position = nil
	s.Color = nil
	s.Scale = nil
	s.Velocity = nil
	s.life = nil
	s.maxLife = nil
	s.baseScale = nil
	s.alive = nil
	s.free = nil
	s.liveCount = 0
	s.highWater = 0
}
