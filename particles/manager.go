package particles

import "hero-engine/core"

// Manager creates particle systems and releases them. Systems are kept until
// Destroy or DestroyAll; the manager never frees one on its own.
type Manager struct {
	systems []*System
	nextID  int64
}

func NewManager() *Manager {
	return &Manager{}
}

// Create allocates a system with capacity slots. The buffers are sized once
// and never grow.
func (m *Manager) Create(capacity int, opts Options) *System {
	if opts.Seed == 0 {
		m.nextID++
		opts.Seed = m.nextID
	}
	s := newSystem(capacity, opts)
	m.systems = append(m.systems, s)
	core.Logger().Debug("particle system created", "capacity", capacity, "boundary", opts.Boundary)
	return s
}

// Spawn forwards to s.Spawn.
func (m *Manager) Spawn(s *System, count int, fn SpawnFunc) int {
	return s.Spawn(count, fn)
}

// Step advances s by dt under field.
func (m *Manager) Step(s *System, dt float32, field *ForceField) {
	s.Step(dt, field)
}

// Destroy releases s. Calling it again is a no-op.
func (m *Manager) Destroy(s *System) {
	if s == nil || s.destroyed {
		return
	}
	s.destroy()
	for i, cur := range m.systems {
		if cur == s {
			m.systems = append(m.systems[:i], m.systems[i+1:]...)
			break
		}
	}
}

// DestroyAll releases every system created by m.
func (m *Manager) DestroyAll() {
	for _, s := range m.systems {
		s.destroy()
	}
	m.systems = nil
}

// Systems returns the number of live systems.
func (m *Manager) Systems() int {
	return len(m.systems)
}

// TotalLive sums live particles across every system.
func (m *Manager) TotalLive() int {
	n := 0
	for _, s := range m.systems {
		n += s.liveCount
	}
	return n
}

// TotalDropped sums the saturation counters.
func (m *Manager) TotalDropped() int {
	n := 0
	for _, s := range m.systems {
		n += s.Dropped
	}
	return n
}
