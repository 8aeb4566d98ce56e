package scene

import (
	"hero-engine/math"
	"hero-engine/particles"
)

// PointerKind distinguishes pointer events.
type PointerKind int

const (
	PointerMove PointerKind = iota
	PointerDown
	PointerUp
	PointerLeave
)

// PointerEvent carries a position in normalized [0,1] window coordinates,
// origin top-left.
type PointerEvent struct {
	X, Y float32
	Kind PointerKind
}

// Pointer is the per-scene interaction state. Only the dominant scene
// receives events.
type Pointer struct {
	Target   math.Vec2 // last reported position
	Smoothed math.Vec2 // eased position used for effects
	Hover    float32   // 0..1, rises while the pointer is inside
	Pressed  bool

	inside bool
}

func newPointer() Pointer {
	c := math.Vec2{X: 0.5, Y: 0.5}
	return Pointer{Target: c, Smoothed: c}
}

func (p *Pointer) Handle(ev PointerEvent) {
	switch ev.Kind {
	case PointerMove:
		p.Target = math.Vec2{X: ev.X, Y: ev.Y}
		p.inside = true
	case PointerDown:
		p.Target = math.Vec2{X: ev.X, Y: ev.Y}
		p.Pressed = true
		p.inside = true
	case PointerUp:
		p.Pressed = false
	case PointerLeave:
		p.inside = false
		p.Pressed = false
	}
}

// Update eases Smoothed and Hover toward their targets.
func (p *Pointer) Update(dt float32) {
	k := math.Clamp(dt*8, 0, 1)
	p.Smoothed = p.Smoothed.Lerp(p.Target, k)
	want := float32(0)
	if p.inside {
		want = 1
	}
	p.Hover = math.Lerp(p.Hover, want, math.Clamp(dt*4, 0, 1))
}

// World maps the smoothed pointer onto the z=0 plane spanning extent.
func (p *Pointer) World(extent math.Vec2) math.Vec3 {
	return math.Vec3{
		X: (p.Smoothed.X - 0.5) * 2 * extent.X,
		Y: (0.5 - p.Smoothed.Y) * 2 * extent.Y,
	}
}

// Field returns the pointer's force on particles: attraction while hovering,
// a stronger pull while pressed. Nil when the pointer is away.
func (p *Pointer) Field(extent math.Vec2, strength, radius float32) *particles.ForceField {
	if p.Hover < 0.01 {
		return nil
	}
	s := strength * p.Hover
	if p.Pressed {
		s *= 3
	}
	return particles.Attract(p.World(extent), s, radius)
}
