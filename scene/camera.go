package scene

import (
	"hero-engine/math"
)

// Camera is a perspective camera that slowly orbits its target and leans
// toward the pointer for parallax.
type Camera struct {
	Target     math.Vec3
	Distance   float32
	Height     float32
	OrbitSpeed float32 // radians per second
	Parallax   float32 // world units of eye offset at full pointer deflection
	FOV        float32 // radians
	Near, Far  float32

	angle float32
	lean  math.Vec2
}

func DefaultCamera() Camera {
	return Camera{
		Distance:   12,
		Height:     2,
		OrbitSpeed: 0.05,
		Parallax:   0.8,
		FOV:        math.Pi / 4,
		Near:       0.1,
		Far:        200,
	}
}

// Update advances the orbit and eases the parallax lean toward pointer,
// given in normalized [0,1] window coordinates.
func (c *Camera) Update(dt float32, pointer math.Vec2) {
	c.angle += c.OrbitSpeed * dt
	want := math.Vec2{X: (pointer.X - 0.5) * 2, Y: (0.5 - pointer.Y) * 2}
	c.lean = c.lean.Lerp(want, math.Clamp(dt*3, 0, 1))
}

func (c *Camera) Eye() math.Vec3 {
	eye := math.Vec3{
		X: c.Distance * math.Sin(c.angle),
		Y: c.Height,
		Z: c.Distance * math.Cos(c.angle),
	}
	eye.X += c.lean.X * c.Parallax
	eye.Y += c.lean.Y * c.Parallax
	return c.Target.Add(eye)
}

func (c *Camera) View() math.Mat4 {
	return math.Mat4LookAt(c.Eye(), c.Target, math.Vec3Up)
}

func (c *Camera) Projection(aspect float32) math.Mat4 {
	return math.Mat4Perspective(c.FOV, aspect, c.Near, c.Far)
}
