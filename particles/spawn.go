package particles

import (
	"math/rand"

	"hero-engine/core"
	"hero-engine/math"
)

// Preset names accepted by SpawnerFor.
const (
	PresetShell  = "shell"
	PresetGalaxy = "galaxy"
	PresetField  = "field"
	PresetRing   = "ring"
)

func randRange(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}

func randUnit(rng *rand.Rand) math.Vec3 {
	// Uniform on the sphere via z and azimuth.
	z := randRange(rng, -1, 1)
	a := randRange(rng, 0, 2*math.Pi)
	r := math.Sqrt(1 - z*z)
	return math.Vec3{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z}
}

// Shell places particles on a sphere of the given radius with a slow
// tangential drift.
func Shell(radius float32, a, b core.Color) SpawnFunc {
	return func(_ int, rng *rand.Rand, p *Particle) {
		n := randUnit(rng)
		p.Position = n.Mul(radius * randRange(rng, 0.95, 1.05))
		tangent := n.Cross(math.Vec3Up).Normalize()
		p.Velocity = tangent.Mul(randRange(rng, 0.05, 0.3))
		p.Color = a.Lerp(b, rng.Float32())
		p.Scale = randRange(rng, 0.5, 1.5)
	}
}

// Galaxy scatters particles over a logarithmic spiral disc with the given
// number of arms.
func Galaxy(radius float32, arms int, inner, rim core.Color) SpawnFunc {
	if arms < 1 {
		arms = 1
	}
	return func(_ int, rng *rand.Rand, p *Particle) {
		r := radius * rng.Float32() * rng.Float32()
		arm := float32(rng.Intn(arms)) * 2 * math.Pi / float32(arms)
		angle := arm + r*1.2 + randRange(rng, -0.3, 0.3)
		p.Position = math.Vec3{
			X: r * math.Cos(angle),
			Y: randRange(rng, -0.15, 0.15) * (1 - r/radius),
			Z: r * math.Sin(angle),
		}
		orbit := math.Vec3{X: -math.Sin(angle), Z: math.Cos(angle)}
		p.Velocity = orbit.Mul(0.4 * (1 - r/radius))
		p.Color = inner.Lerp(rim, r/radius)
		p.Scale = randRange(rng, 0.4, 1.2)
	}
}

// Field fills a box uniformly with slow random drift.
func Field(b Bounds, c core.Color) SpawnFunc {
	return func(_ int, rng *rand.Rand, p *Particle) {
		p.Position = math.Vec3{
			X: randRange(rng, b.Min.X, b.Max.X),
			Y: randRange(rng, b.Min.Y, b.Max.Y),
			Z: randRange(rng, b.Min.Z, b.Max.Z),
		}
		p.Velocity = randUnit(rng).Mul(randRange(rng, 0.02, 0.2))
		p.Color = c
		p.Scale = randRange(rng, 0.3, 1)
	}
}

// Sparks emits short-lived particles from origin in all directions.
func Sparks(origin math.Vec3, speed, life float32, c core.Color) SpawnFunc {
	return func(_ int, rng *rand.Rand, p *Particle) {
		p.Position = origin
		p.Velocity = randUnit(rng).Mul(speed * randRange(rng, 0.5, 1))
		p.Color = c
		p.Scale = randRange(rng, 0.6, 1.4)
		p.Life = life * randRange(rng, 0.6, 1)
	}
}

// Ring lays slots out in order around a circle in the XZ plane: slot i of
// slots sits at angle 2πi/slots and drifts along the ring.
func Ring(radius float32, slots int, c core.Color) SpawnFunc {
	if slots < 1 {
		slots = 1
	}
	return func(index int, rng *rand.Rand, p *Particle) {
		angle := float32(index%slots) * 2 * math.Pi / float32(slots)
		p.Position = math.Vec3{X: radius * math.Cos(angle), Z: radius * math.Sin(angle)}
		p.Velocity = math.Vec3{X: -math.Sin(angle), Z: math.Cos(angle)}.Mul(0.1)
		p.Color = c
		p.Scale = randRange(rng, 0.6, 1)
	}
}

// SpawnerFor resolves a preset name. Unknown names fall back to Field.
func SpawnerFor(preset string, bounds Bounds, a, b core.Color) SpawnFunc {
	radius := bounds.Max.Sub(bounds.Min).Length() / 4
	switch preset {
	case PresetShell:
		return Shell(radius, a, b)
	case PresetGalaxy:
		return Galaxy(radius*1.5, 3, a, b)
	case PresetRing:
		return Ring(radius, 360, a)
	}
	return Field(bounds, a)
}
