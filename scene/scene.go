package scene

import (
	"fmt"
	"time"

	"hero-engine/core"
	"hero-engine/lod"
	"hero-engine/math"
	"hero-engine/particles"
	"hero-engine/quality"
	"hero-engine/shader"
)

// Resources are handed to a scene's Builder on first activation.
type Resources struct {
	Particles *particles.Manager
	Shaders   *shader.Registry
	Profile   quality.Profile // live profile at build time
	Ceiling   quality.Profile // best profile this session may reach
}

// Builder creates a scene's particle systems, materials and objects.
// It runs once, the first time the scene becomes visible.
type Builder func(sc *Scene, res Resources) error

// Emitter binds a particle system to its material and keeps it populated.
type Emitter struct {
	System   *particles.System
	Material *shader.Instance
	Spawn    particles.SpawnFunc
	Share    float32                // fraction of the profile's particle count
	Rate     float32                // particles per second; 0 refills to the ceiling immediately
	Ambient  *particles.ForceField // always-on field (drift, gravity)

	accum float32
}

// Ceiling is the emitter's slice of a profile's particle budget.
func (e *Emitter) Ceiling(p quality.Profile) int {
	return int(float32(p.ParticleCount) * e.Share)
}

// Scene is one hero composition. Resources persist once built and are
// released only by Destroy.
type Scene struct {
	ID                 string
	TransitionDuration time.Duration // 0 uses the orchestrator default
	Dwell              time.Duration // auto-advance after this long; 0 disables
	Build              Builder

	Background *shader.Instance // fullscreen material drawn first, may be nil
	Emitters   []*Emitter
	Objects    []*lod.Object
	Camera     Camera
	Pointer    Pointer

	PointerExtent   math.Vec2 // half-size of the pointer plane in world units
	PointerStrength float32
	PointerRadius   float32
	PulseRadius     float32
	PulseDecay      float32 // fraction of pulse strength lost per second

	ClearColor core.Color

	built     bool
	destroyed bool
	pulse     float32
	res       Resources
	materials []*shader.Instance
}

// New returns a scene with default camera and pointer tuning.
func New(id string, build Builder) *Scene {
	return &Scene{
		ID:              id,
		Build:           build,
		Camera:          DefaultCamera(),
		Pointer:         newPointer(),
		PointerExtent:   math.Vec2{X: 8, Y: 4.5},
		PointerStrength: 6,
		PointerRadius:   5,
		PulseRadius:     12,
		PulseDecay:      4,
		ClearColor:      core.RGB(4, 4, 12),
	}
}

func (sc *Scene) Built() bool { return sc.built }

func (sc *Scene) Destroyed() bool { return sc.destroyed }

// ensureBuilt runs Build once. A failing builder leaves the scene empty but
// marked built so it is not retried every frame.
func (sc *Scene) ensureBuilt(res Resources) {
	if sc.built || sc.destroyed {
		return
	}
	sc.built = true
	sc.res = res
	if sc.Build != nil {
		if err := sc.Build(sc, res); err != nil {
			core.Logger().Warn("scene build failed", "scene", sc.ID, "err", err)
		}
	}
	for _, e := range sc.Emitters {
		if e.System == nil {
			continue
		}
		e.System.SetCeiling(e.Ceiling(res.Profile))
		if e.Rate == 0 {
			e.System.Spawn(e.System.Ceiling()-e.System.LiveCount(), e.Spawn)
		}
	}
	sc.materials = sc.collectMaterials()
	core.Logger().Info("scene built", "scene", sc.ID, "emitters", len(sc.Emitters), "objects", len(sc.Objects))
}

// AddEmitter creates a system sized for the session's best profile and
// registers it with the scene.
func (sc *Scene) AddEmitter(res Resources, share float32, opts particles.Options, spawn particles.SpawnFunc, material *shader.Instance) *Emitter {
	capacity := int(float32(res.Ceiling.ParticleCount) * share)
	e := &Emitter{
		System:   res.Particles.Create(capacity, opts),
		Material: material,
		Spawn:    spawn,
		Share:    share,
	}
	sc.Emitters = append(sc.Emitters, e)
	return e
}

// ApplyProfile resizes every emitter's live ceiling in place.
func (sc *Scene) ApplyProfile(p quality.Profile) {
	if !sc.built || sc.destroyed {
		return
	}
	for _, e := range sc.Emitters {
		if e.System != nil {
			e.System.SetCeiling(e.Ceiling(p))
		}
	}
}

// HandlePointer routes an event to this scene's pointer state.
func (sc *Scene) HandlePointer(ev PointerEvent) {
	sc.Pointer.Handle(ev)
}

// Pulse adds a radial burst that decays over time, used for beat reactions.
func (sc *Scene) Pulse(strength float32) {
	sc.pulse += strength
}

// PulseStrength is the current burst strength.
func (sc *Scene) PulseStrength() float32 { return sc.pulse }

// Field is the combined force applied to this scene's particles this frame.
func (sc *Scene) Field(e *Emitter) *particles.ForceField {
	var burst *particles.ForceField
	if sc.pulse > 0.01 {
		burst = particles.Repel(sc.Camera.Target, sc.pulse, sc.PulseRadius)
	}
	return particles.Combine(e.Ambient, sc.Pointer.Field(sc.PointerExtent, sc.PointerStrength, sc.PointerRadius), burst)
}

// Update advances pointer smoothing, camera, pulse decay and objects.
func (sc *Scene) Update(dt float32) {
	if !sc.built || sc.destroyed {
		return
	}
	sc.Pointer.Update(dt)
	sc.Camera.Update(dt, sc.Pointer.Smoothed)
	sc.pulse -= sc.pulse * math.Clamp(sc.PulseDecay*dt, 0, 1)
	for _, o := range sc.Objects {
		o.Update(dt)
	}
}

// StepParticles refills and integrates every emitter.
func (sc *Scene) StepParticles(dt float32) {
	if !sc.built || sc.destroyed {
		return
	}
	for _, e := range sc.Emitters {
		s := e.System
		if s == nil {
			continue
		}
		missing := s.Ceiling() - s.LiveCount()
		if missing > 0 {
			if e.Rate > 0 {
				e.accum += e.Rate * dt
				n := int(e.accum)
				e.accum -= float32(n)
				if n > missing {
					n = missing
				}
				s.Spawn(n, e.Spawn)
			} else {
				s.Spawn(missing, e.Spawn)
			}
		}
		s.Step(dt, sc.Field(e))
	}
}

// AdvanceShaders moves every material clock forward and feeds the pointer
// to materials that take one.
func (sc *Scene) AdvanceShaders(dt float32) {
	if !sc.built || sc.destroyed {
		return
	}
	pointer := math.Vec3{X: sc.Pointer.Smoothed.X, Y: 1 - sc.Pointer.Smoothed.Y, Z: sc.Pointer.Hover}
	for _, in := range sc.Materials() {
		in.AdvanceTime(dt)
		if _, ok := in.Uniform("uPointer"); ok {
			_ = in.SetVec3("uPointer", pointer)
		}
	}
}

// Materials lists every distinct shader instance the scene draws with. Once
// built the list is fixed and shared; callers must not modify it.
func (sc *Scene) Materials() []*shader.Instance {
	if sc.built {
		return sc.materials
	}
	return sc.collectMaterials()
}

func (sc *Scene) collectMaterials() []*shader.Instance {
	seen := make(map[*shader.Instance]bool)
	var out []*shader.Instance
	add := func(in *shader.Instance) {
		if in != nil && !seen[in] {
			seen[in] = true
			out = append(out, in)
		}
	}
	add(sc.Background)
	for _, e := range sc.Emitters {
		add(e.Material)
	}
	for _, o := range sc.Objects {
		for _, entry := range o.Entries {
			add(entry.Representation.Material)
		}
	}
	return out
}

// LiveParticles sums live particles across emitters.
func (sc *Scene) LiveParticles() int {
	n := 0
	for _, e := range sc.Emitters {
		if e.System != nil {
			n += e.System.LiveCount()
		}
	}
	return n
}

// Destroy releases particle systems and materials. Safe to call twice.
func (sc *Scene) Destroy() {
	if sc.destroyed {
		return
	}
	sc.destroyed = true
	if !sc.built {
		return
	}
	for _, in := range sc.Materials() {
		if sc.res.Shaders != nil {
			sc.res.Shaders.Destroy(in)
		}
	}
	for _, e := range sc.Emitters {
		if sc.res.Particles != nil && e.System != nil {
			sc.res.Particles.Destroy(e.System)
		}
	}
	core.Logger().Debug("scene destroyed", "scene", sc.ID)
}

func (sc *Scene) String() string {
	return fmt.Sprintf("scene(%s)", sc.ID)
}
