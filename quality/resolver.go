package quality

import (
	"sync"

	"hero-engine/core"
)

// LargeViewportPixels is the pixel count above which the ceiling drops one
// downgrade step to pay for the extra fill rate.
const LargeViewportPixels = 1920 * 1080

// Resolver owns the live profile. Only the tick goroutine mutates it;
// any goroutine may read a copy through Current.
type Resolver struct {
	mu      sync.RWMutex
	tier    Tier
	ceiling Profile
	current Profile
	floor   int
	large   bool
}

// NewResolver starts at the tier's resolved profile. A floor above the
// tier's particle count raises the count to the floor.
func NewResolver(tier Tier, floor int) *Resolver {
	if floor <= 0 {
		floor = DefaultParticleFloor
	}
	p := ceilingFor(tier, false, floor)
	return &Resolver{
		tier:    tier,
		ceiling: p,
		current: p,
		floor:   floor,
	}
}

func (r *Resolver) Tier() Tier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tier
}

// Current returns a copy of the live profile.
func (r *Resolver) Current() Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Ceiling returns the best profile the live profile may reach.
func (r *Resolver) Ceiling() Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ceiling
}

// StepDown applies one downgrade and reports whether anything changed.
func (r *Resolver) StepDown() (Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := Downgrade(r.current, r.floor)
	changed := next != r.current
	r.current = next
	if changed {
		core.Logger().Info("quality downgraded",
			"particles", next.ParticleCount,
			"shadow", next.ShadowResolution,
			"bloom", next.BloomEnabled,
			"reflections", next.ReflectionsEnabled)
	}
	return next, changed
}

// StepUp applies one upgrade bounded by the ceiling.
func (r *Resolver) StepUp() (Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := Upgrade(r.current, r.ceiling)
	changed := next != r.current
	r.current = next
	if changed {
		core.Logger().Info("quality upgraded",
			"particles", next.ParticleCount,
			"shadow", next.ShadowResolution,
			"bloom", next.BloomEnabled,
			"reflections", next.ReflectionsEnabled)
	}
	return next, changed
}

// Reevaluate recomputes the ceiling for a viewport of the given pixel count.
// It reports true when the threshold was crossed. The live profile is clamped
// down to a lowered ceiling; a raised ceiling leaves it for the monitor to
// climb.
func (r *Resolver) Reevaluate(pixels int) bool {
	large := pixels > LargeViewportPixels

	r.mu.Lock()
	defer r.mu.Unlock()
	if large == r.large {
		return false
	}
	r.large = large
	r.ceiling = ceilingFor(r.tier, large, r.floor)
	r.current = clamp(r.current, r.ceiling)
	core.Logger().Info("quality ceiling re-evaluated", "pixels", pixels, "large", large)
	return true
}

func ceilingFor(tier Tier, large bool, floor int) Profile {
	p := Resolve(tier)
	if large {
		p = Downgrade(p, floor)
	}
	if p.ParticleCount < floor {
		p.ParticleCount = floor
	}
	return p
}

func clamp(p, ceiling Profile) Profile {
	out := p
	if out.ParticleCount > ceiling.ParticleCount {
		out.ParticleCount = ceiling.ParticleCount
	}
	if out.ShadowResolution > ceiling.ShadowResolution {
		out.ShadowResolution = ceiling.ShadowResolution
	}
	if !ceiling.BloomEnabled {
		out.BloomEnabled = false
	}
	if !ceiling.ReflectionsEnabled {
		out.ReflectionsEnabled = false
	}
	if out.MaxLODLevel > ceiling.MaxLODLevel {
		out.MaxLODLevel = ceiling.MaxLODLevel
	}
	return out
}
