package quality

// Profile is the set of quality knobs consumed by the particle, shadow,
// post-process and LOD stages. Always passed by value.
type Profile struct {
	ParticleCount      int  `json:"particleCount"`
	ShadowResolution   int  `json:"shadowResolution"`
	BloomEnabled       bool `json:"bloom"`
	ReflectionsEnabled bool `json:"reflections"`
	MaxLODLevel        int  `json:"maxLodLevel"`
}

const (
	// DefaultParticleFloor is the particle count downgrades never go below.
	DefaultParticleFloor = 1000
	// MinShadowResolution is the smallest shadow map a downgrade produces.
	MinShadowResolution = 256

	downgradeFactor = 0.7
)

var profiles = [...]Profile{
	TierLow:    {ParticleCount: 10000, ShadowResolution: 512, BloomEnabled: false, ReflectionsEnabled: false, MaxLODLevel: 1},
	TierMedium: {ParticleCount: 25000, ShadowResolution: 1024, BloomEnabled: true, ReflectionsEnabled: false, MaxLODLevel: 2},
	TierHigh:   {ParticleCount: 50000, ShadowResolution: 2048, BloomEnabled: true, ReflectionsEnabled: true, MaxLODLevel: 3},
}

// Resolve maps a tier to its profile. Same tier, same profile.
// Out-of-range tiers resolve to the Low row.
func Resolve(tier Tier) Profile {
	if tier < TierLow || tier > TierHigh {
		return profiles[TierLow]
	}
	return profiles[tier]
}

// Downgrade cuts the particle budget by 30% (never below floor) and disables
// the first still-enabled feature in the order reflections, bloom, shadow
// resolution. At the minimum viable profile it returns p unchanged.
func Downgrade(p Profile, floor int) Profile {
	if floor <= 0 {
		floor = DefaultParticleFloor
	}
	next := p
	if next.ParticleCount > floor {
		next.ParticleCount = int(float64(next.ParticleCount) * downgradeFactor)
		if next.ParticleCount < floor {
			next.ParticleCount = floor
		}
	}

	switch {
	case next.ReflectionsEnabled:
		next.ReflectionsEnabled = false
	case next.BloomEnabled:
		next.BloomEnabled = false
	case next.ShadowResolution > MinShadowResolution:
		next.ShadowResolution /= 2
		if next.ShadowResolution < MinShadowResolution {
			next.ShadowResolution = MinShadowResolution
		}
	}
	return next
}

// Upgrade is the inverse step of Downgrade, bounded by ceiling (the tier's
// resolved profile). Features come back in reverse order: shadow resolution,
// bloom, reflections.
func Upgrade(p Profile, ceiling Profile) Profile {
	next := p
	if next.ParticleCount < ceiling.ParticleCount {
		next.ParticleCount = int(float64(next.ParticleCount)/downgradeFactor + 0.5)
		if next.ParticleCount > ceiling.ParticleCount {
			next.ParticleCount = ceiling.ParticleCount
		}
	}

	switch {
	case next.ShadowResolution < ceiling.ShadowResolution:
		next.ShadowResolution *= 2
		if next.ShadowResolution > ceiling.ShadowResolution {
			next.ShadowResolution = ceiling.ShadowResolution
		}
	case !next.BloomEnabled && ceiling.BloomEnabled:
		next.BloomEnabled = true
	case !next.ReflectionsEnabled && ceiling.ReflectionsEnabled:
		next.ReflectionsEnabled = true
	}

	if next.MaxLODLevel > ceiling.MaxLODLevel {
		next.MaxLODLevel = ceiling.MaxLODLevel
	}
	return next
}

// Within reports whether p is at or below ceiling on every axis.
func (p Profile) Within(ceiling Profile) bool {
	return p.ParticleCount <= ceiling.ParticleCount &&
		p.ShadowResolution <= ceiling.ShadowResolution &&
		(!p.BloomEnabled || ceiling.BloomEnabled) &&
		(!p.ReflectionsEnabled || ceiling.ReflectionsEnabled) &&
		p.MaxLODLevel <= ceiling.MaxLODLevel
}
