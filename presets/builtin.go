package presets

import (
	"time"

	"hero-engine/core"
	"hero-engine/math"
	"hero-engine/particles"
	"hero-engine/shader"
)

func colorPtr(c core.Color) *core.Color { return &c }

// Galaxy is a spiral disc over a drifting nebula.
func Galaxy() Spec {
	return Spec{
		ID:         "galaxy",
		Background: shader.Nebula,
		Clear:      core.RGB(3, 2, 10),
		Dwell:      12 * time.Second,
		Emitters: []EmitterSpec{{
			Preset: particles.PresetGalaxy,
			Share:  1,
			Extent: 14,
			ColorA: core.RGB(255, 220, 160),
			ColorB: core.RGB(90, 120, 255),
			Seed:   7,
		}},
	}
}

// Orb is a glowing sphere wrapped in a particle shell.
func Orb() Spec {
	return Spec{
		ID:         "orb",
		Background: shader.Nebula,
		BgColorA:   colorPtr(core.RGB(2, 8, 18)),
		BgColorB:   colorPtr(core.RGB(20, 90, 140)),
		Clear:      core.RGB(2, 6, 14),
		Dwell:      12 * time.Second,
		Emitters: []EmitterSpec{{
			Preset: particles.PresetShell,
			Share:  0.8,
			Extent: 10,
			ColorA: core.RGB(120, 220, 255),
			ColorB: core.RGB(255, 255, 255),
			Seed:   11,
		}, {
			Preset:   particles.PresetField,
			Share:    0.2,
			Rate:     2000,
			Extent:   10,
			Boundary: particles.BoundaryKill,
			Gravity:  0.4,
			ColorA:   core.RGB(60, 140, 220),
			Seed:     12,
		}},
		Objects: []ObjectSpec{{
			Name:   "orb",
			Kind:   ObjectSphere,
			Radius: 1.6,
			Spin:   0.3,
			Color:  colorPtr(core.RGB(120, 200, 255)),
		}},
	}
}

// Rings is a slowly turning torus inside a drifting dust field.
func Rings() Spec {
	return Spec{
		ID:         "rings",
		Clear:      core.RGB(10, 4, 12),
		Dwell:      12 * time.Second,
		Transition: 800 * time.Millisecond,
		Emitters: []EmitterSpec{{
			Preset: particles.PresetField,
			Share:  1,
			Extent: 12,
			ColorA: core.RGB(255, 140, 200),
			Tint:   colorPtr(core.Color{R: 1, G: 0.8, B: 0.9, A: 0.8}),
			Seed:   21,
		}},
		Objects: []ObjectSpec{{
			Name:     "ring",
			Kind:     ObjectTorus,
			Radius:   2.4,
			Spin:     0.5,
			Position: math.Vec3{Y: 0.5},
			Color:    colorPtr(core.RGB(255, 120, 180)),
		}},
	}
}

// Defaults is the scene set used when no config file is given.
func Defaults() []Spec {
	return []Spec{Galaxy(), Orb(), Rings()}
}
