package main

import (
	"time"

	"hero-engine/renderer"
)

// loadModel turns a submitted frame into a synthetic frame cost so the
// quality loop can be exercised without a GPU.
type loadModel struct {
	Base        time.Duration
	PerParticle time.Duration // per 1000 live particles
	PerTriangle time.Duration // per 1000 triangles
	Bloom       time.Duration
	PerShadowK  time.Duration // per 1024 texels of shadow edge
	Scale       float64       // multiplies the total; raised and lowered at runtime
}

func defaultLoadModel() loadModel {
	return loadModel{
		Base:        4 * time.Millisecond,
		PerParticle: 400 * time.Microsecond,
		PerTriangle: 20 * time.Microsecond,
		Bloom:       2 * time.Millisecond,
		PerShadowK:  1500 * time.Microsecond,
		Scale:       1,
	}
}

func (m loadModel) cost(s renderer.FrameSummary) time.Duration {
	d := m.Base
	d += time.Duration(s.Particles) * m.PerParticle / 1000
	d += time.Duration(s.Triangles) * m.PerTriangle / 1000
	if s.Bloom {
		d += m.Bloom
	}
	d += time.Duration(s.Shadow) * m.PerShadowK / 1024
	return time.Duration(float64(d) * m.Scale)
}

func (m *loadModel) adjust(step float64) {
	m.Scale += step
	if m.Scale < 0.1 {
		m.Scale = 0.1
	}
}
