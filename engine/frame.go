package engine

import (
	"hero-engine/core"
	"hero-engine/renderer"
	"hero-engine/scene"
)

// DefaultViewport is assumed until the host reports a size.
var DefaultViewport = core.Viewport{Width: 1280, Height: 720}

func (e *Engine) currentViewport() core.Viewport {
	if e.viewport.width <= 0 || e.viewport.height <= 0 {
		return DefaultViewport
	}
	return core.Viewport{Width: e.viewport.width, Height: e.viewport.height}
}

// buildFrame snapshots the visible layers. LOD levels are picked here so
// every object is selected once per frame with the live ceiling.
func (e *Engine) buildFrame() *renderer.Frame {
	vp := e.currentViewport()
	f := &renderer.Frame{
		Index:      e.frame,
		Time:       float32(e.clock.Seconds()),
		Viewport:   vp,
		Profile:    e.Profile(),
		ClearColor: core.ColorBlack,
	}
	if e.resolver == nil {
		return f
	}

	layers := e.orchestrator.Visible()
	for i, l := range layers {
		f.Layers = append(f.Layers, e.buildLayer(l, vp, f.Profile.MaxLODLevel))
		if i == 0 {
			f.ClearColor = l.Scene.ClearColor
		} else {
			f.ClearColor = f.ClearColor.Lerp(l.Scene.ClearColor, l.Opacity)
		}
	}
	return f
}

func (e *Engine) buildLayer(l scene.Layer, vp core.Viewport, ceiling int) renderer.Layer {
	sc := l.Scene
	eye := sc.Camera.Eye()
	out := renderer.Layer{
		SceneID:    sc.ID,
		Opacity:    l.Opacity,
		View:       sc.Camera.View(),
		Projection: sc.Camera.Projection(vp.Aspect()),
		Eye:        eye,
		Background: sc.Background,
	}
	for _, em := range sc.Emitters {
		if em.System == nil || em.System.Destroyed() || em.System.HighWater() == 0 {
			continue
		}
		out.Particles = append(out.Particles, renderer.ParticleBatch{System: em.System, Material: em.Material})
	}
	for _, o := range sc.Objects {
		idx := o.SelectFor(e.frame, eye, ceiling)
		if idx < 0 || idx >= len(o.Entries) {
			continue
		}
		rep := o.Entries[idx].Representation
		if rep.Mesh == nil {
			continue
		}
		out.Meshes = append(out.Meshes, renderer.MeshDraw{
			Mesh:     rep.Mesh,
			Material: rep.Material,
			Model:    o.Model(),
			Level:    idx,
		})
	}
	return out
}
