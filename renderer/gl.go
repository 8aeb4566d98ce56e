package renderer

import (
	"errors"
	"fmt"

	"hero-engine/core"
	"hero-engine/internal/opengl"
	"hero-engine/math"
)

// SwapTarget is what the GL engine presents to after each frame.
type SwapTarget interface {
	SwapBuffers()
}

// RenderEngine is the Submitter that draws frames through the OpenGL
// backend. It must be used on the thread owning the GL context.
type RenderEngine struct {
	gl     *opengl.Renderer
	target SwapTarget
	closed bool

	// Ground plane for contact shadows and reflections, in world units.
	GroundHeight float32
	GroundExtent float32
	LightDir     math.Vec3

	// ReflectionOpacity scales mirrored geometry when reflections are on.
	ReflectionOpacity float32
}

func NewRenderEngine(target SwapTarget, width, height int) (*RenderEngine, error) {
	glr, err := opengl.NewRenderer(width, height, 1024)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	core.Logger().Info("render engine initialized", "backend", "opengl", "width", width, "height", height)
	return &RenderEngine{
		gl:                glr,
		target:            target,
		GroundHeight:      -2.5,
		GroundExtent:      8,
		LightDir:          math.Vec3{X: -0.3, Y: -1, Z: -0.4},
		ReflectionOpacity: 0.3,
	}, nil
}

func (re *RenderEngine) Resize(width, height int) {
	if re.closed {
		return
	}
	re.gl.SetViewport(width, height)
}

// Submit draws every layer in order. A failing draw is skipped and
// reported; the rest of the frame is still presented.
func (re *RenderEngine) Submit(f *Frame) error {
	if re.closed {
		return ErrClosed
	}
	var errs []error
	if err := re.gl.Configure(f.Profile.BloomEnabled, f.Profile.ShadowResolution); err != nil {
		errs = append(errs, err)
	}

	re.gl.BeginFrame(f.ClearColor)
	for i := range f.Layers {
		l := &f.Layers[i]
		if i > 0 {
			re.gl.ClearDepth()
		}
		if err := re.drawLayer(l, f.Profile.ReflectionsEnabled); err != nil {
			errs = append(errs, fmt.Errorf("layer %s: %w", l.SceneID, err))
		}
	}
	re.gl.EndFrame()
	if re.target != nil {
		re.target.SwapBuffers()
	}
	return errors.Join(errs...)
}

func (re *RenderEngine) drawLayer(l *Layer, reflections bool) error {
	var errs []error
	viewProj := l.View.Mul(l.Projection)

	if l.Background != nil {
		if err := re.gl.DrawBackground(l.Background, l.Opacity); err != nil {
			errs = append(errs, err)
		}
	}

	if len(l.Meshes) > 0 {
		lightVP := opengl.LightViewProj(math.Vec3{Y: re.GroundHeight}, re.LightDir, re.GroundExtent)
		re.gl.BeginShadowPass(lightVP)
		for _, m := range l.Meshes {
			re.gl.ShadowCaster(m.Mesh, m.Model)
		}
		re.gl.EndShadowPass()
		re.gl.DrawShadowGround(viewProj, lightVP, re.GroundHeight, re.GroundExtent, l.Opacity)

		if reflections {
			mirror := math.Mat4MirrorY(re.GroundHeight)
			for _, m := range l.Meshes {
				if m.Material == nil {
					continue
				}
				if err := re.gl.DrawMesh(m.Mesh, m.Material, viewProj, m.Model.Mul(mirror), l.Opacity*re.ReflectionOpacity); err != nil {
					errs = append(errs, err)
				}
			}
		}
		for _, m := range l.Meshes {
			if m.Material == nil {
				continue
			}
			if err := re.gl.DrawMesh(m.Mesh, m.Material, viewProj, m.Model, l.Opacity); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, b := range l.Particles {
		if b.Material == nil {
			continue
		}
		if err := re.gl.DrawParticles(b.System, b.Material, viewProj, l.Opacity); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases GPU resources. Later calls are no-ops.
func (re *RenderEngine) Close() error {
	if re.closed {
		return nil
	}
	re.closed = true
	re.gl.Destroy()
	return nil
}
