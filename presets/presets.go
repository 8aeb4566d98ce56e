// Package presets builds hero scenes from declarative descriptions.
package presets

import (
	"errors"
	"fmt"
	"time"

	"hero-engine/core"
	"hero-engine/lod"
	"hero-engine/math"
	"hero-engine/mesh"
	"hero-engine/particles"
	"hero-engine/scene"
	"hero-engine/shader"
)

// Object kinds.
const (
	ObjectSphere = "sphere"
	ObjectTorus  = "torus"
	ObjectGLTF   = "gltf"
	ObjectOBJ    = "obj"
)

// EmitterSpec describes one particle emitter.
type EmitterSpec struct {
	Preset   string // particles.PresetShell, PresetGalaxy, PresetField or PresetRing
	Shader   string
	Share    float32 // fraction of the profile particle count
	Rate     float32 // spawns per second; 0 fills immediately
	Extent   float32 // half-size of the bounding box
	Boundary particles.BoundaryPolicy
	ColorA   core.Color
	ColorB   core.Color
	Gravity  float32 // downward acceleration
	Seed     int64
	Tint     *core.Color
	PointSz  float32
}

// ObjectSpec describes a spinning LOD object.
type ObjectSpec struct {
	Name     string
	Kind     string
	Path     string // model file for ObjectGLTF and ObjectOBJ
	Shader   string
	Color    *core.Color
	Position math.Vec3
	Scale    float32
	Spin     float32
	Radius   float32
	LODBase  float32 // first switch distance
	LODStep  float32 // ratio between switch distances
	Levels   int
}

// Spec is a complete scene description.
type Spec struct {
	ID         string
	Background string // fullscreen shader, empty for none
	BgColorA   *core.Color
	BgColorB   *core.Color
	Clear      core.Color
	Dwell      time.Duration
	Transition time.Duration
	Emitters   []EmitterSpec
	Objects    []ObjectSpec
}

var (
	ErrNoID        = errors.New("scene has no id")
	ErrBadShare    = errors.New("emitter shares must be in (0, 1] and sum to at most 1")
	ErrBadObject   = errors.New("unknown object kind")
	ErrMissingPath = errors.New("gltf object needs a path")
)

// Validate checks a spec without touching any GPU or registry state.
func (s Spec) Validate() error {
	if s.ID == "" {
		return ErrNoID
	}
	var total float32
	for i, e := range s.Emitters {
		if e.Share <= 0 || e.Share > 1 {
			return fmt.Errorf("scene %q emitter %d: %w", s.ID, i, ErrBadShare)
		}
		total += e.Share
	}
	if total > 1.0001 {
		return fmt.Errorf("scene %q: %w", s.ID, ErrBadShare)
	}
	for _, o := range s.Objects {
		switch o.Kind {
		case ObjectSphere, ObjectTorus:
		case ObjectGLTF, ObjectOBJ:
			if o.Path == "" {
				return fmt.Errorf("scene %q object %q: %w", s.ID, o.Name, ErrMissingPath)
			}
		default:
			return fmt.Errorf("scene %q object %q (%s): %w", s.ID, o.Name, o.Kind, ErrBadObject)
		}
	}
	return nil
}

// Scene returns a lazily built scene. Nothing is allocated until the
// orchestrator first shows it.
func (s Spec) Scene() *scene.Scene {
	sc := scene.New(s.ID, s.build)
	sc.Dwell = s.Dwell
	sc.TransitionDuration = s.Transition
	if s.Clear != (core.Color{}) {
		sc.ClearColor = s.Clear
	}
	return sc
}

func (s Spec) build(sc *scene.Scene, res scene.Resources) error {
	if s.Background != "" {
		overrides := map[string]shader.UniformValue{}
		if s.BgColorA != nil {
			overrides["uColorA"] = shader.Color(*s.BgColorA)
		}
		if s.BgColorB != nil {
			overrides["uColorB"] = shader.Color(*s.BgColorB)
		}
		sc.Background = res.Shaders.InstantiateOrPlaceholder(s.Background, overrides)
	}

	for _, e := range s.Emitters {
		addEmitter(sc, res, e)
	}

	var errs []error
	for _, o := range s.Objects {
		obj, err := buildObject(res, o)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sc.Objects = append(sc.Objects, obj)
	}
	return errors.Join(errs...)
}

func addEmitter(sc *scene.Scene, res scene.Resources, e EmitterSpec) {
	extent := e.Extent
	if extent <= 0 {
		extent = 10
	}
	opts := particles.DefaultOptions()
	opts.Bounds = particles.Bounds{
		Min: math.Vec3{X: -extent, Y: -extent, Z: -extent},
		Max: math.Vec3{X: extent, Y: extent, Z: extent},
	}
	opts.Boundary = e.Boundary
	if e.Seed != 0 {
		opts.Seed = e.Seed
	}

	name := e.Shader
	if name == "" {
		name = shader.ParticlePoints
	}
	overrides := map[string]shader.UniformValue{}
	if e.Tint != nil {
		overrides["uTint"] = shader.Color(*e.Tint)
	}
	if e.PointSz > 0 {
		overrides["uPointSize"] = shader.Float(e.PointSz)
	}
	mat := res.Shaders.InstantiateOrPlaceholder(name, overrides)

	em := sc.AddEmitter(res, e.Share, opts, particles.SpawnerFor(e.Preset, opts.Bounds, e.ColorA, e.ColorB), mat)
	em.Rate = e.Rate
	if e.Gravity != 0 {
		em.Ambient = particles.Uniform(math.Vec3{Y: -e.Gravity})
	}
}

func buildObject(res scene.Resources, o ObjectSpec) (*lod.Object, error) {
	levels := o.Levels
	if levels <= 0 {
		// One level per LOD index the best profile can reach.
		levels = res.Ceiling.MaxLODLevel + 1
	}
	radius := o.Radius
	if radius <= 0 {
		radius = 1
	}

	var chain []*mesh.Mesh
	switch o.Kind {
	case ObjectSphere:
		chain = mesh.SphereChain(radius, 48, levels)
	case ObjectTorus:
		chain = mesh.TorusChain(radius, radius*0.3, 64, levels)
	case ObjectGLTF, ObjectOBJ:
		load := mesh.LoadLODChain
		if o.Kind == ObjectOBJ {
			load = mesh.LoadOBJLODChain
		}
		var err error
		if chain, err = load(o.Path); err != nil {
			return nil, fmt.Errorf("object %q: %w", o.Name, err)
		}
	default:
		return nil, fmt.Errorf("object %q (%s): %w", o.Name, o.Kind, ErrBadObject)
	}

	name := o.Shader
	if name == "" {
		name = shader.GlowSurface
	}
	overrides := map[string]shader.UniformValue{}
	if o.Color != nil {
		overrides["uColor"] = shader.Color(*o.Color)
	}
	mat := res.Shaders.InstantiateOrPlaceholder(name, overrides)

	base, step := o.LODBase, o.LODStep
	if base <= 0 {
		base = 8
	}
	if step <= 1 {
		step = 2
	}
	obj, err := lod.NewObject(o.Name, lod.Chain(chain, mat, base, step))
	if err != nil {
		return nil, err
	}
	obj.Position = o.Position
	if o.Scale > 0 {
		obj.Scale = o.Scale
	}
	obj.Spin = o.Spin
	return obj, nil
}
