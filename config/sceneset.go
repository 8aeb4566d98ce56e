// Package config loads scene-set files: engine settings plus the scenes to
// cycle through.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"hero-engine/core"
	"hero-engine/engine"
	"hero-engine/math"
	"hero-engine/particles"
	"hero-engine/presets"
	"hero-engine/quality"
)

// SceneSetFile is the top-level structure of a .heroscenes file.
type SceneSetFile struct {
	Version string      `json:"version"`
	Engine  EngineData  `json:"engine"`
	Scenes  []SceneData `json:"scenes"`
}

// EngineData mirrors engine.Config. Zero fields keep engine defaults.
type EngineData struct {
	Tier             string  `json:"tier,omitempty"` // "low", "medium", "high"; empty probes
	FrameBudgetMs    float32 `json:"frame_budget_ms,omitempty"`
	TransitionMs     int     `json:"transition_ms,omitempty"`
	MinParticleFloor int     `json:"min_particle_floor,omitempty"`
	ProbeTimeoutMs   int     `json:"probe_timeout_ms,omitempty"`
}

type SceneData struct {
	ID           string        `json:"id"`
	Background   string        `json:"background,omitempty"`
	BgColorA     *[4]float32   `json:"bg_color_a,omitempty"`
	BgColorB     *[4]float32   `json:"bg_color_b,omitempty"`
	ClearColor   [4]float32    `json:"clear_color"`
	DwellMs      int           `json:"dwell_ms,omitempty"`
	TransitionMs int           `json:"transition_ms,omitempty"`
	Emitters     []EmitterData `json:"emitters"`
	Objects      []ObjectData  `json:"objects,omitempty"`
}

type EmitterData struct {
	Preset    string                   `json:"preset"` // "shell", "galaxy", "field"
	Shader    string                   `json:"shader,omitempty"`
	Share     float32                  `json:"share"`
	Rate      float32                  `json:"rate,omitempty"`
	Extent    float32                  `json:"extent,omitempty"`
	Boundary  particles.BoundaryPolicy `json:"boundary"`
	ColorA    [4]float32               `json:"color_a"`
	ColorB    [4]float32               `json:"color_b"`
	Gravity   float32                  `json:"gravity,omitempty"`
	Seed      int64                    `json:"seed,omitempty"`
	Tint      *[4]float32              `json:"tint,omitempty"`
	PointSize float32                  `json:"point_size,omitempty"`
}

type ObjectData struct {
	Name     string      `json:"name"`
	Kind     string      `json:"kind"` // "sphere", "torus", "gltf"
	MeshFile string      `json:"mesh_file,omitempty"`
	Shader   string      `json:"shader,omitempty"`
	Color    *[4]float32 `json:"color,omitempty"`
	Position [3]float32  `json:"position"`
	Scale    float32     `json:"scale,omitempty"`
	Spin     float32     `json:"spin,omitempty"`
	Radius   float32     `json:"radius,omitempty"`
	LODBase  float32     `json:"lod_base,omitempty"`
	LODStep  float32     `json:"lod_step,omitempty"`
	Levels   int         `json:"levels,omitempty"`
}

// ErrNoScenes is returned for a file without scenes.
var ErrNoScenes = errors.New("scene set has no scenes")

// SaveSceneSet writes s as indented JSON.
func SaveSceneSet(path string, s *SceneSetFile) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene set: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSceneSet reads and validates a scene-set file.
func LoadSceneSet(path string) (*SceneSetFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene set: %w", err)
	}
	defer f.Close()
	return ParseSceneSet(f)
}

// ParseSceneSet decodes and validates a scene set. Unknown fields are
// rejected.
func ParseSceneSet(r io.Reader) (*SceneSetFile, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	s := &SceneSetFile{}
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("failed to parse scene set: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks engine settings and every scene.
func (s *SceneSetFile) Validate() error {
	if len(s.Scenes) == 0 {
		return ErrNoScenes
	}
	if s.Engine.Tier != "" {
		if _, err := quality.ParseTier(s.Engine.Tier); err != nil {
			return fmt.Errorf("engine: %w", err)
		}
	}
	ids := make(map[string]bool, len(s.Scenes))
	for _, sd := range s.Scenes {
		if ids[sd.ID] {
			return fmt.Errorf("scene %q: duplicate id", sd.ID)
		}
		ids[sd.ID] = true
		if err := sd.Spec().Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Options converts the engine block to engine options.
func (s *SceneSetFile) Options() []engine.Option {
	e := s.Engine
	var opts []engine.Option
	if e.Tier != "" {
		if t, err := quality.ParseTier(e.Tier); err == nil {
			opts = append(opts, engine.WithInitialTier(t))
		}
	}
	if e.FrameBudgetMs > 0 {
		opts = append(opts, engine.WithFrameBudget(time.Duration(e.FrameBudgetMs*float32(time.Millisecond))))
	}
	if e.TransitionMs > 0 {
		opts = append(opts, engine.WithTransitionDuration(ms(e.TransitionMs)))
	}
	if e.MinParticleFloor > 0 {
		opts = append(opts, engine.WithParticleFloor(e.MinParticleFloor))
	}
	if e.ProbeTimeoutMs > 0 {
		opts = append(opts, engine.WithProbeTimeout(ms(e.ProbeTimeoutMs)))
	}
	return opts
}

// Specs converts every scene.
func (s *SceneSetFile) Specs() []presets.Spec {
	out := make([]presets.Spec, 0, len(s.Scenes))
	for _, sd := range s.Scenes {
		out = append(out, sd.Spec())
	}
	return out
}

// Spec converts one scene to its preset description.
func (sd SceneData) Spec() presets.Spec {
	spec := presets.Spec{
		ID:         sd.ID,
		Background: sd.Background,
		BgColorA:   optColor(sd.BgColorA),
		BgColorB:   optColor(sd.BgColorB),
		Clear:      ArrayToColor(sd.ClearColor),
		Dwell:      ms(sd.DwellMs),
		Transition: ms(sd.TransitionMs),
	}
	for _, e := range sd.Emitters {
		spec.Emitters = append(spec.Emitters, presets.EmitterSpec{
			Preset:   e.Preset,
			Shader:   e.Shader,
			Share:    e.Share,
			Rate:     e.Rate,
			Extent:   e.Extent,
			Boundary: e.Boundary,
			ColorA:   ArrayToColor(e.ColorA),
			ColorB:   ArrayToColor(e.ColorB),
			Gravity:  e.Gravity,
			Seed:     e.Seed,
			Tint:     optColor(e.Tint),
			PointSz:  e.PointSize,
		})
	}
	for _, o := range sd.Objects {
		spec.Objects = append(spec.Objects, presets.ObjectSpec{
			Name:     o.Name,
			Kind:     o.Kind,
			Path:     o.MeshFile,
			Shader:   o.Shader,
			Color:    optColor(o.Color),
			Position: ArrayToVec3(o.Position),
			Scale:    o.Scale,
			Spin:     o.Spin,
			Radius:   o.Radius,
			LODBase:  o.LODBase,
			LODStep:  o.LODStep,
			Levels:   o.Levels,
		})
	}
	return spec
}

// FromSpecs builds a file from preset descriptions, used to export the
// built-in set as a starting point.
func FromSpecs(specs []presets.Spec) *SceneSetFile {
	s := &SceneSetFile{Version: "1.0"}
	for _, spec := range specs {
		sd := SceneData{
			ID:           spec.ID,
			Background:   spec.Background,
			BgColorA:     optArray(spec.BgColorA),
			BgColorB:     optArray(spec.BgColorB),
			ClearColor:   ColorToArray(spec.Clear),
			DwellMs:      int(spec.Dwell / time.Millisecond),
			TransitionMs: int(spec.Transition / time.Millisecond),
		}
		for _, e := range spec.Emitters {
			sd.Emitters = append(sd.Emitters, EmitterData{
				Preset:    e.Preset,
				Shader:    e.Shader,
				Share:     e.Share,
				Rate:      e.Rate,
				Extent:    e.Extent,
				Boundary:  e.Boundary,
				ColorA:    ColorToArray(e.ColorA),
				ColorB:    ColorToArray(e.ColorB),
				Gravity:   e.Gravity,
				Seed:      e.Seed,
				Tint:      optArray(e.Tint),
				PointSize: e.PointSz,
			})
		}
		for _, o := range spec.Objects {
			sd.Objects = append(sd.Objects, ObjectData{
				Name:     o.Name,
				Kind:     o.Kind,
				MeshFile: o.Path,
				Shader:   o.Shader,
				Color:    optArray(o.Color),
				Position: Vec3ToArray(o.Position),
				Scale:    o.Scale,
				Spin:     o.Spin,
				Radius:   o.Radius,
				LODBase:  o.LODBase,
				LODStep:  o.LODStep,
				Levels:   o.Levels,
			})
		}
		s.Scenes = append(s.Scenes, sd)
	}
	return s
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func optColor(a *[4]float32) *core.Color {
	if a == nil {
		return nil
	}
	c := ArrayToColor(*a)
	return &c
}

func optArray(c *core.Color) *[4]float32 {
	if c == nil {
		return nil
	}
	a := ColorToArray(*c)
	return &a
}

func Vec3ToArray(v math.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func ArrayToVec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func ColorToArray(c core.Color) [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

func ArrayToColor(a [4]float32) core.Color {
	return core.Color{R: a[0], G: a[1], B: a[2], A: a[3]}
}
