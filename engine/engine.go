package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"hero-engine/core"
	"hero-engine/particles"
	"hero-engine/perf"
	"hero-engine/quality"
	"hero-engine/renderer"
	"hero-engine/scene"
	"hero-engine/shader"
)

// ErrShutdown is returned by operations on an engine that has been shut down.
var ErrShutdown = errors.New("engine shut down")

// Stats is a point-in-time copy of engine counters.
type Stats struct {
	Frames        uint64
	SubmitErrors  uint64
	QueueDropped  int
	SpawnDropped  int
	LiveParticles int
	Tier          quality.Tier
	TierKnown     bool
	Profile       quality.Profile
	Verdict       perf.Verdict
	MonitorState  perf.State
	MeanFrameMs   float64
	Phase         scene.Phase
	Scene         string
	Incoming      string
	Progress      float32 // linear transition progress
}

// Engine owns the tick. Everything except Push-style requests and Stats must
// be called from the goroutine that calls Tick.
type Engine struct {
	cfg       Config
	submitter renderer.Submitter
	queue     *Queue

	shaders      *shader.Registry
	particles    *particles.Manager
	orchestrator *scene.Orchestrator
	monitor      *perf.Monitor
	resolver     *quality.Resolver

	viewport   rendererViewport
	firstScene string
	started    bool
	shutdown   bool

	frame   uint64
	clock   time.Duration
	events  []Event
	statsMu sync.Mutex
	stats   Stats
	lastErr error
}

type rendererViewport struct {
	width, height int
}

// New creates an engine drawing through sub. Built-in shaders are
// registered. When no initial tier is configured, call Probe before the
// first Tick.
func New(sub renderer.Submitter, opts ...Option) (*Engine, error) {
	if sub == nil {
		return nil, errors.New("engine: nil submitter")
	}
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	reg := shader.NewRegistry()
	if err := shader.RegisterBuiltins(reg); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		cfg:       cfg,
		submitter: sub,
		queue:     NewQueue(cfg.QueueSize),
		shaders:   reg,
		particles: particles.NewManager(),
		monitor:   perf.NewMonitor(cfg.Monitor),
	}
	e.orchestrator = scene.NewOrchestrator(scene.Resources{
		Particles: e.particles,
		Shaders:   e.shaders,
	}, cfg.TransitionDuration)

	if cfg.InitialTier != nil {
		e.setTier(*cfg.InitialTier)
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Shaders exposes the registry so hosts can register custom materials.
func (e *Engine) Shaders() *shader.Registry { return e.shaders }

func (e *Engine) Particles() *particles.Manager { return e.particles }

func (e *Engine) Orchestrator() *scene.Orchestrator { return e.orchestrator }

// Resolver is nil until the tier is known.
func (e *Engine) Resolver() *quality.Resolver { return e.resolver }

func (e *Engine) Monitor() *perf.Monitor { return e.monitor }

func (e *Engine) Queue() *Queue { return e.queue }

// AddScene registers a scene. The first scene added is shown once the tier
// is known.
func (e *Engine) AddScene(sc *scene.Scene) error {
	if e.shutdown {
		return ErrShutdown
	}
	if err := e.orchestrator.Add(sc); err != nil {
		return err
	}
	if e.firstScene == "" {
		e.firstScene = sc.ID
	}
	return nil
}

// Probe classifies surface on a background goroutine and delivers the tier
// through the queue. Failures and timeouts resolve to TierLow.
func (e *Engine) Probe(ctx context.Context, surface quality.HostSurface) {
	if e.resolver != nil {
		return
	}
	timeout := e.cfg.ProbeTimeout
	go func() {
		tier := quality.Probe(ctx, surface, timeout)
		e.queue.Push(Event{Kind: EventTier, Tier: tier})
	}()
}

// Pointer queues a pointer event for the next tick.
func (e *Engine) Pointer(ev scene.PointerEvent) {
	e.queue.Push(Event{Kind: EventPointer, Pointer: ev})
}

// Select queues an explicit scene switch.
func (e *Engine) Select(id string) {
	e.queue.Push(Event{Kind: EventSelect, SceneID: id})
}

// Next queues a switch to the following scene.
func (e *Engine) Next() {
	e.queue.Push(Event{Kind: EventNext})
}

// Pulse queues a beat burst on the dominant scene.
func (e *Engine) Pulse(strength float32) {
	e.queue.Push(Event{Kind: EventPulse, Strength: strength})
}

// Resize queues a presentation-surface size change.
func (e *Engine) Resize(width, height int) {
	e.queue.Push(Event{Kind: EventResize, Width: width, Height: height})
}

func (e *Engine) setTier(t quality.Tier) {
	if e.resolver != nil {
		return
	}
	e.resolver = quality.NewResolver(t, e.cfg.MinParticleFloor)
	if e.viewport.width > 0 {
		e.resolver.Reevaluate(e.viewport.width * e.viewport.height)
	}
	err := e.orchestrator.SetResources(scene.Resources{
		Particles: e.particles,
		Shaders:   e.shaders,
		Profile:   e.resolver.Current(),
		Ceiling:   quality.Resolve(t),
	})
	if err != nil {
		core.Logger().Warn("engine: resources already in use", "err", err)
	}
	core.Logger().Info("tier selected", "tier", t, "particles", e.resolver.Current().ParticleCount)
}

// Tick runs one frame: drain requests, sample cost, adjust quality, advance
// scenes, step particles, advance shaders, submit. A frame is submitted on
// every call, including before the tier is known.
func (e *Engine) Tick(dt time.Duration) {
	if e.shutdown {
		return
	}
	if dt < 0 {
		dt = 0
	}
	e.frame++
	e.clock += dt
	secs := float32(dt.Seconds())

	e.drain()

	if e.resolver != nil {
		if !e.started && e.firstScene != "" && e.orchestrator.Phase() == scene.Idle {
			if err := e.orchestrator.Start(e.firstScene); err != nil {
				core.Logger().Warn("engine: start failed", "scene", e.firstScene, "err", err)
			}
			e.started = true
		}

		// A zero delta is not a frame measurement.
		if dt > 0 {
			switch e.monitor.Sample(dt) {
			case perf.Downgrade:
				if p, changed := e.resolver.StepDown(); changed {
					e.orchestrator.SetProfile(p)
				}
			case perf.Upgrade:
				if p, changed := e.resolver.StepUp(); changed {
					e.orchestrator.SetProfile(p)
				}
			}
		}

		e.orchestrator.Tick(dt)

		layers := e.orchestrator.Visible()
		for _, l := range layers {
			l.Scene.Update(secs)
		}
		for _, l := range layers {
			l.Scene.StepParticles(secs)
		}
		for _, l := range layers {
			l.Scene.AdvanceShaders(secs)
		}
	}

	f := e.buildFrame()
	if err := e.submitter.Submit(f); err != nil {
		e.lastErr = err
		e.statsMu.Lock()
		e.stats.SubmitErrors++
		e.statsMu.Unlock()
		core.Logger().Warn("frame submit failed", "frame", e.frame, "err", err)
	}
	e.updateStats()
}

func (e *Engine) drain() {
	e.events = e.queue.Drain(e.events[:0])
	for _, ev := range e.events {
		switch ev.Kind {
		case EventTier:
			e.setTier(ev.Tier)
		case EventPointer:
			e.orchestrator.HandlePointer(ev.Pointer)
		case EventSelect:
			if e.resolver == nil {
				// Nothing is built before the tier is known; show this first.
				if _, ok := e.orchestrator.Scene(ev.SceneID); ok {
					e.firstScene = ev.SceneID
				}
				continue
			}
			if err := e.orchestrator.Select(ev.SceneID); err != nil {
				core.Logger().Warn("scene select failed", "scene", ev.SceneID, "err", err)
			}
		case EventNext:
			e.orchestrator.Next()
		case EventPulse:
			e.orchestrator.Pulse(ev.Strength)
		case EventResize:
			e.applyResize(ev.Width, ev.Height)
		}
	}
}

func (e *Engine) applyResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.viewport = rendererViewport{width: width, height: height}
	e.submitter.Resize(width, height)
	if e.resolver != nil && e.resolver.Reevaluate(width*height) {
		e.orchestrator.SetProfile(e.resolver.Current())
	}
}

// Profile returns a copy of the live profile, or the Low profile before the
// tier is known.
func (e *Engine) Profile() quality.Profile {
	if e.resolver == nil {
		return quality.Resolve(quality.TierLow)
	}
	return e.resolver.Current()
}

// Stats returns a copy of the counters. Safe from any goroutine.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

// LastError is the most recent submit error.
func (e *Engine) LastError() error { return e.lastErr }

func (e *Engine) updateStats() {
	s := Stats{
		Frames:        e.frame,
		QueueDropped:  e.queue.Dropped(),
		SpawnDropped:  e.particles.TotalDropped(),
		LiveParticles: e.particles.TotalLive(),
		Profile:       e.Profile(),
		Verdict:       e.monitor.Verdict(),
		MonitorState:  e.monitor.State(),
		MeanFrameMs:   e.monitor.Mean(),
		Phase:         e.orchestrator.Phase(),
		Progress:      e.orchestrator.Progress(),
	}
	if e.resolver != nil {
		s.Tier = e.resolver.Tier()
		s.TierKnown = true
	}
	if sc := e.orchestrator.Active(); sc != nil {
		s.Scene = sc.ID
	}
	if sc := e.orchestrator.Incoming(); sc != nil {
		s.Incoming = sc.ID
	}
	e.statsMu.Lock()
	s.SubmitErrors = e.stats.SubmitErrors
	e.stats = s
	e.statsMu.Unlock()
}

// Shutdown releases every scene, material and particle system and closes
// the submitter when it supports closing. Calling it again is a no-op.
func (e *Engine) Shutdown() error {
	if e.shutdown {
		return nil
	}
	e.shutdown = true
	e.orchestrator.Shutdown()
	e.shaders.DestroyAll()
	e.particles.DestroyAll()
	if c, ok := e.submitter.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("engine: close submitter: %w", err)
		}
	}
	core.Logger().Info("engine shut down", "frames", e.frame)
	return nil
}
