package scene

import (
	"errors"
	"fmt"
	"time"

	"hero-engine/core"
	"hero-engine/math"
	"hero-engine/quality"
)

// DefaultTransitionDuration is used when a scene does not set its own.
const DefaultTransitionDuration = 500 * time.Millisecond

// Phase is the orchestrator's lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Active
	Transitioning
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Transitioning:
		return "transitioning"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Trigger records what started a transition.
type Trigger int

const (
	TriggerExplicit Trigger = iota
	TriggerTimer
)

var (
	ErrUnknownScene   = errors.New("unknown scene")
	ErrDuplicateScene = errors.New("scene already added")
	ErrTerminated     = errors.New("orchestrator terminated")
)

// Layer is one scene to draw this frame with its opacity.
type Layer struct {
	Scene   *Scene
	Opacity float32 // eased blend weight
}

// Orchestrator owns scene lifecycle and cross-fades between scenes.
// It holds one active scene and at most one incoming scene.
type Orchestrator struct {
	scenes []*Scene
	byID   map[string]*Scene

	phase    Phase
	active   *Scene
	from, to *Scene
	trigger  Trigger

	elapsed  time.Duration // transition progress
	duration time.Duration
	dwell    time.Duration // time spent in the current Active phase

	defaultDuration time.Duration
	res             Resources
	profile         quality.Profile
}

func NewOrchestrator(res Resources, transition time.Duration) *Orchestrator {
	if transition <= 0 {
		transition = DefaultTransitionDuration
	}
	return &Orchestrator{
		byID:            make(map[string]*Scene),
		defaultDuration: transition,
		res:             res,
		profile:         res.Profile,
	}
}

// Add registers a scene. Its resources are not built until it is shown.
func (o *Orchestrator) Add(sc *Scene) error {
	if o.phase == Terminated {
		return ErrTerminated
	}
	if _, ok := o.byID[sc.ID]; ok {
		return fmt.Errorf("add %q: %w", sc.ID, ErrDuplicateScene)
	}
	o.scenes = append(o.scenes, sc)
	o.byID[sc.ID] = sc
	return nil
}

func (o *Orchestrator) Scene(id string) (*Scene, bool) {
	sc, ok := o.byID[id]
	return sc, ok
}

func (o *Orchestrator) Scenes() []*Scene { return o.scenes }

func (o *Orchestrator) Phase() Phase { return o.phase }

// Active returns the active scene, or during a transition the outgoing one.
func (o *Orchestrator) Active() *Scene {
	if o.phase == Transitioning {
		return o.from
	}
	return o.active
}

// Incoming returns the scene being transitioned to, or nil.
func (o *Orchestrator) Incoming() *Scene {
	if o.phase == Transitioning {
		return o.to
	}
	return nil
}

func (o *Orchestrator) Trigger() Trigger { return o.trigger }

// Progress is linear transition progress in [0,1]; 1 outside a transition.
func (o *Orchestrator) Progress() float32 {
	if o.phase != Transitioning {
		return 1
	}
	if o.duration <= 0 {
		return 1
	}
	return math.Clamp(float32(o.elapsed)/float32(o.duration), 0, 1)
}

// Opacity is the eased weight of the incoming scene.
func (o *Orchestrator) Opacity() float32 {
	return math.EaseOutCubic(o.Progress())
}

// Dominant is the scene that receives pointer input: the incoming scene once
// linear progress reaches one half.
func (o *Orchestrator) Dominant() *Scene {
	switch o.phase {
	case Active:
		return o.active
	case Transitioning:
		if o.Progress() >= 0.5 {
			return o.to
		}
		return o.from
	}
	return nil
}

// SetResources replaces the build resources. Only valid before any scene
// has been shown.
func (o *Orchestrator) SetResources(res Resources) error {
	if o.phase != Idle {
		return fmt.Errorf("set resources in phase %v", o.phase)
	}
	o.res = res
	o.profile = res.Profile
	return nil
}

// SetProfile updates the profile used for new builds and resizes every built
// scene in place.
func (o *Orchestrator) SetProfile(p quality.Profile) {
	o.profile = p
	for _, sc := range o.scenes {
		sc.ApplyProfile(p)
	}
}

func (o *Orchestrator) resources() Resources {
	res := o.res
	res.Profile = o.profile
	return res
}

// Start activates the first scene from Idle.
func (o *Orchestrator) Start(id string) error {
	if o.phase == Terminated {
		return ErrTerminated
	}
	sc, ok := o.byID[id]
	if !ok {
		return fmt.Errorf("start %q: %w", id, ErrUnknownScene)
	}
	o.activate(sc)
	return nil
}

// Select requests an explicit switch to id. It preempts any in-flight
// transition, timer-driven or not.
func (o *Orchestrator) Select(id string) error {
	if o.phase == Terminated {
		return ErrTerminated
	}
	sc, ok := o.byID[id]
	if !ok {
		return fmt.Errorf("select %q: %w", id, ErrUnknownScene)
	}
	if o.phase == Idle {
		o.activate(sc)
		return nil
	}
	o.begin(sc, TriggerExplicit)
	return nil
}

// Next starts a timer-style transition to the scene after the current one.
func (o *Orchestrator) Next() {
	if o.phase != Active || len(o.scenes) < 2 {
		return
	}
	o.begin(o.after(o.active), TriggerTimer)
}

func (o *Orchestrator) after(sc *Scene) *Scene {
	for i, cur := range o.scenes {
		if cur == sc {
			return o.scenes[(i+1)%len(o.scenes)]
		}
	}
	return o.scenes[0]
}

// begin starts a transition from the current dominant scene to target. An
// in-flight transition is cancelled, unless it already heads to target.
func (o *Orchestrator) begin(target *Scene, trigger Trigger) {
	if o.phase == Transitioning && target == o.to {
		if trigger == TriggerExplicit {
			o.trigger = TriggerExplicit
		}
		return
	}
	from := o.Dominant()
	if o.phase == Transitioning {
		core.Logger().Debug("transition cancelled",
			"from", o.from.ID, "to", o.to.ID, "progress", o.Progress(), "new", target.ID)
	}
	if from == nil || from == target {
		o.activate(target)
		return
	}
	target.ensureBuilt(o.resources())

	o.phase = Transitioning
	o.from = from
	o.to = target
	o.active = nil
	o.trigger = trigger
	o.elapsed = 0
	o.duration = target.TransitionDuration
	if o.duration <= 0 {
		o.duration = o.defaultDuration
	}
	core.Logger().Info("transition started", "from", from.ID, "to", target.ID, "duration", o.duration)
}

func (o *Orchestrator) activate(sc *Scene) {
	sc.ensureBuilt(o.resources())
	o.phase = Active
	o.active = sc
	o.from = nil
	o.to = nil
	o.elapsed = 0
	o.dwell = 0
	core.Logger().Info("scene active", "scene", sc.ID)
}

// Tick advances timers and the transition by dt. It does not touch scene
// contents; see Visible for what to step and draw.
func (o *Orchestrator) Tick(dt time.Duration) {
	switch o.phase {
	case Active:
		o.dwell += dt
		if d := o.active.Dwell; d > 0 && o.dwell >= d {
			o.Next()
		}
	case Transitioning:
		o.elapsed += dt
		if o.elapsed >= o.duration {
			o.activate(o.to)
		}
	}
}

// HandlePointer routes an event to the dominant scene only.
func (o *Orchestrator) HandlePointer(ev PointerEvent) {
	if sc := o.Dominant(); sc != nil {
		sc.HandlePointer(ev)
	}
}

// Pulse routes a beat burst to the dominant scene.
func (o *Orchestrator) Pulse(strength float32) {
	if sc := o.Dominant(); sc != nil {
		sc.Pulse(strength)
	}
}

// Visible lists the scenes to step and draw, outgoing first.
func (o *Orchestrator) Visible() []Layer {
	switch o.phase {
	case Active:
		return []Layer{{Scene: o.active, Opacity: 1}}
	case Transitioning:
		b := o.Opacity()
		return []Layer{
			{Scene: o.from, Opacity: 1 - b},
			{Scene: o.to, Opacity: b},
		}
	}
	return nil
}

// Shutdown destroys every scene's resources. Later calls are no-ops.
func (o *Orchestrator) Shutdown() {
	if o.phase == Terminated {
		return
	}
	for _, sc := range o.scenes {
		sc.Destroy()
	}
	o.phase = Terminated
	o.active = nil
	o.from = nil
	o.to = nil
	core.Logger().Info("orchestrator shut down", "scenes", len(o.scenes))
}
