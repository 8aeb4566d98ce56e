package perf

import (
	"fmt"
	"time"
)

// Verdict is the trend of recent frame cost.
type Verdict int

const (
	Stable  Verdict = iota
	Incline         // frames getting slower
	Decline         // frames getting faster
)

func (v Verdict) String() string {
	switch v {
	case Stable:
		return "stable"
	case Incline:
		return "incline"
	case Decline:
		return "decline"
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

// State is the monitor's control state. A probing state is entered once a
// full over- or under-budget run has accumulated and lasts until the step it
// asks for is taken (held back only by the cooldown) or the run breaks.
type State int

const (
	StateStable State = iota
	StateProbingUp
	StateProbingDown
)

func (s State) String() string {
	switch s {
	case StateStable:
		return "stable"
	case StateProbingUp:
		return "probing-up"
	case StateProbingDown:
		return "probing-down"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Adjustment is emitted when the monitor wants the profile stepped.
type Adjustment int

const (
	None Adjustment = iota
	Downgrade
	Upgrade
)

func (a Adjustment) String() string {
	switch a {
	case None:
		return "none"
	case Downgrade:
		return "downgrade"
	case Upgrade:
		return "upgrade"
	}
	return fmt.Sprintf("adjustment(%d)", int(a))
}

type Config struct {
	Budget         time.Duration // target frame time
	Window         int           // samples in the rolling window
	OverBudgetRun  int           // consecutive over-budget frames before a downgrade
	UnderBudgetRun int           // consecutive comfortable frames before an upgrade
	Headroom       float64       // fraction of Budget counted as comfortable
	Cooldown       time.Duration // sample time that must pass between steps
	SlopeEpsilon   float64       // ms per frame below which the trend is Stable
}

func DefaultConfig() Config {
	return Config{
		Budget:         16600 * time.Microsecond,
		Window:         20,
		OverBudgetRun:  3,
		UnderBudgetRun: 90,
		Headroom:       0.75,
		Cooldown:       2 * time.Second,
		SlopeEpsilon:   0.05,
	}
}

// Monitor watches frame durations and decides when quality should change.
// It is driven entirely by the samples it is fed and never reads a clock.
type Monitor struct {
	cfg Config

	samples []float64 // ms, ring buffer
	next    int
	count   int

	state      State
	verdict    Verdict
	overRun    int
	underRun   int
	sinceStep  time.Duration
	lastStep   Adjustment
	everStep   bool
	totalSteps int
}

func NewMonitor(cfg Config) *Monitor {
	def := DefaultConfig()
	if cfg.Budget <= 0 {
		cfg.Budget = def.Budget
	}
	if cfg.Window <= 1 {
		cfg.Window = def.Window
	}
	if cfg.OverBudgetRun <= 0 {
		cfg.OverBudgetRun = def.OverBudgetRun
	}
	if cfg.UnderBudgetRun <= 0 {
		cfg.UnderBudgetRun = def.UnderBudgetRun
	}
	if cfg.Headroom <= 0 || cfg.Headroom >= 1 {
		cfg.Headroom = def.Headroom
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}
	if cfg.SlopeEpsilon <= 0 {
		cfg.SlopeEpsilon = def.SlopeEpsilon
	}
	return &Monitor{
		cfg:     cfg,
		samples: make([]float64, cfg.Window),
	}
}

func (m *Monitor) Config() Config { return m.cfg }

func (m *Monitor) State() State { return m.state }

func (m *Monitor) Verdict() Verdict { return m.verdict }

// LastStep is the most recent non-None adjustment.
func (m *Monitor) LastStep() Adjustment { return m.lastStep }

// Steps is the number of adjustments emitted so far.
func (m *Monitor) Steps() int { return m.totalSteps }

// Sample records one frame's duration and returns the adjustment to apply,
// if any.
func (m *Monitor) Sample(frame time.Duration) Adjustment {
	ms := float64(frame) / float64(time.Millisecond)
	m.samples[m.next] = ms
	m.next = (m.next + 1) % len(m.samples)
	if m.count < len(m.samples) {
		m.count++
	}
	m.sinceStep += frame
	m.verdict = m.trend()

	budget := float64(m.cfg.Budget) / float64(time.Millisecond)
	switch {
	case ms > budget:
		m.overRun++
		m.underRun = 0
	case ms < budget*m.cfg.Headroom:
		m.underRun++
		m.overRun = 0
	default:
		m.overRun = 0
		m.underRun = 0
	}

	switch {
	case m.overRun >= m.cfg.OverBudgetRun:
		m.state = StateProbingDown
	case m.underRun >= m.cfg.UnderBudgetRun:
		m.state = StateProbingUp
	default:
		m.state = StateStable
	}

	if m.overRun >= m.cfg.OverBudgetRun && m.canStep() {
		return m.step(Downgrade)
	}
	if m.underRun >= m.cfg.UnderBudgetRun && m.verdict != Incline && m.canStep() {
		return m.step(Upgrade)
	}
	return None
}

// canStep enforces the cooldown between any two adjustments.
func (m *Monitor) canStep() bool {
	return !m.everStep || m.sinceStep >= m.cfg.Cooldown
}

func (m *Monitor) step(a Adjustment) Adjustment {
	m.lastStep = a
	m.everStep = true
	m.sinceStep = 0
	m.overRun = 0
	m.underRun = 0
	m.state = StateStable
	m.totalSteps++
	return a
}

// Mean is the average of the window in milliseconds.
func (m *Monitor) Mean() float64 {
	if m.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < m.count; i++ {
		sum += m.at(i)
	}
	return sum / float64(m.count)
}

// at returns the i-th oldest sample in the window.
func (m *Monitor) at(i int) float64 {
	start := 0
	if m.count == len(m.samples) {
		start = m.next
	}
	return m.samples[(start+i)%len(m.samples)]
}

// trend fits a least-squares line through the window and classifies its
// slope.
func (m *Monitor) trend() Verdict {
	n := m.count
	if n < 2 {
		return Stable
	}
	var sx, sy, sxx, sxy float64
	for i := 0; i < n; i++ {
		x := float64(i)
		y := m.at(i)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	fn := float64(n)
	den := fn*sxx - sx*sx
	if den == 0 {
		return Stable
	}
	slope := (fn*sxy - sx*sy) / den
	switch {
	case slope > m.cfg.SlopeEpsilon:
		return Incline
	case slope < -m.cfg.SlopeEpsilon:
		return Decline
	}
	return Stable
}

// Reset clears the window and counters, keeping the configuration.
func (m *Monitor) Reset() {
	for i := range m.samples {
		m.samples[i] = 0
	}
	m.next = 0
	m.count = 0
	m.state = StateStable
	m.verdict = Stable
	m.overRun = 0
	m.underRun = 0
	m.sinceStep = 0
	m.everStep = false
}
