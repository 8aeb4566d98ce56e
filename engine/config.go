package engine

import (
	"time"

	"hero-engine/perf"
	"hero-engine/quality"
)

// Config holds engine-wide settings. Zero values fall back to DefaultConfig.
type Config struct {
	InitialTier        *quality.Tier // skip the probe when set
	TargetFrameBudget  time.Duration
	TransitionDuration time.Duration
	MinParticleFloor   int
	ProbeTimeout       time.Duration
	QueueSize          int
	Monitor            perf.Config
}

func DefaultConfig() Config {
	return Config{
		TargetFrameBudget:  16600 * time.Microsecond,
		TransitionDuration: 500 * time.Millisecond,
		MinParticleFloor:   quality.DefaultParticleFloor,
		ProbeTimeout:       quality.DefaultProbeTimeout,
		QueueSize:          256,
		Monitor:            perf.DefaultConfig(),
	}
}

// Option mutates a Config.
type Option func(*Config)

func WithInitialTier(t quality.Tier) Option {
	return func(c *Config) {
		c.InitialTier = &t
	}
}

func WithFrameBudget(d time.Duration) Option {
	return func(c *Config) {
		c.TargetFrameBudget = d
	}
}

func WithTransitionDuration(d time.Duration) Option {
	return func(c *Config) {
		c.TransitionDuration = d
	}
}

func WithParticleFloor(n int) Option {
	return func(c *Config) {
		c.MinParticleFloor = n
	}
}

func WithProbeTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ProbeTimeout = d
	}
}

func WithQueueSize(n int) Option {
	return func(c *Config) {
		c.QueueSize = n
	}
}

// WithMonitor overrides the performance monitor tuning. The frame budget
// still comes from TargetFrameBudget.
func WithMonitor(m perf.Config) Option {
	return func(c *Config) {
		c.Monitor = m
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TargetFrameBudget <= 0 {
		c.TargetFrameBudget = def.TargetFrameBudget
	}
	if c.TransitionDuration <= 0 {
		c.TransitionDuration = def.TransitionDuration
	}
	if c.MinParticleFloor <= 0 {
		c.MinParticleFloor = def.MinParticleFloor
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = def.ProbeTimeout
	}
	if c.QueueSize <= 0 {
		c.QueueSize = def.QueueSize
	}
	c.Monitor.Budget = c.TargetFrameBudget
	return c
}
