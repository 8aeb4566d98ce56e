package perf

import (
	"testing"
	"time"
)

const (
	fast = 8 * time.Millisecond
	ok   = 15 * time.Millisecond
	slow = 25 * time.Millisecond
)

func TestDowngradeAfterThreeOverBudget(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	for i := 0; i < 2; i++ {
		if a := m.Sample(slow); a != None {
			t.Fatalf("frame %d: expected none, got %v", i, a)
		}
		if m.State() != StateStable {
			t.Errorf("frame %d: expected stable before a full run, got %v", i, m.State())
		}
	}
	if a := m.Sample(slow); a != Downgrade {
		t.Fatalf("third slow frame: expected downgrade, got %v", a)
	}
	if m.State() != StateStable {
		t.Errorf("after step: expected stable, got %v", m.State())
	}
}

func TestOverBudgetRunResetsOnGoodFrame(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	m.Sample(slow)
	m.Sample(slow)
	m.Sample(ok)
	if a := m.Sample(slow); a != None {
		t.Errorf("interrupted run: expected none, got %v", a)
	}
}

func TestSingleSlowFrameStaysStable(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	m.Sample(slow)
	if m.State() != StateStable {
		t.Errorf("one slow frame: expected stable, got %v", m.State())
	}
	m.Sample(fast)
	if m.State() != StateStable {
		t.Errorf("one fast frame: expected stable, got %v", m.State())
	}
}

func TestCooldownBetweenSteps(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	for i := 0; i < 3; i++ {
		m.Sample(slow)
	}
	if m.Steps() != 1 {
		t.Fatalf("expected 1 step, got %d", m.Steps())
	}

	// 2s of slow frames at 25ms is 80 frames; nothing may fire before then.
	var fired int
	for i := 0; i < 79; i++ {
		if m.Sample(slow) != None {
			fired++
		}
	}
	if fired != 0 {
		t.Errorf("expected no steps during cooldown, got %d", fired)
	}
	if m.State() != StateProbingDown {
		t.Errorf("held by cooldown: expected probing-down, got %v", m.State())
	}
	if a := m.Sample(slow); a != Downgrade {
		t.Errorf("after cooldown: expected downgrade, got %v", a)
	}
}

func TestUpgradeAfterSustainedHeadroom(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMonitor(cfg)
	var got Adjustment
	for i := 0; i < cfg.UnderBudgetRun; i++ {
		got = m.Sample(fast)
		if i < cfg.UnderBudgetRun-1 && got != None {
			t.Fatalf("frame %d: expected none, got %v", i, got)
		}
	}
	if got != Upgrade {
		t.Errorf("expected upgrade after %d fast frames, got %v", cfg.UnderBudgetRun, got)
	}
}

func TestNoFlapAfterDowngrade(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMonitor(cfg)
	for i := 0; i < 3; i++ {
		m.Sample(slow)
	}
	// 90 fast frames is only 720ms, inside the cooldown.
	for i := 0; i < cfg.UnderBudgetRun; i++ {
		if a := m.Sample(fast); a != None {
			t.Fatalf("frame %d: expected no upgrade inside cooldown, got %v", i, a)
		}
	}
}

func TestVerdict(t *testing.T) {
	m := NewMonitor(DefaultConfig())
	for i := 0; i < 20; i++ {
		m.Sample(time.Duration(10+i) * time.Millisecond)
	}
	if m.Verdict() != Incline {
		t.Errorf("rising frame times: expected incline, got %v", m.Verdict())
	}

	m.Reset()
	for i := 0; i < 20; i++ {
		m.Sample(time.Duration(30-i) * time.Millisecond)
	}
	if m.Verdict() != Decline {
		t.Errorf("falling frame times: expected decline, got %v", m.Verdict())
	}

	m.Reset()
	for i := 0; i < 20; i++ {
		m.Sample(ok)
	}
	if m.Verdict() != Stable {
		t.Errorf("flat frame times: expected stable, got %v", m.Verdict())
	}
	if mean := m.Mean(); mean < 14.99 || mean > 15.01 {
		t.Errorf("mean: expected 15ms, got %v", mean)
	}
}

func TestWindowRolls(t *testing.T) {
	m := NewMonitor(Config{Window: 4})
	for _, d := range []time.Duration{100, 100, 100, 100, 1, 1, 1, 1} {
		m.Sample(d * time.Millisecond)
	}
	if mean := m.Mean(); mean != 1 {
		t.Errorf("expected old samples evicted, mean %v", mean)
	}
}
