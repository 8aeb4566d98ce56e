package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func TestDetectorNeedsFullHistory(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	for i := 0; i < 42; i++ {
		if beat, _ := d.Feed(1); beat {
			t.Fatalf("block %d: beat before history filled", i)
		}
	}
}

func TestDetectorBeatAndRefractory(t *testing.T) {
	cfg := DefaultDetectorConfig()
	d := NewDetector(cfg)
	for i := 0; i < cfg.History; i++ {
		d.Feed(0.01)
	}

	beat, strength := d.Feed(0.1)
	if !beat {
		t.Fatal("expected a beat on a 10x energy jump")
	}
	if strength != cfg.MaxStrength {
		t.Errorf("strength: expected %v, got %v", cfg.MaxStrength, strength)
	}
	for i := 0; i < cfg.Refractory; i++ {
		if beat, _ := d.Feed(0.1); beat {
			t.Errorf("block %d: beat inside refractory window", i)
		}
	}
	if d.Beats() != 1 {
		t.Errorf("Beats: expected 1, got %d", d.Beats())
	}
}

func TestDetectorIgnoresSilence(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	for i := 0; i < 200; i++ {
		if beat, _ := d.Feed(0); beat {
			t.Fatal("beat on silence")
		}
	}
}

func drain(s beep.Streamer, total int) {
	buf := make([][2]float64, 512)
	for total > 0 {
		n := len(buf)
		if n > total {
			n = total
		}
		got, ok := s.Stream(buf[:n])
		total -= got
		if !ok {
			return
		}
	}
}

func TestTapFindsMetronomeBeats(t *testing.T) {
	rate := beep.SampleRate(48000)
	var pulses []float32
	tap := NewTap(Metronome(rate, 120), DefaultDetectorConfig(), func(s float32) {
		pulses = append(pulses, s)
	})

	drain(tap, rate.N(5*time.Second))

	// Clicks every 0.5 s; the first second only fills history.
	if len(pulses) < 7 || len(pulses) > 9 {
		t.Errorf("beats: expected 7-9, got %d", len(pulses))
	}
	for i, p := range pulses {
		if p <= 0 {
			t.Errorf("pulse %d: expected positive strength, got %v", i, p)
		}
	}
	if tap.Beats() != len(pulses) {
		t.Errorf("Beats: expected %d, got %d", len(pulses), tap.Beats())
	}
}

func TestTapPassesSamplesThrough(t *testing.T) {
	rate := beep.SampleRate(48000)
	want := make([][2]float64, 4096)
	Metronome(rate, 90).Stream(want)

	got := make([][2]float64, 4096)
	tap := NewTap(Metronome(rate, 90), DefaultDetectorConfig(), nil)
	n, ok := tap.Stream(got)
	if n != len(got) || !ok {
		t.Fatalf("Stream: expected (%d, true), got (%d, %v)", len(got), n, ok)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if tap.Level() <= 0 {
		t.Errorf("Level: expected positive energy, got %v", tap.Level())
	}
}

func TestTapOnSilence(t *testing.T) {
	beats := 0
	tap := NewTap(beep.Silence(48000*2), DefaultDetectorConfig(), func(float32) { beats++ })
	drain(tap, 48000*2)
	if beats != 0 {
		t.Errorf("beats on silence: expected 0, got %d", beats)
	}
}
