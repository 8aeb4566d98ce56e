package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// DefaultBlock is the energy block size in samples, about 21 ms at 48 kHz.
const DefaultBlock = 1024

// BeatFunc receives detected beats. It runs on the audio goroutine and must
// not block; engine.Engine.Pulse is safe to pass.
type BeatFunc func(strength float32)

// Tap passes a stream through unchanged while measuring block energy and
// reporting beats.
type Tap struct {
	beep.Streamer

	mu       sync.Mutex
	detector *Detector
	onBeat   BeatFunc
	block    int
	acc      float64
	n        int
	level    float64
}

func NewTap(s beep.Streamer, cfg DetectorConfig, onBeat BeatFunc) *Tap {
	return &Tap{
		Streamer: s,
		detector: NewDetector(cfg),
		onBeat:   onBeat,
		block:    DefaultBlock,
	}
}

func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Streamer.Stream(samples)

	t.mu.Lock()
	var beats []float32
	for _, s := range samples[:n] {
		m := (s[0] + s[1]) / 2
		t.acc += m * m
		t.n++
		if t.n == t.block {
			energy := t.acc / float64(t.block)
			t.level = energy
			if beat, strength := t.detector.Feed(energy); beat {
				beats = append(beats, strength)
			}
			t.acc = 0
			t.n = 0
		}
	}
	t.mu.Unlock()

	if t.onBeat != nil {
		for _, b := range beats {
			t.onBeat(b)
		}
	}
	return n, ok
}

// Level is the energy of the last complete block.
func (t *Tap) Level() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level
}

func (t *Tap) Beats() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.detector.Beats()
}
