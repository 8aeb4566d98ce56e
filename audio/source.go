package audio

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"hero-engine/core"
)

const sampleRate = beep.SampleRate(48000)

// clickTrack is a looping kick: a decaying low sine every beat.
type clickTrack struct {
	rate     beep.SampleRate
	period   int
	length   int
	freq     float64
	position int
}

// Metronome returns an endless click track at bpm, useful when no music is
// available.
func Metronome(rate beep.SampleRate, bpm float64) beep.Streamer {
	if bpm <= 0 {
		bpm = 120
	}
	return &clickTrack{
		rate:   rate,
		period: rate.N(time.Duration(float64(time.Minute) / bpm)),
		length: rate.N(80 * time.Millisecond),
		freq:   60,
	}
}

func (c *clickTrack) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		p := c.position % c.period
		var v float64
		if p < c.length {
			env := 1 - float64(p)/float64(c.length)
			v = math.Sin(2*math.Pi*c.freq*float64(p)/float64(c.rate)) * env * env
		}
		samples[i][0] = v
		samples[i][1] = v
		c.position++
	}
	return len(samples), true
}

func (c *clickTrack) Err() error { return nil }

// Player plays one stream on the speaker through a beat tap.
type Player struct {
	mu          sync.Mutex
	initialized bool
	ctrl        *beep.Ctrl
	tap         *Tap
	closer      func() error
}

func NewPlayer() *Player {
	return &Player{}
}

func (p *Player) init() error {
	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	p.initialized = true
	return nil
}

// PlayFile decodes a WAV file and plays it in a loop.
func (p *Player) PlayFile(path string, onBeat BeatFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	stream, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}
	var s beep.Streamer = beep.Loop(-1, stream)
	if format.SampleRate != sampleRate {
		s = beep.Resample(4, format.SampleRate, sampleRate, s)
	}
	if err := p.play(s, onBeat); err != nil {
		stream.Close()
		return err
	}
	p.mu.Lock()
	p.closer = stream.Close
	p.mu.Unlock()
	return nil
}

// PlayMetronome plays a click track at bpm.
func (p *Player) PlayMetronome(bpm float64, onBeat BeatFunc) error {
	return p.play(Metronome(sampleRate, bpm), onBeat)
}

func (p *Player) play(s beep.Streamer, onBeat BeatFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.init(); err != nil {
		return err
	}
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
	p.tap = NewTap(s, DefaultDetectorConfig(), onBeat)
	p.ctrl = &beep.Ctrl{Streamer: p.tap}
	speaker.Play(p.ctrl)
	core.Logger().Info("audio playing", "rate", int(sampleRate))
	return nil
}

// Level is the current block energy, 0 when nothing plays.
func (p *Player) Level() float64 {
	p.mu.Lock()
	tap := p.tap
	p.mu.Unlock()
	if tap == nil {
		return 0
	}
	return tap.Level()
}

// Close stops playback. Calling it again is a no-op.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return nil
	}
	speaker.Clear()
	p.initialized = false
	p.ctrl = nil
	p.tap = nil
	if p.closer != nil {
		err := p.closer()
		p.closer = nil
		return err
	}
	return nil
}
