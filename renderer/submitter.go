package renderer

import (
	"errors"
	"sync"

	"hero-engine/core"
)

// Submitter is the presentation surface the engine draws through.
type Submitter interface {
	Submit(frame *Frame) error
	Resize(width, height int)
}

// ErrClosed is returned by a submitter after Close.
var ErrClosed = errors.New("submitter closed")

// FrameSummary is what Recorder keeps of a submitted frame.
type FrameSummary struct {
	Index     uint64
	Layers    []string
	Opacities []float32
	Particles int
	Triangles int
	Bloom     bool
	Shadow    int
}

// Recorder is a headless Submitter that keeps summaries of the most recent
// frames. Used by the soak harness and tests.
type Recorder struct {
	mu       sync.Mutex
	keep     int
	frames   []FrameSummary
	total    uint64
	viewport core.Viewport
	closed   bool

	// FailNext makes the next n submissions return an error.
	FailNext int
}

func NewRecorder(keep int) *Recorder {
	if keep <= 0 {
		keep = 1
	}
	return &Recorder{keep: keep}
}

func (r *Recorder) Submit(frame *Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.total++
	if r.FailNext > 0 {
		r.FailNext--
		return errors.New("recorder: injected failure")
	}
	s := FrameSummary{
		Index:     frame.Index,
		Particles: frame.Particles(),
		Triangles: frame.Triangles(),
		Bloom:     frame.Profile.BloomEnabled,
		Shadow:    frame.Profile.ShadowResolution,
	}
	for _, l := range frame.Layers {
		s.Layers = append(s.Layers, l.SceneID)
		s.Opacities = append(s.Opacities, l.Opacity)
	}
	r.frames = append(r.frames, s)
	if len(r.frames) > r.keep {
		r.frames = r.frames[len(r.frames)-r.keep:]
	}
	return nil
}

func (r *Recorder) Resize(width, height int) {
	r.mu.Lock()
	r.viewport = core.Viewport{Width: width, Height: height}
	r.mu.Unlock()
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Total is the number of Submit calls, failed or not.
func (r *Recorder) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Last returns the most recent summary.
func (r *Recorder) Last() (FrameSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return FrameSummary{}, false
	}
	return r.frames[len(r.frames)-1], true
}

func (r *Recorder) Viewport() core.Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewport
}
