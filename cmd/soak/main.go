// Command soak drives the engine headless against a synthetic frame-cost
// model and shows the quality loop on a terminal dashboard.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"hero-engine/config"
	"hero-engine/core"
	"hero-engine/engine"
	"hero-engine/presets"
	"hero-engine/quality"
	"hero-engine/renderer"
)

type options struct {
	configPath string
	tier       string
	frames     int
	headless   bool
	scale      float64
	logPath    string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "scene set JSON file (built-in scenes when empty)")
	flag.StringVar(&opts.tier, "tier", "high", "capability tier to start from")
	flag.IntVar(&opts.frames, "frames", 0, "stop after this many frames (0 runs until quit)")
	flag.BoolVar(&opts.headless, "headless", false, "skip the dashboard and print a summary at the end")
	flag.Float64Var(&opts.scale, "load", 1, "initial load multiplier")
	flag.StringVar(&opts.logPath, "log", "", "write debug logs to this file")
	flag.Parse()

	if opts.logPath != "" {
		f, err := os.Create(opts.logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "soak: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		core.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	h, err := newHarness(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "soak: %v\n", err)
		os.Exit(1)
	}
	defer h.eng.Shutdown()

	if opts.headless {
		if opts.frames <= 0 {
			opts.frames = 3600
		}
		for i := 0; i < opts.frames; i++ {
			h.step()
		}
		fmt.Println(h.summary())
		return
	}

	if err := runDashboard(h, opts.frames); err != nil {
		fmt.Fprintf(os.Stderr, "soak: %v\n", err)
		os.Exit(1)
	}
}

// harness pairs an engine with a recorder and feeds each frame's modeled
// cost back in as the next frame's delta.
type harness struct {
	eng   *engine.Engine
	rec   *renderer.Recorder
	model loadModel
	ids   []string
	dt    time.Duration
	beats int
}

func newHarness(opts options) (*harness, error) {
	specs := presets.Defaults()
	var engineOpts []engine.Option
	if opts.configPath != "" {
		set, err := config.LoadSceneSet(opts.configPath)
		if err != nil {
			return nil, err
		}
		specs = set.Specs()
		engineOpts = append(engineOpts, set.Options()...)
	}
	tier, err := quality.ParseTier(opts.tier)
	if err != nil {
		return nil, err
	}
	engineOpts = append(engineOpts, engine.WithInitialTier(tier))

	rec := renderer.NewRecorder(1)
	eng, err := engine.New(rec, engineOpts...)
	if err != nil {
		return nil, err
	}
	h := &harness{
		eng:   eng,
		rec:   rec,
		model: defaultLoadModel(),
		dt:    eng.Config().TargetFrameBudget,
	}
	h.model.Scale = opts.scale
	for _, s := range specs {
		if err := eng.AddScene(s.Scene()); err != nil {
			return nil, fmt.Errorf("scene %q: %w", s.ID, err)
		}
		h.ids = append(h.ids, s.ID)
	}
	eng.Resize(1920, 1080)
	return h, nil
}

func (h *harness) step() {
	h.eng.Tick(h.dt)
	if s, ok := h.rec.Last(); ok {
		h.dt = h.model.cost(s)
	}
	// A beat every 30 frames keeps the emitters busy.
	if st := h.eng.Stats(); st.Frames%30 == 0 {
		h.eng.Pulse(2)
		h.beats++
	}
}

func (h *harness) summary() string {
	st := h.eng.Stats()
	return fmt.Sprintf("frames=%d tier=%s particles=%d/%d shadow=%d bloom=%t reflections=%t mean=%.2fms verdict=%s submitErrors=%d",
		st.Frames, st.Tier, st.LiveParticles, st.Profile.ParticleCount, st.Profile.ShadowResolution,
		st.Profile.BloomEnabled, st.Profile.ReflectionsEnabled, st.MeanFrameMs, st.Verdict, st.SubmitErrors)
}

func runDashboard(h *harness, limit int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	paused := false
	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return nil
				}
				if ev.Key() == tcell.KeyRight {
					h.eng.Next()
				}
				if ev.Key() != tcell.KeyRune {
					continue
				}
				switch r := ev.Rune(); {
				case r == 'q':
					return nil
				case r == 'n':
					h.eng.Next()
				case r == 'b':
					h.eng.Pulse(4)
				case r == '+' || r == '=':
					h.model.adjust(0.25)
				case r == '-':
					h.model.adjust(-0.25)
				case r == ' ':
					paused = !paused
				case r >= '1' && r <= '9':
					if i := int(r - '1'); i < len(h.ids) {
						h.eng.Select(h.ids[i])
					}
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			if !paused {
				h.step()
			}
			drawDashboard(screen, h, paused)
			if limit > 0 && int(h.eng.Stats().Frames) >= limit {
				return nil
			}
		}
	}
}
