package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"hero-engine/audio"
	"hero-engine/config"
	"hero-engine/core"
	"hero-engine/engine"
	"hero-engine/internal/opengl"
	"hero-engine/presets"
	"hero-engine/quality"
	"hero-engine/renderer"
	"hero-engine/scene"
	"hero-engine/telemetry"
)

type options struct {
	configPath string
	exportPath string
	tier       string
	logLevel   string
	audioPath  string
	bpm        float64
	telemetry  string
	width      int
	height     int
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "scene set JSON file (built-in scenes when empty)")
	flag.StringVar(&o.exportPath, "export", "", "write the built-in scene set to this file and exit")
	flag.StringVar(&o.tier, "tier", "", "force a capability tier (low, medium, high) instead of probing")
	flag.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.StringVar(&o.audioPath, "audio", "", "WAV file driving beat pulses")
	flag.Float64Var(&o.bpm, "bpm", 0, "metronome tempo driving beat pulses when no -audio is given")
	flag.StringVar(&o.telemetry, "telemetry", "", "serve websocket telemetry on this address, e.g. :8090")
	flag.IntVar(&o.width, "width", 1280, "window width")
	flag.IntVar(&o.height, "height", 720, "window height")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "bad -log-level: %v\n", err)
		os.Exit(2)
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if opts.exportPath != "" {
		if err := config.SaveSceneSet(opts.exportPath, config.FromSpecs(presets.Defaults())); err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", opts.exportPath)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "demo: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	specs := presets.Defaults()
	var engineOpts []engine.Option
	if opts.configPath != "" {
		set, err := config.LoadSceneSet(opts.configPath)
		if err != nil {
			return err
		}
		specs = set.Specs()
		engineOpts = append(engineOpts, set.Options()...)
	}
	if opts.tier != "" {
		t, err := quality.ParseTier(opts.tier)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, engine.WithInitialTier(t))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Initializing Hero...")
	cfg := core.DefaultWindowConfig()
	cfg.Width = opts.width
	cfg.Height = opts.height
	window, err := core.NewWindow(cfg)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	if err := opengl.Init(); err != nil {
		return fmt.Errorf("init OpenGL: %w", err)
	}
	fbw, fbh := window.GetFramebufferSize()
	re, err := renderer.NewRenderEngine(window, fbw, fbh)
	if err != nil {
		return err
	}

	eng, err := engine.New(re, engineOpts...)
	if err != nil {
		re.Close()
		return err
	}
	defer eng.Shutdown()

	ids := make([]string, 0, len(specs))
	for _, s := range specs {
		if err := eng.AddScene(s.Scene()); err != nil {
			return fmt.Errorf("scene %q: %w", s.ID, err)
		}
		ids = append(ids, s.ID)
	}
	eng.Resize(fbw, fbh)

	// GL strings must be read on the context thread; the probe goroutine
	// only classifies the snapshot.
	caps := opengl.QueryCapabilities()
	eng.Probe(ctx, quality.HostSurfaceFunc(func() (quality.CapabilityInfo, error) {
		return caps, nil
	}))

	bindInput(window, eng, ids)

	player := audio.NewPlayer()
	defer player.Close()
	switch {
	case opts.audioPath != "":
		if err := player.PlayFile(opts.audioPath, eng.Pulse); err != nil {
			core.Logger().Warn("audio disabled", "err", err)
		}
	case opts.bpm > 0:
		if err := player.PlayMetronome(opts.bpm, eng.Pulse); err != nil {
			core.Logger().Warn("audio disabled", "err", err)
		}
	}

	if opts.telemetry != "" {
		hub := telemetry.NewHub(eng, eng)
		go hub.Run(ctx, 250*time.Millisecond)
		go func() {
			if err := hub.ListenAndServe(ctx, opts.telemetry); err != nil {
				core.Logger().Warn("telemetry stopped", "err", err)
			}
		}()
		fmt.Printf("Telemetry on ws://%s/ws\n", opts.telemetry)
	}

	fmt.Println("Controls:")
	fmt.Println("  1-9          - Select scene")
	fmt.Println("  Right/Space  - Next scene")
	fmt.Println("  B            - Beat pulse")
	fmt.Println("  P            - Print stats")
	fmt.Println("  ESC          - Exit")

	status := newStatusLine(500 * time.Millisecond)
	lastTime := window.Time()
	for !window.ShouldClose() {
		if ctx.Err() != nil {
			window.Close()
			break
		}
		now := window.Time()
		dt := time.Duration((now - lastTime) * float64(time.Second))
		lastTime = now

		eng.Tick(dt)

		if title := status.update(dt, eng.Stats()); title != "" {
			window.SetTitle(title)
		}
		window.PollEvents()
	}
	return nil
}

func bindInput(window *core.Window, eng *engine.Engine, ids []string) {
	var lastX, lastY float32
	window.SetCursorCallback(func(x, y float32) {
		lastX, lastY = x, y
		eng.Pointer(scene.PointerEvent{X: x, Y: y, Kind: scene.PointerMove})
	})
	window.SetButtonCallback(func(pressed bool) {
		kind := scene.PointerUp
		if pressed {
			kind = scene.PointerDown
		}
		eng.Pointer(scene.PointerEvent{X: lastX, Y: lastY, Kind: kind})
	})
	window.SetEnterCallback(func(entered bool) {
		if !entered {
			eng.Pointer(scene.PointerEvent{X: lastX, Y: lastY, Kind: scene.PointerLeave})
		}
	})
	window.SetResizeCallback(eng.Resize)
	window.SetKeyCallback(func(key int) {
		switch {
		case key >= core.Key1 && key <= core.Key9:
			if i := key - core.Key1; i < len(ids) {
				eng.Select(ids[i])
			}
		case key == core.KeyRight || key == core.KeySpace:
			eng.Next()
		case key == core.KeyB:
			eng.Pulse(3)
		case key == core.KeyP:
			printStats(eng.Stats())
		case key == core.KeyEscape:
			window.Close()
		}
	})
}

func printStats(st engine.Stats) {
	fmt.Printf("frames=%d scene=%s phase=%s tier=%s particles=%d/%d mean=%.2fms verdict=%s dropped=%d/%d submitErrors=%d\n",
		st.Frames, st.Scene, st.Phase, st.Tier, st.LiveParticles, st.Profile.ParticleCount,
		st.MeanFrameMs, st.Verdict, st.QueueDropped, st.SpawnDropped, st.SubmitErrors)
}
