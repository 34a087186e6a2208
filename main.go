package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/orb/internal/analyzer"
	"github.com/olivier-w/orb/internal/bands"
	"github.com/olivier-w/orb/internal/clock"
	"github.com/olivier-w/orb/internal/config"
	"github.com/olivier-w/orb/internal/engine"
	"github.com/olivier-w/orb/internal/glview"
	"github.com/olivier-w/orb/internal/media"
	"github.com/olivier-w/orb/internal/mesh"
	"github.com/olivier-w/orb/internal/particles"
	"github.com/olivier-w/orb/internal/player"
	"github.com/olivier-w/orb/internal/raster"
	"github.com/olivier-w/orb/internal/ui"
)

// glfw needs every call on the main thread.
func init() {
	runtime.LockOSThread()
}

type options struct {
	configPath string
	renderer   string
	fps        int
	logPath    string
	once       bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", config.DefaultPath(), "TOML config file")
	flag.StringVar(&opts.renderer, "renderer", "", "render surface: term, gl or headless")
	flag.IntVar(&opts.fps, "fps", 0, "target frames per second")
	flag.StringVar(&opts.logPath, "log", "", "write a debug log to this file")
	flag.BoolVar(&opts.once, "once", false, "play the track once instead of looping")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: orb [flags] [audio file]\n\nformats: %s\n\n", media.SupportedExtsList())
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(opts, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, path string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.renderer != "" {
		cfg.Renderer = opts.renderer
	}
	if opts.fps > 0 {
		cfg.FPS = opts.fps
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	closeLog, err := setupLogging(opts.logPath, cfg.Renderer)
	if err != nil {
		return err
	}
	defer closeLog()

	if path == "" {
		path, err = pickTrack()
		if err != nil || path == "" {
			return err
		}
	}

	meta := player.ReadMetadata(path)
	p, err := openPlayer(path)
	if err != nil {
		// Keep going: the visuals run on silence.
		log.Printf("audio disabled: %v", err)
	}
	var (
		src   analyzer.SampleSource
		audio ui.Audio
		ctrl  glview.Controls
	)
	if p != nil {
		defer p.Close()
		src, audio, ctrl = p.Tap(), p, p
		p.Play(!opts.once)
	}

	an, err := analyzer.New(src, cfg.AnalyzerOptions())
	if err != nil {
		return err
	}
	ext, err := bands.NewExtractor(cfg.Layout(), cfg.Bands.Divisor)
	if err != nil {
		return err
	}
	sphere, err := mesh.NewSphere(cfg.Mesh.Radius, cfg.Mesh.Segments, cfg.Mesh.Segments)
	if err != nil {
		return err
	}
	cloud := particles.New(cfg.Particles.Count, cfg.Particles.Spread, nil)
	cloud.Height = cfg.Particles.Height

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	newScheduler := func(r engine.Renderer) (*engine.Scheduler, error) {
		sched, err := engine.New(engine.Options{
			Clock:     clock.NewMonotonic(),
			Spectrum:  an,
			Extractor: ext,
			Particles: cloud,
			Renderer:  r,
			FPS:       cfg.FPS,
			Tunables:  cfg.Tunables(),
		})
		if err != nil {
			return nil, err
		}
		go watchConfig(ctx, opts.configPath, sched)
		return sched, nil
	}

	switch cfg.Renderer {
	case "gl":
		win, err := glview.Open(windowTitle(meta), sphere)
		if err != nil {
			return err
		}
		defer win.Close()
		sched, err := newScheduler(win.Renderer())
		if err != nil {
			return err
		}
		win.Run(ctx, sched, ctrl)
		return nil

	case "headless":
		sched, err := newScheduler(&engine.Headless{Every: uint64(cfg.FPS) * 5})
		if err != nil {
			return err
		}
		sched.Resize(1280, 720)
		if err := sched.Run(ctx, sched.Interval()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil

	default:
		surface := raster.New(sphere)
		sched, err := newScheduler(surface)
		if err != nil {
			return err
		}
		model := ui.New(sched, surface, audio, meta)
		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
}

// setupLogging sends the log to logPath when given. Otherwise only the
// headless surface logs, to stderr; the terminal UI owns the screen.
func setupLogging(logPath, renderer string) (func() error, error) {
	if logPath != "" {
		f, err := tea.LogToFile(logPath, "orb")
		if err != nil {
			return nil, err
		}
		return f.Close, nil
	}
	if renderer == "headless" {
		log.SetOutput(os.Stderr)
		log.SetPrefix("orb ")
		return func() error { return nil }, nil
	}
	log.SetOutput(io.Discard)
	return func() error { return nil }, nil
}

func openPlayer(path string) (*player.Player, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !media.IsSupportedExt(ext) {
		return nil, fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList())
	}
	return player.Open(path)
}

// pickTrack shows the file browser. An empty path means the user cancelled.
func pickTrack() (string, error) {
	browser := ui.NewBrowser(".")
	if err := browser.Error(); err != nil {
		return "", err
	}
	final, err := tea.NewProgram(browser, tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	bm, ok := final.(ui.BrowserModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type from browser")
	}
	result := bm.Result()
	if result.Cancelled {
		return "", nil
	}
	return result.Path, nil
}

func watchConfig(ctx context.Context, path string, sched *engine.Scheduler) {
	if path == "" {
		return
	}
	err := config.Watch(ctx, path, func(c config.Config) {
		log.Printf("config reloaded from %s", path)
		sched.Reconfigure(c.Tunables())
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("config watch: %v", err)
	}
}

func windowTitle(meta player.Metadata) string {
	if meta.Title == "" {
		return "orb"
	}
	return "orb · " + meta.Title
}
