// Package engine runs the per-frame control loop: read the clock, analyze
// the latest audio, extract bands, publish uniforms, move particles and hand
// the frame to a render surface.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/olivier-w/orb/internal/bands"
	"github.com/olivier-w/orb/internal/clock"
	"github.com/olivier-w/orb/internal/params"
	"github.com/olivier-w/orb/internal/particles"
	"github.com/olivier-w/orb/internal/postfx"
)

// Renderer is a render surface.
type Renderer interface {
	Resize(w, h int)
	Render(Frame) error
}

// SpectrumSource yields the current byte spectrum.
type SpectrumSource interface {
	Spectrum() ([]uint8, error)
}

// Frame is everything a surface needs to draw one tick. Particles is a
// read-only view valid until the next tick.
type Frame struct {
	Index     uint64
	Uniforms  params.Uniforms
	Particles []mgl32.Vec3
	Bloom     postfx.Bloom
}

// State of a Scheduler.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Tunables are the settings that may change while running.
type Tunables struct {
	GlowStrength     float64
	DistortionFactor float64
	Bloom            postfx.Bloom

	Smoothing       bool
	SmoothFrequency float64
	SmoothDamping   float64
}

// DefaultTunables matches the scene's initial look with smoothing off.
func DefaultTunables() Tunables {
	return Tunables{
		GlowStrength:     params.DefaultGlowStrength,
		DistortionFactor: params.DefaultDistortionFactor,
		Bloom:            postfx.DefaultBloom,
		SmoothFrequency:  6.0,
		SmoothDamping:    1.0,
	}
}

// Options wires a Scheduler.
type Options struct {
	Clock     clock.Clock
	Spectrum  SpectrumSource
	Extractor *bands.Extractor
	Particles *particles.Set
	Renderer  Renderer
	FPS       int
	Tunables  Tunables
	Width     int
	Height    int
}

// Stats is a snapshot of the scheduler.
type Stats struct {
	State    State
	Frames   uint64
	Faults   uint64
	Uniforms params.Uniforms
}

// Scheduler owns the uniforms and particle set and advances them once per
// Tick. Tick, Resize and Stats may be called from different goroutines but
// ticks never overlap.
type Scheduler struct {
	mu sync.Mutex

	clock     clock.Clock
	spectrum  SpectrumSource
	extractor *bands.Extractor
	particles *particles.Set
	renderer  Renderer
	fps       int

	tunables Tunables
	smoother *bands.Smoother
	pending  chan Tunables

	state     State
	uniforms  params.Uniforms
	amps      bands.Amplitudes
	particle  float64
	frames    uint64
	faults    uint64
	lastFault string
	lastTime  float64
}

// New validates opts and returns an idle scheduler.
func New(opts Options) (*Scheduler, error) {
	if opts.Spectrum == nil {
		return nil, errors.New("scheduler needs a spectrum source")
	}
	if opts.Extractor == nil {
		return nil, errors.New("scheduler needs a band extractor")
	}
	if opts.Renderer == nil {
		return nil, errors.New("scheduler needs a renderer")
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewMonotonic()
	}
	if opts.Particles == nil {
		opts.Particles = particles.New(0, 0, nil)
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Tunables == (Tunables{}) {
		opts.Tunables = DefaultTunables()
	}

	s := &Scheduler{
		clock:     opts.Clock,
		spectrum:  opts.Spectrum,
		extractor: opts.Extractor,
		particles: opts.Particles,
		renderer:  opts.Renderer,
		fps:       opts.FPS,
		pending:   make(chan Tunables, 1),
		uniforms:  params.Default(opts.Width, opts.Height),
	}
	s.apply(opts.Tunables)
	return s, nil
}

// FPS returns the target frame rate.
func (s *Scheduler) FPS() int { return s.fps }

// Interval returns the time between frames at the target rate.
func (s *Scheduler) Interval() time.Duration {
	return time.Second / time.Duration(s.fps)
}

// Tunables returns the settings currently in effect.
func (s *Scheduler) Tunables() Tunables {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tunables
}

// Reconfigure posts new tunables. They take effect at the start of the next
// tick; a newer post replaces one not yet applied.
func (s *Scheduler) Reconfigure(t Tunables) {
	for {
		select {
		case s.pending <- t:
			return
		default:
			select {
			case <-s.pending:
			default:
			}
		}
	}
}

// Adjust posts fn applied to the newest tunables, pending or in effect.
func (s *Scheduler) Adjust(fn func(Tunables) Tunables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	base := s.tunables
	select {
	case t := <-s.pending:
		base = t
	default:
	}
	s.Reconfigure(fn(base))
}

func (s *Scheduler) apply(t Tunables) {
	if t.Smoothing && (s.smoother == nil || t.SmoothFrequency != s.tunables.SmoothFrequency || t.SmoothDamping != s.tunables.SmoothDamping) {
		s.smoother = bands.NewSmoother(s.fps, t.SmoothFrequency, t.SmoothDamping)
	}
	if !t.Smoothing {
		s.smoother = nil
	}
	s.tunables = t
}

// Tick runs one frame.
func (s *Scheduler) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case t := <-s.pending:
		s.apply(t)
	default:
	}
	s.state = Running

	now := s.clock.Elapsed()
	var dt float64
	if s.frames > 0 {
		dt = now - s.lastTime
	}
	s.lastTime = now
	if err := s.sample(dt); err != nil {
		s.fault(err)
	} else {
		s.lastFault = ""
	}

	s.uniforms.Time = now
	s.uniforms.Bass = s.amps.Bass
	s.uniforms.Mid = s.amps.Mid
	s.uniforms.Treble = s.amps.Treble
	s.uniforms.GlowStrength = s.tunables.GlowStrength
	s.uniforms.DistortionFactor = s.tunables.DistortionFactor

	s.particles.Update(now, s.particle)

	frame := Frame{
		Index:     s.frames,
		Uniforms:  s.uniforms,
		Particles: s.particles.Positions(),
		Bloom:     s.tunables.Bloom,
	}
	s.frames++
	if err := s.renderer.Render(frame); err != nil {
		return fmt.Errorf("render frame %d: %w", frame.Index, err)
	}
	return nil
}

// sample refreshes the amplitudes. dt is the clock time since the previous
// tick and paces the smoother. On error the previous values are kept.
func (s *Scheduler) sample(dt float64) error {
	spec, err := s.spectrum.Spectrum()
	if err != nil {
		return err
	}
	amps, err := s.extractor.Extract(spec)
	if err != nil {
		return err
	}
	particle, err := s.extractor.Particle(spec)
	if err != nil {
		return err
	}
	if s.smoother != nil {
		amps, particle = s.smoother.Advance(dt, amps, particle)
	}
	s.amps = amps
	s.particle = particle
	return nil
}

func (s *Scheduler) fault(err error) {
	s.faults++
	if msg := err.Error(); msg != s.lastFault {
		log.Printf("frame %d: keeping previous amplitudes: %v", s.frames, err)
		s.lastFault = msg
	}
}

// Resize updates the resolution uniform and the render target. Sizes that
// are not positive are ignored.
func (s *Scheduler) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uniforms.Resolution = mgl64.Vec2{float64(w), float64(h)}
	s.renderer.Resize(w, h)
}

// Run ticks at interval until ctx is done. Ticks missed while a frame was
// still rendering are dropped. Render errors are logged and the loop goes on.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = s.Interval()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				log.Printf("tick: %v", err)
			}
		}
	}
}

// Stats returns a snapshot of the loop.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		State:    s.state,
		Frames:   s.frames,
		Faults:   s.faults,
		Uniforms: s.uniforms,
	}
}
