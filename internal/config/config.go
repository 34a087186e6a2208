// Package config loads orb's TOML settings and watches the file for edits.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/olivier-w/orb/internal/analyzer"
	"github.com/olivier-w/orb/internal/bands"
	"github.com/olivier-w/orb/internal/engine"
	"github.com/olivier-w/orb/internal/mesh"
	"github.com/olivier-w/orb/internal/params"
	"github.com/olivier-w/orb/internal/particles"
	"github.com/olivier-w/orb/internal/postfx"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

var renderers = map[string]bool{"term": true, "gl": true, "headless": true}

type Config struct {
	FPS      int    `toml:"fps"`
	Renderer string `toml:"renderer"`

	Analyzer  Analyzer  `toml:"analyzer"`
	Bands     Bands     `toml:"bands"`
	Shading   Shading   `toml:"shading"`
	Bloom     Bloom     `toml:"bloom"`
	Particles Particles `toml:"particles"`
	Mesh      Mesh      `toml:"mesh"`
	Smoothing Smoothing `toml:"smoothing"`
}

type Analyzer struct {
	Bins        int     `toml:"bins"`
	MinDecibels float64 `toml:"min_decibels"`
	MaxDecibels float64 `toml:"max_decibels"`
	Smoothing   float64 `toml:"smoothing"`
}

type Bands struct {
	Bass     int     `toml:"bass"`
	Mid      int     `toml:"mid"`
	Treble   int     `toml:"treble"`
	Particle int     `toml:"particle"`
	Divisor  float64 `toml:"divisor"`
}

type Shading struct {
	GlowStrength     float64 `toml:"glow_strength"`
	DistortionFactor float64 `toml:"distortion_factor"`
}

type Bloom struct {
	Enabled   bool    `toml:"enabled"`
	Intensity float64 `toml:"intensity"`
	Threshold float64 `toml:"threshold"`
	Radius    float64 `toml:"radius"`
}

type Particles struct {
	Count  int     `toml:"count"`
	Spread float64 `toml:"spread"`
	Height float64 `toml:"height"`
}

type Mesh struct {
	Radius   float64 `toml:"radius"`
	Segments int     `toml:"segments"`
}

type Smoothing struct {
	Enabled   bool    `toml:"enabled"`
	Frequency float64 `toml:"frequency"`
	Damping   float64 `toml:"damping"`
}

// Default returns the settings the scene was designed with.
func Default() Config {
	t := engine.DefaultTunables()
	return Config{
		FPS:      60,
		Renderer: "term",
		Analyzer: Analyzer{
			Bins:        analyzer.DefaultBins,
			MinDecibels: analyzer.DefaultMinDecibels,
			MaxDecibels: analyzer.DefaultMaxDecibels,
		},
		Bands: Bands{
			Bass:     bands.DefaultLayout.Bass,
			Mid:      bands.DefaultLayout.Mid,
			Treble:   bands.DefaultLayout.Treble,
			Particle: bands.DefaultLayout.Particle,
			Divisor:  bands.DefaultDivisor,
		},
		Shading: Shading{
			GlowStrength:     params.DefaultGlowStrength,
			DistortionFactor: params.DefaultDistortionFactor,
		},
		Bloom: Bloom{
			Enabled:   postfx.DefaultBloom.Enabled,
			Intensity: postfx.DefaultBloom.Intensity,
			Threshold: postfx.DefaultBloom.Threshold,
			Radius:    postfx.DefaultBloom.Radius,
		},
		Particles: Particles{
			Count:  particles.DefaultCount,
			Spread: particles.DefaultSpread,
			Height: particles.DefaultHeight,
		},
		Mesh: Mesh{
			Radius:   mesh.DefaultRadius,
			Segments: mesh.DefaultSegments,
		},
		Smoothing: Smoothing{
			Frequency: t.SmoothFrequency,
			Damping:   t.SmoothDamping,
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/orb/config.toml or the OS equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "orb", "config.toml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.FPS <= 0 || c.FPS > 240:
		return fmt.Errorf("%w: fps must be in 1..240, got %d", ErrInvalid, c.FPS)
	case !renderers[c.Renderer]:
		return fmt.Errorf("%w: unknown renderer %q", ErrInvalid, c.Renderer)
	case c.Analyzer.Bins < 2 || c.Analyzer.Bins&(c.Analyzer.Bins-1) != 0:
		return fmt.Errorf("%w: analyzer bins must be a power of two, got %d", ErrInvalid, c.Analyzer.Bins)
	case c.Analyzer.MaxDecibels <= c.Analyzer.MinDecibels:
		return fmt.Errorf("%w: max_decibels must exceed min_decibels", ErrInvalid)
	case c.Analyzer.Smoothing < 0 || c.Analyzer.Smoothing >= 1:
		return fmt.Errorf("%w: analyzer smoothing must be in [0,1), got %v", ErrInvalid, c.Analyzer.Smoothing)
	case c.Bands.Divisor <= 0:
		return fmt.Errorf("%w: band divisor must be positive, got %v", ErrInvalid, c.Bands.Divisor)
	case c.Bloom.Intensity < 0 || c.Bloom.Radius < 0:
		return fmt.Errorf("%w: bloom intensity and radius must not be negative", ErrInvalid)
	case c.Particles.Count < 0:
		return fmt.Errorf("%w: particle count must not be negative, got %d", ErrInvalid, c.Particles.Count)
	case c.Mesh.Radius <= 0 || c.Mesh.Segments < 3:
		return fmt.Errorf("%w: mesh needs a positive radius and at least 3 segments", ErrInvalid)
	case c.Smoothing.Enabled && (c.Smoothing.Frequency <= 0 || c.Smoothing.Damping < 0):
		return fmt.Errorf("%w: smoothing needs a positive frequency and non-negative damping", ErrInvalid)
	}
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Layout returns the band layout for the configured bin count. Indices left
// at their defaults follow the bin count; explicit ones are used as given.
func (c Config) Layout() bands.Layout {
	l := bands.Layout{
		Size:     bands.DefaultLayout.Size,
		Bass:     c.Bands.Bass,
		Mid:      c.Bands.Mid,
		Treble:   c.Bands.Treble,
		Particle: c.Bands.Particle,
	}
	if l == bands.DefaultLayout {
		return l.Scale(c.Analyzer.Bins)
	}
	l.Size = c.Analyzer.Bins
	return l
}

// AnalyzerOptions returns the analyzer settings.
func (c Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		Bins:        c.Analyzer.Bins,
		MinDecibels: c.Analyzer.MinDecibels,
		MaxDecibels: c.Analyzer.MaxDecibels,
		Smoothing:   c.Analyzer.Smoothing,
	}
}

// Tunables returns the settings that can change while running.
func (c Config) Tunables() engine.Tunables {
	return engine.Tunables{
		GlowStrength:     c.Shading.GlowStrength,
		DistortionFactor: c.Shading.DistortionFactor,
		Bloom: postfx.Bloom{
			Enabled:   c.Bloom.Enabled,
			Intensity: c.Bloom.Intensity,
			Threshold: c.Bloom.Threshold,
			Radius:    c.Bloom.Radius,
		},
		Smoothing:       c.Smoothing.Enabled,
		SmoothFrequency: c.Smoothing.Frequency,
		SmoothDamping:   c.Smoothing.Damping,
	}
}
