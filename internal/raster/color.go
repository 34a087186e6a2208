package raster

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

type colorProfile uint8

const (
	colorNone colorProfile = iota
	colorANSI16
	colorANSI256
	colorTrueColor
)

type colorRGB struct {
	R uint8
	G uint8
	B uint8
}

func (c colorRGB) key() uint32 { return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B) }

var (
	profileOnce sync.Once
	profile     colorProfile
	seqCache    sync.Map
)

func currentColorProfile() colorProfile {
	profileOnce.Do(func() {
		profile = detectColorProfile(os.LookupEnv)
	})
	return profile
}

func detectColorProfile(lookup func(string) (string, bool)) colorProfile {
	if _, disabled := lookup("NO_COLOR"); disabled {
		return colorNone
	}
	term, _ := lookup("TERM")
	colorTerm, _ := lookup("COLORTERM")
	term = strings.ToLower(term)
	colorTerm = strings.ToLower(colorTerm)
	switch {
	case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
		return colorTrueColor
	case strings.Contains(term, "256color"):
		return colorANSI256
	case term == "", term == "dumb":
		return colorNone
	default:
		return colorANSI16
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// quantize clamps a linear color to displayable bytes.
func quantize(c mgl64.Vec3) colorRGB {
	return colorRGB{
		R: uint8(clamp01(c.X())*255 + 0.5),
		G: uint8(clamp01(c.Y())*255 + 0.5),
		B: uint8(clamp01(c.Z())*255 + 0.5),
	}
}

// cellState tracks the colors last emitted so runs of equal cells share one
// escape sequence.
type cellState struct {
	profile colorProfile
	fg, bg  uint32
}

const unset = ^uint32(0)

func newCellState(p colorProfile) cellState {
	return cellState{profile: p, fg: unset, bg: unset}
}

func (s *cellState) set(sb *strings.Builder, fg, bg colorRGB) {
	if s.profile == colorNone {
		return
	}
	if k := fg.key(); k != s.fg {
		sb.WriteString(colorSequence(s.profile, fg, false))
		s.fg = k
	}
	if k := bg.key(); k != s.bg {
		sb.WriteString(colorSequence(s.profile, bg, true))
		s.bg = k
	}
}

func (s *cellState) reset(sb *strings.Builder) {
	if s.profile == colorNone || (s.fg == unset && s.bg == unset) {
		return
	}
	sb.WriteString("\x1b[0m")
	s.fg, s.bg = unset, unset
}

var ansi16 = []colorRGB{
	{R: 0, G: 0, B: 0},
	{R: 205, G: 49, B: 49},
	{R: 13, G: 188, B: 121},
	{R: 229, G: 229, B: 16},
	{R: 36, G: 114, B: 200},
	{R: 188, G: 63, B: 188},
	{R: 17, G: 168, B: 205},
	{R: 229, G: 229, B: 229},
}

func colorSequence(profile colorProfile, c colorRGB, background bool) string {
	key := uint32(profile)<<25 | c.key()
	if background {
		key |= 1 << 24
	}
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	layer := 38
	if background {
		layer = 48
	}
	var seq string
	switch profile {
	case colorTrueColor:
		seq = fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", layer, c.R, c.G, c.B)
	case colorANSI256:
		r := int(c.R) * 5 / 255
		g := int(c.G) * 5 / 255
		b := int(c.B) * 5 / 255
		seq = fmt.Sprintf("\x1b[%d;5;%dm", layer, 16+36*r+6*g+b)
	case colorANSI16:
		best := 0
		bestDist := math.MaxFloat64
		for i, p := range ansi16 {
			dr := float64(c.R) - float64(p.R)
			dg := float64(c.G) - float64(p.G)
			db := float64(c.B) - float64(p.B)
			d := dr*dr + dg*dg + db*db
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		seq = fmt.Sprintf("\x1b[%dm", layer-8+best)
	}

	seqCache.Store(key, seq)
	return seq
}
