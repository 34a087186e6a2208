package ui

import (
	"fmt"
	"strings"

	"github.com/olivier-w/orb/internal/engine"
	"github.com/olivier-w/orb/internal/params"
)

var meterRamp = []rune(" ▁▂▃▄▅▆▇█")

func renderProgressBar(elapsed, total float64, width int) string {
	if width < 10 {
		width = 10
	}
	barWidth := width - 2

	var ratio float64
	if total > 0 {
		ratio = elapsed / total
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	filled := int(ratio * float64(barWidth))
	return strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

func renderTunables(t engine.Tunables) string {
	bloom := "off"
	if t.Bloom.Enabled {
		bloom = "on"
	}
	s := fmt.Sprintf("glow %.1f  dist %.1f  bloom %s", t.GlowStrength, t.DistortionFactor, bloom)
	if t.Smoothing {
		s += "  smooth"
	}
	return s
}

// renderBandMeter draws one bar glyph per band from the last frame's
// uniforms. Values at or above 1 show a full bar.
func renderBandMeter(u params.Uniforms) string {
	var b strings.Builder
	for i, v := range [3]float64{u.Bass, u.Mid, u.Treble} {
		idx := int(v * float64(len(meterRamp)-1))
		idx = max(0, min(len(meterRamp)-1, idx))
		b.WriteString(meterStyles[i].Render(string(meterRamp[idx])))
	}
	return b.String()
}
