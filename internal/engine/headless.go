package engine

import (
	"log"
	"time"
)

// Headless is a Renderer that draws nothing and logs a one-line summary
// every Every frames.
type Headless struct {
	Every uint64

	w, h     int
	lastLog  time.Time
	lastIdx  uint64
	Rendered uint64
}

func (h *Headless) Resize(w, ht int) {
	h.w, h.h = w, ht
}

func (h *Headless) Render(f Frame) error {
	h.Rendered++
	if h.Every == 0 || f.Index%h.Every != 0 {
		return nil
	}
	now := time.Now()
	fps := 0.0
	if !h.lastLog.IsZero() {
		if dt := now.Sub(h.lastLog).Seconds(); dt > 0 {
			fps = float64(f.Index-h.lastIdx) / dt
		}
	}
	h.lastLog, h.lastIdx = now, f.Index
	u := f.Uniforms
	log.Printf("frame %d t=%.2fs bass=%.3f mid=%.3f treble=%.3f %dx%d %.1f fps",
		f.Index, u.Time, u.Bass, u.Mid, u.Treble, h.w, h.h, fps)
	return nil
}
