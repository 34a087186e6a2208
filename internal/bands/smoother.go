package bands

import "github.com/charmbracelet/harmonica"

type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(dt, frequency, damping float64, n int) springField {
	return springField{
		spring: harmonica.NewSpring(dt, frequency, damping),
		pos:    make([]float64, n),
		vel:    make([]float64, n),
	}
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	return p
}

// Smoother eases band values toward each frame's target with a damped
// spring per band, trading latency for less flicker.
type Smoother struct {
	field     springField
	nominal   float64
	dt        float64
	frequency float64
	damping   float64
}

// NewSmoother creates a smoother whose nominal step is one frame at fps.
func NewSmoother(fps int, frequency, damping float64) *Smoother {
	dt := harmonica.FPS(fps)
	return &Smoother{
		field:     newSpringField(dt, frequency, damping, 4),
		nominal:   dt,
		dt:        dt,
		frequency: frequency,
		damping:   damping,
	}
}

// Step advances the springs one nominal frame toward amps and particle.
func (s *Smoother) Step(amps Amplitudes, particle float64) (Amplitudes, float64) {
	return s.Advance(0, amps, particle)
}

// Advance moves the springs dt seconds toward amps and particle. A dt that
// is not positive means one nominal frame.
func (s *Smoother) Advance(dt float64, amps Amplitudes, particle float64) (Amplitudes, float64) {
	if dt <= 0 {
		dt = s.nominal
	}
	if dt != s.dt {
		s.field.spring = harmonica.NewSpring(dt, s.frequency, s.damping)
		s.dt = dt
	}
	return Amplitudes{
		Bass:   s.field.step(0, amps.Bass),
		Mid:    s.field.step(1, amps.Mid),
		Treble: s.field.step(2, amps.Treble),
	}, s.field.step(3, particle)
}

// Reset drops spring state so the next Step starts from rest at zero.
func (s *Smoother) Reset() {
	for i := range s.field.pos {
		s.field.pos[i] = 0
		s.field.vel[i] = 0
	}
}
