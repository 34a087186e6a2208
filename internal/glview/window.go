package glview

import (
	"context"
	"fmt"
	"log"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/olivier-w/orb/internal/engine"
	"github.com/olivier-w/orb/internal/mesh"
)

const (
	defaultWidth  = 1280
	defaultHeight = 720
	volumeStep    = 0.05
	nudgeStep     = 0.1
)

// Controls is the playback surface the window's keys drive. It may be nil.
type Controls interface {
	TogglePause()
	AdjustVolume(delta float64)
}

// Window is a glfw window with a current OpenGL 4.1 core context.
type Window struct {
	win      *glfw.Window
	renderer *Renderer
}

// Open creates the window and the GL renderer. It must be called from the
// main goroutine with the OS thread locked.
func Open(title string, sphere *mesh.Sphere) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(defaultWidth, defaultHeight, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	log.Printf("opengl %s", gl.GoStr(gl.GetString(gl.VERSION)))

	r, err := NewRenderer(sphere)
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}
	return &Window{win: win, renderer: r}, nil
}

// Renderer returns the surface to hand to the scheduler.
func (w *Window) Renderer() *Renderer { return w.renderer }

// Run drives sched from the swap loop until the window closes or ctx is
// done. Buffer swaps are synced to the display, which paces the frames.
func (w *Window) Run(ctx context.Context, sched *engine.Scheduler, controls Controls) {
	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		sched.Resize(width, height)
	})
	w.win.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press && action != glfw.Repeat {
			return
		}
		w.handleKey(win, key, mods, sched, controls)
	})
	sched.Resize(w.win.GetFramebufferSize())

	for !w.win.ShouldClose() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		glfw.PollEvents()
		if err := sched.Tick(); err != nil {
			log.Printf("tick: %v", err)
		}
		w.win.SwapBuffers()
	}
}

func (w *Window) handleKey(win *glfw.Window, key glfw.Key, mods glfw.ModifierKey, sched *engine.Scheduler, controls Controls) {
	shift := mods&glfw.ModShift != 0
	step := nudgeStep
	if shift {
		step = -nudgeStep
	}
	switch key {
	case glfw.KeyEscape, glfw.KeyQ:
		win.SetShouldClose(true)
	case glfw.KeySpace:
		if controls != nil {
			controls.TogglePause()
		}
	case glfw.KeyUp, glfw.KeyEqual, glfw.KeyKPAdd:
		if controls != nil {
			controls.AdjustVolume(volumeStep)
		}
	case glfw.KeyDown, glfw.KeyMinus, glfw.KeyKPSubtract:
		if controls != nil {
			controls.AdjustVolume(-volumeStep)
		}
	case glfw.KeyG:
		sched.Adjust(func(t engine.Tunables) engine.Tunables {
			t.GlowStrength = max(0, t.GlowStrength+step)
			return t
		})
	case glfw.KeyD:
		sched.Adjust(func(t engine.Tunables) engine.Tunables {
			t.DistortionFactor = max(0, t.DistortionFactor+step)
			return t
		})
	case glfw.KeyB:
		sched.Adjust(func(t engine.Tunables) engine.Tunables {
			t.Bloom.Enabled = !t.Bloom.Enabled
			return t
		})
	case glfw.KeyS:
		sched.Adjust(func(t engine.Tunables) engine.Tunables {
			t.Smoothing = !t.Smoothing
			return t
		})
	}
}

// Close releases GL resources and terminates glfw.
func (w *Window) Close() {
	w.renderer.Destroy()
	w.win.Destroy()
	glfw.Terminate()
}
