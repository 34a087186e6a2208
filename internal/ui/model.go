package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/orb/internal/engine"
	"github.com/olivier-w/orb/internal/player"
	"github.com/olivier-w/orb/internal/util"
)

// lines drawn around the visualization: header, status, help
const chromeLines = 3

const (
	volumeStep = 0.05
	nudgeStep  = 0.1
)

// Audio is the playback control surface the UI needs. *player.Player
// satisfies it.
type Audio interface {
	TogglePause()
	Paused() bool
	Volume() float64
	AdjustVolume(delta float64)
	Position() time.Duration
	Duration() time.Duration
	Done() <-chan struct{}
	Close()
}

// Surface is a render surface that can be shown as terminal text.
type Surface interface {
	View() string
}

// Model is the Bubbletea model for the orb TUI. Every frame message runs
// one scheduler tick.
type Model struct {
	sched   *engine.Scheduler
	surface Surface
	audio   Audio
	meta    player.Metadata

	keys keyMap
	help help.Model

	width    int
	height   int
	ended    bool
	quitting bool
	lastErr  string
}

// New creates a Model. audio may be nil when no track could be opened; the
// visualization then runs on silence.
func New(sched *engine.Scheduler, surface Surface, audio Audio, meta player.Metadata) Model {
	return Model{
		sched:   sched,
		surface: surface,
		audio:   audio,
		meta:    meta,
		keys:    defaultKeys(),
		help:    help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(m.sched.Interval()),
		checkDone(m.audio),
		tea.SetWindowTitle(windowTitle(m.meta.Title, false)),
	)
}

func checkDone(a Audio) tea.Cmd {
	if a == nil {
		return nil
	}
	return func() tea.Msg {
		<-a.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		if m.quitting {
			return m, nil
		}
		if err := m.sched.Tick(); err != nil {
			m.lastErr = err.Error()
		} else {
			m.lastErr = ""
		}
		return m, frameCmd(m.sched.Interval())

	case playbackEndedMsg:
		m.ended = true
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		rows := msg.Height - chromeLines
		if rows < 1 {
			rows = 1
		}
		m.sched.Resize(msg.Width, rows*2)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.audio != nil {
			m.audio.Close()
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)

	case key.Matches(msg, m.keys.Pause):
		if m.audio == nil {
			return m, nil
		}
		m.audio.TogglePause()
		return m, tea.SetWindowTitle(windowTitle(m.meta.Title, m.audio.Paused()))

	case key.Matches(msg, m.keys.VolumeUp):
		m.adjustVolume(volumeStep)
	case key.Matches(msg, m.keys.VolumeDown):
		m.adjustVolume(-volumeStep)

	case key.Matches(msg, m.keys.GlowUp):
		m.nudge(func(t engine.Tunables) engine.Tunables {
			t.GlowStrength += nudgeStep
			return t
		})
	case key.Matches(msg, m.keys.GlowDown):
		m.nudge(func(t engine.Tunables) engine.Tunables {
			t.GlowStrength = max(0, t.GlowStrength-nudgeStep)
			return t
		})
	case key.Matches(msg, m.keys.DistortUp):
		m.nudge(func(t engine.Tunables) engine.Tunables {
			t.DistortionFactor += nudgeStep
			return t
		})
	case key.Matches(msg, m.keys.DistortDown):
		m.nudge(func(t engine.Tunables) engine.Tunables {
			t.DistortionFactor = max(0, t.DistortionFactor-nudgeStep)
			return t
		})
	case key.Matches(msg, m.keys.Bloom):
		m.nudge(func(t engine.Tunables) engine.Tunables {
			t.Bloom.Enabled = !t.Bloom.Enabled
			return t
		})
	case key.Matches(msg, m.keys.Smooth):
		m.nudge(func(t engine.Tunables) engine.Tunables {
			t.Smoothing = !t.Smoothing
			return t
		})

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) adjustVolume(delta float64) {
	if m.audio != nil {
		m.audio.AdjustVolume(delta)
	}
}

func (m Model) nudge(fn func(engine.Tunables) engine.Tunables) {
	m.sched.Adjust(fn)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteByte('\n')
	b.WriteString(m.surface.View())
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) headerLine() string {
	line := headerStyle.Render("orb") + " " + renderBandMeter(m.sched.Stats().Uniforms) + "  " + titleStyle.Render(m.meta.Title)
	if sub := m.meta.Subtitle(); sub != "" {
		line += "  " + artistStyle.Render(sub)
	}
	return line
}

func (m Model) statusLine() string {
	if m.lastErr != "" {
		return errorStyle.Render(m.lastErr)
	}

	left := "no audio"
	right := renderTunables(m.sched.Tunables())
	if m.audio != nil {
		icon, text := "▶", "playing"
		switch {
		case m.ended:
			icon, text = "■", "ended"
		case m.audio.Paused():
			icon, text = "❚❚", "paused"
		}
		pos, dur := m.audio.Position(), m.audio.Duration()
		left = fmt.Sprintf("%s  %s  %s / %s", icon, text,
			timeStyle.Render(util.FormatDuration(pos)),
			timeStyle.Render(util.FormatDuration(dur)))
		right = renderVolumePercent(m.audio.Volume()) + "  " + right

		barWidth := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
		if barWidth >= 10 {
			left += " " + renderProgressBar(pos.Seconds(), dur.Seconds(), barWidth)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return statusStyle.Render(left) + strings.Repeat(" ", gap) + statusStyle.Render(right)
}

func windowTitle(title string, paused bool) string {
	s := "orb"
	if title != "" {
		s += " · " + title
	}
	if paused {
		s += " (paused)"
	}
	return s
}
