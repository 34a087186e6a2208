package ui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.AdaptiveColor{Light: "#6B2FB3", Dark: "#B98CFF"}
	dimColor    = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#8A8A9A"}

	// band meter colors follow the shading: bass warm, treble cold
	bassColor   = lipgloss.AdaptiveColor{Light: "#B3401F", Dark: "#FF8A5C"}
	midColor    = lipgloss.AdaptiveColor{Light: "#2F8F3A", Dark: "#7CE38B"}
	trebleColor = lipgloss.AdaptiveColor{Light: "#1F5FB3", Dark: "#6CB8FF"}
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	artistStyle = lipgloss.NewStyle().Foreground(dimColor)
	timeStyle   = lipgloss.NewStyle().Foreground(dimColor)
	statusStyle = lipgloss.NewStyle().Foreground(dimColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6B6B"})

	meterStyles = [3]lipgloss.Style{
		lipgloss.NewStyle().Foreground(bassColor),
		lipgloss.NewStyle().Foreground(midColor),
		lipgloss.NewStyle().Foreground(trebleColor),
	}
)
