package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause       key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	GlowUp      key.Binding
	GlowDown    key.Binding
	DistortUp   key.Binding
	DistortDown key.Binding
	Bloom       key.Binding
	Smooth      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Pause:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		VolumeUp:    key.NewBinding(key.WithKeys("+", "=", "up"), key.WithHelp("+/-", "volume")),
		VolumeDown:  key.NewBinding(key.WithKeys("-", "down")),
		GlowUp:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g/G", "glow")),
		GlowDown:    key.NewBinding(key.WithKeys("G")),
		DistortUp:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d/D", "distortion")),
		DistortDown: key.NewBinding(key.WithKeys("D")),
		Bloom:       key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bloom")),
		Smooth:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "smoothing")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.VolumeUp, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.VolumeUp},
		{k.GlowUp, k.DistortUp},
		{k.Bloom, k.Smooth},
		{k.Help, k.Quit},
	}
}
