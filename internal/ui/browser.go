package ui

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/orb/internal/media"
)

// browseDepth limits how many directory levels below the start are scanned.
const browseDepth = 3

// BrowserResult holds the outcome of the file browser.
type BrowserResult struct {
	Path      string
	Cancelled bool
}

type trackItem struct {
	path   string
	rel    string
	format media.Format
}

func (i trackItem) Title() string {
	base := filepath.Base(i.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (i trackItem) Description() string {
	dir := filepath.Dir(i.rel)
	if dir == "." {
		return i.format.String()
	}
	return i.format.String() + " · " + dir
}

func (i trackItem) FilterValue() string { return i.rel }

// BrowserModel picks a track when none was given on the command line.
type BrowserModel struct {
	list   list.Model
	result *BrowserResult
	err    error
}

// NewBrowser lists the playable audio files in dir and a few levels of
// subdirectories. Hidden directories are skipped.
func NewBrowser(dir string) BrowserModel {
	tracks, err := scanTracks(dir)
	if err != nil {
		return BrowserModel{err: fmt.Errorf("cannot read directory: %w", err)}
	}
	if len(tracks) == 0 {
		return BrowserModel{err: fmt.Errorf("no playable files under %s (formats: %s)", dir, media.SupportedExtsList())}
	}

	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = t
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(accentColor).
		BorderLeftForeground(accentColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(dimColor).
		BorderLeftForeground(accentColor)

	l := list.New(items, delegate, 80, 20)
	l.Title = "orb · pick a track"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("track", "tracks")
	l.Styles.Title = headerStyle

	return BrowserModel{list: l}
}

func scanTracks(root string) ([]trackItem, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	var tracks []trackItem
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || strings.Count(rel, string(filepath.Separator)) >= browseDepth-1) {
				return filepath.SkipDir
			}
			return nil
		}
		if f := media.FormatOf(path); f != media.Unknown {
			tracks = append(tracks, trackItem{path: path, rel: rel, format: f})
		}
		return nil
	})
	slices.SortFunc(tracks, func(a, b trackItem) int { return strings.Compare(a.rel, b.rel) })
	return tracks, err
}

// Error returns the initialization error, if any.
func (m BrowserModel) Error() error {
	return m.err
}

// Result returns the browser result after the program finishes.
func (m BrowserModel) Result() BrowserResult {
	if m.result != nil {
		return *m.result
	}
	return BrowserResult{Cancelled: true}
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.SetWindowTitle("orb")
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(trackItem); ok {
				m.result = &BrowserResult{Path: item.path}
				return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
			}
		case "q", "esc", "ctrl+c":
			m.result = &BrowserResult{Cancelled: true}
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error()) + "\n"
	}
	return m.list.View()
}
