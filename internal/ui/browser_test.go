package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func tempDirWith(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func listedTracks(m BrowserModel) map[string]bool {
	got := map[string]bool{}
	for _, item := range m.list.Items() {
		got[filepath.ToSlash(item.(trackItem).rel)] = true
	}
	return got
}

func TestBrowserSelectionStoresResult(t *testing.T) {
	dir := tempDirWith(t, "song.mp3")
	m := NewBrowser(dir)

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(BrowserModel)
	if cmd == nil {
		t.Fatal("expected quit command")
	}

	result := m.Result()
	if result.Cancelled || result.Path != filepath.Join(dir, "song.mp3") {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestBrowserCancel(t *testing.T) {
	m := NewBrowser(tempDirWith(t, "song.mp3"))

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !model.(BrowserModel).Result().Cancelled {
		t.Fatal("expected cancelled result")
	}
}

func TestBrowserListsOnlySupportedFiles(t *testing.T) {
	m := NewBrowser(tempDirWith(t, "a.flac", "b.OGG", "c.wav", "notes.txt", "clip.m4a"))

	got := listedTracks(m)
	if len(got) != 3 || !got["a.flac"] || !got["b.OGG"] || !got["c.wav"] {
		t.Fatalf("unexpected items %v", got)
	}
}

func TestBrowserScansSubdirectories(t *testing.T) {
	m := NewBrowser(tempDirWith(t,
		"top.mp3",
		"album/one.flac",
		"album/disc2/two.ogg",
		"a/b/c/too-deep.wav",
		".cache/hidden.mp3",
	))

	got := listedTracks(m)
	want := []string{"top.mp3", "album/one.flac", "album/disc2/two.ogg"}
	if len(got) != len(want) {
		t.Fatalf("unexpected items %v", got)
	}
	for _, w := range want {
		if !got[w] {
			t.Fatalf("expected %s in %v", w, got)
		}
	}
}

func TestTrackItemDescribesFormatAndFolder(t *testing.T) {
	m := NewBrowser(tempDirWith(t, "album/one.flac"))
	item := m.list.Items()[0].(trackItem)
	if item.Title() != "one" {
		t.Fatalf("unexpected title %q", item.Title())
	}
	if item.Description() != "flac · album" {
		t.Fatalf("unexpected description %q", item.Description())
	}
}

func TestBrowserEmptyOrMissingDirectory(t *testing.T) {
	m := NewBrowser(filepath.Join(t.TempDir(), "missing"))
	if m.Error() == nil {
		t.Fatal("expected error for missing directory")
	}
	if !m.Result().Cancelled {
		t.Fatal("expected default result to be cancelled")
	}
	if NewBrowser(tempDirWith(t, "readme.txt")).Error() == nil {
		t.Fatal("expected error when nothing is playable")
	}
}
