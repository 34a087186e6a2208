package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata holds song information shown next to the visualization.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// ReadMetadata reads ID3v2 tags, falling back to the filename.
func ReadMetadata(path string) Metadata {
	if tag, err := id3v2.Open(path, id3v2.Options{Parse: true}); err == nil {
		defer tag.Close()
		m := Metadata{
			Title:  strings.TrimSpace(tag.Title()),
			Artist: strings.TrimSpace(tag.Artist()),
			Album:  strings.TrimSpace(tag.Album()),
		}
		if m.Title != "" {
			return m
		}
	}

	base := filepath.Base(path)
	return Metadata{Title: strings.TrimSuffix(base, filepath.Ext(base))}
}

// Subtitle joins artist and album for display.
func (m Metadata) Subtitle() string {
	switch {
	case m.Artist != "" && m.Album != "":
		return m.Artist + " - " + m.Album
	case m.Artist != "":
		return m.Artist
	default:
		return m.Album
	}
}
