// Package media maps file extensions to the audio formats orb can decode.
package media

import (
	"path/filepath"
	"slices"
	"strings"
)

// Format identifies a decodable audio container.
type Format int

const (
	Unknown Format = iota
	MP3
	WAV
	FLAC
	Vorbis
)

func (f Format) String() string {
	switch f {
	case MP3:
		return "mp3"
	case WAV:
		return "wav"
	case FLAC:
		return "flac"
	case Vorbis:
		return "ogg vorbis"
	default:
		return "unknown"
	}
}

var formats = map[string]Format{
	".mp3":  MP3,
	".wav":  WAV,
	".wave": WAV,
	".flac": FLAC,
	".ogg":  Vorbis,
	".oga":  Vorbis,
}

// Lookup returns the format for ext, ignoring case.
func Lookup(ext string) Format {
	return formats[strings.ToLower(ext)]
}

// FormatOf returns the format of path judged by its extension.
func FormatOf(path string) Format {
	return Lookup(filepath.Ext(path))
}

// IsSupportedExt returns true if the extension is a playable audio format.
func IsSupportedExt(ext string) bool {
	return Lookup(ext) != Unknown
}

// SupportedExtsList returns a human-readable list of playable audio formats.
func SupportedExtsList() string {
	exts := make([]string, 0, len(formats))
	for ext := range formats {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return strings.Join(exts, ", ")
}
