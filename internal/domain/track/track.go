// Package track provides the AudioFile domain entity.
package track

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UnknownDuration is the label used when a file's duration could not be probed.
const UnknownDuration = "unknown"

// SupportedExtensions lists the audio extensions picked up by the library scanner.
var SupportedExtensions = []string{"mp3", "flac", "wav", "ogg", "m4a"}

// AudioFile represents a single audio file found on disk.
// It is immutable after creation.
type AudioFile struct {
	ID            string        // UUID assigned at scan time
	Path          string        // Path on disk
	Duration      time.Duration // Probed duration (zero if unknown)
	DurationLabel string        // "mm:ss" or UnknownDuration
	Title         string        // Title tag (optional)
	Artist        string        // Artist tag (optional)
}

// New creates an AudioFile for path with an unknown duration.
func New(path string) AudioFile {
	return AudioFile{
		ID:            uuid.New().String(),
		Path:          path,
		DurationLabel: UnknownDuration,
	}
}

// WithDuration returns a copy of the file carrying the given duration.
func (f AudioFile) WithDuration(d time.Duration) AudioFile {
	f.Duration = d
	f.DurationLabel = FormatDuration(d)
	return f
}

// WithTags returns a copy of the file carrying the given tag values.
func (f AudioFile) WithTags(title, artist string) AudioFile {
	f.Title = strings.TrimSpace(title)
	f.Artist = strings.TrimSpace(artist)
	return f
}

// Name returns the file name without its directory.
func (f AudioFile) Name() string {
	return filepath.Base(f.Path)
}

// DisplayName returns "Artist - Title" when tags are present, the file name otherwise.
func (f AudioFile) DisplayName() string {
	switch {
	case f.Title != "" && f.Artist != "":
		return f.Artist + " - " + f.Title
	case f.Title != "":
		return f.Title
	default:
		return f.Name()
	}
}

// HasDuration reports whether the duration was probed successfully.
func (f AudioFile) HasDuration() bool {
	return f.DurationLabel != UnknownDuration
}

// Extension returns the lower-cased extension without the leading dot.
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// IsSupported reports whether path has one of the SupportedExtensions (case-insensitive).
func IsSupported(path string) bool {
	ext := Extension(path)
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// FormatDuration formats d as "mm:ss". Hours are folded into minutes.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Metadata is what a probe learns about a file.
type Metadata struct {
	Duration time.Duration
	Title    string
	Artist   string
}
