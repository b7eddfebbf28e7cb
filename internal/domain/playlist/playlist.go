// Package playlist provides the Playlist domain entity.
package playlist

import (
	"math/rand/v2"
	"time"

	"github.com/osa030/arena/internal/domain/track"
)

// NoSelection is the current index of a playlist with no selected track.
const NoSelection = -1

// Playlist is an ordered list of audio files with an optional current track.
// It is owned by the foreground layer and is not safe for concurrent use.
type Playlist struct {
	entries []track.AudioFile
	current int
}

// New creates a playlist holding a copy of files, with nothing selected.
func New(files []track.AudioFile) *Playlist {
	p := &Playlist{current: NoSelection}
	p.Add(files...)
	return p
}

// Add appends files to the end of the playlist.
func (p *Playlist) Add(files ...track.AudioFile) {
	p.entries = append(p.entries, files...)
}

// Clear removes every entry and resets the selection.
func (p *Playlist) Clear() {
	p.entries = nil
	p.current = NoSelection
}

// Len returns the number of entries.
func (p *Playlist) Len() int {
	return len(p.entries)
}

// IsEmpty returns true if the playlist has no entries.
func (p *Playlist) IsEmpty() bool {
	return len(p.entries) == 0
}

// Entries returns a copy of the entries.
func (p *Playlist) Entries() []track.AudioFile {
	result := make([]track.AudioFile, len(p.entries))
	copy(result, p.entries)
	return result
}

// At returns the entry at index i.
func (p *Playlist) At(i int) (track.AudioFile, bool) {
	if i < 0 || i >= len(p.entries) {
		return track.AudioFile{}, false
	}
	return p.entries[i], true
}

// CurrentIndex returns the selected index, or NoSelection.
func (p *Playlist) CurrentIndex() int {
	return p.current
}

// Current returns the selected entry.
func (p *Playlist) Current() (track.AudioFile, bool) {
	return p.At(p.current)
}

// Select makes index i the current entry. Out of range indexes are rejected.
func (p *Playlist) Select(i int) (track.AudioFile, bool) {
	f, ok := p.At(i)
	if !ok {
		return track.AudioFile{}, false
	}
	p.current = i
	return f, true
}

// IndexOf returns the index of the entry with the given path, or NoSelection.
func (p *Playlist) IndexOf(path string) int {
	for i, f := range p.entries {
		if f.Path == path {
			return i
		}
	}
	return NoSelection
}

// Next selects the entry after the current one, wrapping to the start.
// With nothing selected it selects the first entry.
func (p *Playlist) Next() (track.AudioFile, bool) {
	if p.IsEmpty() {
		return track.AudioFile{}, false
	}
	if p.current == NoSelection {
		return p.Select(0)
	}
	return p.Select((p.current + 1) % len(p.entries))
}

// Previous selects the entry before the current one, wrapping to the end.
// With nothing selected it selects the last entry.
func (p *Playlist) Previous() (track.AudioFile, bool) {
	if p.IsEmpty() {
		return track.AudioFile{}, false
	}
	if p.current == NoSelection {
		return p.Select(len(p.entries) - 1)
	}
	return p.Select((p.current - 1 + len(p.entries)) % len(p.entries))
}

// Shuffle permutes the entries in place using r, or the global source when r is nil.
// The current selection keeps pointing at the same file.
func (p *Playlist) Shuffle(r *rand.Rand) {
	var currentID string
	if f, ok := p.Current(); ok {
		currentID = f.ID
	}

	swap := func(i, j int) {
		p.entries[i], p.entries[j] = p.entries[j], p.entries[i]
	}
	if r == nil {
		rand.Shuffle(len(p.entries), swap)
	} else {
		r.Shuffle(len(p.entries), swap)
	}

	if currentID == "" {
		return
	}
	for i, f := range p.entries {
		if f.ID == currentID {
			p.current = i
			return
		}
	}
}

// TotalDuration returns the sum of all probed durations.
func (p *Playlist) TotalDuration() time.Duration {
	var total time.Duration
	for _, f := range p.entries {
		total += f.Duration
	}
	return total
}
