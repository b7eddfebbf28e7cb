// Package ui provides the desktop player: a playlist controller and its fyne window.
package ui

import (
	"fmt"
	"math/rand/v2"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/arena/internal/app/library"
	"github.com/osa030/arena/internal/app/playback"
	"github.com/osa030/arena/internal/domain/playlist"
	"github.com/osa030/arena/internal/domain/track"
)

// Transport is the part of the playback actor the controller drives.
type Transport interface {
	Play(path string) error
	Pause() error
	Resume() error
	Stop() error
}

// ControllerOptions configures a controller.
type ControllerOptions struct {
	Shuffle     bool // Shuffle newly loaded folders
	AutoAdvance bool // Play the next entry when a track ends on its own
	HideNames   bool // Show "Track N" instead of file names
}

// Controller holds the playlist and turns button presses into transport commands.
// It has no fyne dependency and must be used from the UI goroutine.
type Controller struct {
	transport Transport
	playlist  *playlist.Playlist
	rng       *rand.Rand
	opts      ControllerOptions

	state   playback.State
	playing   string // Path of the sink the actor last reported, empty when idle
	requested string // Path of the last Play sent to the actor
	status  string
}

// NewController creates a controller with an empty playlist. A nil rng uses the global source.
func NewController(transport Transport, rng *rand.Rand, opts ControllerOptions) *Controller {
	return &Controller{
		transport: transport,
		playlist:  playlist.New(nil),
		rng:       rng,
		opts:      opts,
		state:     playback.StateIdle,
		status:    "Open a folder to start",
	}
}

// SetFiles replaces the playlist, stopping whatever was playing.
func (c *Controller) SetFiles(dir string, files []track.AudioFile) {
	c.stop()
	if c.opts.Shuffle {
		files = library.Shuffle(files, c.rng)
	}
	c.playlist = playlist.New(files)
	c.status = fmt.Sprintf("%d tracks loaded from %s", len(files), dir)
	zlog.Info().Msgf("ui: %s", c.status)
}

// AddFiles appends files to the playlist in the given order. The selection is kept.
func (c *Controller) AddFiles(files []track.AudioFile) {
	c.playlist.Add(files...)
	c.status = fmt.Sprintf("%d tracks in playlist", c.playlist.Len())
}

// Len returns the number of playlist entries.
func (c *Controller) Len() int {
	return c.playlist.Len()
}

// Row returns the name and duration shown for entry i.
func (c *Controller) Row(i int) (name, duration string) {
	f, ok := c.playlist.At(i)
	if !ok {
		return "", ""
	}
	if c.opts.HideNames {
		name = fmt.Sprintf("Track %d", i+1)
	} else {
		name = f.DisplayName()
	}
	return name, f.DurationLabel
}

// IsPlaying reports whether entry i is the file the actor is playing.
func (c *Controller) IsPlaying(i int) bool {
	f, ok := c.playlist.At(i)
	return ok && c.playing != "" && f.Path == c.playing
}

// Status returns the text for the status line.
func (c *Controller) Status() string {
	return c.status
}

// State returns the last playback state reported by the actor.
func (c *Controller) State() playback.State {
	return c.state
}

// HideNames reports whether names are hidden.
func (c *Controller) HideNames() bool {
	return c.opts.HideNames
}

// SetHideNames switches between file names and "Track N".
func (c *Controller) SetHideNames(hide bool) {
	c.opts.HideNames = hide
}

// TotalLabel summarizes the playlist length.
func (c *Controller) TotalLabel() string {
	return fmt.Sprintf("%d tracks, %s", c.playlist.Len(), track.FormatDuration(c.playlist.TotalDuration()))
}

// Select moves the current pointer without playing.
func (c *Controller) Select(i int) bool {
	_, ok := c.playlist.Select(i)
	return ok
}

// CurrentIndex returns the selected entry, or playlist.NoSelection.
func (c *Controller) CurrentIndex() int {
	return c.playlist.CurrentIndex()
}

// Play plays the selected entry, or the first one when nothing is selected.
func (c *Controller) Play() {
	if c.playlist.IsEmpty() {
		c.status = "Playlist is empty"
		return
	}
	if c.playlist.CurrentIndex() == playlist.NoSelection {
		c.playlist.Select(0)
	}
	c.playCurrent()
}

// PlayIndex selects and plays entry i.
func (c *Controller) PlayIndex(i int) {
	if _, ok := c.playlist.Select(i); !ok {
		return
	}
	c.playCurrent()
}

// Pause pauses playback.
func (c *Controller) Pause() {
	c.send("pause", c.transport.Pause)
}

// Resume resumes playback.
func (c *Controller) Resume() {
	c.send("resume", c.transport.Resume)
}

// Stop stops playback.
func (c *Controller) Stop() {
	c.stop()
}

// Next plays the entry after the current one, wrapping at the end.
func (c *Controller) Next() {
	if _, ok := c.playlist.Next(); !ok {
		c.status = "Playlist is empty"
		return
	}
	c.playCurrent()
}

// Previous plays the entry before the current one, wrapping at the start.
func (c *Controller) Previous() {
	if _, ok := c.playlist.Previous(); !ok {
		c.status = "Playlist is empty"
		return
	}
	c.playCurrent()
}

// Shuffle reorders the playlist; the current file stays selected.
func (c *Controller) Shuffle() {
	c.playlist.Shuffle(c.rng)
	c.status = "Playlist shuffled"
}

// Clear stops playback and empties the playlist.
func (c *Controller) Clear() {
	c.stop()
	c.playlist.Clear()
	c.status = "Playlist cleared"
}

// HandleEvent updates the view state from a playback event.
func (c *Controller) HandleEvent(ev playback.Event) {
	switch ev.Type {
	case playback.EventTrackStarted:
		c.state = playback.StatePlaying
		c.playing = ev.Path
		c.status = "Playing: " + c.labelFor(ev.Path)

	case playback.EventStateChanged:
		if ev.Path != c.playing {
			return
		}
		c.state = ev.State
		switch ev.State {
		case playback.StatePaused:
			c.status = "Paused: " + c.labelFor(ev.Path)
		case playback.StatePlaying:
			c.status = "Playing: " + c.labelFor(ev.Path)
		}

	case playback.EventTrackStopped:
		if ev.Path != c.playing {
			return
		}
		c.state = playback.StateIdle
		c.playing = ""
		c.status = "Stopped"

	case playback.EventTrackEnded:
		if ev.Path != c.playing {
			return
		}
		c.state = playback.StateIdle
		c.playing = ""
		c.status = "Finished: " + c.labelFor(ev.Path)
		if c.opts.AutoAdvance {
			c.Next()
		}

	case playback.EventPlaybackFailed:
		// A failure for an older request says nothing about the current one.
		if ev.Path != c.requested {
			return
		}
		// The actor drops the previous sink before decoding a new one.
		c.state = ev.State
		c.playing = ""
		c.status = fmt.Sprintf("Cannot play %s: %v", c.labelFor(ev.Path), ev.Err)
	}
}

func (c *Controller) playCurrent() {
	f, ok := c.playlist.Current()
	if !ok {
		return
	}
	c.requested = f.Path
	if err := c.transport.Play(f.Path); err != nil {
		c.status = fmt.Sprintf("Cannot play: %v", err)
		zlog.Warn().Err(err).Msg("ui: play command rejected")
		return
	}
	c.status = "Loading: " + c.labelFor(f.Path)
}

func (c *Controller) stop() {
	c.send("stop", c.transport.Stop)
}

func (c *Controller) send(name string, fn func() error) {
	if err := fn(); err != nil {
		c.status = fmt.Sprintf("Cannot %s: %v", name, err)
		zlog.Warn().Err(err).Msgf("ui: %s command rejected", name)
	}
}

// labelFor returns how the file at path is shown, honoring HideNames.
func (c *Controller) labelFor(path string) string {
	i := c.playlist.IndexOf(path)
	if i < 0 {
		return track.New(path).Name()
	}
	name, _ := c.Row(i)
	return name
}
