// Package console provides the terminal command producer: a keypress loop that
// drives the playback actor through a shuffled list of files.
package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/arena/internal/app/notification"
	"github.com/osa030/arena/internal/app/playback"
	"github.com/osa030/arena/internal/domain/track"
)

// Transport is the part of the playback actor the session drives.
type Transport interface {
	Play(path string) error
	Pause() error
	Resume() error
	Stop() error
	Next() error
}

// Outcome tells how a session ended.
type Outcome int

const (
	OutcomeCompleted Outcome = iota // The last track was played or skipped
	OutcomeStopped                  // The user pressed s
	OutcomeQuit                     // The user pressed q or input ended
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeStopped:
		return "stopped"
	case OutcomeQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Options controls a session.
type Options struct {
	AutoAdvance bool          // Start the next track when one ends on its own
	MaxPlay     time.Duration // Skip a track after it played this long; zero disables
}

// Session plays files in order and maps keys to transport commands.
// It is used from a single goroutine.
type Session struct {
	transport Transport
	files     []track.AudioFile
	out       io.Writer
	opts      Options

	index   int    // Next file to play
	current string // Path of the file playing, empty when none
	paused  bool

	timer     *time.Timer
	remaining time.Duration
	started   time.Time
}

// NewSession creates a session over files.
func NewSession(transport Transport, files []track.AudioFile, out io.Writer, opts Options) *Session {
	return &Session{
		transport: transport,
		files:     files,
		out:       out,
		opts:      opts,
	}
}

// Index returns how many files have been started so far.
func (s *Session) Index() int {
	return s.index
}

// Run plays the files until the list is exhausted, the user stops or quits,
// or ctx is done. keys carries raw key bytes and is closed when input ends.
// events carries playback notifications; it may be nil.
func (s *Session) Run(ctx context.Context, keys <-chan byte, events <-chan notification.Notification) (Outcome, error) {
	defer s.stopTimer()

	if len(s.files) == 0 {
		s.println("No audio files to play.")
		return OutcomeCompleted, nil
	}

	s.println("Welcome to Audio Arena!")
	s.println("Keys: [Enter] = next, p = pause, r = resume, s = stop, q = quit")
	s.println("")

	if err := s.playNext(); err != nil {
		return OutcomeQuit, err
	}

	for {
		select {
		case <-ctx.Done():
			_ = s.transport.Stop()
			return OutcomeQuit, ctx.Err()

		case key, ok := <-keys:
			if !ok {
				zlog.Debug().Msg("console: input closed")
				_ = s.transport.Stop()
				return OutcomeQuit, nil
			}
			outcome, done, err := s.handleKey(key)
			if done || err != nil {
				return outcome, err
			}

		case n := <-events:
			if done, err := s.handleEvent(n.Event); done || err != nil {
				return OutcomeCompleted, err
			}

		case <-s.timerC():
			s.timer = nil
			if s.current == "" {
				continue
			}
			s.println("Time limit reached.")
			if err := s.transport.Next(); err != nil {
				return OutcomeQuit, err
			}
			if done, err := s.advance(); done || err != nil {
				return OutcomeCompleted, err
			}
		}
	}
}

func (s *Session) handleKey(key byte) (Outcome, bool, error) {
	switch key {
	case '\r', '\n':
		if err := s.transport.Next(); err != nil {
			return OutcomeQuit, true, err
		}
		done, err := s.advance()
		return OutcomeCompleted, done, err

	case 'p':
		if s.paused {
			return 0, false, nil
		}
		if err := s.transport.Pause(); err != nil {
			return OutcomeQuit, true, err
		}
		s.paused = true
		s.pauseTimer()
		s.println("Paused")

	case 'r':
		if !s.paused {
			return 0, false, nil
		}
		if err := s.transport.Resume(); err != nil {
			return OutcomeQuit, true, err
		}
		s.paused = false
		s.resumeTimer()
		s.println("Resumed")

	case 's':
		err := s.transport.Stop()
		s.println("Stop requested.")
		return OutcomeStopped, true, err

	case 'q':
		err := s.transport.Stop()
		s.println("Bye.")
		return OutcomeQuit, true, err
	}
	return 0, false, nil
}

func (s *Session) handleEvent(ev playback.Event) (bool, error) {
	// Events for a file other than the current one are stale.
	if ev.Path == "" || ev.Path != s.current {
		return false, nil
	}

	switch ev.Type {
	case playback.EventTrackEnded:
		s.current = ""
		s.stopTimer()
		if !s.opts.AutoAdvance {
			return false, nil
		}
		return s.advance()

	case playback.EventPlaybackFailed:
		s.current = ""
		s.stopTimer()
		s.println("Cannot play %s: %v", ev.Path, ev.Err)
		if !s.opts.AutoAdvance {
			return false, nil
		}
		return s.advance()
	}
	return false, nil
}

// advance starts the next file, or reports true when none is left.
func (s *Session) advance() (bool, error) {
	if s.index >= len(s.files) {
		s.current = ""
		s.println("Session complete.")
		return true, nil
	}
	return false, s.playNext()
}

func (s *Session) playNext() error {
	file := s.files[s.index]
	s.index++
	s.current = file.Path
	s.paused = false

	s.println("Playing: %s [%s] (%d/%d)", file.DisplayName(), file.DurationLabel, s.index, len(s.files))
	if err := s.transport.Play(file.Path); err != nil {
		return errors.Wrap(err, "failed to send play command")
	}
	s.startTimer(s.opts.MaxPlay)
	return nil
}

func (s *Session) timerC() <-chan time.Time {
	if s.timer == nil {
		return nil
	}
	return s.timer.C
}

func (s *Session) startTimer(d time.Duration) {
	s.stopTimer()
	s.remaining = d
	if d <= 0 {
		return
	}
	s.started = time.Now()
	s.timer = time.NewTimer(d)
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) pauseTimer() {
	if s.timer == nil {
		return
	}
	s.stopTimer()
	s.remaining -= time.Since(s.started)
	if s.remaining <= 0 {
		s.remaining = time.Nanosecond
	}
}

func (s *Session) resumeTimer() {
	if s.opts.MaxPlay <= 0 || s.timer != nil || s.current == "" {
		return
	}
	s.started = time.Now()
	s.timer = time.NewTimer(s.remaining)
}

// println writes one line. Raw terminals need an explicit carriage return.
func (s *Session) println(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\r\n", args...)
}
