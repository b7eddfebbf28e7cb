package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Errors
var (
	ErrClosed       = errors.New("player is closed")
	ErrCloseTimeout = errors.New("timed out waiting for player to stop")
)

// Config holds actor configuration.
type Config struct {
	EventBuffer  int           // Capacity of the event channel
	CloseTimeout time.Duration // Upper bound for Close to wait on the actor
}

// DefaultConfig returns the default actor configuration.
func DefaultConfig() Config {
	return Config{
		EventBuffer:  16,
		CloseTimeout: 2 * time.Second,
	}
}

// Player is the handle to the playback actor.
// All device access happens on the actor goroutine; callers only enqueue commands.
type Player struct {
	mailbox *mailbox
	events  chan Event
	done    chan struct{}
	config  Config

	closeOnce sync.Once
	closeErr  error
}

// Start opens the device on a new actor goroutine and returns its handle.
// A device open failure is returned and no goroutine is left running.
func Start(ctx context.Context, open DeviceOpener, config Config) (*Player, error) {
	defaults := DefaultConfig()
	if config.EventBuffer <= 0 {
		config.EventBuffer = defaults.EventBuffer
	}
	if config.CloseTimeout <= 0 {
		config.CloseTimeout = defaults.CloseTimeout
	}

	p := &Player{
		mailbox: newMailbox(),
		events:  make(chan Event, config.EventBuffer),
		done:    make(chan struct{}),
		config:  config,
	}

	ready := make(chan error, 1)
	go p.run(ctx, open, ready)

	if err := <-ready; err != nil {
		return nil, err
	}
	return p, nil
}

// Events returns the event channel. It is closed when the actor exits.
func (p *Player) Events() <-chan Event {
	return p.events
}

// Done returns a channel that is closed when the actor has exited.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Send enqueues a command without waiting for it to be handled.
func (p *Player) Send(cmd Command) error {
	return p.mailbox.Put(cmd)
}

// Play replaces the active sink with a new one playing path.
func (p *Player) Play(path string) error {
	return p.Send(Command{Type: CommandPlay, Path: path})
}

// Pause pauses the active sink.
func (p *Player) Pause() error {
	return p.Send(Command{Type: CommandPause})
}

// Resume resumes the active sink.
func (p *Player) Resume() error {
	return p.Send(Command{Type: CommandResume})
}

// Stop stops and discards the active sink.
func (p *Player) Stop() error {
	return p.Send(Command{Type: CommandStop})
}

// Next stops the active sink. Choosing the next track is up to the caller.
func (p *Player) Next() error {
	return p.Send(Command{Type: CommandNext})
}

// Close sends Quit and waits for the actor to exit, at most Config.CloseTimeout.
// Calling Close more than once returns the first result.
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		// ErrClosed here means the actor is already on its way out.
		_ = p.mailbox.Put(Command{Type: CommandQuit})

		timer := time.NewTimer(p.config.CloseTimeout)
		defer timer.Stop()

		select {
		case <-p.done:
		case <-timer.C:
			p.closeErr = ErrCloseTimeout
		}
	})
	return p.closeErr
}

func (p *Player) run(ctx context.Context, open DeviceOpener, ready chan<- error) {
	defer close(p.done)
	defer close(p.events)

	device, err := open()
	if err != nil {
		p.mailbox.Close()
		ready <- errors.Wrap(err, "failed to open audio device")
		return
	}
	ready <- nil

	a := &actor{
		device: device,
		events: p.events,
		state:  StateIdle,
	}
	a.loop(ctx, p.mailbox)
}

// actor holds the state confined to the actor goroutine.
type actor struct {
	device Device
	events chan<- Event

	sink  Sink
	path  string
	state State
}

func (a *actor) loop(ctx context.Context, mb *mailbox) {
	defer a.shutdown(mb)

	for {
		select {
		case <-ctx.Done():
			zlog.Debug().Msg("playback: context cancelled, stopping actor")
			return
		case <-mb.Ready():
			for _, cmd := range mb.Drain() {
				if !a.handle(cmd) {
					return
				}
			}
		case <-a.sinkDone():
			a.onSinkFinished()
		}
	}
}

// sinkDone returns the active sink's completion channel, or nil (never ready).
func (a *actor) sinkDone() <-chan struct{} {
	if a.sink == nil {
		return nil
	}
	return a.sink.Done()
}

// handle applies one command. It returns false when the actor must exit.
func (a *actor) handle(cmd Command) bool {
	zlog.Debug().Msgf("playback: command=%s path=%s state=%s", cmd.Type, cmd.Path, a.state)

	switch cmd.Type {
	case CommandPlay:
		a.play(cmd.Path)

	case CommandPause:
		if a.sink == nil || a.state != StatePlaying {
			return true
		}
		a.sink.Pause()
		a.state = StatePaused
		a.emit(Event{Type: EventStateChanged, Path: a.path, SinkID: a.sink.ID(), State: a.state})

	case CommandResume:
		if a.sink == nil || a.state != StatePaused {
			return true
		}
		a.sink.Resume()
		a.state = StatePlaying
		a.emit(Event{Type: EventStateChanged, Path: a.path, SinkID: a.sink.ID(), State: a.state})

	case CommandStop, CommandNext:
		if a.sink == nil {
			return true
		}
		path, id := a.path, a.sink.ID()
		a.discardSink()
		a.emit(Event{Type: EventTrackStopped, Path: path, SinkID: id, State: a.state})

	case CommandQuit:
		return false

	default:
		zlog.Warn().Msgf("playback: ignoring unknown command: %d", cmd.Type)
	}
	return true
}

func (a *actor) play(path string) {
	// The previous sink is always gone before the new one is created.
	a.discardSink()

	sink, err := a.device.NewSink(path)
	if err != nil {
		zlog.Warn().Err(err).Msgf("playback: cannot play %s", path)
		a.emit(Event{Type: EventPlaybackFailed, Path: path, State: a.state, Err: err})
		return
	}

	a.sink = sink
	a.path = path
	a.state = StatePlaying
	zlog.Debug().Msgf("playback: started: path=%s sink=%s", path, sink.ID())
	a.emit(Event{Type: EventTrackStarted, Path: path, SinkID: sink.ID(), State: a.state})
}

func (a *actor) onSinkFinished() {
	path, id := a.path, a.sink.ID()
	a.discardSink()
	zlog.Debug().Msgf("playback: track ended: path=%s sink=%s", path, id)
	a.emit(Event{Type: EventTrackEnded, Path: path, SinkID: id, State: a.state})
}

func (a *actor) discardSink() {
	if a.sink != nil {
		a.sink.Stop()
	}
	a.sink = nil
	a.path = ""
	a.state = StateIdle
}

func (a *actor) shutdown(mb *mailbox) {
	mb.Close()
	a.discardSink()
	if err := a.device.Close(); err != nil {
		zlog.Warn().Err(err).Msg("playback: failed to close audio device")
	}
	zlog.Debug().Msg("playback: actor stopped")
}

// emit sends an event without blocking. Events are dropped if nobody keeps up.
func (a *actor) emit(e Event) {
	select {
	case a.events <- e:
	default:
		zlog.Debug().Msgf("playback: event channel full, dropping %s", e.Type)
	}
}
