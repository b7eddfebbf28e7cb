package notification

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/arena/internal/app/playback"
)

// ChanStream delivers notifications on a buffered channel.
type ChanStream struct {
	ch chan Notification
}

// NewChanStream creates a channel stream with the given buffer size.
func NewChanStream(size int) *ChanStream {
	return &ChanStream{ch: make(chan Notification, size)}
}

// C returns the channel notifications are delivered on.
func (s *ChanStream) C() <-chan Notification {
	return s.ch
}

// Send queues n, waiting for room until ctx is done.
func (s *ChanStream) Send(ctx context.Context, n Notification) error {
	select {
	case s.ch <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogStream returns a stream that logs every event.
func LogStream() Stream {
	return StreamFunc(func(ctx context.Context, n Notification) error {
		ev := n.Event
		switch ev.Type {
		case playback.EventPlaybackFailed:
			zlog.Warn().Msgf("playback #%d: %s %s: %v", n.SequenceNo, ev.Type, ev.Path, ev.Err)
		case playback.EventStateChanged:
			zlog.Debug().Msgf("playback #%d: %s -> %s", n.SequenceNo, ev.Type, ev.State)
		default:
			zlog.Debug().Msgf("playback #%d: %s %s (sink=%s)", n.SequenceNo, ev.Type, ev.Path, ev.SinkID)
		}
		return nil
	})
}
