package playback

// Device is the audio output owned by the actor.
// Implementations are only ever called from the actor goroutine.
type Device interface {
	// NewSink opens and decodes path and starts playing it.
	NewSink(path string) (Sink, error)
	// Close releases the output device.
	Close() error
}

// Sink is one decoded stream routed to the device.
type Sink interface {
	ID() string
	Pause()
	Resume()
	// Stop halts playback and releases the stream. Safe to call more than once.
	Stop()
	// Done is closed when the stream has been played to the end.
	Done() <-chan struct{}
}

// DeviceOpener opens the output device. It runs on the actor goroutine.
type DeviceOpener func() (Device, error)
