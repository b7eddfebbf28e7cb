package audio

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/arena/internal/app/playback"
)

// Config holds output device configuration.
type Config struct {
	SampleRate      int           // Output sample rate in Hz
	BufferSize      time.Duration // Speaker buffer length
	ResampleQuality int           // beep resampling quality (1-64)
	Volume          float64       // Gain in base-2 steps, 0 = unchanged
}

// DefaultConfig returns the default device configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:      44100,
		BufferSize:      100 * time.Millisecond,
		ResampleQuality: 4,
		Volume:          0,
	}
}

// Speaker is the process-wide beep speaker wrapped as a playback.Device.
// It must only be used from the playback actor goroutine.
type Speaker struct {
	config     Config
	sampleRate beep.SampleRate
}

var _ playback.Device = (*Speaker)(nil)

// Opener returns a playback.DeviceOpener that initializes the speaker.
func Opener(config Config) playback.DeviceOpener {
	return func() (playback.Device, error) {
		return Open(config)
	}
}

// Open initializes the speaker.
func Open(config Config) (*Speaker, error) {
	if config.SampleRate <= 0 {
		config.SampleRate = DefaultConfig().SampleRate
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.ResampleQuality <= 0 {
		config.ResampleQuality = DefaultConfig().ResampleQuality
	}

	sr := beep.SampleRate(config.SampleRate)
	if err := speaker.Init(sr, sr.N(config.BufferSize)); err != nil {
		return nil, errors.Wrap(err, "failed to initialize speaker")
	}
	zlog.Debug().Msgf("audio: speaker initialized: rate=%d buffer=%v", config.SampleRate, config.BufferSize)

	return &Speaker{
		config:     config,
		sampleRate: sr,
	}, nil
}

// NewSink decodes path and starts playing it on the speaker.
func (s *Speaker) NewSink(path string) (playback.Sink, error) {
	f, stream, format, err := openStream(path)
	if err != nil {
		return nil, err
	}

	var out beep.Streamer = stream
	if format.SampleRate != s.sampleRate {
		out = beep.Resample(s.config.ResampleQuality, format.SampleRate, s.sampleRate, out)
	}
	if s.config.Volume != 0 {
		out = &effects.Volume{
			Streamer: out,
			Base:     2,
			Volume:   s.config.Volume,
		}
	}

	k := newSink(out, stream.Close, f.Close)
	speaker.Play(k.ctrl)
	return k, nil
}

// Close clears and closes the speaker.
func (s *Speaker) Close() error {
	speaker.Clear()
	speaker.Close()
	return nil
}

// sink is one decoded file routed to the speaker.
type sink struct {
	id     string
	ctrl   *beep.Ctrl
	closer []func() error

	done     chan struct{}
	doneOnce sync.Once
	stopOnce sync.Once
}

// newSink wraps out so that Done closes once out is drained.
// closers run once on Stop.
func newSink(out beep.Streamer, closers ...func() error) *sink {
	k := &sink{
		id:     uuid.New().String(),
		closer: closers,
		done:   make(chan struct{}),
	}
	k.ctrl = &beep.Ctrl{Streamer: beep.Seq(out, beep.Callback(k.markDone))}
	return k
}

func (k *sink) ID() string {
	return k.id
}

func (k *sink) Pause() {
	speaker.Lock()
	k.ctrl.Paused = true
	speaker.Unlock()
}

func (k *sink) Resume() {
	speaker.Lock()
	k.ctrl.Paused = false
	speaker.Unlock()
}

// Stop detaches the stream from the speaker and releases the file.
func (k *sink) Stop() {
	k.stopOnce.Do(func() {
		speaker.Lock()
		k.ctrl.Streamer = nil
		k.ctrl.Paused = false
		speaker.Unlock()

		for _, c := range k.closer {
			// The decoder may already have closed the file.
			_ = c()
		}
	})
}

func (k *sink) Done() <-chan struct{} {
	return k.done
}

// markDone runs on the speaker goroutine with the speaker lock held.
func (k *sink) markDone() {
	k.doneOnce.Do(func() { close(k.done) })
}
