package playback

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

type fakeSink struct {
	id   string
	path string

	mu      sync.Mutex
	paused  bool
	stopped bool
	pauses  int
	resumes int

	done       chan struct{}
	finishOnce sync.Once
}

func (s *fakeSink) ID() string { return s.id }

func (s *fakeSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.pauses++
}

func (s *fakeSink) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.resumes++
}

func (s *fakeSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *fakeSink) Done() <-chan struct{} { return s.done }

// finish simulates the stream reaching its end.
func (s *fakeSink) finish() {
	s.finishOnce.Do(func() { close(s.done) })
}

func (s *fakeSink) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type fakeDevice struct {
	mu      sync.Mutex
	sinks   []*fakeSink
	failing map[string]error
	closed  bool
	block   chan struct{} // when set, NewSink waits on it
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{failing: make(map[string]error)}
}

func (d *fakeDevice) opener() DeviceOpener {
	return func() (Device, error) { return d, nil }
}

func (d *fakeDevice) NewSink(path string) (Sink, error) {
	if d.block != nil {
		<-d.block
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err, ok := d.failing[path]; ok {
		return nil, err
	}
	s := &fakeSink{
		id:   fmt.Sprintf("sink-%d", len(d.sinks)+1),
		path: path,
		done: make(chan struct{}),
	}
	d.sinks = append(d.sinks, s)
	return s, nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDevice) active() []*fakeSink {
	d.mu.Lock()
	defer d.mu.Unlock()

	var result []*fakeSink
	for _, s := range d.sinks {
		if !s.isStopped() {
			result = append(result, s)
		}
	}
	return result
}

func (d *fakeDevice) decodes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sinks)
}

func (d *fakeDevice) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func startPlayer(t *testing.T, d *fakeDevice) *Player {
	t.Helper()
	p, err := Start(context.Background(), d.opener(), Config{EventBuffer: 64, CloseTimeout: waitTimeout})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func nextEvent(t *testing.T, p *Player) Event {
	t.Helper()
	select {
	case e, ok := <-p.Events():
		require.True(t, ok, "event channel closed")
		return e
	case <-time.After(waitTimeout):
		require.FailNow(t, "timed out waiting for event")
	}
	return Event{}
}

func TestPlayer_PlayReplacesActiveSink(t *testing.T) {
	d := newFakeDevice()
	p := startPlayer(t, d)

	require.NoError(t, p.Play("a.mp3"))
	require.NoError(t, p.Play("b.mp3"))

	first := nextEvent(t, p)
	assert.Equal(t, EventTrackStarted, first.Type)
	assert.Equal(t, "a.mp3", first.Path)

	second := nextEvent(t, p)
	assert.Equal(t, EventTrackStarted, second.Type)
	assert.Equal(t, "b.mp3", second.Path)
	assert.Equal(t, StatePlaying, second.State)

	active := d.active()
	require.Len(t, active, 1)
	assert.Equal(t, "b.mp3", active[0].path)
	assert.Equal(t, 2, d.decodes())
}

func TestPlayer_StopWithoutSinkIsNoop(t *testing.T) {
	d := newFakeDevice()
	p := startPlayer(t, d)

	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Next())
	assert.NoError(t, p.Pause())
	assert.NoError(t, p.Resume())
	require.NoError(t, p.Play("a.mp3"))

	// The first event is the start: none of the no-ops produced one.
	e := nextEvent(t, p)
	assert.Equal(t, EventTrackStarted, e.Type)
	assert.Equal(t, "a.mp3", e.Path)
}

func TestPlayer_PauseResumeKeepsSink(t *testing.T) {
	d := newFakeDevice()
	p := startPlayer(t, d)

	require.NoError(t, p.Play("a.mp3"))
	started := nextEvent(t, p)
	require.Equal(t, EventTrackStarted, started.Type)

	require.NoError(t, p.Pause())
	paused := nextEvent(t, p)
	assert.Equal(t, EventStateChanged, paused.Type)
	assert.Equal(t, StatePaused, paused.State)
	assert.Equal(t, started.SinkID, paused.SinkID)

	require.NoError(t, p.Resume())
	resumed := nextEvent(t, p)
	assert.Equal(t, EventStateChanged, resumed.Type)
	assert.Equal(t, StatePlaying, resumed.State)
	assert.Equal(t, started.SinkID, resumed.SinkID)

	assert.Equal(t, 1, d.decodes(), "resume must not decode again")
	active := d.active()
	require.Len(t, active, 1)
	active[0].mu.Lock()
	assert.Equal(t, 1, active[0].pauses)
	assert.Equal(t, 1, active[0].resumes)
	assert.False(t, active[0].paused)
	active[0].mu.Unlock()
}

func TestPlayer_StopDiscardsSink(t *testing.T) {
	d := newFakeDevice()
	p := startPlayer(t, d)

	require.NoError(t, p.Play("a.mp3"))
	nextEvent(t, p)

	require.NoError(t, p.Stop())
	e := nextEvent(t, p)
	assert.Equal(t, EventTrackStopped, e.Type)
	assert.Equal(t, "a.mp3", e.Path)
	assert.Equal(t, StateIdle, e.State)
	assert.Empty(t, d.active())
}

func TestPlayer_NextBehavesLikeStop(t *testing.T) {
	d := newFakeDevice()
	p := startPlayer(t, d)

	require.NoError(t, p.Play("a.mp3"))
	nextEvent(t, p)

	require.NoError(t, p.Next())
	e := nextEvent(t, p)
	assert.Equal(t, EventTrackStopped, e.Type)
	assert.Empty(t, d.active())
}

func TestPlayer_TrackEnded(t *testing.T) {
	d := newFakeDevice()
	p := startPlayer(t, d)

	require.NoError(t, p.Play("a.mp3"))
	started := nextEvent(t, p)

	d.active()[0].finish()

	e := nextEvent(t, p)
	assert.Equal(t, EventTrackEnded, e.Type)
	assert.Equal(t, "a.mp3", e.Path)
	assert.Equal(t, started.SinkID, e.SinkID)
	assert.Equal(t, StateIdle, e.State)
	assert.Empty(t, d.active())
}

func TestPlayer_DecodeFailureKeepsLoopRunning(t *testing.T) {
	d := newFakeDevice()
	d.failing["broken.m4a"] = errors.New("unsupported format")
	p := startPlayer(t, d)

	require.NoError(t, p.Play("broken.m4a"))
	failed := nextEvent(t, p)
	assert.Equal(t, EventPlaybackFailed, failed.Type)
	assert.Equal(t, "broken.m4a", failed.Path)
	assert.Error(t, failed.Err)
	assert.Equal(t, StateIdle, failed.State)

	require.NoError(t, p.Play("ok.mp3"))
	started := nextEvent(t, p)
	assert.Equal(t, EventTrackStarted, started.Type)
	assert.Equal(t, "ok.mp3", started.Path)
}

func TestPlayer_FailedPlayStillStopsPrevious(t *testing.T) {
	d := newFakeDevice()
	d.failing["broken.m4a"] = errors.New("unsupported format")
	p := startPlayer(t, d)

	require.NoError(t, p.Play("a.mp3"))
	nextEvent(t, p)
	require.NoError(t, p.Play("broken.m4a"))
	nextEvent(t, p)

	assert.Empty(t, d.active())
}

func TestPlayer_CloseTerminatesActor(t *testing.T) {
	d := newFakeDevice()
	p, err := Start(context.Background(), d.opener(), Config{CloseTimeout: waitTimeout})
	require.NoError(t, err)

	require.NoError(t, p.Play("a.mp3"))

	start := time.Now()
	require.NoError(t, p.Close())
	assert.Less(t, time.Since(start), waitTimeout)

	select {
	case <-p.Done():
	default:
		t.Fatal("actor still running after Close")
	}
	assert.True(t, d.isClosed())
	assert.Empty(t, d.active())

	assert.ErrorIs(t, p.Play("b.mp3"), ErrClosed)
	assert.NoError(t, p.Close(), "second Close returns the first result")
}

func TestPlayer_CloseTimesOut(t *testing.T) {
	d := newFakeDevice()
	d.block = make(chan struct{})
	p, err := Start(context.Background(), d.opener(), Config{CloseTimeout: 50 * time.Millisecond})
	require.NoError(t, err)

	require.NoError(t, p.Play("a.mp3"))
	assert.ErrorIs(t, p.Close(), ErrCloseTimeout)

	close(d.block)
	select {
	case <-p.Done():
	case <-time.After(waitTimeout):
		t.Fatal("actor did not exit after device unblocked")
	}
}

func TestPlayer_ContextCancelStopsActor(t *testing.T) {
	d := newFakeDevice()
	ctx, cancel := context.WithCancel(context.Background())
	p, err := Start(ctx, d.opener(), Config{})
	require.NoError(t, err)

	cancel()

	select {
	case <-p.Done():
	case <-time.After(waitTimeout):
		t.Fatal("actor did not exit after cancel")
	}
	assert.True(t, d.isClosed())
	assert.ErrorIs(t, p.Stop(), ErrClosed)
}

func TestStart_DeviceOpenFailure(t *testing.T) {
	open := func() (Device, error) { return nil, errors.New("no audio device") }

	p, err := Start(context.Background(), open, Config{})

	assert.Nil(t, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio device")
}

func TestCommandType_String(t *testing.T) {
	assert.Equal(t, "play", CommandPlay.String())
	assert.Equal(t, "quit", CommandQuit.String())
	assert.Equal(t, "unknown", CommandType(99).String())
	assert.Equal(t, "track_ended", EventTrackEnded.String())
	assert.Equal(t, "paused", StatePaused.String())
}
