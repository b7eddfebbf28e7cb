package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/arena/internal/app/playback"
)

type recordingStream struct {
	mu  sync.Mutex
	got []Notification
}

func (s *recordingStream) Send(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return nil
}

func (s *recordingStream) received() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.got...)
}

func TestHub_SubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(0)
	a := &recordingStream{}
	b := &recordingStream{}

	idA := hub.Subscribe(a)
	idB := hub.Subscribe(b)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, hub.SubscriberCount())

	seq := hub.Broadcast(playback.Event{Type: playback.EventTrackStarted, Path: "/m/a.mp3"})
	assert.Equal(t, uint64(1), seq)

	hub.Unsubscribe(idB)
	seq = hub.Broadcast(playback.Event{Type: playback.EventTrackEnded, Path: "/m/a.mp3"})
	assert.Equal(t, uint64(2), seq)

	require.Len(t, a.received(), 2)
	assert.Equal(t, playback.EventTrackStarted, a.received()[0].Event.Type)
	assert.Equal(t, uint64(2), a.received()[1].SequenceNo)
	require.Len(t, b.received(), 1)
}

func TestHub_SlowSubscriberTimesOut(t *testing.T) {
	hub := NewHub(20 * time.Millisecond)
	slow := NewChanStream(0)
	fast := &recordingStream{}
	hub.Subscribe(slow)
	hub.Subscribe(fast)

	start := time.Now()
	hub.Broadcast(playback.Event{Type: playback.EventTrackStarted})

	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, fast.received(), 1)
}

func TestHub_Run(t *testing.T) {
	hub := NewHub(time.Second)
	stream := NewChanStream(8)
	hub.Subscribe(stream)
	hub.Subscribe(LogStream())

	events := make(chan playback.Event, 3)
	events <- playback.Event{Type: playback.EventTrackStarted, Path: "a"}
	events <- playback.Event{Type: playback.EventPlaybackFailed, Path: "b", Err: assert.AnError}
	events <- playback.Event{Type: playback.EventStateChanged, State: playback.StateIdle}
	close(events)

	hub.Run(context.Background(), events)

	var got []playback.EventType
	for i := 0; i < 3; i++ {
		n := <-stream.C()
		assert.Equal(t, uint64(i+1), n.SequenceNo)
		got = append(got, n.Event.Type)
	}
	assert.Equal(t, []playback.EventType{
		playback.EventTrackStarted,
		playback.EventPlaybackFailed,
		playback.EventStateChanged,
	}, got)
}

func TestHub_RunStopsOnContext(t *testing.T) {
	hub := NewHub(0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		hub.Run(ctx, make(chan playback.Event))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(0)
	hub.Subscribe(&recordingStream{})
	hub.Close()
	assert.Zero(t, hub.SubscriberCount())
}
