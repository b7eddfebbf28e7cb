// Package notification fans playback events out to subscribers.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/arena/internal/app/playback"
)

// DefaultSendTimeout bounds how long Broadcast waits for one subscriber.
const DefaultSendTimeout = 500 * time.Millisecond

// Notification is a playback event stamped with a sequence number.
type Notification struct {
	SequenceNo uint64
	Event      playback.Event
}

// Stream represents a notification stream for a subscriber.
// Send must return once ctx is done.
type Stream interface {
	Send(ctx context.Context, n Notification) error
}

// StreamFunc adapts a function to a Stream.
type StreamFunc func(ctx context.Context, n Notification) error

// Send calls f.
func (f StreamFunc) Send(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id     string
	stream Stream
}

// Hub manages notification subscriptions and broadcasting.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	timeout       time.Duration
}

// NewHub creates a new hub. A non-positive timeout uses DefaultSendTimeout.
func NewHub(timeout time.Duration) *Hub {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Hub{
		subscriptions: make(map[string]*subscription),
		timeout:       timeout,
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
func (h *Hub) Subscribe(stream Stream) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	h.subscriptions[id] = &subscription{
		id:     id,
		stream: stream,
	}
	return id
}

// Unsubscribe removes a subscription.
func (h *Hub) Unsubscribe(subscriptionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscriptions, subscriptionID)
}

// Broadcast sends an event to all subscribers and returns its sequence number.
// Subscribers are served in parallel, each bounded by the hub timeout,
// and Broadcast returns once every send has finished or timed out.
func (h *Hub) Broadcast(ev playback.Event) uint64 {
	h.sequenceNoMu.Lock()
	h.sequenceNo++
	n := Notification{SequenceNo: h.sequenceNo, Event: ev}
	h.sequenceNoMu.Unlock()

	h.mu.RLock()
	// Copy subscriptions to avoid holding lock during sends
	subs := make([]*subscription, 0, len(h.subscriptions))
	for _, sub := range h.subscriptions {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
			defer cancel()

			if err := s.stream.Send(ctx, n); err != nil {
				zlog.Debug().Msgf("notification: dropped #%d (%s) for %s: %v", n.SequenceNo, ev.Type, s.id, err)
			}
		}(sub)
	}

	wg.Wait()
	return n.SequenceNo
}

// Run broadcasts every event read from events until the channel is closed or ctx is done.
func (h *Hub) Run(ctx context.Context, events <-chan playback.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Broadcast(ev)
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions)
}

// Close removes all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscriptions = make(map[string]*subscription)
}
