package playback

import "sync"

// mailbox is an unbounded FIFO of commands. Put never blocks.
type mailbox struct {
	mu     sync.Mutex
	queue  []Command
	closed bool
	ready  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

// Put enqueues cmd and wakes the consumer.
func (m *mailbox) Put(cmd Command) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.queue = append(m.queue, cmd)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
		// Consumer already signalled
	}
	return nil
}

// Ready returns the wake-up channel.
func (m *mailbox) Ready() <-chan struct{} {
	return m.ready
}

// Drain removes and returns all queued commands in arrival order.
func (m *mailbox) Drain() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmds := m.queue
	m.queue = nil
	return cmds
}

// Close rejects further commands.
func (m *mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.queue = nil
}
