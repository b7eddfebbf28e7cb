package playback

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted   EventType = iota // A new sink started playing
	EventTrackEnded                      // The active sink finished on its own
	EventTrackStopped                    // The active sink was stopped by a command
	EventStateChanged                    // Pause/resume
	EventPlaybackFailed                  // Open or decode failed for a Play command
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventTrackEnded:
		return "track_ended"
	case EventTrackStopped:
		return "track_stopped"
	case EventStateChanged:
		return "state_changed"
	case EventPlaybackFailed:
		return "playback_failed"
	default:
		return "unknown"
	}
}

// Event represents a playback event emitted by the actor.
type Event struct {
	Type   EventType
	Path   string // Track the event refers to
	SinkID string // Sink the event refers to (empty for failures)
	State  State  // Actor state after the event
	Err    error  // Set for EventPlaybackFailed
}
