// Package playback provides the playback actor that owns the audio device.
package playback

// State represents the playback state of the actor.
type State int

const (
	StateIdle    State = iota // No active sink
	StatePlaying              // Active sink is playing
	StatePaused               // Active sink is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
