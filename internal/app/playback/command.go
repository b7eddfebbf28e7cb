package playback

// CommandType represents a transport command.
type CommandType int

const (
	CommandPlay   CommandType = iota // Replace the active sink with a new one for Path
	CommandPause                     // Pause the active sink
	CommandResume                    // Resume the active sink
	CommandStop                      // Stop and discard the active sink
	CommandNext                      // Same as stop; the producer picks the next track
	CommandQuit                      // Stop everything and terminate the actor
)

// String returns the string representation of the command type.
func (c CommandType) String() string {
	switch c {
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandStop:
		return "stop"
	case CommandNext:
		return "next"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Command is a transport command sent to the actor.
// Path is only meaningful for CommandPlay.
type Command struct {
	Type CommandType
	Path string
}
