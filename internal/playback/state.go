package playback

// State is the coordinator's playback state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateBuffering
	StatePlaying
	StatePaused
	StateEnded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateBuffering:
		return "buffering"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Active reports whether the state represents an in-progress playback
// session, loaded or loading, as opposed to idle or terminal.
func (s State) Active() bool {
	switch s {
	case StateLoading, StateBuffering, StatePlaying, StatePaused:
		return true
	default:
		return false
	}
}

// Backend identifies which adapter currently owns audio output.
type Backend int

const (
	BackendPrimary Backend = iota
	BackendBackground
)

func (b Backend) String() string {
	if b == BackendBackground {
		return "background"
	}
	return "primary"
}
