package playback

import (
	"errors"
	"fmt"
)

// ErrInvalidTrackID is returned by commands that receive a track whose
// identifier fails validation. Nothing is loaded and no state changes.
var ErrInvalidTrackID = errors.New("invalid track id")

// ErrNoPlayableTrack is returned when every candidate in the queue has
// been blocklisted for the current session.
var ErrNoPlayableTrack = errors.New("no playable track in queue")

// ErrClosed is returned by commands issued after Close.
var ErrClosed = errors.New("playback coordinator closed")

// BackendError wraps an error code reported by a playback adapter.
type BackendError struct {
	Code int
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("playback backend error (code %d)", e.Code)
}

// Unavailable reports whether the code means the track cannot be played
// at all, as opposed to a transient transport failure.
func (e *BackendError) Unavailable() bool {
	return e.Code >= 100
}
