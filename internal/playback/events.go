package playback

import (
	"time"

	"github.com/chorusfm/chorus/internal/catalog"
	"github.com/chorusfm/chorus/internal/queue"
)

// Event is implemented by every notification the coordinator publishes
// to its subscribers.
type Event interface {
	isPlaybackEvent()
}

// StateChange is published whenever the playback state transitions.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is published when the current track changes, including
// when playback stops and no track remains.
type TrackChange struct {
	Previous      *catalog.Track
	Current       *catalog.Track
	PreviousIndex int
	Index         int
}

// PositionChange carries the current playback position. It is published
// on seeks and on periodic position updates.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// QueueChange is published when the queue contents or cursor change.
type QueueChange struct {
	Tracks []catalog.Track
	Index  int
}

// ModeChange is published when repeat or shuffle settings change.
type ModeChange struct {
	Repeat   queue.RepeatMode
	Shuffled bool
}

// VolumeChange carries the new volume as a percentage.
type VolumeChange struct {
	Volume int
}

// BackendChange is published when audio output moves between the
// primary and background adapters.
type BackendChange struct {
	Backend Backend
}

// ErrorEvent is published when an operation fails asynchronously, such
// as a backend load failure or an audio resolution failure.
type ErrorEvent struct {
	Op      string
	TrackID string
	Err     error
}

func (StateChange) isPlaybackEvent()    {}
func (TrackChange) isPlaybackEvent()    {}
func (PositionChange) isPlaybackEvent() {}
func (QueueChange) isPlaybackEvent()    {}
func (ModeChange) isPlaybackEvent()     {}
func (VolumeChange) isPlaybackEvent()   {}
func (BackendChange) isPlaybackEvent()  {}
func (ErrorEvent) isPlaybackEvent()     {}
