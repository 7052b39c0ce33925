// Package player defines the playback backend contract and its two
// concrete adapters: the embedded catalog player and the direct audio
// stream player.
package player

import "time"

// EventKind identifies a backend adapter event.
type EventKind int

const (
	// EventReady means the adapter has cued a track and can start it.
	EventReady EventKind = iota
	EventBuffering
	EventPlaying
	EventPaused
	EventEnded
	EventError
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "Ready"
	case EventBuffering:
		return "Buffering"
	case EventPlaying:
		return "Playing"
	case EventPaused:
		return "Paused"
	case EventEnded:
		return "Ended"
	case EventError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Event is emitted by an adapter. Generation echoes the value passed to
// the load call that produced the event, so consumers can drop events
// from a superseded load.
type Event struct {
	Kind       EventKind
	Generation uint64
	Code       int // set for EventError
}

// Error codes reported by adapters.
const (
	// CodeTransport is a network or transport failure. Possibly transient.
	CodeTransport = 1
	// CodeInvalid means the backend rejected the track id.
	CodeInvalid = 2
	// CodeUnavailable means the content does not exist or was removed.
	CodeUnavailable = 100
	// CodeRestricted means the catalog forbids playback in this context.
	CodeRestricted = 101
)

// Primary is the contract for the embedded catalog player. It loads
// tracks by catalog id. The embedding surface is created hidden and
// zero-size by the host.
type Primary interface {
	Load(trackID string, gen uint64) error
	Play() error
	Pause() error
	SeekTo(pos time.Duration) error
	SetVolume(percent int) error
	Position() time.Duration
	Duration() time.Duration
	Events() <-chan Event
	Close() error
}

// Background is the contract for the plain audio backend, driven by a
// resolved direct media URL instead of a catalog id. Implementations are
// constructed once and reused across tracks: the underlying audio output
// is a process-wide singleton.
type Background interface {
	LoadAndPlay(url string, start time.Duration, gen uint64) error
	Pause()
	Resume()
	SeekTo(pos time.Duration)
	SetVolume(percent int)
	Position() time.Duration
	Duration() time.Duration
	IsPlaying() bool
	Stop()
	Events() <-chan Event
	Close() error
}
