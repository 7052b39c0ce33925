package playback

import (
	"time"

	"github.com/chorusfm/chorus/internal/catalog"
	"github.com/chorusfm/chorus/internal/queue"
)

// Service defines the playback coordinator contract. Callers never
// touch the adapters directly; every control surface goes through here.
type Service interface {
	// Playback control
	PlayTrack(track catalog.Track) error
	PlayQueue(tracks []catalog.Track, startIndex int) error
	TogglePlayPause() error
	Next() error
	Previous() error
	SeekTo(position time.Duration) error
	SetVolume(percent int) error

	// Queue manipulation
	AddToQueue(tracks ...catalog.Track) error
	RemoveFromQueue(index int) error
	ClearQueue() error
	Shuffle() error

	// Mode control
	RepeatMode() queue.RepeatMode
	SetRepeatMode(mode queue.RepeatMode)
	CycleRepeatMode() queue.RepeatMode

	// State queries
	State() State
	IsPlaying() bool
	IsLoading() bool
	CurrentTrack() *catalog.Track
	Position() time.Duration
	Duration() time.Duration
	Volume() int
	ActiveBackend() Backend

	// Queue queries
	QueueTracks() []catalog.Track
	QueueIndex() int
	QueueLen() int
	QueueIsEmpty() bool
	QueueHasNext() bool
	Shuffled() bool

	// Persistence
	Restore() error

	// Event subscription
	Subscribe() *Subscription
	Unsubscribe(sub *Subscription)

	// Lifecycle
	Close() error
}
