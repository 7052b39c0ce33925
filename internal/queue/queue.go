// Package queue holds the ordered playback queue and its cursor.
package queue

import (
	"math/rand"

	"github.com/chorusfm/chorus/internal/catalog"
)

// Queue is an ordered sequence of tracks plus a cursor.
// The cursor is -1 when nothing is current.
type Queue struct {
	tracks   []catalog.Track
	current  int
	repeat   RepeatMode
	shuffled bool
}

// New creates a new empty queue.
func New() *Queue {
	return &Queue{current: -1}
}

// Current returns the current track, or nil if none.
func (q *Queue) Current() *catalog.Track {
	if q.current < 0 || q.current >= len(q.tracks) {
		return nil
	}
	return &q.tracks[q.current]
}

// CurrentIndex returns the cursor position (-1 if none).
func (q *Queue) CurrentIndex() int {
	return q.current
}

// HasNext returns true if a track follows the current one.
func (q *Queue) HasNext() bool {
	return q.current < len(q.tracks)-1
}

// Next advances the cursor and returns the new current track.
// Advancing past the end wraps to index 0 (continuous-queue default).
// Returns nil if the queue is empty.
func (q *Queue) Next() *catalog.Track {
	if len(q.tracks) == 0 {
		return nil
	}
	q.current++
	if q.current >= len(q.tracks) {
		q.current = 0
	}
	return q.Current()
}

// StepBack moves the cursor to the previous track and returns it.
// Returns nil if there is no previous track; the cursor is unchanged.
func (q *Queue) StepBack() *catalog.Track {
	if q.current <= 0 {
		return nil
	}
	q.current--
	return q.Current()
}

// JumpTo sets the cursor to the given position.
// Returns the track at that position, or nil if invalid.
func (q *Queue) JumpTo(index int) *catalog.Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	q.current = index
	return q.Current()
}

// Add appends tracks without changing the cursor.
func (q *Queue) Add(tracks ...catalog.Track) {
	q.tracks = append(q.tracks, tracks...)
}

// Replace clears the queue, adds tracks, and sets the cursor to startIndex.
// Returns the new current track, or nil if tracks is empty or startIndex
// is out of range.
func (q *Queue) Replace(tracks []catalog.Track, startIndex int) *catalog.Track {
	q.tracks = append(q.tracks[:0], tracks...)
	q.shuffled = false
	if len(q.tracks) == 0 || startIndex < 0 || startIndex >= len(q.tracks) {
		q.current = -1
		return nil
	}
	q.current = startIndex
	return q.Current()
}

// RemoveAt removes the track at the given index, adjusting the cursor.
// Returns false if index is out of bounds.
func (q *Queue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.tracks) {
		return false
	}
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)

	if q.current > index {
		q.current--
	} else if q.current == index {
		// Removed the current track: cursor now points at the next one,
		// clamped when we removed the tail.
		if q.current >= len(q.tracks) {
			q.current = len(q.tracks) - 1
		}
	}
	return true
}

// Clear removes all tracks and resets the cursor.
func (q *Queue) Clear() {
	q.tracks = q.tracks[:0]
	q.current = -1
	q.shuffled = false
}

// Shuffle reorders the queue: the current track moves to index 0 and the
// remaining tracks follow in Fisher-Yates order. The current track itself
// does not change. No-op when nothing is current.
func (q *Queue) Shuffle() {
	if q.current < 0 || len(q.tracks) < 2 {
		return
	}
	rest := make([]catalog.Track, 0, len(q.tracks)-1)
	rest = append(rest, q.tracks[:q.current]...)
	rest = append(rest, q.tracks[q.current+1:]...)
	rand.Shuffle(len(rest), func(i, j int) { //nolint:gosec // not security-sensitive
		rest[i], rest[j] = rest[j], rest[i]
	})

	shuffledTracks := make([]catalog.Track, 0, len(q.tracks))
	shuffledTracks = append(shuffledTracks, q.tracks[q.current])
	shuffledTracks = append(shuffledTracks, rest...)
	q.tracks = shuffledTracks
	q.current = 0
	q.shuffled = true
}

// Shuffled reports whether the current ordering came from Shuffle.
// Reset by Replace and Clear.
func (q *Queue) Shuffled() bool {
	return q.shuffled
}

// MarkShuffled records whether the current ordering came from a shuffle.
// Used when restoring a persisted queue whose tracks were saved in their
// shuffled order.
func (q *Queue) MarkShuffled(shuffled bool) {
	q.shuffled = shuffled
}

// RepeatMode returns the active repeat mode.
func (q *Queue) RepeatMode() RepeatMode {
	return q.repeat
}

// SetRepeatMode sets the repeat mode.
func (q *Queue) SetRepeatMode(mode RepeatMode) {
	q.repeat = mode
}

// Tracks returns a copy of all tracks.
func (q *Queue) Tracks() []catalog.Track {
	result := make([]catalog.Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Len returns the number of tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}
