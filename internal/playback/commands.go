package playback

import (
	"fmt"
	"time"

	"github.com/chorusfm/chorus/internal/catalog"
	"github.com/chorusfm/chorus/internal/errmsg"
	"github.com/chorusfm/chorus/internal/queue"
)

// restartThreshold is how far into a track Previous restarts it instead
// of moving back.
const restartThreshold = 3 * time.Second

// PlayTrack replaces the queue with a single track and starts it.
func (c *Coordinator) PlayTrack(track catalog.Track) error {
	return c.PlayQueue([]catalog.Track{track}, 0)
}

// PlayQueue replaces the queue and starts playback at startIndex.
// Every track id is validated before any state changes; a single bad id
// rejects the whole call.
func (c *Coordinator) PlayQueue(tracks []catalog.Track, startIndex int) error {
	for _, t := range tracks {
		if !t.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidTrackID, t.ID)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	c.queue.Replace(tracks, startIndex)
	c.announceQueueLocked()

	if c.queue.Current() == nil {
		c.stopToIdleLocked()
		c.announceTrackLocked()
		return nil
	}

	// Skip session-blocklisted tracks without re-attempting their load.
	if cur := c.queue.Current(); c.blocked(cur.ID) {
		if !c.advanceToPlayableLocked() {
			c.stopToIdleLocked()
			return ErrNoPlayableTrack
		}
		return nil
	}

	c.startCurrentLocked(0)
	return nil
}

// TogglePlayPause flips between playing and paused. Toggling from ended
// replays the current track; toggling while idle or loading is a no-op.
func (c *Coordinator) TogglePlayPause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	switch c.state {
	case StatePlaying, StateBuffering:
		c.position = c.positionLocked()
		if err := c.pauseActiveLocked(); err != nil {
			return fmt.Errorf("%s: %w", errmsg.OpPlaybackStart, err)
		}
		c.setStateLocked(StatePaused)
	case StatePaused:
		if !c.loaded {
			// Restored session: nothing is cued yet.
			c.startCurrentLocked(c.position)
			return nil
		}
		if err := c.resumeActiveLocked(); err != nil {
			return fmt.Errorf("%s: %w", errmsg.OpPlaybackStart, err)
		}
		c.setStateLocked(StatePlaying)
	case StateEnded:
		if c.queue.Current() != nil {
			c.startCurrentLocked(0)
		}
	case StateIdle, StateLoading, StateError:
		// Nothing to toggle.
	}
	return nil
}

// Next skips to the next track, wrapping at the end of the queue
// regardless of repeat mode. Blocklisted tracks are skipped.
func (c *Coordinator) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.queue.IsEmpty() {
		return nil
	}

	for i := 0; i < c.queue.Len(); i++ {
		c.queue.Next() // wraps past the tail
		cur := c.queue.Current()
		if cur != nil && !c.blocked(cur.ID) {
			c.startCurrentLocked(0)
			return nil
		}
	}
	c.stopToIdleLocked()
	return fmt.Errorf("%s: %w", errmsg.OpPlaybackSkip, ErrNoPlayableTrack)
}

// Previous restarts the current track when more than three seconds in,
// otherwise moves to the previous track. At index 0 it restarts.
func (c *Coordinator) Previous() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.queue.Current() == nil {
		return nil
	}

	if c.positionLocked() > restartThreshold {
		c.seekActiveLocked(0)
		return nil
	}
	if prev := c.queue.StepBack(); prev != nil {
		c.startCurrentLocked(0)
		return nil
	}
	c.seekActiveLocked(0)
	return nil
}

// SeekTo moves the playback position, clamped to the track bounds.
func (c *Coordinator) SeekTo(position time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.state.Active() && c.state != StateEnded {
		return nil
	}

	if position < 0 {
		position = 0
	}
	if d := c.duration; d > 0 && position > d {
		position = d
	}
	c.seekActiveLocked(position)
	return nil
}

// SetVolume sets the volume percentage (0-100) on both backends so the
// level survives a backend hand-off.
func (c *Coordinator) SetVolume(percent int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent == c.volume {
		return nil
	}
	c.volume = percent
	c.background.SetVolume(percent)
	if err := c.primary.SetVolume(percent); err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpVolumeSet, err)
	}
	c.publish(VolumeChange{Volume: percent})
	return nil
}

// AddToQueue validates and appends tracks without touching the cursor.
func (c *Coordinator) AddToQueue(tracks ...catalog.Track) error {
	for _, t := range tracks {
		if !t.Valid() {
			return fmt.Errorf("%s: %w: %q", errmsg.OpQueueAdd, ErrInvalidTrackID, t.ID)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.queue.Add(tracks...)
	c.announceQueueLocked()
	return nil
}

// RemoveFromQueue removes the track at index. Removing the playing
// track starts the one that slides into its place, or stops playback
// when the queue empties.
func (c *Coordinator) RemoveFromQueue(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	wasCurrent := index == c.queue.CurrentIndex()
	if !c.queue.RemoveAt(index) {
		return fmt.Errorf("%s: index %d out of range", errmsg.OpQueueRemove, index)
	}
	c.announceQueueLocked()

	if wasCurrent && c.state.Active() {
		if c.queue.Current() != nil {
			c.startCurrentLocked(0)
		} else {
			c.stopToIdleLocked()
			c.announceTrackLocked()
		}
	}
	return nil
}

// ClearQueue stops playback and empties the queue.
func (c *Coordinator) ClearQueue() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	c.queue.Clear()
	c.stopToIdleLocked()
	if c.store != nil {
		c.store.ClearSnapshot()
	}
	c.announceQueueLocked()
	c.announceTrackLocked()
	return nil
}

// Shuffle reorders the queue with the current track pinned first.
func (c *Coordinator) Shuffle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	c.queue.Shuffle()
	c.announceQueueLocked()
	c.publish(ModeChange{Repeat: c.queue.RepeatMode(), Shuffled: c.queue.Shuffled()})
	return nil
}

// startCurrentLocked begins a new load for the queue's current track.
// It bumps the load generation so events from any superseded load are
// dropped on arrival.
func (c *Coordinator) startCurrentLocked(start time.Duration) {
	cur := c.queue.Current()
	if cur == nil {
		c.stopToIdleLocked()
		return
	}

	c.gen++
	gen := c.gen
	c.position = start
	c.syncTarget = start
	c.duration = cur.Duration
	c.loaded = true
	c.setStateLocked(StateLoading)
	c.announceTrackLocked()

	if c.backend == BackendBackground {
		track := *cur
		go c.resolveTrack(gen, track, start)
		return
	}

	// The primary adapter cues from zero; a non-zero start is applied
	// once playback begins.
	c.pendingSeek = start
	c.cuedTrack = cur.ID
	if err := c.primary.Load(cur.ID, gen); err != nil {
		c.log.Error("load failed", "track", cur.ID, "err", err)
		c.failCurrentLocked(string(errmsg.OpPlaybackStart), err)
	}
}

// failCurrentLocked blocklists the current track for this session and
// advances past it.
func (c *Coordinator) failCurrentLocked(op string, err error) {
	cur := c.queue.Current()
	trackID := ""
	if cur != nil {
		c.blocklist[cur.ID] = struct{}{}
		trackID = cur.ID
	}
	c.publish(ErrorEvent{Op: op, TrackID: trackID, Err: err})

	if !c.advanceLocked() {
		c.stopToEndedLocked()
	}
}

// advanceLocked steps past the current track and starts the next
// playable one, honoring repeat mode at the queue tail. Returns false
// when playback should stop instead.
func (c *Coordinator) advanceLocked() bool {
	if c.queue.RepeatMode() == queue.RepeatOff && !c.queue.HasNext() {
		return false
	}
	c.queue.Next()
	return c.advanceToPlayableLocked()
}

// advanceToPlayableLocked steps forward (wrapping) until it finds a
// track outside the blocklist, then starts it. Returns false when every
// remaining candidate is blocklisted.
func (c *Coordinator) advanceToPlayableLocked() bool {
	for i := 0; i < c.queue.Len(); i++ {
		cur := c.queue.Current()
		if cur != nil && !c.blocked(cur.ID) {
			c.startCurrentLocked(0)
			return true
		}
		if c.queue.RepeatMode() == queue.RepeatOff && !c.queue.HasNext() {
			return false
		}
		c.queue.Next()
	}
	return false
}

func (c *Coordinator) pauseActiveLocked() error {
	if c.backend == BackendBackground {
		c.background.Pause()
		return nil
	}
	return c.primary.Pause()
}

func (c *Coordinator) resumeActiveLocked() error {
	if c.backend == BackendBackground {
		c.background.Resume()
		return nil
	}
	return c.primary.Play()
}

func (c *Coordinator) seekActiveLocked(position time.Duration) {
	c.position = position
	if c.backend == BackendBackground {
		c.syncTarget = position
		c.background.SeekTo(position)
	} else if err := c.primary.SeekTo(position); err != nil {
		c.log.Warn(errmsg.Format(errmsg.OpPlaybackSeek, err))
	}
	c.publish(PositionChange{Position: position, Duration: c.duration})
}

func (c *Coordinator) stopToIdleLocked() {
	c.haltBackendsLocked()
	c.position = 0
	c.duration = 0
	c.pendingSeek = 0
	c.loaded = false
	c.setStateLocked(StateIdle)
}

func (c *Coordinator) stopToEndedLocked() {
	c.haltBackendsLocked()
	c.setStateLocked(StateEnded)
}

func (c *Coordinator) haltBackendsLocked() {
	c.gen++ // orphan any in-flight load
	c.background.Stop()
	if err := c.primary.Pause(); err != nil {
		c.log.Debug("pause on stop", "err", err)
	}
}
