package playback

import (
	"github.com/chorusfm/chorus/internal/errmsg"
	"github.com/chorusfm/chorus/internal/player"
	"github.com/chorusfm/chorus/internal/queue"
)

// handlePrimaryEvent processes an event from the primary adapter.
// Events from a superseded load generation are dropped, as are events
// arriving while the background backend owns output.
func (c *Coordinator) handlePrimaryEvent(ev player.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.Generation != c.gen || c.backend != BackendPrimary {
		return
	}

	switch ev.Kind {
	case player.EventReady:
		// Cued tracks start immediately.
		if err := c.primary.Play(); err != nil {
			c.log.Error("play after cue", "err", err)
			c.failCurrentLocked(string(errmsg.OpPlaybackStart), err)
		}
	case player.EventBuffering:
		c.setStateLocked(StateBuffering)
	case player.EventPlaying:
		if d := c.primary.Duration(); d > 0 {
			c.duration = d
		}
		if c.pendingSeek > 0 {
			if err := c.primary.SeekTo(c.pendingSeek); err != nil {
				c.log.Warn("restore seek", "err", err)
			}
			c.position = c.pendingSeek
			c.pendingSeek = 0
		}
		c.setStateLocked(StatePlaying)
	case player.EventPaused:
		c.position = c.positionLocked()
		c.setStateLocked(StatePaused)
	case player.EventEnded:
		c.handleEndedLocked()
	case player.EventError:
		c.handleBackendErrorLocked(ev.Code)
	}
}

// handleBackgroundEvent processes an event from the background adapter.
func (c *Coordinator) handleBackgroundEvent(ev player.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev.Generation != c.gen || c.backend != BackendBackground {
		return
	}

	switch ev.Kind {
	case player.EventPlaying:
		if d := c.background.Duration(); d > 0 {
			c.duration = d
		}
		c.setStateLocked(StatePlaying)
	case player.EventPaused:
		c.position = c.background.Position()
		c.setStateLocked(StatePaused)
	case player.EventEnded:
		c.handleEndedLocked()
	case player.EventError:
		c.handleBackendErrorLocked(ev.Code)
	case player.EventReady, player.EventBuffering:
		// The background adapter plays as soon as it loads.
	}
}

// handleEndedLocked applies repeat semantics when a track finishes
// naturally. Repeat-one replays the track, repeat-all wraps past the
// tail, repeat-off stops at the tail.
func (c *Coordinator) handleEndedLocked() {
	if c.queue.RepeatMode() == queue.RepeatOne {
		c.startCurrentLocked(0)
		return
	}
	if !c.advanceLocked() {
		c.position = c.duration
		c.stopToEndedLocked()
		c.publish(PositionChange{Position: c.position, Duration: c.duration})
	}
}

// handleBackendErrorLocked maps an adapter error code, blocklists the
// failing track for the rest of the session, and advances past it.
func (c *Coordinator) handleBackendErrorLocked(code int) {
	cur := c.queue.Current()
	id := ""
	if cur != nil {
		id = cur.ID
	}
	berr := &BackendError{Code: code}
	c.log.Warn("backend error", "track", id, "code", code, "unavailable", berr.Unavailable())
	c.failCurrentLocked(string(errmsg.OpPlaybackStart), berr)
}
