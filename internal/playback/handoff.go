package playback

import (
	"context"
	"time"

	"github.com/chorusfm/chorus/internal/catalog"
	"github.com/chorusfm/chorus/internal/errmsg"
	"github.com/chorusfm/chorus/internal/lifecycle"
)

// resolveTimeout bounds a full resolution attempt, retries included.
const resolveTimeout = 30 * time.Second

// handleVisibility reacts to a logical visibility transition.
func (c *Coordinator) handleVisibility(ev lifecycle.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch ev {
	case lifecycle.WentHidden:
		c.wentHiddenLocked()
	case lifecycle.WentVisible:
		c.wentVisibleLocked()
	}
}

// wentHiddenLocked snapshots state and, when audio is playing on the
// primary adapter, kicks off the hand-off to the background adapter.
// Repeat signals while already hidden are no-ops.
func (c *Coordinator) wentHiddenLocked() {
	if c.hidden {
		return
	}
	c.hidden = true
	c.saveSnapshotLocked()

	if c.state != StatePlaying || c.backend != BackendPrimary {
		return
	}
	cur := c.queue.Current()
	if cur == nil {
		return
	}

	pos := c.primary.Position()
	if pos <= 0 {
		pos = c.position
	}
	c.log.Info("hidden, handing off to background", "track", cur.ID, "pos", pos)
	go c.resolveTrack(c.gen, *cur, pos)
}

// wentVisibleLocked hands audio back to the primary adapter at the
// background adapter's position. The queue can advance while the
// background adapter plays, so the primary may still hold a superseded
// track; in that case it is re-cued instead of resumed.
func (c *Coordinator) wentVisibleLocked() {
	if !c.hidden {
		return
	}
	c.hidden = false

	if c.backend != BackendBackground {
		return
	}

	pos := c.background.Position()
	wasActive := c.state == StatePlaying || c.state == StateBuffering || c.state == StateLoading
	c.background.Pause()
	c.background.Stop()
	c.backend = BackendPrimary
	c.position = pos
	c.releaseWakeLocked()
	c.publish(BackendChange{Backend: BackendPrimary})

	cur := c.queue.Current()
	if cur == nil {
		c.log.Info("visible, nothing current")
		return
	}

	if cur.ID != c.cuedTrack || c.state == StateLoading {
		if wasActive {
			c.log.Info("visible, re-cueing primary", "track", cur.ID, "pos", pos)
			c.startCurrentLocked(pos)
			return
		}
		// Paused on a track the primary never cued: cue lazily on the
		// next toggle, like a restored session.
		c.loaded = false
		return
	}

	if err := c.primary.SeekTo(pos); err != nil {
		c.log.Warn("foreground seek", "err", err)
	}
	if wasActive {
		if err := c.primary.Play(); err != nil {
			c.log.Error("foreground resume", "err", err)
			c.publish(ErrorEvent{Op: string(errmsg.OpForegroundStart), Err: err})
		}
	}
	c.log.Info("visible, handed back to primary", "pos", pos)
}

// resolveTrack resolves a direct audio URL off the run loop and posts
// the result back to it. The generation pins the result to the load it
// was requested for.
func (c *Coordinator) resolveTrack(gen uint64, track catalog.Track, start time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	url, err := c.resolver.Resolve(ctx, track.ID)
	res := resolveResult{gen: gen, track: track, url: url, start: start, err: err}
	select {
	case c.resolveCh <- res:
	case <-c.done:
	}
}

// handleResolved finishes a resolution: either completing a hand-off to
// the background adapter or loading the next track while already there.
func (c *Coordinator) handleResolved(res resolveResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if res.gen != c.gen {
		c.log.Debug("dropping stale resolution", "track", res.track.ID)
		return
	}

	if res.err != nil {
		if c.backend == BackendBackground {
			// Mid-background the track is simply unplayable.
			c.failCurrentLocked(string(errmsg.OpResolveAudio), res.err)
			return
		}
		// Hand-off attempt failed: stay on the primary adapter.
		c.log.Warn("resolution failed, staying on primary", "track", res.track.ID, "err", res.err)
		c.publish(ErrorEvent{Op: string(errmsg.OpResolveAudio), TrackID: res.track.ID, Err: res.err})
		return
	}

	if c.backend == BackendBackground {
		if err := c.background.LoadAndPlay(res.url, res.start, res.gen); err != nil {
			c.failCurrentLocked(string(errmsg.OpBackgroundStart), err)
		}
		return
	}

	// Hand-off completion. If the page became visible again while the
	// resolution was in flight, the primary adapter is still the right
	// backend and the result is discarded.
	if !c.hidden {
		c.log.Debug("visible again before hand-off completed", "track", res.track.ID)
		return
	}
	// Same for a pause: the generation is unchanged, but starting the
	// background adapter now would play audio against a paused state.
	if c.state != StatePlaying && c.state != StateBuffering {
		c.log.Debug("playback no longer active, discarding hand-off", "state", c.state)
		return
	}

	start := res.start
	if pos := c.primary.Position(); pos > start {
		start = pos
	}
	if err := c.background.LoadAndPlay(res.url, start, res.gen); err != nil {
		c.log.Warn("background start failed, staying on primary", "err", err)
		c.publish(ErrorEvent{Op: string(errmsg.OpBackgroundStart), TrackID: res.track.ID, Err: err})
		return
	}
	if err := c.primary.Pause(); err != nil {
		c.log.Debug("pause primary after hand-off", "err", err)
	}
	c.backend = BackendBackground
	c.syncTarget = start
	c.position = start
	c.acquireWakeLocked()
	c.log.Info("handed off to background", "track", res.track.ID, "start", start)
	c.publish(BackendChange{Backend: BackendBackground})
}

// handleSyncTick runs drift correction while the background adapter is
// playing. The expected position advances with the tick; when the
// adapter's reported position drifts past the threshold the adapter is
// seeked to the expected position, never the reverse.
func (c *Coordinator) handleSyncTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend != BackendBackground || c.state != StatePlaying {
		return
	}

	if c.background.IsPlaying() {
		c.syncTarget += c.tun.SyncInterval
	}
	pos := c.background.Position()
	drift := pos - c.syncTarget
	if drift < 0 {
		drift = -drift
	}
	if drift > c.tun.DriftThreshold {
		c.log.Debug("correcting drift", "pos", pos, "target", c.syncTarget)
		c.background.SeekTo(c.syncTarget)
		pos = c.syncTarget
	} else {
		// Within tolerance the adapter's clock is the truth.
		c.syncTarget = pos
	}
	c.position = pos
	c.publish(PositionChange{Position: pos, Duration: c.duration})
}

// handleKeepAliveTick holds the background session together: it retries
// a wake lock that could not be acquired and flags playback stalls.
func (c *Coordinator) handleKeepAliveTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend != BackendBackground {
		return
	}

	if !c.wakeHeld && c.state == StatePlaying {
		c.acquireWakeLocked()
	}
	if c.state == StatePlaying && !c.background.IsPlaying() {
		if c.duration <= 0 || c.position < c.duration {
			c.log.Debug("background playback stalled", "pos", c.position)
		}
	}
}

// acquireWakeLocked requests the wake lock. Best-effort: playback
// continues without it.
func (c *Coordinator) acquireWakeLocked() {
	if c.wakeHeld {
		return
	}
	if err := c.wake.Acquire(); err != nil {
		c.log.Debug("wake lock unavailable", "err", err)
		return
	}
	c.wakeHeld = true
}

func (c *Coordinator) releaseWakeLocked() {
	if !c.wakeHeld {
		return
	}
	c.wake.Release()
	c.wakeHeld = false
}
