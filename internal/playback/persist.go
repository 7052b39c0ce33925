package playback

import (
	"time"

	"github.com/chorusfm/chorus/internal/catalog"
	"github.com/chorusfm/chorus/internal/errmsg"
	"github.com/chorusfm/chorus/internal/queue"
	"github.com/chorusfm/chorus/internal/store"
)

// handlePersistTick writes a snapshot on the persistence cadence. The
// cadence only applies while playing and visible; going hidden and
// shutting down write their own snapshots.
func (c *Coordinator) handlePersistTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying || c.hidden {
		return
	}
	c.saveSnapshotLocked()
}

func (c *Coordinator) saveSnapshotLocked() {
	if c.store == nil {
		return
	}
	cur := c.queue.Current()
	if cur == nil {
		return
	}
	c.store.SaveSnapshot(store.Snapshot{
		Track:     *cur,
		Position:  c.positionLocked(),
		IsPlaying: c.state == StatePlaying,
		SavedAt:   time.Now(),
		Session:   c.session,
	})
}

func (c *Coordinator) saveQueueLocked() {
	if c.store == nil {
		return
	}
	state := store.QueueState{
		CurrentIndex: c.queue.CurrentIndex(),
		RepeatMode:   int(c.queue.RepeatMode()),
		Shuffled:     c.queue.Shuffled(),
		Volume:       c.volume,
		Tracks:       c.queue.Tracks(),
	}
	if err := c.store.SaveQueue(state); err != nil {
		c.log.Debug(errmsg.Format(errmsg.OpQueueSave, err))
	}
}

// Restore loads the persisted queue and snapshot. A restored session
// comes back paused at the saved position; playback only starts on the
// next user command. Corrupt snapshots are discarded by the store and
// leave the coordinator idle.
func (c *Coordinator) Restore() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}

	qs, err := c.store.LoadQueue()
	if err != nil {
		c.log.Warn(errmsg.Format(errmsg.OpQueueRestore, err))
	} else if qs != nil && len(qs.Tracks) > 0 {
		c.queue.Replace(qs.Tracks, qs.CurrentIndex)
		c.queue.SetRepeatMode(queue.RepeatMode(qs.RepeatMode))
		c.queue.MarkShuffled(qs.Shuffled)
		if qs.Volume >= 0 && qs.Volume <= 100 {
			c.volume = qs.Volume
			c.background.SetVolume(c.volume)
			if verr := c.primary.SetVolume(c.volume); verr != nil {
				c.log.Debug("restore volume", "err", verr)
			}
		}
		c.announceQueueLocked()
	}

	snap := c.store.LoadSnapshot()
	if snap == nil {
		c.announceTrackLocked()
		return nil
	}

	// Line the cursor up with the snapshot track.
	if cur := c.queue.Current(); cur == nil || cur.ID != snap.Track.ID {
		idx := -1
		for i, t := range c.queue.Tracks() {
			if t.ID == snap.Track.ID {
				idx = i
				break
			}
		}
		if idx >= 0 {
			c.queue.JumpTo(idx)
		} else {
			c.queue.Replace([]catalog.Track{snap.Track}, 0)
		}
		c.announceQueueLocked()
	}

	c.position = snap.Position
	c.duration = snap.Track.Duration
	c.loaded = false
	c.setStateLocked(StatePaused)
	c.announceTrackLocked()
	c.publish(PositionChange{Position: c.position, Duration: c.duration})
	c.log.Info("restored playback", "track", snap.Track.ID, "pos", snap.Position)
	return nil
}
