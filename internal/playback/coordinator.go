package playback

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/chorusfm/chorus/internal/catalog"
	"github.com/chorusfm/chorus/internal/lifecycle"
	"github.com/chorusfm/chorus/internal/player"
	"github.com/chorusfm/chorus/internal/queue"
	"github.com/chorusfm/chorus/internal/resolver"
	"github.com/chorusfm/chorus/internal/store"
)

// Tunables are the coordinator's timing parameters. Zero values are
// replaced by the defaults from DefaultTunables.
type Tunables struct {
	PersistInterval time.Duration // snapshot cadence while playing and visible
	SyncInterval    time.Duration // background drift check cadence
	KeepAlive       time.Duration // background keep-alive cadence
	DriftThreshold  time.Duration // force-seek when drift exceeds this
	InitialVolume   int
}

// DefaultTunables returns the standard timing parameters.
func DefaultTunables() Tunables {
	return Tunables{
		PersistInterval: 3 * time.Second,
		SyncInterval:    250 * time.Millisecond,
		KeepAlive:       time.Second,
		DriftThreshold:  1500 * time.Millisecond,
		InitialVolume:   100,
	}
}

func (t Tunables) withDefaults() Tunables {
	d := DefaultTunables()
	if t.PersistInterval <= 0 {
		t.PersistInterval = d.PersistInterval
	}
	if t.SyncInterval <= 0 {
		t.SyncInterval = d.SyncInterval
	}
	if t.KeepAlive <= 0 {
		t.KeepAlive = d.KeepAlive
	}
	if t.DriftThreshold <= 0 {
		t.DriftThreshold = d.DriftThreshold
	}
	if t.InitialVolume <= 0 || t.InitialVolume > 100 {
		t.InitialVolume = d.InitialVolume
	}
	return t
}

// Options carries the coordinator's dependencies. Primary, Background
// and Resolver are required; Store, Monitor and WakeLock are optional.
type Options struct {
	Primary    player.Primary
	Background player.Background
	Resolver   resolver.Resolver
	Store      *store.Manager
	Monitor    *lifecycle.Monitor
	WakeLock   lifecycle.WakeLocker
	Tunables   Tunables
	Logger     *log.Logger
}

// resolveResult is delivered on the coordinator's resolve channel when
// an audio URL resolution finishes.
type resolveResult struct {
	gen   uint64
	track catalog.Track
	url   string
	start time.Duration
	err   error
}

// Verify Coordinator implements Service at compile time.
var _ Service = (*Coordinator)(nil)

// Coordinator owns the queue, both playback adapters, and all playback
// state. Everything mutable is guarded by mu; the run loop serializes
// adapter events, visibility transitions and timer ticks.
type Coordinator struct {
	mu sync.Mutex

	primary    player.Primary
	background player.Background
	resolver   resolver.Resolver
	store      *store.Manager
	monitor    *lifecycle.Monitor
	wake       lifecycle.WakeLocker
	tun        Tunables
	log        *log.Logger

	queue   *queue.Queue
	session string

	state      State
	backend    Backend
	gen        uint64
	volume     int
	hidden     bool
	wakeHeld   bool
	position    time.Duration
	duration    time.Duration
	syncTarget  time.Duration
	pendingSeek time.Duration // applied once playback starts (restored sessions)
	loaded      bool          // a load was issued for the current track
	cuedTrack   string        // last track id loaded into the primary adapter
	blocklist   map[string]struct{}

	// last announced track, for TrackChange diffs
	announced    *catalog.Track
	announcedIdx int

	resolveCh chan resolveResult

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// New creates a playback coordinator and starts its run loop.
func New(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	wake := opts.WakeLock
	if wake == nil {
		wake = lifecycle.NoopWakeLock{}
	}
	tun := opts.Tunables.withDefaults()
	c := &Coordinator{
		primary:      opts.Primary,
		background:   opts.Background,
		resolver:     opts.Resolver,
		store:        opts.Store,
		monitor:      opts.Monitor,
		wake:         wake,
		tun:          tun,
		log:          logger.With("component", "playback"),
		queue:        queue.New(),
		session:      uuid.NewString(),
		state:        StateIdle,
		backend:      BackendPrimary,
		volume:       tun.InitialVolume,
		announcedIdx: -1,
		blocklist:    make(map[string]struct{}),
		resolveCh:    make(chan resolveResult, 4),
		done:         make(chan struct{}),
	}
	_ = c.primary.SetVolume(c.volume)
	c.background.SetVolume(c.volume)
	go c.run()
	return c
}

func (c *Coordinator) run() {
	persist := time.NewTicker(c.tun.PersistInterval)
	defer persist.Stop()
	drift := time.NewTicker(c.tun.SyncInterval)
	defer drift.Stop()
	keepAlive := time.NewTicker(c.tun.KeepAlive)
	defer keepAlive.Stop()

	var monitorCh <-chan lifecycle.Event
	if c.monitor != nil {
		monitorCh = c.monitor.Events()
	}

	for {
		select {
		case <-c.done:
			return
		case ev := <-c.primary.Events():
			c.handlePrimaryEvent(ev)
		case ev := <-c.background.Events():
			c.handleBackgroundEvent(ev)
		case res := <-c.resolveCh:
			c.handleResolved(res)
		case ev, ok := <-monitorCh:
			if !ok {
				monitorCh = nil
				continue
			}
			c.handleVisibility(ev)
		case <-persist.C:
			c.handlePersistTick()
		case <-drift.C:
			c.handleSyncTick()
		case <-keepAlive.C:
			c.handleKeepAliveTick()
		}
	}
}

// Subscribe creates a new event subscription.
func (c *Coordinator) Subscribe() *Subscription {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	sub := newSubscription()
	c.subs = append(c.subs, sub)
	return sub
}

// Unsubscribe removes a subscription and closes its done channel.
func (c *Coordinator) Unsubscribe(sub *Subscription) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

func (c *Coordinator) publish(e Event) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, sub := range c.subs {
		sub.send(e)
	}
}

func (c *Coordinator) setStateLocked(s State) {
	if s == c.state {
		return
	}
	prev := c.state
	c.state = s
	c.publish(StateChange{Previous: prev, Current: s})
}

// announceTrackLocked publishes a TrackChange if the current track or
// cursor moved since the last announcement.
func (c *Coordinator) announceTrackLocked() {
	cur := c.queue.Current()
	idx := c.queue.CurrentIndex()
	if idx == c.announcedIdx && sameTrack(cur, c.announced) {
		return
	}
	ev := TrackChange{
		Previous:      c.announced,
		Current:       copyTrack(cur),
		PreviousIndex: c.announcedIdx,
		Index:         idx,
	}
	c.announced = copyTrack(cur)
	c.announcedIdx = idx
	c.publish(ev)
}

func (c *Coordinator) announceQueueLocked() {
	c.publish(QueueChange{Tracks: c.queue.Tracks(), Index: c.queue.CurrentIndex()})
}

func sameTrack(a, b *catalog.Track) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

func copyTrack(t *catalog.Track) *catalog.Track {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func (c *Coordinator) blocked(id string) bool {
	_, ok := c.blocklist[id]
	return ok
}

// State returns the current playback state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsPlaying reports whether audio is currently playing.
func (c *Coordinator) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StatePlaying
}

// IsLoading reports whether a track is loading or buffering.
func (c *Coordinator) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateLoading || c.state == StateBuffering
}

// CurrentTrack returns a copy of the current track, or nil.
func (c *Coordinator) CurrentTrack() *catalog.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyTrack(c.queue.Current())
}

// Position returns the playback position of the active backend.
func (c *Coordinator) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *Coordinator) positionLocked() time.Duration {
	if !c.state.Active() {
		return c.position
	}
	var pos time.Duration
	if c.backend == BackendBackground {
		pos = c.background.Position()
	} else {
		pos = c.primary.Position()
	}
	if pos > 0 {
		return pos
	}
	return c.position
}

// Duration returns the duration of the current track. The adapter's
// measured duration wins over the catalog's declared one once known.
func (c *Coordinator) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Active() {
		var d time.Duration
		if c.backend == BackendBackground {
			d = c.background.Duration()
		} else {
			d = c.primary.Duration()
		}
		if d > 0 {
			return d
		}
	}
	return c.duration
}

// Volume returns the current volume percentage.
func (c *Coordinator) Volume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// ActiveBackend reports which adapter currently owns audio output.
func (c *Coordinator) ActiveBackend() Backend {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend
}

// QueueTracks returns a copy of all tracks in the queue.
func (c *Coordinator) QueueTracks() []catalog.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Tracks()
}

// QueueIndex returns the current queue index (-1 if none).
func (c *Coordinator) QueueIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.CurrentIndex()
}

// QueueLen returns the number of tracks in the queue.
func (c *Coordinator) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

// QueueIsEmpty reports whether the queue is empty.
func (c *Coordinator) QueueIsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.IsEmpty()
}

// QueueHasNext reports whether a track follows the cursor.
func (c *Coordinator) QueueHasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.HasNext()
}

// Shuffled reports whether the queue ordering came from Shuffle.
func (c *Coordinator) Shuffled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Shuffled()
}

// RepeatMode returns the active repeat mode.
func (c *Coordinator) RepeatMode() queue.RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.RepeatMode()
}

// SetRepeatMode sets the repeat mode.
func (c *Coordinator) SetRepeatMode(mode queue.RepeatMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue.SetRepeatMode(mode)
	c.publish(ModeChange{Repeat: mode, Shuffled: c.queue.Shuffled()})
}

// CycleRepeatMode advances off -> all -> one -> off and returns the new mode.
func (c *Coordinator) CycleRepeatMode() queue.RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	var next queue.RepeatMode
	switch c.queue.RepeatMode() {
	case queue.RepeatOff:
		next = queue.RepeatAll
	case queue.RepeatAll:
		next = queue.RepeatOne
	default:
		next = queue.RepeatOff
	}
	c.queue.SetRepeatMode(next)
	c.publish(ModeChange{Repeat: next, Shuffled: c.queue.Shuffled()})
	return next
}

// Session returns the identifier of this playback session. Snapshots
// are tagged with it, and the blocklist is scoped to it.
func (c *Coordinator) Session() string {
	return c.session
}

// Close persists state, stops both adapters and shuts down the run loop.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.saveSnapshotLocked()
	c.saveQueueLocked()
	if c.wakeHeld {
		c.wake.Release()
		c.wakeHeld = false
	}
	close(c.done)
	c.mu.Unlock()

	c.background.Stop()
	err := c.primary.Close()
	if berr := c.background.Close(); err == nil {
		err = berr
	}

	c.subsMu.Lock()
	for _, sub := range c.subs {
		sub.close()
	}
	c.subs = nil
	c.subsMu.Unlock()

	return err
}
