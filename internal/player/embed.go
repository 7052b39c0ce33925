package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

const embedEventBuffer = 16

// embedCommand is a single command sent to the embedded player bridge.
type embedCommand struct {
	Cmd     string  `json:"cmd"`
	ID      string  `json:"id,omitempty"`
	Gen     uint64  `json:"gen,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
	Percent int     `json:"percent,omitempty"`
}

// embedEvent is a single event received from the bridge.
type embedEvent struct {
	Event   string  `json:"event"`
	Gen     uint64  `json:"gen"`
	Code    int     `json:"code"`
	Seconds float64 `json:"seconds"`
}

// Embed drives the embedded catalog player through a newline-delimited
// JSON bridge. The host side owns the hidden player surface; this side
// only sends transport commands and consumes property change events.
type Embed struct {
	conn net.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	position time.Duration
	duration time.Duration

	events chan Event
	stop   chan struct{}
	once   sync.Once
}

// Verify Embed implements Primary at compile time.
var _ Primary = (*Embed)(nil)

// NewEmbed creates an adapter over an established bridge connection and
// starts its event read loop.
func NewEmbed(conn net.Conn) *Embed {
	e := &Embed{
		conn:   conn,
		events: make(chan Event, embedEventBuffer),
		stop:   make(chan struct{}),
	}
	go e.readLoop()
	return e
}

// DialEmbed connects to the bridge socket and returns a ready adapter.
func DialEmbed(network, address string) (*Embed, error) {
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("embed bridge connect: %w", err)
	}
	return NewEmbed(conn), nil
}

// Load cues a track by catalog id. Events produced by this load echo gen.
func (e *Embed) Load(trackID string, gen uint64) error {
	return e.send(embedCommand{Cmd: "load", ID: trackID, Gen: gen})
}

// Play starts or resumes the cued track.
func (e *Embed) Play() error {
	return e.send(embedCommand{Cmd: "play"})
}

// Pause pauses playback.
func (e *Embed) Pause() error {
	return e.send(embedCommand{Cmd: "pause"})
}

// SeekTo seeks to an absolute position.
func (e *Embed) SeekTo(pos time.Duration) error {
	e.mu.Lock()
	e.position = pos
	e.mu.Unlock()
	return e.send(embedCommand{Cmd: "seek", Seconds: pos.Seconds()})
}

// SetVolume sets the player volume (0-100).
func (e *Embed) SetVolume(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return e.send(embedCommand{Cmd: "volume", Percent: percent})
}

// Position returns the last reported playback position.
func (e *Embed) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Duration returns the last reported track duration.
func (e *Embed) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

// Events returns the adapter event stream.
func (e *Embed) Events() <-chan Event {
	return e.events
}

// Close stops the read loop and closes the bridge connection.
func (e *Embed) Close() error {
	e.once.Do(func() { close(e.stop) })
	return e.conn.Close()
}

func (e *Embed) send(cmd embedCommand) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if _, err := e.conn.Write(data); err != nil {
		return fmt.Errorf("embed bridge write: %w", err)
	}
	return nil
}

// readLoop consumes newline-delimited JSON events from the bridge until
// the connection closes or Close is called.
func (e *Embed) readLoop() {
	reader := bufio.NewReader(e.conn)
	for {
		select {
		case <-e.stop:
			return
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return
		}

		var ev embedEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue // malformed lines are dropped
		}
		e.handle(ev)
	}
}

func (e *Embed) handle(ev embedEvent) {
	switch ev.Event {
	case "time":
		e.mu.Lock()
		e.position = secondsToDuration(ev.Seconds)
		e.mu.Unlock()
	case "duration":
		e.mu.Lock()
		e.duration = secondsToDuration(ev.Seconds)
		e.mu.Unlock()
	case "cued":
		e.emit(Event{Kind: EventReady, Generation: ev.Gen})
	case "buffering":
		e.emit(Event{Kind: EventBuffering, Generation: ev.Gen})
	case "playing":
		e.emit(Event{Kind: EventPlaying, Generation: ev.Gen})
	case "paused":
		e.emit(Event{Kind: EventPaused, Generation: ev.Gen})
	case "ended":
		e.emit(Event{Kind: EventEnded, Generation: ev.Gen})
	case "error":
		e.emit(Event{Kind: EventError, Generation: ev.Gen, Code: ev.Code})
	}
}

func (e *Embed) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		// Drop if buffer full
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
