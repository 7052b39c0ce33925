// Package lifecycle observes platform visibility transitions and the
// wake lock capability.
package lifecycle

import "sync"

// Signal is a raw platform lifecycle signal.
type Signal int

const (
	SignalHidden Signal = iota
	SignalVisible
	SignalPageHide
	SignalPageShow
	SignalUnload
)

// Event is a logical visibility event. Multiple raw signals coalesce
// into at most one logical transition.
type Event int

const (
	WentHidden Event = iota
	WentVisible
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case WentHidden:
		return "WentHidden"
	case WentVisible:
		return "WentVisible"
	default:
		return "Unknown"
	}
}

const eventBuffer = 4

// Monitor coalesces raw hide/show signals into logical events. Duplicate
// raw signals while already in the target state are dropped.
type Monitor struct {
	mu     sync.Mutex
	hidden bool
	events chan Event
	closed bool
}

// NewMonitor creates a monitor in the visible state.
func NewMonitor() *Monitor {
	return &Monitor{events: make(chan Event, eventBuffer)}
}

// Signal feeds a raw platform signal into the monitor.
func (m *Monitor) Signal(s Signal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	switch s {
	case SignalHidden, SignalPageHide, SignalUnload:
		if m.hidden {
			return
		}
		m.hidden = true
		m.send(WentHidden)
	case SignalVisible, SignalPageShow:
		if !m.hidden {
			return
		}
		m.hidden = false
		m.send(WentVisible)
	}
}

func (m *Monitor) send(e Event) {
	select {
	case m.events <- e:
	default:
		// Drop if buffer full; hand-off steps are idempotent.
	}
}

// Hidden reports the current logical visibility state.
func (m *Monitor) Hidden() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hidden
}

// Events returns the logical event stream.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Close stops the monitor; further signals are ignored.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.events)
}
