package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StateChanged    <-chan StateChange
	TrackChanged    <-chan TrackChange
	PositionChanged <-chan PositionChange
	QueueChanged    <-chan QueueChange
	ModeChanged     <-chan ModeChange
	VolumeChanged   <-chan VolumeChange
	BackendChanged  <-chan BackendChange
	Error           <-chan ErrorEvent
	Done            <-chan struct{}

	// Internal write channels
	stateCh    chan StateChange
	trackCh    chan TrackChange
	positionCh chan PositionChange
	queueCh    chan QueueChange
	modeCh     chan ModeChange
	volumeCh   chan VolumeChange
	backendCh  chan BackendChange
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		stateCh:    make(chan StateChange, eventBufferSize),
		trackCh:    make(chan TrackChange, eventBufferSize),
		positionCh: make(chan PositionChange, eventBufferSize),
		queueCh:    make(chan QueueChange, eventBufferSize),
		modeCh:     make(chan ModeChange, eventBufferSize),
		volumeCh:   make(chan VolumeChange, eventBufferSize),
		backendCh:  make(chan BackendChange, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.StateChanged = s.stateCh
	s.TrackChanged = s.trackCh
	s.PositionChanged = s.positionCh
	s.QueueChanged = s.queueCh
	s.ModeChanged = s.modeCh
	s.VolumeChanged = s.volumeCh
	s.BackendChanged = s.backendCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// send dispatches an event to the matching channel (non-blocking).
func (s *Subscription) send(e Event) {
	switch ev := e.(type) {
	case StateChange:
		select {
		case s.stateCh <- ev:
		default:
			// Drop if buffer full
		}
	case TrackChange:
		select {
		case s.trackCh <- ev:
		default:
		}
	case PositionChange:
		select {
		case s.positionCh <- ev:
		default:
		}
	case QueueChange:
		select {
		case s.queueCh <- ev:
		default:
		}
	case ModeChange:
		select {
		case s.modeCh <- ev:
		default:
		}
	case VolumeChange:
		select {
		case s.volumeCh <- ev:
		default:
		}
	case BackendChange:
		select {
		case s.backendCh <- ev:
		default:
		}
	case ErrorEvent:
		select {
		case s.errorCh <- ev:
		default:
		}
	}
}
