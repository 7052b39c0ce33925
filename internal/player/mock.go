package player

import (
	"sync"
	"time"
)

// MockPrimary is a test double for the embedded player adapter.
type MockPrimary struct {
	mu        sync.Mutex
	loadCalls []string
	loadGens  []uint64
	playCalls int
	pauseCall int
	seekCalls []time.Duration
	volume    int
	position  time.Duration
	duration  time.Duration
	loadErr   error

	events chan Event
}

// Verify MockPrimary implements Primary at compile time.
var _ Primary = (*MockPrimary)(nil)

// NewMockPrimary creates a mock primary adapter for testing.
func NewMockPrimary() *MockPrimary {
	return &MockPrimary{events: make(chan Event, 64)}
}

func (m *MockPrimary) Load(trackID string, gen uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls = append(m.loadCalls, trackID)
	m.loadGens = append(m.loadGens, gen)
	return m.loadErr
}

func (m *MockPrimary) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	return nil
}

func (m *MockPrimary) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCall++
	return nil
}

func (m *MockPrimary) SeekTo(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos)
	m.position = pos
	return nil
}

func (m *MockPrimary) SetVolume(percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = percent
	return nil
}

func (m *MockPrimary) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *MockPrimary) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *MockPrimary) Events() <-chan Event { return m.events }

func (m *MockPrimary) Close() error { return nil }

// Test helpers

func (m *MockPrimary) Emit(ev Event) { m.events <- ev }

func (m *MockPrimary) SetPosition(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
}

func (m *MockPrimary) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *MockPrimary) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *MockPrimary) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *MockPrimary) LoadGens() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.loadGens...)
}

func (m *MockPrimary) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *MockPrimary) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCall
}

func (m *MockPrimary) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *MockPrimary) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// BackgroundLoad records one LoadAndPlay call on MockBackground.
type BackgroundLoad struct {
	URL   string
	Start time.Duration
	Gen   uint64
}

// MockBackground is a test double for the direct audio adapter.
type MockBackground struct {
	mu        sync.Mutex
	loads     []BackgroundLoad
	seekCalls []time.Duration
	position  time.Duration
	duration  time.Duration
	playing   bool
	volume    int
	loadErr   error

	events chan Event
}

// Verify MockBackground implements Background at compile time.
var _ Background = (*MockBackground)(nil)

// NewMockBackground creates a mock background adapter for testing.
func NewMockBackground() *MockBackground {
	return &MockBackground{events: make(chan Event, 64)}
}

func (m *MockBackground) LoadAndPlay(url string, start time.Duration, gen uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, BackgroundLoad{URL: url, Start: start, Gen: gen})
	if m.loadErr != nil {
		return m.loadErr
	}
	m.position = start
	m.playing = true
	return nil
}

func (m *MockBackground) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
}

func (m *MockBackground) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = true
}

func (m *MockBackground) SeekTo(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos)
	m.position = pos
}

func (m *MockBackground) SetVolume(percent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = percent
}

func (m *MockBackground) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *MockBackground) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *MockBackground) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *MockBackground) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.position = 0
}

func (m *MockBackground) Events() <-chan Event { return m.events }

func (m *MockBackground) Close() error { return nil }

// Test helpers

func (m *MockBackground) Emit(ev Event) { m.events <- ev }

func (m *MockBackground) SetPosition(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
}

func (m *MockBackground) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *MockBackground) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *MockBackground) Loads() []BackgroundLoad {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BackgroundLoad(nil), m.loads...)
}

func (m *MockBackground) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *MockBackground) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}
