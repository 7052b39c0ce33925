package player

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

const audioEventBuffer = 16

// The speaker is a process-wide resource and must only be initialized
// once: platforms limit concurrently constructed audio outputs.
var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

func initSpeaker(rate beep.SampleRate) error {
	speakerOnce.Do(func() {
		speakerRate = rate
		speakerErr = speaker.Init(rate, rate.N(time.Second/10))
	})
	return speakerErr
}

// Audio plays a resolved direct media URL through the shared speaker.
// A single instance is reused across tracks.
type Audio struct {
	httpClient *http.Client

	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	percent  int
	playing  bool
	loadSeq  uint64 // bumped on every Stop; orphans in-flight fetches

	events chan Event
}

// Verify Audio implements Background at compile time.
var _ Background = (*Audio)(nil)

// NewAudio creates the background audio adapter.
func NewAudio() *Audio {
	return &Audio{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		percent:    100,
		events:     make(chan Event, audioEventBuffer),
	}
}

// LoadAndPlay stops any current stream and starts fetching the media
// URL. The fetch and decode run on their own goroutine so callers never
// block on the network; the outcome is reported through the event
// stream, tagged with gen. A later load or Stop orphans the fetch.
func (a *Audio) LoadAndPlay(url string, start time.Duration, gen uint64) error {
	a.Stop()

	a.mu.Lock()
	seq := a.loadSeq
	a.mu.Unlock()

	go a.fetchAndStart(url, start, gen, seq)
	return nil
}

func (a *Audio) fetchAndStart(url string, start time.Duration, gen uint64, seq uint64) {
	streamer, format, err := a.fetchStream(url, start)
	if err != nil {
		a.mu.Lock()
		stale := seq != a.loadSeq
		a.mu.Unlock()
		if !stale {
			a.emit(Event{Kind: EventError, Generation: gen, Code: errCode(err)})
		}
		return
	}

	a.mu.Lock()
	if seq != a.loadSeq {
		a.mu.Unlock()
		streamer.Close()
		return
	}
	a.streamer = streamer
	a.format = format
	a.ctrl = &beep.Ctrl{Streamer: streamer}

	var out beep.Streamer = a.ctrl
	if format.SampleRate != speakerRate {
		out = beep.Resample(4, format.SampleRate, speakerRate, a.ctrl)
	}
	a.volume = &effects.Volume{
		Streamer: out,
		Base:     2,
		Volume:   percentToVolume(a.percent),
		Silent:   a.percent == 0,
	}
	a.playing = true
	vol := a.volume
	a.mu.Unlock()

	speaker.Play(beep.Seq(vol, beep.Callback(func() {
		a.mu.Lock()
		finished := a.playing
		a.playing = false
		a.mu.Unlock()
		if finished {
			a.emit(Event{Kind: EventEnded, Generation: gen})
		}
	})))

	a.emit(Event{Kind: EventPlaying, Generation: gen})
}

// fetchStream downloads and decodes the media. No adapter state is
// touched; only the cheap speaker wiring happens under the lock.
func (a *Audio) fetchStream(url string, start time.Duration) (beep.StreamSeekCloser, beep.Format, error) {
	resp, err := a.httpClient.Get(url)
	if err != nil {
		return nil, beep.Format{}, &mediaError{code: CodeTransport, err: fmt.Errorf("fetch media: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := CodeTransport
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			code = CodeUnavailable
		}
		return nil, beep.Format{}, &mediaError{code: code, err: fmt.Errorf("fetch media: status %d", resp.StatusCode)}
	}

	// The decoder needs a seekable source so drift correction can seek
	// backwards; buffer the full stream.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, beep.Format{}, &mediaError{code: CodeTransport, err: fmt.Errorf("read media: %w", err)}
	}

	streamer, format, err := mp3.Decode(nopSeekCloser{bytes.NewReader(data)})
	if err != nil {
		return nil, beep.Format{}, &mediaError{code: CodeUnavailable, err: fmt.Errorf("decode media: %w", err)}
	}

	if err := initSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		return nil, beep.Format{}, &mediaError{code: CodeTransport, err: fmt.Errorf("audio output: %w", err)}
	}

	if start < 0 {
		start = 0
	}
	if start > 0 {
		if err := streamer.Seek(format.SampleRate.N(start)); err != nil {
			streamer.Close()
			return nil, beep.Format{}, &mediaError{code: CodeUnavailable, err: fmt.Errorf("seek media: %w", err)}
		}
	}
	return streamer, format, nil
}

type mediaError struct {
	code int
	err  error
}

func (e *mediaError) Error() string { return e.err.Error() }
func (e *mediaError) Unwrap() error { return e.err }

func errCode(err error) int {
	var me *mediaError
	if errors.As(err, &me) {
		return me.code
	}
	return CodeTransport
}

// Pause pauses the stream without releasing it.
func (a *Audio) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == nil {
		return
	}
	speaker.Lock()
	a.ctrl.Paused = true
	speaker.Unlock()
}

// Resume resumes a paused stream.
func (a *Audio) Resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == nil {
		return
	}
	speaker.Lock()
	a.ctrl.Paused = false
	speaker.Unlock()
}

// SeekTo seeks to an absolute position in the current stream.
func (a *Audio) SeekTo(pos time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return
	}
	if pos < 0 {
		pos = 0
	}
	n := a.format.SampleRate.N(pos)
	if n >= a.streamer.Len() {
		n = a.streamer.Len() - 1
	}
	speaker.Lock()
	_ = a.streamer.Seek(n)
	speaker.Unlock()
}

// SetVolume sets the output volume (0-100).
func (a *Audio) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.percent = percent
	if a.volume == nil {
		return
	}
	speaker.Lock()
	a.volume.Volume = percentToVolume(percent)
	a.volume.Silent = percent == 0
	speaker.Unlock()
}

// Position returns the current stream position.
func (a *Audio) Position() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return 0
	}
	return a.format.SampleRate.D(a.streamer.Position())
}

// Duration returns the current stream duration.
func (a *Audio) Duration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return 0
	}
	return a.format.SampleRate.D(a.streamer.Len())
}

// IsPlaying reports whether a stream is loaded and not paused.
func (a *Audio) IsPlaying() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing && a.ctrl != nil && !a.ctrl.Paused
}

// Stop clears the speaker, releases the current stream, and orphans any
// in-flight fetch.
func (a *Audio) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loadSeq++
	if a.streamer == nil {
		return
	}
	a.playing = false
	speaker.Clear()
	a.streamer.Close()
	a.streamer = nil
	a.ctrl = nil
	a.volume = nil
}

// Events returns the adapter event stream.
func (a *Audio) Events() <-chan Event {
	return a.events
}

// Close stops playback. The speaker itself stays initialized for the
// process lifetime.
func (a *Audio) Close() error {
	a.Stop()
	return nil
}

func (a *Audio) emit(ev Event) {
	select {
	case a.events <- ev:
	default:
	}
}

// percentToVolume converts a 0-100 level to beep's logarithmic volume.
// 100 -> 0 (no change), 50 -> -1 (half), 25 -> -2, 0 -> silent.
func percentToVolume(percent int) float64 {
	if percent <= 0 {
		return -10
	}
	if percent >= 100 {
		return 0
	}
	return math.Log2(float64(percent) / 100)
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
