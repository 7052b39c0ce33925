package player

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitAudioEvent(t *testing.T, a *Audio) Event {
	t.Helper()
	select {
	case ev := <-a.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audio event")
		return Event{}
	}
}

func TestAudioLoadAndPlay_MissingMediaEmitsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewAudio()
	require.NoError(t, a.LoadAndPlay(srv.URL, 0, 7))

	ev := waitAudioEvent(t, a)
	assert.Equal(t, EventError, ev.Kind)
	assert.Equal(t, uint64(7), ev.Generation)
	assert.Equal(t, CodeUnavailable, ev.Code)
}

func TestAudioLoadAndPlay_UndecodableMediaEmitsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("definitely not an mp3 stream"))
	}))
	defer srv.Close()

	a := NewAudio()
	require.NoError(t, a.LoadAndPlay(srv.URL, 0, 3))

	ev := waitAudioEvent(t, a)
	assert.Equal(t, EventError, ev.Kind)
	assert.Equal(t, CodeUnavailable, ev.Code)
}

func TestAudioLoadAndPlay_TransportFailureEmitsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused

	a := NewAudio()
	require.NoError(t, a.LoadAndPlay(srv.URL, 0, 1))

	ev := waitAudioEvent(t, a)
	assert.Equal(t, EventError, ev.Kind)
	assert.Equal(t, CodeTransport, ev.Code)
}

func TestAudioLoadAndPlay_DoesNotBlockOnFetch(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	defer close(release)

	a := NewAudio()
	begin := time.Now()
	require.NoError(t, a.LoadAndPlay(srv.URL, 0, 1))
	assert.Less(t, time.Since(begin), 500*time.Millisecond, "LoadAndPlay must not wait for the download")
}

func TestAudioStop_OrphansInFlightFetch(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewAudio()
	require.NoError(t, a.LoadAndPlay(srv.URL, 0, 5))
	a.Stop()
	close(release)

	select {
	case ev := <-a.Events():
		t.Fatalf("stopped load still emitted %v", ev.Kind)
	case <-time.After(300 * time.Millisecond):
	}
}
