package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const testTrackID = "dQw4w9WgXcQ"

func TestClient_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/resolve/"+testTrackID {
			t.Errorf("path = %q, want /resolve/%s", r.URL.Path, testTrackID)
		}
		w.Write([]byte(`{"url": "http://cdn/audio.mp3"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 3, time.Millisecond, nil)
	url, err := c.Resolve(context.Background(), testTrackID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if url != "http://cdn/audio.mp3" {
		t.Errorf("url = %q, want http://cdn/audio.mp3", url)
	}
}

func TestClient_Resolve_MalformedID(t *testing.T) {
	c := NewClient("http://unused", 3, time.Millisecond, nil)
	if _, err := c.Resolve(context.Background(), "../evil"); err == nil {
		t.Error("Resolve() should reject a malformed track id before any request")
	}
}

func TestClient_Resolve_TransientThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"url": "http://cdn/audio.mp3"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 3, time.Millisecond, nil)
	url, err := c.Resolve(context.Background(), testTrackID)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if url != "http://cdn/audio.mp3" {
		t.Errorf("url = %q, want http://cdn/audio.mp3", url)
	}
	if calls.Load() != 3 {
		t.Errorf("server calls = %d, want 3", calls.Load())
	}
}

func TestClient_Resolve_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 3, time.Millisecond, nil)
	_, err := c.Resolve(context.Background(), testTrackID)
	if !errors.Is(err, ErrResolutionFailed) {
		t.Fatalf("Resolve() error = %v, want ErrResolutionFailed", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server calls = %d, want 3", calls.Load())
	}
}

func TestClient_Resolve_CachesByTrackID(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"url": "http://cdn/audio.mp3"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 3, time.Millisecond, nil)
	for i := 0; i < 3; i++ {
		if _, err := c.Resolve(context.Background(), testTrackID); err != nil {
			t.Fatalf("Resolve() #%d error = %v", i, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 (cached)", calls.Load())
	}
}

func TestClient_Resolve_EmptyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"url": ""}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 1, time.Millisecond, nil)
	if _, err := c.Resolve(context.Background(), testTrackID); err == nil {
		t.Error("Resolve() should fail on an empty url")
	}
}

func TestClient_Resolve_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	c := NewClient(srv.URL, 5, 10*time.Second, nil)
	go func() {
		_, err := c.Resolve(ctx, testTrackID)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Resolve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Resolve() did not return after cancellation")
	}
}
