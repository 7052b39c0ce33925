// Package resolver turns a catalog track id into a direct playable
// audio URL for the background adapter.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chorusfm/chorus/internal/catalog"
)

// ErrResolutionFailed means all resolution attempts were exhausted.
var ErrResolutionFailed = errors.New("audio resolution failed")

const (
	defaultBaseURL     = "http://localhost:8080"
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
)

// Resolver resolves a track id to a direct media URL.
type Resolver interface {
	Resolve(ctx context.Context, trackID string) (string, error)
}

// Client is an HTTP resolver with per-session caching and retry.
// Resolved URLs are cached by track id for the client's lifetime; the
// catalog hands out URLs valid for hours, well past a session.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	backoff     time.Duration
	log         *log.Logger

	mu    sync.Mutex
	cache map[string]string
}

// Verify Client implements Resolver at compile time.
var _ Resolver = (*Client)(nil)

// NewClient creates a resolver client. Zero values fall back to defaults.
func NewClient(baseURL string, maxAttempts int, backoff time.Duration, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		maxAttempts: maxAttempts,
		backoff:     backoff,
		log:         logger,
		cache:       make(map[string]string),
	}
}

// Resolve returns a direct media URL for the track id, retrying with
// exponential back-off before giving up with ErrResolutionFailed.
func (c *Client) Resolve(ctx context.Context, trackID string) (string, error) {
	if !catalog.ValidID(trackID) {
		return "", fmt.Errorf("resolve %q: malformed track id", trackID)
	}

	c.mu.Lock()
	if url, ok := c.cache[trackID]; ok {
		c.mu.Unlock()
		return url, nil
	}
	c.mu.Unlock()

	var lastErr error
	delay := c.backoff
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			c.log.Debug("retrying audio resolution", "track", trackID, "attempt", attempt)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		url, err := c.resolveOnce(ctx, trackID)
		if err == nil {
			c.mu.Lock()
			c.cache[trackID] = url
			c.mu.Unlock()
			return url, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}

	c.log.Warn("audio resolution exhausted retries", "track", trackID, "err", lastErr)
	return "", fmt.Errorf("%w: %s: %v", ErrResolutionFailed, trackID, lastErr)
}

func (c *Client) resolveOnce(ctx context.Context, trackID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/resolve/"+trackID, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("resolver returned status %d", resp.StatusCode)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if payload.URL == "" {
		return "", errors.New("resolver returned empty url")
	}
	return payload.URL, nil
}
