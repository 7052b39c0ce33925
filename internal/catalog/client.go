// Catalog [Provider] implementation over the catalog proxy HTTP API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "http://localhost:8080"

// apiTrack mirrors a track object in catalog proxy responses.
type apiTrack struct {
	VideoID     string `json:"videoId"`
	Title       string `json:"title"`
	Artists     []struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	} `json:"artists"`
	DurationSec int `json:"duration_seconds"`
	Thumbnails  []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"thumbnails"`
}

// Client implements Provider against the catalog proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *log.Logger
}

// NewClient creates a catalog client. An empty baseURL falls back to the
// local proxy default. requestsPerSec bounds outbound request rate.
func NewClient(baseURL string, requestsPerSec float64, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if requestsPerSec <= 0 {
		requestsPerSec = 4
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		log:        logger,
	}
}

// Search returns tracks matching the query string.
func (c *Client) Search(ctx context.Context, query string) ([]Track, error) {
	endpoint := "/search?q=" + url.QueryEscape(query)
	return c.fetchTracks(ctx, endpoint)
}

// Trending returns the current trending tracks.
func (c *Client) Trending(ctx context.Context) ([]Track, error) {
	return c.fetchTracks(ctx, "/trending")
}

func (c *Client) fetchTracks(ctx context.Context, endpoint string) ([]Track, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var payload struct {
		Tracks []apiTrack `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	tracks := make([]Track, 0, len(payload.Tracks))
	for _, at := range payload.Tracks {
		t := at.toTrack()
		if !t.Valid() {
			c.log.Warn("catalog returned malformed track id", "id", at.VideoID)
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func (at apiTrack) toTrack() Track {
	t := Track{
		ID:       at.VideoID,
		Title:    at.Title,
		Duration: time.Duration(at.DurationSec) * time.Second,
	}
	if len(at.Artists) > 0 {
		t.ArtistLabel = at.Artists[0].Name
		for _, a := range at.Artists[1:] {
			t.ArtistLabel += ", " + a.Name
		}
	}
	// Largest thumbnail wins.
	best := -1
	for _, th := range at.Thumbnails {
		if th.Width*th.Height > best {
			best = th.Width * th.Height
			t.ThumbnailURL = th.URL
		}
	}
	return t
}
