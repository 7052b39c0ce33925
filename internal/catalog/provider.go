package catalog

import "context"

// Provider exposes catalog search and trending listings.
// The playback coordinator never calls these directly; the UI and
// recommendation layers build queues from the results.
type Provider interface {
	// Search returns tracks matching the query string.
	Search(ctx context.Context, query string) ([]Track, error)
	// Trending returns the current trending tracks.
	Trending(ctx context.Context) ([]Track, error)
}
