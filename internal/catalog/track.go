// Package catalog defines the track model and the catalog provider contract.
package catalog

import (
	"regexp"
	"time"
)

// Track represents a single playable catalog item.
// Immutable once constructed; the playback layer never invents tracks.
type Track struct {
	ID           string // 11-char catalog id
	Title        string
	ArtistLabel  string
	ThumbnailURL string
	Duration     time.Duration
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ValidID reports whether id matches the catalog id format:
// exactly 11 characters of [A-Za-z0-9_-].
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Valid reports whether the track carries a well-formed catalog id.
func (t Track) Valid() bool {
	return ValidID(t.ID)
}
