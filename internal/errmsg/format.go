// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
	OpPlaybackSkip  Op = "skip track"
	OpVolumeSet     Op = "set volume"

	// Backend hand-off operations
	OpResolveAudio    Op = "resolve audio stream"
	OpBackgroundStart Op = "start background playback"
	OpForegroundStart Op = "resume foreground playback"

	// Queue operations
	OpQueueAdd     Op = "add to queue"
	OpQueueRemove  Op = "remove from queue"
	OpQueueRestore Op = "restore queue"
	OpQueueSave    Op = "save queue"

	// Snapshot operations
	OpSnapshotRestore Op = "restore playback snapshot"

	// Catalog operations
	OpCatalogSearch   Op = "search catalog"
	OpCatalogTrending Op = "load trending tracks"

	// Initialization
	OpInitialize Op = "initialize playback engine"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
