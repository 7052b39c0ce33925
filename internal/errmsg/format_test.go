//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPlaybackStart,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPlaybackStart,
			err:      errors.New("backend unavailable"),
			expected: "Failed to start playback: backend unavailable",
		},
		{
			name:     "seek operation",
			op:       OpPlaybackSeek,
			err:      errors.New("bridge closed"),
			expected: "Failed to seek: bridge closed",
		},
		{
			name:     "resolution operation",
			op:       OpResolveAudio,
			err:      errors.New("retries exhausted"),
			expected: "Failed to resolve audio stream: retries exhausted",
		},
		{
			name:     "queue operation",
			op:       OpQueueAdd,
			err:      errors.New("malformed track id"),
			expected: "Failed to add to queue: malformed track id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpResolveAudio,
			context:  "dQw4w9WgXcQ",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpResolveAudio,
			context:  "dQw4w9WgXcQ",
			err:      errors.New("retries exhausted"),
			expected: "Failed to resolve audio stream 'dQw4w9WgXcQ': retries exhausted",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpResolveAudio,
			context:  "",
			err:      errors.New("retries exhausted"),
			expected: "Failed to resolve audio stream: retries exhausted",
		},
		{
			name:     "search with query context",
			op:       OpCatalogSearch,
			context:  "night drive",
			err:      errors.New("status 503"),
			expected: "Failed to search catalog 'night drive': status 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpPlaybackStart, OpPlaybackSeek, OpPlaybackSkip, OpVolumeSet,
		OpResolveAudio, OpBackgroundStart, OpForegroundStart,
		OpQueueAdd, OpQueueRemove, OpQueueRestore, OpQueueSave,
		OpSnapshotRestore,
		OpCatalogSearch, OpCatalogTrending,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			result := Format(op, testErr)
			if result == "" {
				t.Error("Format should return non-empty string for non-nil error")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
