//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/chorus.sock",
			expected: filepath.Join(home, "chorus.sock"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/.cache/chorus/embed.sock",
			expected: filepath.Join(home, ".cache", "chorus", "embed.sock"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/run/chorus/embed.sock",
			expected: "/run/chorus/embed.sock",
		},
		{
			name:     "relative path unchanged",
			input:    "chorus/embed.sock",
			expected: "chorus/embed.sock",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	// Should have at least one path
	if len(paths) == 0 {
		t.Error("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	// If we have home dir, first path should be ~/.config/chorus/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		expectedFirst := filepath.Join(home, ".config", "chorus", "config.toml")
		if paths[0] != expectedFirst {
			t.Errorf("first config path = %q, want %q", paths[0], expectedFirst)
		}
	}
}

func TestGetPlaybackConfig_Defaults(t *testing.T) {
	cfg := Config{}
	pb := cfg.GetPlaybackConfig()

	if pb.PersistIntervalSec != 3 {
		t.Errorf("PersistIntervalSec = %d, want 3", pb.PersistIntervalSec)
	}
	if pb.SyncIntervalMS != 250 {
		t.Errorf("SyncIntervalMS = %d, want 250", pb.SyncIntervalMS)
	}
	if pb.KeepAliveSec != 1 {
		t.Errorf("KeepAliveSec = %d, want 1", pb.KeepAliveSec)
	}
	if pb.DriftThresholdSec != 1.5 {
		t.Errorf("DriftThresholdSec = %f, want 1.5", pb.DriftThresholdSec)
	}
	if pb.InitialVolume != 100 {
		t.Errorf("InitialVolume = %d, want 100", pb.InitialVolume)
	}
}

func TestGetPlaybackConfig_CustomValues(t *testing.T) {
	cfg := Config{
		Playback: PlaybackConfig{
			PersistIntervalSec: 5,
			SyncIntervalMS:     100,
			KeepAliveSec:       2,
			DriftThresholdSec:  2.0,
			InitialVolume:      60,
		},
	}

	pb := cfg.GetPlaybackConfig()

	if pb.PersistIntervalSec != 5 {
		t.Errorf("PersistIntervalSec = %d, want 5", pb.PersistIntervalSec)
	}
	if pb.SyncIntervalMS != 100 {
		t.Errorf("SyncIntervalMS = %d, want 100", pb.SyncIntervalMS)
	}
	if pb.KeepAliveSec != 2 {
		t.Errorf("KeepAliveSec = %d, want 2", pb.KeepAliveSec)
	}
	if pb.DriftThresholdSec != 2.0 {
		t.Errorf("DriftThresholdSec = %f, want 2.0", pb.DriftThresholdSec)
	}
	if pb.InitialVolume != 60 {
		t.Errorf("InitialVolume = %d, want 60", pb.InitialVolume)
	}
}

func TestGetPlaybackConfig_InvalidValues(t *testing.T) {
	// Values outside the allowed ranges fall back to defaults
	cfg := Config{
		Playback: PlaybackConfig{
			PersistIntervalSec: 30,   // outside 2-5, should become 3
			SyncIntervalMS:     -1,   // negative, should become 250
			DriftThresholdSec:  -0.5, // negative, should become 1.5
			InitialVolume:      150,  // > 100, should become 100
		},
	}

	pb := cfg.GetPlaybackConfig()

	if pb.PersistIntervalSec != 3 {
		t.Errorf("PersistIntervalSec with invalid value = %d, want 3", pb.PersistIntervalSec)
	}
	if pb.SyncIntervalMS != 250 {
		t.Errorf("SyncIntervalMS with invalid value = %d, want 250", pb.SyncIntervalMS)
	}
	if pb.DriftThresholdSec != 1.5 {
		t.Errorf("DriftThresholdSec with invalid value = %f, want 1.5", pb.DriftThresholdSec)
	}
	if pb.InitialVolume != 100 {
		t.Errorf("InitialVolume with invalid value = %d, want 100", pb.InitialVolume)
	}
}

func TestGetEmbedConfig_Defaults(t *testing.T) {
	cfg := Config{}
	embed := cfg.GetEmbedConfig()

	if embed.Network != "unix" {
		t.Errorf("Network = %q, want %q", embed.Network, "unix")
	}
	if embed.Address == "" {
		t.Error("Address should have a default")
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	if err := os.WriteFile("config.toml", []byte(""), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
}

func TestLoad_BasicConfig(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	configContent := `
[catalog]
url = "http://localhost:9090/"

[resolver]
max_attempts = 5

[playback]
initial_volume = 40
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Check that URL trailing slash is removed
	if cfg.Catalog.URL != "http://localhost:9090" {
		t.Errorf("Catalog.URL = %q, want %q", cfg.Catalog.URL, "http://localhost:9090")
	}

	// Resolver URL inherits the catalog endpoint when unset
	if cfg.Resolver.URL != "http://localhost:9090" {
		t.Errorf("Resolver.URL = %q, want %q", cfg.Resolver.URL, "http://localhost:9090")
	}

	if cfg.Resolver.MaxAttempts != 5 {
		t.Errorf("Resolver.MaxAttempts = %d, want 5", cfg.Resolver.MaxAttempts)
	}

	if cfg.GetPlaybackConfig().InitialVolume != 40 {
		t.Errorf("InitialVolume = %d, want 40", cfg.GetPlaybackConfig().InitialVolume)
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	if err := os.WriteFile("config.toml", []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	_, err = Load()
	if err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}
