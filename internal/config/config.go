package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Catalog proxy settings
	Catalog CatalogConfig `koanf:"catalog"`

	// Direct-audio resolver settings
	Resolver ResolverConfig `koanf:"resolver"`

	// Embedded player bridge settings
	Embed EmbedConfig `koanf:"embed"`

	// Playback coordinator tuning
	Playback PlaybackConfig `koanf:"playback"`
}

// CatalogConfig holds catalog proxy configuration.
type CatalogConfig struct {
	URL            string  `koanf:"url"`              // e.g., "http://localhost:8080"
	RequestsPerSec float64 `koanf:"requests_per_sec"` // outbound rate limit (default: 4)
}

// ResolverConfig holds direct-audio resolver configuration.
type ResolverConfig struct {
	URL         string `koanf:"url"`          // resolver endpoint, defaults to catalog url
	MaxAttempts int    `koanf:"max_attempts"` // resolution attempts (default: 3)
	BackoffMS   int    `koanf:"backoff_ms"`   // initial retry back-off (default: 500)
}

// EmbedConfig holds the embedded player bridge connection.
type EmbedConfig struct {
	Network string `koanf:"network"` // "unix" or "tcp" (default: "unix")
	Address string `koanf:"address"` // socket path or host:port
}

// PlaybackConfig tunes coordinator timers and thresholds.
type PlaybackConfig struct {
	PersistIntervalSec int     `koanf:"persist_interval_sec"` // snapshot cadence while playing (2-5, default: 3)
	SyncIntervalMS     int     `koanf:"sync_interval_ms"`     // background time-sync tick (default: 250)
	KeepAliveSec       int     `koanf:"keep_alive_sec"`       // background keep-alive tick (default: 1)
	DriftThresholdSec  float64 `koanf:"drift_threshold_sec"`  // force-seek threshold (default: 1.5)
	InitialVolume      int     `koanf:"initial_volume"`       // 0-100 (default: 100)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize URLs (remove trailing slash)
	cfg.Catalog.URL = strings.TrimSuffix(cfg.Catalog.URL, "/")
	cfg.Resolver.URL = strings.TrimSuffix(cfg.Resolver.URL, "/")

	// Resolver defaults to the catalog endpoint
	if cfg.Resolver.URL == "" {
		cfg.Resolver.URL = cfg.Catalog.URL
	}

	// Expand ~ in the embed socket path
	if cfg.Embed.Address != "" {
		cfg.Embed.Address = expandPath(cfg.Embed.Address)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/chorus/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "chorus", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetEmbedConfig returns the embed bridge configuration with defaults applied.
func (c *Config) GetEmbedConfig() EmbedConfig {
	cfg := c.Embed
	if cfg.Network == "" {
		cfg.Network = "unix"
	}
	if cfg.Address == "" {
		if runtime, err := os.UserCacheDir(); err == nil {
			cfg.Address = filepath.Join(runtime, "chorus", "embed.sock")
		} else {
			cfg.Address = filepath.Join(os.TempDir(), "chorus-embed.sock")
		}
	}
	return cfg
}

// GetResolverBackoff returns the initial retry back-off with defaults applied.
func (c *Config) GetResolverBackoff() time.Duration {
	if c.Resolver.BackoffMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Resolver.BackoffMS) * time.Millisecond
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	// Apply defaults
	if cfg.PersistIntervalSec < 2 || cfg.PersistIntervalSec > 5 {
		cfg.PersistIntervalSec = 3
	}
	if cfg.SyncIntervalMS <= 0 {
		cfg.SyncIntervalMS = 250
	}
	if cfg.KeepAliveSec <= 0 {
		cfg.KeepAliveSec = 1
	}
	if cfg.DriftThresholdSec <= 0 {
		cfg.DriftThresholdSec = 1.5
	}
	if cfg.InitialVolume < 0 || cfg.InitialVolume > 100 {
		cfg.InitialVolume = 100
	}

	return cfg
}
