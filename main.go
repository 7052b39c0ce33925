package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chorusfm/chorus/internal/catalog"
	"github.com/chorusfm/chorus/internal/config"
	"github.com/chorusfm/chorus/internal/errmsg"
	"github.com/chorusfm/chorus/internal/lifecycle"
	"github.com/chorusfm/chorus/internal/mediasession"
	"github.com/chorusfm/chorus/internal/notify"
	"github.com/chorusfm/chorus/internal/playback"
	"github.com/chorusfm/chorus/internal/player"
	"github.com/chorusfm/chorus/internal/resolver"
	"github.com/chorusfm/chorus/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	trending := flag.Bool("trending", false, "start playing the trending tracks")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpInitialize, err)
	}

	st, err := store.Open(logger)
	if err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpInitialize, err)
	}
	defer st.Close()

	embedCfg := cfg.GetEmbedConfig()
	primary, err := player.DialEmbed(embedCfg.Network, embedCfg.Address)
	if err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpInitialize, err)
	}

	background := player.NewAudio()
	res := resolver.NewClient(cfg.Resolver.URL, cfg.Resolver.MaxAttempts, cfg.GetResolverBackoff(), logger)
	monitor := lifecycle.NewMonitor()
	defer monitor.Close()

	pc := cfg.GetPlaybackConfig()
	coord := playback.New(playback.Options{
		Primary:    primary,
		Background: background,
		Resolver:   res,
		Store:      st,
		Monitor:    monitor,
		WakeLock:   lifecycle.NewWakeLock("chorus", "audio playback"),
		Logger:     logger,
		Tunables: playback.Tunables{
			PersistInterval: time.Duration(pc.PersistIntervalSec) * time.Second,
			SyncInterval:    time.Duration(pc.SyncIntervalMS) * time.Millisecond,
			KeepAlive:       time.Duration(pc.KeepAliveSec) * time.Second,
			DriftThreshold:  time.Duration(pc.DriftThresholdSec * float64(time.Second)),
			InitialVolume:   pc.InitialVolume,
		},
	})
	defer coord.Close()

	session, err := mediasession.New(coord)
	if err != nil {
		logger.Warn("media session unavailable", "err", err)
	} else {
		defer session.Close()
	}

	watcher, err := notify.Watch(coord)
	if err != nil {
		logger.Warn("desktop notifications unavailable", "err", err)
	} else {
		defer watcher.Close()
	}

	if err := bootstrap(coord, cfg, logger, *trending, flag.Args()); err != nil {
		return err
	}

	// SIGUSR1/SIGUSR2 mirror the host's hidden/visible transitions;
	// SIGINT/SIGTERM shut down after a final snapshot.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	for sig := range sigCh {
		switch sig {
		case syscall.SIGUSR1:
			monitor.Signal(lifecycle.SignalHidden)
		case syscall.SIGUSR2:
			monitor.Signal(lifecycle.SignalVisible)
		default:
			logger.Info("shutting down")
			monitor.Signal(lifecycle.SignalUnload)
			return nil
		}
	}
	return nil
}

// bootstrap seeds the queue: an explicit search query or the trending
// feed starts fresh, otherwise the previous session is restored.
func bootstrap(coord *playback.Coordinator, cfg *config.Config, logger *log.Logger, trending bool, args []string) error {
	if !trending && len(args) == 0 {
		if err := coord.Restore(); err != nil {
			return fmt.Errorf("%s: %w", errmsg.OpSnapshotRestore, err)
		}
		return nil
	}

	client := catalog.NewClient(cfg.Catalog.URL, cfg.Catalog.RequestsPerSec, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		tracks []catalog.Track
		err    error
	)
	if trending {
		tracks, err = client.Trending(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", errmsg.OpCatalogTrending, err)
		}
	} else {
		tracks, err = client.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("%s: %w", errmsg.OpCatalogSearch, err)
		}
	}
	if len(tracks) == 0 {
		logger.Warn("no tracks found")
		return nil
	}
	return coord.PlayQueue(tracks, 0)
}
