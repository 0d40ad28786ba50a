package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clipdex/clipdex-agent/internal/api"
	"github.com/clipdex/clipdex-agent/internal/config"
	"github.com/clipdex/clipdex-agent/internal/fetch"
	"github.com/clipdex/clipdex-agent/internal/library"
	"github.com/clipdex/clipdex-agent/internal/logging"
	"github.com/clipdex/clipdex-agent/internal/playback"
	"github.com/clipdex/clipdex-agent/internal/source"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// Best effort: a missing .env is fine, the environment still applies.
	godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting clipdex agent", "version", config.Version, "port", cfg.Port())

	roots := library.NewRootResolver(cfg.LibraryRoot(), nil)
	if root, err := roots.Root(); err == nil {
		logger.Info("library root resolved", "root", logging.SanitizePath(root))
	} else {
		logger.Warn("no library root found, listing and resolution will be unavailable")
	}

	librarySvc := library.NewService(roots, logger)
	materializer := source.NewMaterializer(fetch.NewClient(), logger)
	resolver := source.NewResolver(roots, materializer, logger)
	playbackSvc := playback.NewServer(roots, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.BackfillEnabled() {
		backfill := source.NewBackfill(roots, materializer, cfg.BackfillConcurrency(), logger)
		go backfill.Run(ctx)
	}

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		LibraryService: librarySvc,
		Resolver:       resolver,
		PlaybackServer: playbackSvc,
		Logger:         logger,
		StartTime:      startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
