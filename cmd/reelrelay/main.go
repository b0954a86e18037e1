package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"reelrelay/internal/bot"
	"reelrelay/internal/config"
	"reelrelay/internal/extractor"
	"reelrelay/internal/storage"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("Invalid LOG_LEVEL, falling back to info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.WithFields(logrus.Fields{
		"storage_driver": cfg.StorageDriver,
		"downloads_dir":  cfg.DownloadsDir,
		"link_pattern":   cfg.LinkPattern,
		"workers":        cfg.Workers,
	}).Info("Configuration loaded successfully")

	// --- Initialize Components ---
	if err := os.MkdirAll(cfg.DownloadsDir, 0o755); err != nil {
		log.Fatalf("Failed to create downloads directory: %v", err)
	}
	if n, err := bot.CleanDownloads(cfg.DownloadsDir); err != nil {
		log.WithError(err).Warn("Failed to remove stale download directories")
	} else if n > 0 {
		log.WithField("removed", n).Info("Removed stale download directories")
	}

	repo, err := storage.Open(storage.Config{
		Driver:     cfg.StorageDriver,
		BadgerPath: cfg.BadgerDBPath,
		SQLitePath: cfg.SQLitePath,
	}, log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		log.Info("Closing database...")
		if err := repo.Close(); err != nil {
			log.WithError(err).Error("Error closing database")
		}
	}()

	extractors := []extractor.Extractor{
		extractor.NewYtDlp(cfg.YtDlpPath, cfg.ExtractFormat, cfg.YtDlpCookies, log),
	}
	if cfg.BrowserFallback {
		extractors = append(extractors, extractor.NewPageMeta(log))
	}
	chain := extractor.NewChain(log, extractors...)

	botHandler, err := bot.NewHandler(cfg, repo, chain, log)
	if err != nil {
		log.WithError(err).Error("Failed to initialize Telegram bot handler")
		_ = repo.Close()
		os.Exit(1)
	}

	// --- Application Startup ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("reelrelay is running. Press Ctrl+C to exit.")
	// Start blocks until ctx is cancelled and the updates in progress are
	// handled, so the store is still open for them.
	botHandler.Start(ctx)

	log.Info("reelrelay shut down gracefully.")
}
