package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/typefeed/typefeed/app/aggregator"
	"github.com/typefeed/typefeed/app/api"
	"github.com/typefeed/typefeed/app/cfg"
	"github.com/typefeed/typefeed/app/database"
	"github.com/typefeed/typefeed/app/fulltext"
	"github.com/typefeed/typefeed/app/rotation"
	"github.com/typefeed/typefeed/app/sources"
	"github.com/typefeed/typefeed/app/tasks"
)

func main() {
	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Typefeed server", "version", appCfg.Version)

	// Database connection
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	// Load the source registry
	sourceCfg, err := sources.LoadConfig(appCfg.SourcesFile)
	if err != nil {
		slog.Error("Failed to load source registry", "path", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	registry := sourceCfg.Build(appCfg.NewsAPIKey, &http.Client{Timeout: 15 * time.Second}, appCfg.UserAgent)
	slog.Info("Source registry loaded", "path", appCfg.SourcesFile, "sources", len(registry))

	// Initialize repositories and services
	articleRepo := database.NewArticleRepository(db)
	seenRepo := database.NewSeenRepository(db)
	rotationSvc := rotation.NewService(articleRepo, seenRepo, appCfg.RotationPoolSize)
	extractor := fulltext.NewExtractor(&http.Client{Timeout: 10 * time.Second})
	manager := sources.NewManager()

	newsService := aggregator.NewService(manager, articleRepo, seenRepo, rotationSvc,
		extractor, registry, time.Duration(appCfg.RetentionHours)*time.Hour)

	// Initialize and start the background scheduler
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount,
		"sync_interval_min", appCfg.SyncInterval, "cleanup_interval_h", appCfg.CleanupInterval,
		"reindex_interval_h", appCfg.ReindexInterval)
	scheduler := tasks.NewScheduler(newsService)
	scheduler.Start()
	defer scheduler.Stop()

	// The initial full sync runs in the background so the HTTP server
	// comes up immediately; reads before it finishes fall back to the
	// on-demand sync path.
	go func() {
		if err := newsService.Initialize(context.Background()); err != nil {
			slog.Error("Initial sync failed", "error", err)
		}
	}()

	// Initialize HTTP server
	apiHandler := api.NewHandler(newsService, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown
	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Typefeed server shutdown complete")
}
