package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casebridge/casebridge/internal/api"
	"github.com/casebridge/casebridge/internal/clio"
	"github.com/casebridge/casebridge/internal/config"
	"github.com/casebridge/casebridge/internal/events"
	"github.com/casebridge/casebridge/internal/pipeline"
	"github.com/casebridge/casebridge/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("casebridge starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// Clio client
	if cfg.ClioClientID == "" || cfg.ClioSecret == "" {
		slog.Error("CLIO_CLIENT_ID and CLIO_CLIENT_SECRET are required")
		os.Exit(1)
	}
	clioClient := clio.NewClient(clio.Config{
		BaseURL:     cfg.ClioBaseURL,
		AuthURL:     cfg.ClioAuthURL,
		TokenURL:    cfg.ClioTokenURL,
		ClientID:    cfg.ClioClientID,
		Secret:      cfg.ClioSecret,
		RedirectURI: cfg.ClioRedirectURI,
		Timeout:     cfg.HTTPTimeout,
	}, db, slog.Default())
	slog.Info("clio client ready", "base_url", cfg.ClioBaseURL)

	// Event publisher (optional: the bridge works without NATS, just no
	// downstream notifications)
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		publisher, err = events.Connect(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, running without event publishing")
	}

	// Pipeline
	proc := pipeline.New(clioClient, db, publisher, slog.Default())

	// HTTP API
	srv := api.NewServer(&cfg, proc, clioClient, db, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	publisher.Publish(events.SubjectRegistered, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
	})

	slog.Info("casebridge ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "error", err)
	}
	cancel()
	slog.Info("casebridge stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
