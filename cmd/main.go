/**
 * @description
 * Entry point for the App Store report bot. It loads configuration,
 * wires the App Store Connect client, the anchor resolution strategy, the
 * aggregation service and the Discord notifier, then either performs one
 * run and exits (the default) or stays up on a cron schedule with a
 * health endpoint.
 *
 * Key features:
 * - One-shot by default; REPORT_SCHEDULE switches to scheduled mode.
 * - Structured JSON logging with a configurable level.
 * - Optional vendor access check at startup when debug is enabled.
 * - Graceful shutdown on SIGINT/SIGTERM in scheduled mode.
 *
 * @dependencies
 * - github.com/joho/godotenv: .env loading for local development.
 * - github.com/go-chi/chi/v5: health endpoint router in scheduled mode.
 */
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/BMERCER-XYZ/App-Store-API-Webhook/internal/app"
	"github.com/BMERCER-XYZ/App-Store-API-Webhook/internal/config"
	"github.com/BMERCER-XYZ/App-Store-API-Webhook/pkg/appstoreclient"
	"github.com/BMERCER-XYZ/App-Store-API-Webhook/pkg/discordclient"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	client, err := appstoreclient.NewClient(appstoreclient.Config{
		IssuerID:     cfg.IssuerID,
		KeyID:        cfg.KeyID,
		PrivateKey:   []byte(cfg.PrivateKey),
		VendorNumber: cfg.VendorNumber,
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize App Store client", "error", err)
		os.Exit(1)
	}

	notifier := discordclient.NewClient(
		cfg.WebhookURL,
		cfg.WebhookUsername,
		time.Duration(cfg.WebhookTimeoutSeconds)*time.Second,
		logger,
	)

	var resolver app.AnchorResolver
	if cfg.AutoProbe {
		resolver = app.NewProbingResolver(client, cfg.LagDays, cfg.MaxProbeDays, logger)
	} else {
		resolver = app.NewFixedLagResolver(cfg.LagDays)
	}

	service := app.NewService(client, resolver, notifier, logger)

	ctx := context.Background()

	if cfg.Debug {
		verifyVendorAccess(ctx, client, logger)
	}

	if cfg.Schedule == "" {
		if err := service.Run(ctx); err != nil {
			logger.Error("report run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	runScheduled(cfg, service, logger)
}

// verifyVendorAccess performs the startup vendor check. Failures are
// logged as warnings only; a misconfigured key still surfaces later as
// unavailable reports.
func verifyVendorAccess(ctx context.Context, client *appstoreclient.Client, logger *slog.Logger) {
	if err := client.VerifyVendorAccess(ctx); err != nil {
		if errors.Is(err, appstoreclient.ErrVendorForbidden) {
			logger.Warn("vendor verification rejected, check the key's sales report permissions", "error", err)
		} else {
			logger.Warn("vendor verification failed", "error", err)
		}
		return
	}
	logger.Info("vendor access verified")
}

func runScheduled(cfg *config.Config, service *app.Service, logger *slog.Logger) {
	scheduler := app.NewScheduler(service, cfg.Schedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Report bot is healthy"))
	})

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}
	go func() {
		logger.Info("health server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown failed", "error", err)
	}

	<-scheduler.Stop().Done()
	logger.Info("scheduler stopped gracefully")
}

// parseLogLevel maps the LOG_LEVEL setting onto a slog level, defaulting
// to info for anything unrecognized.
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
