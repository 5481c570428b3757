// Package main is the entry point for the Invoicely client gateway.
// The gateway holds no data of its own: it computes totals and stock levels and
// forwards every write to the REST backend.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/klauspost/compress/gzhttp"

	"invoicely/internal/domain/auth"
	"invoicely/internal/domain/purchase"
	"invoicely/internal/domain/reports"
	"invoicely/internal/domain/stock"
	"invoicely/internal/infrastructure/apiclient"
	v1 "invoicely/internal/infrastructure/http/v1"
	"invoicely/internal/infrastructure/syncstatus"
	"invoicely/pkg/logger"
)

var version = "dev"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Infow("starting invoicely gateway", "version", version)

	// --- Backend client ---
	client, err := apiclient.New(apiclient.Config{
		BaseURL:      mustEnv("BACKEND_BASE_URL"),
		Timeout:      getEnvDuration("BACKEND_TIMEOUT", 30*time.Second),
		ServiceToken: getEnv("BACKEND_SERVICE_TOKEN", ""),
	})
	if err != nil {
		log.Fatalw("invalid backend configuration", "error", err)
	}

	// --- Services ---
	inventory := stock.NewService(client)
	purchases := purchase.NewService(client)
	reportService := reports.NewService(client)
	registrations := auth.NewRegistrationService(client,
		auth.NewMemoryStore(getEnvDuration("REGISTRATION_TTL", 30*time.Minute)))

	// --- Sync status ---
	poller := syncstatus.NewPoller(client, getEnvDuration("SYNC_POLL_INTERVAL", syncstatus.DefaultInterval), log)
	poller.Start(ctx)
	defer poller.Stop()

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		SessionParser:  auth.ParseSession,
		Inventory:      inventory,
		Purchases:      purchases,
		Reports:        reportService,
		Registration:   registrations,
		SyncStatus:     poller,
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		Version:        version,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      gzhttp.GzipHandler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: getEnvDuration("BACKEND_TIMEOUT", 30*time.Second) + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
