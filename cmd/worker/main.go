// Package main is the entry point for the Invoicely background worker.
// It polls the backend's sync status and watches stock levels with the
// service token.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	appctx "invoicely/internal/core/context"
	"invoicely/internal/domain/stock"
	"invoicely/internal/infrastructure/apiclient"
	"invoicely/internal/infrastructure/syncstatus"
	"invoicely/pkg/logger"
)

func main() {
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

	log.Info("starting invoicely worker")

	client, err := apiclient.New(apiclient.Config{
		BaseURL:      mustEnv("BACKEND_BASE_URL"),
		Timeout:      getEnvDuration("BACKEND_TIMEOUT", 30*time.Second),
		ServiceToken: mustEnv("BACKEND_SERVICE_TOKEN"),
	})
	if err != nil {
		log.Fatalw("invalid backend configuration", "error", err)
	}

	poller := syncstatus.NewPoller(client, getEnvDuration("SYNC_POLL_INTERVAL", syncstatus.DefaultInterval), log)
	watcher := NewStockWatcher(client, getEnvDuration("STOCK_WATCH_INTERVAL", 5*time.Minute), log)

	var wg sync.WaitGroup
	poller.Start(ctx)
	wg.Add(1)
	go func() {
		defer wg.Done()
		watcher.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	poller.Stop()

	wg.Wait()
	log.Info("worker stopped")
}

// ProductSource lists the organization's products.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]stock.Product, error)
}

// StockWatcher logs when the number of low or out-of-stock products changes.
// A failed listing is logged and leaves the last summary in place.
type StockWatcher struct {
	products ProductSource
	interval time.Duration
	log      *logger.Logger

	last stock.Summary
	seen bool
}

func NewStockWatcher(products ProductSource, interval time.Duration, log *logger.Logger) *StockWatcher {
	return &StockWatcher{
		products: products,
		interval: interval,
		log:      log.WithComponent("stock-watcher"),
	}
}

// Run checks stock once and then on every tick until ctx is done.
func (w *StockWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *StockWatcher) check(ctx context.Context) {
	ctx = appctx.WithTrace(ctx, appctx.NewTraceContext())
	products, err := w.products.ListProducts(ctx)
	if err != nil {
		w.log.WithContext(ctx).Warnw("failed to load products for stock watch", "error", err)
		return
	}
	if len(products) == 0 {
		w.log.Debugw("no products to watch")
		return
	}

	summary := stock.Summarize(products)
	if w.seen && summary.Low == w.last.Low && summary.Out == w.last.Out {
		return
	}
	w.last, w.seen = summary, true

	if summary.Low == 0 && summary.Out == 0 {
		w.log.Infow("all products in stock", "total", summary.Total)
		return
	}

	names := make([]string, 0, summary.Out)
	for _, p := range products {
		if p.Status() == stock.StatusOut {
			names = append(names, p.Name)
		}
	}
	w.log.Warnw("products need restocking",
		"total", summary.Total,
		"low", summary.Low,
		"out", summary.Out,
		"out_of_stock", names,
	)
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
