// Package main is the entry point for the FreshSave API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freshsave/internal/bootstrap"
	"freshsave/internal/config"
	"freshsave/internal/domain/home"
	v1 "freshsave/internal/infrastructure/http/v1"
	"freshsave/pkg/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, toml or json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Infow("starting freshsave server", "version", version, "store_driver", cfg.Store.Driver)

	// --- Document store ---
	backend, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to open document store", "driver", cfg.Store.Driver, "error", err)
	}
	defer backend.Close()

	if err := backend.Store.Ping(ctx); err != nil {
		log.Warnw("document store not reachable yet", "error", err)
	}

	// --- Inventory ---
	repo := bootstrap.NewRepository(backend, cfg, log)
	coord := home.NewCoordinator(repo,
		home.WithLogger(log),
		home.WithExpiringWindow(cfg.Inventory.ExpiringWindowDays),
	)
	defer coord.Close()

	coord.TriggerLoadItems()

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:             log,
		Store:              backend.Store,
		StoreDriver:        backend.Driver,
		Version:            version,
		Repository:         repo,
		Coordinator:        coord,
		ExpiringWindowDays: cfg.Inventory.ExpiringWindowDays,
	})

	// --- HTTP Server ---
	// No WriteTimeout: /api/v1/home/stream holds responses open.
	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop background loads before the store goes away.
	coord.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
