package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/toolscope/toolscope/internal/api"
	"github.com/toolscope/toolscope/internal/config"
	"github.com/toolscope/toolscope/internal/domain/inventory"
	"github.com/toolscope/toolscope/internal/domain/view"
	"github.com/toolscope/toolscope/internal/logger"
	"github.com/toolscope/toolscope/internal/provider"
	"github.com/toolscope/toolscope/internal/telemetry"
)

func main() {
	if err := run(true); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(serve bool) error {
	appDir := os.Getenv("TOOLSCOPE_CONFIG_DIR")
	if appDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			configDir = "."
		}
		appDir = filepath.Join(configDir, "toolscope")
	}

	if err := os.MkdirAll(appDir, 0755); err != nil {
		return fmt.Errorf("failed to create app dir: %w", err)
	}

	level := os.Getenv("TOOLSCOPE_LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	log, err := logger.New(level, appDir)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer log.Sync()

	store := config.NewStore(filepath.Join(appDir, "sources.yaml"))
	records, settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	metrics := telemetry.New(registry)

	var engine *view.Engine
	sources := provider.NewAggregator(nil, log.Named("sources"), func(snap inventory.Snapshot) {
		engine.SetSnapshot(snap)
	})
	defer sources.Close()

	engine = view.NewEngine(sources,
		view.WithLogger(log.Named("view")),
		view.WithMetrics(metrics),
		view.WithPlaceholderRows(settings.PlaceholderRows),
	)

	sources.SetConfig(ctx, records)

	// Reload sources whenever the config file changes on disk.
	if err := config.Watch(ctx, store, log.Named("config"), func() {
		records, _, err := store.Load()
		if err != nil {
			log.Warn("reloading changed config failed", zap.Error(err))
			return
		}
		sources.SetConfig(ctx, records)
	}); err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}

	control := api.NewControlServer(engine, store, sources, log.Named("api"), registry)

	if !serve {
		return nil
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", settings.ControlPort),
		Handler: control,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("control server listening", zap.Int("port", settings.ControlPort))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("control server failed: %w", err)
	}
	return nil
}
