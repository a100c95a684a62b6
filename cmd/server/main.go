// Command server runs the mall directory API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ny-kanto/mall-api/internal/app"
	"github.com/ny-kanto/mall-api/internal/config"
	"github.com/ny-kanto/mall-api/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mall API exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New("mall-api", cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting mall API",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("timezone", cfg.MallTimezone),
		slog.Bool("events_enabled", cfg.EventsEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := a.Run(ctx); err != nil {
		return err
	}
	log.Info("mall API stopped")
	return nil
}
