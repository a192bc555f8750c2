// Package main provides the entrypoint for the status watcher, a
// headless companion to the dashboard that logs periodic snapshots of
// the systems overview.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/projectshome/hubd/internal/config"
	"github.com/projectshome/hubd/internal/status"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "hubd-watcher").
		Str("version", Version).
		Logger()

	cfg := config.FromEnv()

	registry := status.NewRegistry(log,
		status.NewGatewayAdapter(status.GatewayAdapterConfig{
			Host:         cfg.GatewayHost,
			Port:         cfg.GatewayPort,
			ConfigPath:   cfg.GatewayConfig,
			ProbeTimeout: cfg.ProbeTimeout,
			Logger:       log,
		}),
		status.NewTaskHubAdapter(status.TaskHubAdapterConfig{
			BaseURL:      cfg.TaskHubURL,
			ProbeTimeout: cfg.ProbeTimeout,
			Logger:       log,
		}),
		status.NewInferenceAdapter(status.InferenceAdapterConfig{
			BaseURL:      cfg.InferenceURL,
			ProbeTimeout: cfg.ProbeTimeout,
			Logger:       log,
		}),
		status.NewWorkerAdapter(status.WorkerAdapterConfig{
			BaseURL:      cfg.WorkerURL,
			InstallDir:   cfg.WorkerDir,
			ProbeTimeout: cfg.ProbeTimeout,
			Logger:       log,
		}),
	)

	schedule := os.Getenv("WATCH_SCHEDULE")
	if schedule == "" {
		schedule = "@every 5m"
	}

	snapshot := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.AggregateTimeout)
		defer cancel()

		for _, s := range registry.Aggregate(ctx) {
			log.Info().
				Str("system", s.ID).
				Str("state", string(s.State)).
				Str("detail", s.Detail).
				Msg("snapshot")
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, snapshot); err != nil {
		log.Fatal().Err(err).Str("schedule", schedule).Msg("invalid schedule")
	}

	log.Info().Str("schedule", schedule).Msg("watcher started")
	snapshot()
	c.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-c.Stop().Done()
	log.Info().Msg("watcher stopped")
}
