// Package main provides the entrypoint for the hub dashboard API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectshome/hubd/internal/activity"
	"github.com/projectshome/hubd/internal/api"
	"github.com/projectshome/hubd/internal/api/handler"
	"github.com/projectshome/hubd/internal/api/middleware"
	"github.com/projectshome/hubd/internal/bridge"
	"github.com/projectshome/hubd/internal/config"
	"github.com/projectshome/hubd/internal/gateway"
	"github.com/projectshome/hubd/internal/project"
	"github.com/projectshome/hubd/internal/session"
	"github.com/projectshome/hubd/internal/status"
	"github.com/projectshome/hubd/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", telemetry.ServiceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting hub dashboard")

	cfg := config.FromEnv()

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"
	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	tp, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceVersion: Version,
		Environment:    os.Getenv("APP_ENV"),
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Domain wiring: registry of system adapters, session log, project
	// store, reconciler, gateway client, bridge targets.
	gatewayClient := gateway.NewClient(gateway.Config{
		Host:         cfg.GatewayHost,
		Port:         cfg.GatewayPort,
		Token:        cfg.GatewayToken,
		ConfigPath:   cfg.GatewayConfig,
		SessionsDir:  cfg.GatewaySessions,
		WorkspaceDir: cfg.GatewayWorkspace,
		ProbeTimeout: cfg.ProbeTimeout,
		Logger:       log,
	})

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
		status.NewDeskAdapter(cfg.DeskDir),
		status.NewScratchpadAdapter(cfg.ScratchpadDir),
		status.NewTradeBotAdapter(status.TradeBotAdapterConfig{
			Host:         "127.0.0.1",
			Port:         cfg.TradeBotPort,
			Dir:          cfg.TradeBotDir,
			ProbeTimeout: cfg.ProbeTimeout,
		}),
		status.NewWorkerAdapter(status.WorkerAdapterConfig{
			BaseURL:      cfg.WorkerURL,
			InstallDir:   cfg.WorkerDir,
			ProbeTimeout: cfg.ProbeTimeout,
			Logger:       log,
		}),
		status.NewSelfAdapter(cfg.Port),
	)
	log.Info().Int("adapters", registry.Len()).Msg("system registry built")

	sessionLog := session.NewLog(cfg.HistoryFile, log)
	store := project.NewStore(cfg.ProjectsFile)

	labelTable, err := activity.LoadTable(cfg.LabelRulesFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.LabelRulesFile).Msg("label rules unreadable, using defaults")
		labelTable = activity.NewTable(activity.DefaultRules())
	}
	reconciler := activity.NewReconciler(activity.ReconcilerConfig{
		Log:    sessionLog,
		Store:  store,
		Table:  labelTable,
		Logger: log,
	})

	hubTarget := bridge.NewTarget(bridge.TargetConfig{
		Name:    "taskhub",
		BaseURL: cfg.TaskHubURL,
		Rules:   handler.TaskHubRules(),
		Logger:  log,
	})
	workerTarget := bridge.NewTarget(bridge.TargetConfig{
		Name:    "worker",
		BaseURL: cfg.WorkerURL,
		Rules:   handler.WorkerRules(),
		Logger:  log,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:   Version,
		BuildTime: BuildTime,
		Logger:    log,
		Metrics:   metrics,
		Systems:   handler.NewSystemsHandler(registry, cfg.AggregateTimeout),
		Sessions:  handler.NewSessionsHandler(sessionLog, reconciler),
		Projects:  handler.NewProjectsHandler(store, sessionLog, cfg.ProjectsRoot),
		Gateway:   handler.NewGatewayHandler(gatewayClient),
		Bridge:    handler.NewBridgeHandler(hubTarget, workerTarget),
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // dispatch calls can run long
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
