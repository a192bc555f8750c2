package status

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectshome/hubd/internal/probe"
	"github.com/projectshome/hubd/internal/upstream"
)

// WorkerAdapter observes the background task worker. The worker can be
// stopped but still installed, so the offline branch checks its install
// directory before settling on missing.
type WorkerAdapter struct {
	baseURL      string
	host         string
	port         int
	installDir   string
	probeTimeout time.Duration
	client       *upstream.Client
	logger       zerolog.Logger
}

// WorkerAdapterConfig configures the background worker adapter.
type WorkerAdapterConfig struct {
	BaseURL      string
	InstallDir   string
	ProbeTimeout time.Duration
	Client       *upstream.Client
	Logger       zerolog.Logger
}

// NewWorkerAdapter creates the background worker adapter.
func NewWorkerAdapter(cfg WorkerAdapterConfig) *WorkerAdapter {
	host, port := splitHostPort(cfg.BaseURL)
	client := cfg.Client
	if client == nil {
		client = upstream.NewClient(upstream.DefaultConfig("worker"))
	}
	return &WorkerAdapter{
		baseURL:      cfg.BaseURL,
		host:         host,
		port:         port,
		installDir:   cfg.InstallDir,
		probeTimeout: cfg.ProbeTimeout,
		client:       client,
		logger:       cfg.Logger,
	}
}

func (a *WorkerAdapter) base() SystemStatus {
	return SystemStatus{
		ID:   "worker",
		Name: "Background Worker",
		Icon: "⚙️",
		Tags: []string{"automation", "ai-agent"},
	}
}

type workerHealth struct {
	Mode           string `json:"mode"`
	ActiveTasks    int    `json:"active_tasks"`
	CompletedToday int    `json:"completed_today"`
	FailedToday    int    `json:"failed_today"`
	Status         string `json:"status"`
}

// Describe probes the worker port and reads its health counters.
func (a *WorkerAdapter) Describe(ctx context.Context) SystemStatus {
	s := a.base()
	if !probe.TCP(a.host, a.port, a.probeTimeout) {
		if a.installDir != "" && dirExists(a.installDir) {
			s.State = StateInstalled
			s.Detail = "Installed, not running"
		} else {
			s.State = StateMissing
			s.Detail = "Not installed"
		}
		return s
	}

	s.State = StateOnline
	s.Port = a.port

	var health workerHealth
	if err := fetchJSON(ctx, a.client, a.baseURL+"/health", &health); err != nil {
		a.logger.Debug().Err(err).Msg("worker health check failed")
		s.Detail = "Port open, health check failed"
		return s
	}
	if health.Status == "killed" {
		s.Detail = fmt.Sprintf("Killed | %d tasks paused", health.ActiveTasks)
		return s
	}
	s.Detail = fmt.Sprintf("Mode: %s | %d active, %d done, %d failed today",
		orUnknown(health.Mode), health.ActiveTasks, health.CompletedToday, health.FailedToday)
	return s
}

// Fallback reports the worker as offline.
func (a *WorkerAdapter) Fallback() SystemStatus {
	s := a.base()
	s.State = StateOffline
	s.Detail = fallbackDetail
	return s
}
