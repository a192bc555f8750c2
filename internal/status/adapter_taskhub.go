package status

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectshome/hubd/internal/probe"
	"github.com/projectshome/hubd/internal/upstream"
)

// TaskHubAdapter observes the task-dispatch hub: TCP reachability first,
// then a short /health call for model and mode. A failed health check
// never downgrades an open port to offline.
type TaskHubAdapter struct {
	baseURL      string
	host         string
	port         int
	probeTimeout time.Duration
	client       *upstream.Client
	logger       zerolog.Logger
}

// TaskHubAdapterConfig configures the task hub adapter.
type TaskHubAdapterConfig struct {
	BaseURL      string
	ProbeTimeout time.Duration
	Client       *upstream.Client // optional, mainly for tests
	Logger       zerolog.Logger
}

// NewTaskHubAdapter creates the task hub adapter. The probe endpoint is
// derived from the base URL.
func NewTaskHubAdapter(cfg TaskHubAdapterConfig) *TaskHubAdapter {
	host, port := splitHostPort(cfg.BaseURL)
	client := cfg.Client
	if client == nil {
		client = upstream.NewClient(upstream.DefaultConfig("taskhub"))
	}
	return &TaskHubAdapter{
		baseURL:      cfg.BaseURL,
		host:         host,
		port:         port,
		probeTimeout: cfg.ProbeTimeout,
		client:       client,
		logger:       cfg.Logger,
	}
}

func (a *TaskHubAdapter) base() SystemStatus {
	return SystemStatus{
		ID:   "taskhub",
		Name: "Task Hub",
		Icon: "🤖",
		Tags: []string{"ai-agent", "docker"},
	}
}

type taskHubHealth struct {
	Model  string `json:"model"`
	Status string `json:"status"`
}

// Describe probes the hub port and enriches from /health.
func (a *TaskHubAdapter) Describe(ctx context.Context) SystemStatus {
	s := a.base()
	if !probe.TCP(a.host, a.port, a.probeTimeout) {
		s.State = StateOffline
		s.Detail = "Container not running"
		return s
	}

	s.State = StateOnline
	s.Port = a.port

	var health taskHubHealth
	if err := fetchJSON(ctx, a.client, a.baseURL+"/health", &health); err != nil {
		a.logger.Debug().Err(err).Msg("task hub health check failed")
		s.Detail = "Port open, health check failed"
		return s
	}
	s.Detail = fmt.Sprintf("Model: %s | %s", orUnknown(health.Model), orUnknown(health.Status))
	return s
}

// Fallback reports the hub as offline.
func (a *TaskHubAdapter) Fallback() SystemStatus {
	s := a.base()
	s.State = StateOffline
	s.Detail = fallbackDetail
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// splitHostPort extracts the probe endpoint from a base URL, defaulting
// the port from the scheme.
func splitHostPort(baseURL string) (string, int) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "127.0.0.1", 80
	}
	host := u.Hostname()
	port, err := strconv.Atoi(u.Port())
	if err != nil || port == 0 {
		if u.Scheme == "https" {
			port = 443
		} else {
			port = 80
		}
	}
	return host, port
}
