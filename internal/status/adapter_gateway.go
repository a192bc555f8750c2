package status

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectshome/hubd/internal/gateway"
	"github.com/projectshome/hubd/internal/probe"
)

// GatewayAdapter observes the agent gateway: reachability from its
// control port, enrichment from its local config file.
type GatewayAdapter struct {
	host         string
	port         int
	configPath   string
	probeTimeout time.Duration
	logger       zerolog.Logger
}

// GatewayAdapterConfig configures the gateway adapter.
type GatewayAdapterConfig struct {
	Host         string
	Port         int
	ConfigPath   string
	ProbeTimeout time.Duration
	Logger       zerolog.Logger
}

// NewGatewayAdapter creates the gateway adapter.
func NewGatewayAdapter(cfg GatewayAdapterConfig) *GatewayAdapter {
	return &GatewayAdapter{
		host:         cfg.Host,
		port:         cfg.Port,
		configPath:   cfg.ConfigPath,
		probeTimeout: cfg.ProbeTimeout,
		logger:       cfg.Logger,
	}
}

func (a *GatewayAdapter) base() SystemStatus {
	return SystemStatus{
		ID:   "gateway",
		Name: "Agent Gateway",
		Icon: "🦞",
		Tags: []string{"ai-agent", "local"},
	}
}

// Describe probes the control port and enriches from the config file.
func (a *GatewayAdapter) Describe(_ context.Context) SystemStatus {
	s := a.base()
	if !probe.TCP(a.host, a.port, a.probeTimeout) {
		s.State = StateOffline
		s.Detail = "Gateway not running"
		return s
	}

	s.State = StateOnline
	s.Port = a.port
	s.URL = fmt.Sprintf("http://%s:%d/", a.host, a.port)

	info, err := gateway.ReadConfig(a.configPath)
	if err != nil {
		a.logger.Debug().Err(err).Msg("gateway config unreadable")
		s.Detail = "Control port open, config unreadable"
		return s
	}
	model := strings.TrimPrefix(info.Model, "ollama/")
	s.Detail = fmt.Sprintf("Model: %s | %d plugins", model, len(info.Plugins))
	return s
}

// Fallback reports the gateway as offline.
func (a *GatewayAdapter) Fallback() SystemStatus {
	s := a.base()
	s.State = StateOffline
	s.Detail = fallbackDetail
	return s
}
