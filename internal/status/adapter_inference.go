package status

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectshome/hubd/internal/probe"
	"github.com/projectshome/hubd/internal/upstream"
)

// InferenceAdapter observes the local LLM inference server. The model
// listing is best-effort: when it fails the generic detail stands.
type InferenceAdapter struct {
	baseURL      string
	host         string
	port         int
	probeTimeout time.Duration
	client       *upstream.Client
	logger       zerolog.Logger
}

// InferenceAdapterConfig configures the inference server adapter.
type InferenceAdapterConfig struct {
	BaseURL      string
	ProbeTimeout time.Duration
	Client       *upstream.Client
	Logger       zerolog.Logger
}

// NewInferenceAdapter creates the inference server adapter.
func NewInferenceAdapter(cfg InferenceAdapterConfig) *InferenceAdapter {
	host, port := splitHostPort(cfg.BaseURL)
	client := cfg.Client
	if client == nil {
		client = upstream.NewClient(upstream.DefaultConfig("inference"))
	}
	return &InferenceAdapter{
		baseURL:      cfg.BaseURL,
		host:         host,
		port:         port,
		probeTimeout: cfg.ProbeTimeout,
		client:       client,
		logger:       cfg.Logger,
	}
}

const inferenceGenericDetail = "Local LLM inference"

func (a *InferenceAdapter) base() SystemStatus {
	return SystemStatus{
		ID:   "inference",
		Name: "Inference Server",
		Icon: "🧠",
		Tags: []string{"llm", "infra"},
	}
}

type inferenceTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Describe probes the server port and lists the loaded models.
func (a *InferenceAdapter) Describe(ctx context.Context) SystemStatus {
	s := a.base()
	if !probe.TCP(a.host, a.port, a.probeTimeout) {
		s.State = StateOffline
		s.Detail = "Not running"
		return s
	}

	s.State = StateOnline
	s.Port = a.port
	s.Detail = inferenceGenericDetail

	var tags inferenceTags
	if err := fetchJSON(ctx, a.client, a.baseURL+"/api/tags", &tags); err != nil {
		a.logger.Debug().Err(err).Msg("inference model listing failed")
		return s
	}
	if len(tags.Models) == 0 {
		return s
	}

	names := make([]string, 0, 4)
	for _, m := range tags.Models {
		if len(names) == 4 {
			break
		}
		names = append(names, m.Name)
	}
	s.Detail = fmt.Sprintf("%d models: %s", len(tags.Models), strings.Join(names, ", "))
	return s
}

// Fallback reports the inference server as offline.
func (a *InferenceAdapter) Fallback() SystemStatus {
	s := a.base()
	s.State = StateOffline
	s.Detail = fallbackDetail
	return s
}
