// Package handler contains the HTTP handlers for the hub API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/projectshome/hubd/internal/api/response"
	"github.com/projectshome/hubd/internal/status"
)

// SystemsHandler serves the aggregated systems overview.
type SystemsHandler struct {
	registry *status.Registry
	deadline time.Duration
}

// NewSystemsHandler creates a SystemsHandler. The deadline bounds one full
// aggregation pass; adapters that miss it are reported via their fallback.
func NewSystemsHandler(registry *status.Registry, deadline time.Duration) *SystemsHandler {
	return &SystemsHandler{registry: registry, deadline: deadline}
}

// Overview handles GET /api/systems. It always returns a full-length list,
// degraded entries included.
func (h *SystemsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.deadline)
	defer cancel()

	response.JSON(w, r, http.StatusOK, h.registry.Aggregate(ctx))
}
