package handler

import (
	"net/http"
	"time"

	"github.com/projectshome/hubd/internal/api/response"
)

// OpsHandler serves operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
}

// NewOpsHandler creates an OpsHandler with build metadata.
func NewOpsHandler(version, buildTime string) *OpsHandler {
	return &OpsHandler{version: version, buildTime: buildTime}
}

// HealthCheck handles GET /api/ops/health.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   h.version,
		"buildTime": h.buildTime,
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}
