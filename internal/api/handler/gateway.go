package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/projectshome/hubd/internal/api/response"
	"github.com/projectshome/hubd/internal/gateway"
)

// GatewayHandler serves the agent gateway endpoints: enriched health, the
// activity digest, chat forwarding, and the overnight queue.
type GatewayHandler struct {
	client *gateway.Client
}

// NewGatewayHandler creates a GatewayHandler.
func NewGatewayHandler(client *gateway.Client) *GatewayHandler {
	return &GatewayHandler{client: client}
}

// Health handles GET /api/gateway/health.
func (h *GatewayHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.client.Health(r.Context()))
}

// Activity handles GET /api/gateway/activity.
func (h *GatewayHandler) Activity(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.client.Activity(r.Context()))
}

// Send handles POST /api/gateway/send, forwarding one chat message.
func (h *GatewayHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid payload")
		return
	}
	if req.Message == "" {
		response.BadRequest(w, r, "message required")
		return
	}
	response.Raw(w, r, http.StatusOK, h.client.Send(r.Context(), req.Message))
}

// Overnight handles POST /api/gateway/overnight, appending one task to the
// overnight queue. Duplicate tasks are accepted and not re-queued.
func (h *GatewayHandler) Overnight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Task string `json:"task"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid payload")
		return
	}
	task := strings.TrimSpace(req.Task)
	if task == "" {
		response.BadRequest(w, r, "task required")
		return
	}
	if err := h.client.QueueOvernight(task); err != nil {
		response.InternalError(w, r, "overnight queue write failed")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"ok":   true,
		"task": task,
	})
}
