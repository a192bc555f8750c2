package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/projectshome/hubd/internal/api/response"
	"github.com/projectshome/hubd/internal/bridge"
)

// TaskHubRules is the rewrite table for the task hub bridge. Run commands
// and singular task GETs live outside the hub's /api namespace.
func TaskHubRules() []bridge.Rule {
	return []bridge.Rule{
		{Prefix: "/api/bot/health", Replacement: "/health"},
		{Prefix: "/api/bot/capabilities", Replacement: "/api/capabilities"},
		{Prefix: "/api/bot/tasks/", Replacement: "/tasks/", When: func(rest string) bool {
			return strings.HasSuffix(rest, "/run")
		}},
		{Prefix: "/api/bot/tasks/", Replacement: "/tasks/", When: bridge.SingularResource},
		{Prefix: "/api/bot/tasks", Replacement: "/api/tasks"},
	}
}

// WorkerRules is the rewrite table for the background worker bridge.
func WorkerRules() []bridge.Rule {
	return []bridge.Rule{
		{Prefix: "/api/auton/health", Replacement: "/health"},
		{Prefix: "/api/auton/status", Replacement: "/api/status"},
		{Prefix: "/api/auton/tasks", Replacement: "/api/tasks"},
		{Prefix: "/api/auton/knowledge", Replacement: "/api/knowledge"},
		{Prefix: "/api/auton/journal", Replacement: "/api/journal"},
		{Prefix: "/api/auton/kill", Replacement: "/api/kill"},
		{Prefix: "/api/auton/resume", Replacement: "/api/resume"},
	}
}

// BridgeHandler forwards calls to the task hub and background worker.
// Bridged responses are passthrough JSON or an error envelope, never a
// problem response: the caller asked for the upstream's answer.
type BridgeHandler struct {
	hub    *bridge.Target
	worker *bridge.Target
}

// NewBridgeHandler creates a BridgeHandler over the two targets.
func NewBridgeHandler(hub, worker *bridge.Target) *BridgeHandler {
	return &BridgeHandler{hub: hub, worker: worker}
}

// HubHealth handles GET /api/bot/health.
func (h *BridgeHandler) HubHealth(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, h.hub, bridge.ClassHealth)
}

// HubGet handles the task hub GET passthroughs.
func (h *BridgeHandler) HubGet(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, h.hub, bridge.ClassDefault)
}

// HubPost handles the task hub POST passthroughs (run, approve, handoff).
func (h *BridgeHandler) HubPost(w http.ResponseWriter, r *http.Request) {
	class := bridge.ClassDefault
	if strings.HasSuffix(r.URL.Path, "/run") {
		class = bridge.ClassDispatch
	}
	h.forward(w, r, h.hub, class)
}

// Dispatch handles POST /api/bot/dispatch. The mode field selects the
// upstream endpoint: sync runs inline, anything else queues.
func (h *BridgeHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid dispatch payload")
		return
	}
	mode, _ := req["mode"].(string)
	delete(req, "mode")

	endpoint := "/tasks"
	if mode == "sync" || mode == "" {
		endpoint = "/run"
	}
	body, err := json.Marshal(req)
	if err != nil {
		response.InternalError(w, r, "dispatch payload re-encode failed")
		return
	}
	raw := h.hub.Forward(r.Context(), http.MethodPost, endpoint, "", bytes.NewReader(body), bridge.ClassDispatch)
	response.Raw(w, r, http.StatusOK, raw)
}

// WorkerHealth handles GET /api/auton/health.
func (h *BridgeHandler) WorkerHealth(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, h.worker, bridge.ClassHealth)
}

// WorkerGet handles the worker GET passthroughs.
func (h *BridgeHandler) WorkerGet(w http.ResponseWriter, r *http.Request) {
	rawQuery := r.URL.RawQuery
	if r.URL.Path == "/api/auton/journal" && rawQuery == "" {
		rawQuery = "n=20"
	}
	raw := h.worker.Forward(r.Context(), http.MethodGet, r.URL.Path, rawQuery, nil, bridge.ClassDefault)
	response.Raw(w, r, http.StatusOK, raw)
}

// WorkerPost handles the worker POST passthroughs (approve, reject,
// approve-all, kill, resume).
func (h *BridgeHandler) WorkerPost(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, h.worker, bridge.ClassDefault)
}

func (h *BridgeHandler) forward(w http.ResponseWriter, r *http.Request, target *bridge.Target, class bridge.CallClass) {
	raw := target.Forward(r.Context(), r.Method, r.URL.Path, r.URL.RawQuery, r.Body, class)
	response.Raw(w, r, http.StatusOK, raw)
}
