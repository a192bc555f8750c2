package handler

import (
	"net/http"

	"github.com/projectshome/hubd/internal/activity"
	"github.com/projectshome/hubd/internal/api/response"
	"github.com/projectshome/hubd/internal/session"
)

// SessionsHandler serves session summaries and the reconciled activity feed.
type SessionsHandler struct {
	log        *session.Log
	reconciler *activity.Reconciler
}

// NewSessionsHandler creates a SessionsHandler.
func NewSessionsHandler(log *session.Log, reconciler *activity.Reconciler) *SessionsHandler {
	return &SessionsHandler{log: log, reconciler: reconciler}
}

// List handles GET /api/sessions. Summaries are ordered most recent first.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries := h.log.Summaries()
	if summaries == nil {
		summaries = []session.Summary{}
	}
	response.JSON(w, r, http.StatusOK, summaries)
}

// Active handles GET /api/active-sessions. The feed merges session-log
// evidence with project metadata inside the activity window.
func (h *SessionsHandler) Active(w http.ResponseWriter, r *http.Request) {
	records := h.reconciler.Reconcile()
	if records == nil {
		records = []activity.Record{}
	}
	response.JSON(w, r, http.StatusOK, records)
}
