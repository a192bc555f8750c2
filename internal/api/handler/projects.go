package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/projectshome/hubd/internal/api/response"
	"github.com/projectshome/hubd/internal/project"
	"github.com/projectshome/hubd/internal/session"
)

// ProjectsHandler serves the project registry CRUD and scan endpoints.
type ProjectsHandler struct {
	store *project.Store
	log   *session.Log
	root  string
}

// NewProjectsHandler creates a ProjectsHandler. root is the directory
// scanned for unregistered projects.
func NewProjectsHandler(store *project.Store, log *session.Log, root string) *ProjectsHandler {
	return &ProjectsHandler{store: store, log: log, root: root}
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Load()
	if err != nil {
		response.InternalError(w, r, "registry unreadable")
		return
	}
	response.JSON(w, r, http.StatusOK, doc)
}

// Add handles POST /api/projects.
func (h *ProjectsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var p project.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.BadRequest(w, r, "invalid project payload")
		return
	}
	if p.Name == "" {
		response.BadRequest(w, r, "name is required")
		return
	}
	doc, err := h.store.Add(p)
	if err != nil {
		response.InternalError(w, r, "registry write failed")
		return
	}
	response.JSON(w, r, http.StatusCreated, map[string]any{
		"ok":       true,
		"projects": doc,
	})
}

// Update handles PUT /api/projects/{index}. The body is a partial field
// map merged into the existing entry.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.BadRequest(w, r, "invalid field map")
		return
	}
	if err := h.store.Update(index, fields); err != nil {
		if errors.Is(err, project.ErrInvalidIndex) {
			response.BadRequest(w, r, "invalid index")
			return
		}
		response.InternalError(w, r, "registry write failed")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"ok": true})
}

// Delete handles DELETE /api/projects/{index}.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	removed, err := h.store.Delete(index)
	if err != nil {
		if errors.Is(err, project.ErrInvalidIndex) {
			response.BadRequest(w, r, "invalid index")
			return
		}
		response.InternalError(w, r, "registry write failed")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"ok":      true,
		"removed": removed,
	})
}

// ImportScan handles POST /api/projects/import-scan, a bulk append of
// previously scanned projects.
func (h *ProjectsHandler) ImportScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Projects []project.Project `json:"projects"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid import payload")
		return
	}
	n, err := h.store.Import(req.Projects)
	if err != nil {
		response.InternalError(w, r, "registry write failed")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"ok":       true,
		"imported": n,
	})
}

// Scan handles GET /api/scan, returning directories under the projects
// root that are not yet registered.
func (h *ProjectsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	found, err := h.store.Scan(h.root)
	if err != nil {
		response.InternalError(w, r, "scan failed")
		return
	}
	if found == nil {
		found = []project.Project{}
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"new_projects": found})
}

// Stats handles GET /api/stats.
func (h *ProjectsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Load()
	if err != nil {
		response.InternalError(w, r, "registry unreadable")
		return
	}
	summaries := h.log.Summaries()
	messages := 0
	for _, s := range summaries {
		messages += s.MessageCount
	}
	response.JSON(w, r, http.StatusOK, project.CountStats(doc, len(summaries), messages))
}

// pathIndex parses the {index} URL parameter. Writes a 400 problem and
// returns false when it is not a number.
func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.BadRequest(w, r, "index must be an integer")
		return 0, false
	}
	return index, true
}
