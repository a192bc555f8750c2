// Package api provides the HTTP API for the hub.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/projectshome/hubd/internal/api/handler"
	"github.com/projectshome/hubd/internal/api/middleware"
	"github.com/projectshome/hubd/internal/api/response"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	Systems  *handler.SystemsHandler
	Sessions *handler.SessionsHandler
	Projects *handler.ProjectsHandler
	Gateway  *handler.GatewayHandler
	Bridge   *handler.BridgeHandler
}

// NewRouter creates a chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)
	mutationRateLimit := middleware.RateLimitByIP(middleware.MutationRateLimit)
	dispatchRateLimit := middleware.RateLimitByIP(middleware.DispatchRateLimit)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		response.JSON(w, req, http.StatusOK, map[string]any{
			"service": "hubd",
			"version": cfg.Version,
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
		})

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/systems", cfg.Systems.Overview)
			r.Get("/sessions", cfg.Sessions.List)
			r.Get("/active-sessions", cfg.Sessions.Active)
			r.Get("/stats", cfg.Projects.Stats)
			r.Get("/scan", cfg.Projects.Scan)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", cfg.Projects.List)
			r.Group(func(r chi.Router) {
				r.Use(mutationRateLimit)
				r.Post("/", cfg.Projects.Add)
				r.Post("/import-scan", cfg.Projects.ImportScan)
				r.Put("/{index}", cfg.Projects.Update)
				r.Delete("/{index}", cfg.Projects.Delete)
			})
		})

		r.Route("/gateway", func(r chi.Router) {
			r.Get("/health", cfg.Gateway.Health)
			r.Get("/activity", cfg.Gateway.Activity)
			r.Group(func(r chi.Router) {
				r.Use(dispatchRateLimit)
				r.Post("/send", cfg.Gateway.Send)
				r.Post("/overnight", cfg.Gateway.Overnight)
			})
		})

		r.Route("/bot", func(r chi.Router) {
			r.Get("/health", cfg.Bridge.HubHealth)
			r.Get("/capabilities", cfg.Bridge.HubGet)
			r.Get("/tasks", cfg.Bridge.HubGet)
			r.Get("/tasks/*", cfg.Bridge.HubGet)
			r.Group(func(r chi.Router) {
				r.Use(dispatchRateLimit)
				r.Post("/dispatch", cfg.Bridge.Dispatch)
				r.Post("/tasks/{id}/run", cfg.Bridge.HubPost)
				r.Post("/tasks/{id}/approve", cfg.Bridge.HubPost)
				r.Post("/tasks/{id}/handoff", cfg.Bridge.HubPost)
			})
		})

		r.Route("/auton", func(r chi.Router) {
			r.Get("/health", cfg.Bridge.WorkerHealth)
			r.Get("/status", cfg.Bridge.WorkerGet)
			r.Get("/knowledge", cfg.Bridge.WorkerGet)
			r.Get("/journal", cfg.Bridge.WorkerGet)
			r.Get("/tasks", cfg.Bridge.WorkerGet)
			r.Get("/tasks/*", cfg.Bridge.WorkerGet)
			r.Group(func(r chi.Router) {
				r.Use(mutationRateLimit)
				r.Post("/tasks/approve-all", cfg.Bridge.WorkerPost)
				r.Post("/tasks/{id}/approve", cfg.Bridge.WorkerPost)
				r.Post("/tasks/{id}/reject", cfg.Bridge.WorkerPost)
				r.Post("/kill", cfg.Bridge.WorkerPost)
				r.Post("/resume", cfg.Bridge.WorkerPost)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, "no such endpoint")
	})

	return r
}
