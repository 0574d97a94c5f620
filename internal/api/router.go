package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenweave/lumenweave-core/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Login (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			// WS ticket requires authentication - user must be logged in to request a ticket
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Template catalogue
			r.Route("/templates", func(r chi.Router) {
				r.Get("/", s.handleListTemplates)

				r.Group(func(r chi.Router) {
					r.Use(s.requirePermission(auth.PermTemplateWrite))
					r.Post("/", s.handleCreateTemplate)
				})

				r.Route("/{slug}", func(r chi.Router) {
					r.Get("/", s.handleGetTemplate)

					r.Group(func(r chi.Router) {
						r.Use(s.requirePermission(auth.PermTemplateWrite))
						r.Put("/", s.handleUpdateTemplate)
						r.Delete("/", s.handleDeleteTemplate)
					})
				})
			})

			// Rig topology (read-only)
			r.Route("/rig", func(r chi.Router) {
				r.Get("/", s.handleGetRig)
				r.Get("/fixtures/{id}", s.handleGetFixture)
				r.Get("/groups/{name}", s.handleGetGroup)
			})

			// Compile
			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermCompileRun))
				r.Post("/compile", s.handleCompile)
			})

			// Transition planning and blending
			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermTransitionPlan))
				r.Post("/transitions/plan", s.handlePlanTransitions)
				r.Post("/transitions/blend", s.handleBlendTransition)
			})

			// User management (admin)
			r.Route("/users", func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermUserManage))

				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetUser)
					r.Patch("/", s.handleUpdateUser)
					r.Delete("/", s.handleDeleteUser)
					r.Put("/password", s.handleSetUserPassword)
				})
			})

			// System status (admin)
			r.Group(func(r chi.Router) {
				r.Use(s.requirePermission(auth.PermSystemAdmin))
				r.Get("/system/status", s.handleSystemStatus)
			})

			// WebSocket (auth via ticket, validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
