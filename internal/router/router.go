// Package router sets up all HTTP routes and middleware chains for the
// pagetree server. Read routes are public; mutations sit behind bearer-token
// auth and a rate limiter.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pagetree/internal/handlers"
	"pagetree/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. adminTokenHash is the bcrypt hash mutations
// must authenticate against; an empty hash disables mutations entirely.
func New(pages *handlers.Pages, public *handlers.Public, adminTokenHash string) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// JSON API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/pages", pages.List)
		r.Get("/pages/{id}", pages.Get)
		r.Get("/resolve", pages.Resolve)

		// Mutations — bearer token plus rate limiting.
		r.Group(func(r chi.Router) {
			limiter := middleware.NewRateLimiter(60, time.Minute)
			r.Use(middleware.RequireToken(adminTokenHash))
			r.Use(limiter.Middleware)

			r.Post("/pages", pages.Create)
			r.Put("/pages/{id}", pages.Update)
			r.Delete("/pages/{id}", pages.Delete)
			r.Post("/pages/reorder", pages.Reorder)
		})
	})

	// Public routes — resolved by the full slug chain, any depth.
	r.Get("/", public.Homepage)
	r.Get("/*", public.Page)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
