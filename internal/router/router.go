// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains for the
// QuillPress API. Reads are public; writes need a session and, for the
// category and tag taxonomies, an editor or admin role.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"quillpress/internal/handlers"
	"quillpress/internal/middleware"
	"quillpress/internal/models"
)

// New creates the router. loginLimiter may be nil to leave login
// unthrottled. secure marks the CSRF cookie Secure.
func New(sessions middleware.SessionLoader, api *handlers.API, loginLimiter *middleware.RateLimiter, secure bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessions))

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(secure))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/csrf", api.CSRFToken)
			r.With(limit(loginLimiter)).Post("/login", api.Login)
			r.Post("/logout", api.Logout)
			r.With(middleware.RequireAuth).Get("/me", api.Me)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", api.ListPosts)
			r.Get("/slug/{slug}", api.GetPostBySlug)
			r.Post("/{id}/view", api.RecordView)
			r.Get("/{id}/comments", api.ListComments)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", api.CreatePost)
				r.Patch("/{id}", api.UpdatePost)
				r.Delete("/{id}", api.DeletePost)
				r.Post("/{id}/comments", api.CreateComment)
			})
		})

		r.With(middleware.RequireAuth).Delete("/comments/{id}", api.DeleteComment)

		moderator := middleware.RequireRole(models.RoleEditor, models.RoleAdmin)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", api.ListCategories)
			r.Get("/tree", api.CategoryTree)
			r.Get("/{slug}", api.GetCategory)

			r.Group(func(r chi.Router) {
				r.Use(moderator)
				r.Post("/", api.CreateCategory)
				r.Put("/reorder", api.ReorderCategories)
				r.Patch("/{id}", api.UpdateCategory)
				r.Delete("/{id}", api.DeleteCategory)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", api.ListTags)
			r.Get("/{slug}", api.GetTag)

			r.Group(func(r chi.Router) {
				r.Use(moderator)
				r.Post("/", api.CreateTag)
				r.Delete("/{id}", api.DeleteTag)
			})
		})
	})

	return r
}

// limit returns rl's middleware, or a pass-through when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck // client went away
}
