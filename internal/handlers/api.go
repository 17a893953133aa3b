// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the QuillPress JSON API on top of
// blog.Service. Handlers decode requests, call the service with the
// session's actor, and render results or classified errors.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"quillpress/internal/blog"
	"quillpress/internal/cache"
	"quillpress/internal/session"
)

// Sessions creates and destroys login sessions.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// API groups every JSON endpoint.
type API struct {
	svc      *blog.Service
	cache    *cache.ResponseCache
	sessions Sessions
	detail   bool
}

// NewAPI creates the API handlers. cache may be nil to disable response
// caching. detail exposes infrastructure error causes to clients and is
// meant for development.
func NewAPI(svc *blog.Service, responses *cache.ResponseCache, sessions Sessions, detail bool) *API {
	return &API{
		svc:      svc,
		cache:    responses,
		sessions: sessions,
		detail:   detail,
	}
}

// cached serves key from the response cache when present. Otherwise it
// calls load and, on success, caches and writes the encoded result.
func (a *API) cached(w http.ResponseWriter, r *http.Request, key string, load func() (any, error)) {
	ctx := r.Context()
	if a.cache != nil {
		if body, ok := a.cache.Get(ctx, key); ok {
			w.Header().Set("X-Cache", "HIT")
			writeRaw(w, http.StatusOK, body)
			return
		}
	}

	v, err := load()
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response failed", "error", err, "key", key)
		a.writeError(w, r, err)
		return
	}
	if a.cache != nil {
		a.cache.Set(ctx, key, body)
		w.Header().Set("X-Cache", "MISS")
	}
	writeRaw(w, http.StatusOK, body)
}
