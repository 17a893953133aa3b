// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quillpress/internal/blog"
	"quillpress/internal/cache"
	"quillpress/internal/middleware"
)

// ListTags handles GET /api/tags. Only the unfiltered list is cached.
func (a *API) ListTags(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	if search != "" {
		tags, err := a.svc.ListTags(r.Context(), search)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tags)
		return
	}
	a.cached(w, r, cache.TagListKey, func() (any, error) {
		return a.svc.ListTags(r.Context(), "")
	})
}

// GetTag handles GET /api/tags/{slug}.
func (a *API) GetTag(w http.ResponseWriter, r *http.Request) {
	t, err := a.svc.GetTag(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTag handles POST /api/tags.
func (a *API) CreateTag(w http.ResponseWriter, r *http.Request) {
	var in blog.CreateTagInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	t, err := a.svc.CreateTag(r.Context(), middleware.ActorFromCtx(r.Context()), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// DeleteTag handles DELETE /api/tags/{id}.
func (a *API) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "tag")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.svc.DeleteTag(r.Context(), middleware.ActorFromCtx(r.Context()), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
