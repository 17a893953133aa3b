// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quillpress/internal/apperr"
	"quillpress/internal/blog"
	"quillpress/internal/cache"
	"quillpress/internal/middleware"
	"quillpress/internal/store"
)

// ListCategories handles GET /api/categories. Only the unfiltered list is
// cached.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	if search != "" {
		cats, err := a.svc.ListCategories(r.Context(), search)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cats)
		return
	}
	a.cached(w, r, cache.CategoryListKey, func() (any, error) {
		return a.svc.ListCategories(r.Context(), "")
	})
}

// CategoryTree handles GET /api/categories/tree.
func (a *API) CategoryTree(w http.ResponseWriter, r *http.Request) {
	a.cached(w, r, cache.CategoryTreeKey, func() (any, error) {
		return a.svc.CategoryTree(r.Context())
	})
}

// GetCategory handles GET /api/categories/{slug}.
func (a *API) GetCategory(w http.ResponseWriter, r *http.Request) {
	catSlug := chi.URLParam(r, "slug")
	a.cached(w, r, cache.CategoryKey(catSlug), func() (any, error) {
		return a.svc.GetCategory(r.Context(), catSlug)
	})
}

// CreateCategory handles POST /api/categories.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in blog.CreateCategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.CreateCategory(r.Context(), middleware.ActorFromCtx(r.Context()), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory handles PATCH /api/categories/{id}.
func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "category")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in blog.UpdateCategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.UpdateCategory(r.Context(), middleware.ActorFromCtx(r.Context()), id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "category")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.svc.DeleteCategory(r.Context(), middleware.ActorFromCtx(r.Context()), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorderRequest is the body of PUT /api/categories/reorder.
type reorderRequest struct {
	Items []store.ReorderItem `json:"items"`
}

// ReorderCategories handles PUT /api/categories/reorder.
func (a *API) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if len(req.Items) > 500 {
		a.writeError(w, r, apperr.Field("items", "must contain at most 500 items"))
		return
	}
	if err := a.svc.ReorderCategories(r.Context(), middleware.ActorFromCtx(r.Context()), req.Items); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
