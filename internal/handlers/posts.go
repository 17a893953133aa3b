// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/blog"
	"quillpress/internal/cache"
	"quillpress/internal/middleware"
)

// ListPosts handles GET /api/posts.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	in, err := parseListPosts(r.URL.Query())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	posts, err := a.svc.ListPosts(r.Context(), middleware.ActorFromCtx(r.Context()), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// parseListPosts reads the post filter from query parameters. Empty
// parameters are treated as absent.
func parseListPosts(q url.Values) (blog.ListPostsInput, error) {
	var in blog.ListPostsInput
	fields := map[string]string{}

	if v := q.Get("search"); v != "" {
		in.Search = &v
	}
	in.CategoryID = queryUUID(q, "category_id", fields)
	in.AuthorID = queryUUID(q, "author_id", fields)
	in.Published = queryBool(q, "published", fields)
	in.Featured = queryBool(q, "featured", fields)
	in.Limit = queryInt(q, "limit", fields)
	in.Offset = queryInt(q, "offset", fields)

	if len(fields) > 0 {
		return in, apperr.Validation("invalid query parameters", fields)
	}
	return in, nil
}

func queryUUID(q url.Values, key string, fields map[string]string) *uuid.UUID {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		fields[key] = "must be a UUID"
		return nil
	}
	return &id
}

func queryBool(q url.Values, key string, fields map[string]string) *bool {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		fields[key] = "must be true or false"
		return nil
	}
	return &b
}

func queryInt(q url.Values, key string, fields map[string]string) *int {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fields[key] = "must be an integer"
		return nil
	}
	return &n
}

// GetPostBySlug handles GET /api/posts/slug/{slug}. Published posts are
// served from the response cache; drafts never enter it.
func (a *API) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postSlug := chi.URLParam(r, "slug")
	key := cache.PostKey(postSlug)

	if a.cache != nil {
		if body, ok := a.cache.Get(ctx, key); ok {
			w.Header().Set("X-Cache", "HIT")
			writeRaw(w, http.StatusOK, body)
			return
		}
	}

	p, err := a.svc.GetPostBySlug(ctx, middleware.ActorFromCtx(ctx), postSlug)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if !p.Published || a.cache == nil {
		writeJSON(w, http.StatusOK, p)
		return
	}
	body, err := json.Marshal(p)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.cache.Set(ctx, key, body)
	w.Header().Set("X-Cache", "MISS")
	writeRaw(w, http.StatusOK, body)
}

// CreatePost handles POST /api/posts.
func (a *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in blog.CreatePostInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	p, err := a.svc.CreatePost(r.Context(), middleware.ActorFromCtx(r.Context()), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdatePost handles PATCH /api/posts/{id}.
func (a *API) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "post")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in blog.UpdatePostInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	p, err := a.svc.UpdatePost(r.Context(), middleware.ActorFromCtx(r.Context()), id, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePost handles DELETE /api/posts/{id} and returns the removed post.
func (a *API) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "post")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	p, err := a.svc.DeletePost(r.Context(), middleware.ActorFromCtx(r.Context()), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// RecordView handles POST /api/posts/{id}/view.
func (a *API) RecordView(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "post")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.svc.RecordView(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
