// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"quillpress/internal/blog"
	"quillpress/internal/middleware"
)

// ListComments handles GET /api/posts/{id}/comments.
func (a *API) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "post")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	thread, err := a.svc.ListComments(r.Context(), middleware.ActorFromCtx(r.Context()), postID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

// CreateComment handles POST /api/posts/{id}/comments.
func (a *API) CreateComment(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "post")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var in blog.CreateCommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.CreateComment(r.Context(), middleware.ActorFromCtx(r.Context()), postID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// DeleteComment handles DELETE /api/comments/{id}.
func (a *API) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "comment")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.svc.DeleteComment(r.Context(), middleware.ActorFromCtx(r.Context()), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
