// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"quillpress/internal/apperr"
	"quillpress/internal/blog"
	"quillpress/internal/middleware"
	"quillpress/internal/session"
)

// Login handles POST /api/auth/login. On success it starts a session and
// returns the account.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var in blog.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.svc.Authenticate(r.Context(), in)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnauthorized {
			slog.Info("login failed", "login", in.Login, "remote", r.RemoteAddr)
		}
		a.writeError(w, r, err)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, session.FromUser(u)); err != nil {
		a.writeError(w, r, apperr.Infrastructure("failed to start session", err))
		return
	}
	slog.Info("user logged in", "user_id", u.ID, "username", u.Username)
	writeJSON(w, http.StatusOK, u)
}

// Logout handles POST /api/auth/logout.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		a.writeError(w, r, apperr.Infrastructure("failed to end session", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	u, err := a.svc.CurrentUser(r.Context(), middleware.ActorFromCtx(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// CSRFToken handles GET /api/auth/csrf. Clients echo the token in the
// X-CSRF-Token header of every state-changing request.
func (a *API) CSRFToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": middleware.CSRFToken(r)})
}
