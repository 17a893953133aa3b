// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"quillpress/internal/blog"
	"quillpress/internal/blog/blogtest"
	"quillpress/internal/cache"
	"quillpress/internal/events"
	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/session"
)

// testEnv is an API wired to in-memory repositories, an L1-only response
// cache, and a bus that invalidates it.
type testEnv struct {
	mem      *blogtest.Memory
	sessions *blogtest.Sessions
	cache    *cache.ResponseCache
	mux      chi.Router

	alice *models.User // author
	bob   *models.User // author
	erin  *models.User // editor
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := blogtest.New()
	responses := cache.NewResponseCache(nil, 0, time.Minute)
	bus := events.NewBus()
	bus.Subscribe(cache.NewInvalidator(responses))

	deps := mem.Deps()
	deps.Events = bus
	sessions := blogtest.NewSessions()
	api := NewAPI(blog.NewService(deps), responses, sessions, true)

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(sessions))
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", api.Login)
		r.Post("/auth/logout", api.Logout)
		r.Get("/auth/me", api.Me)

		r.Get("/posts", api.ListPosts)
		r.Post("/posts", api.CreatePost)
		r.Get("/posts/slug/{slug}", api.GetPostBySlug)
		r.Patch("/posts/{id}", api.UpdatePost)
		r.Delete("/posts/{id}", api.DeletePost)
		r.Post("/posts/{id}/view", api.RecordView)
		r.Get("/posts/{id}/comments", api.ListComments)
		r.Post("/posts/{id}/comments", api.CreateComment)
		r.Delete("/comments/{id}", api.DeleteComment)

		r.Get("/categories", api.ListCategories)
		r.Get("/categories/tree", api.CategoryTree)
		r.Put("/categories/reorder", api.ReorderCategories)
		r.Get("/categories/{slug}", api.GetCategory)
		r.Post("/categories", api.CreateCategory)
		r.Patch("/categories/{id}", api.UpdateCategory)
		r.Delete("/categories/{id}", api.DeleteCategory)

		r.Get("/tags", api.ListTags)
		r.Get("/tags/{slug}", api.GetTag)
		r.Post("/tags", api.CreateTag)
		r.Delete("/tags/{id}", api.DeleteTag)
	})

	return &testEnv{
		mem:      mem,
		sessions: sessions,
		cache:    responses,
		mux:      r,
		alice:    mem.AddUser("alice", "password-alice", models.RoleAuthor),
		bob:      mem.AddUser("bob", "password-bob", models.RoleAuthor),
		erin:     mem.AddUser("erin", "password-erin", models.RoleEditor),
	}
}

// do sends a request, signed in as user when user is non-nil.
func (e *testEnv) do(t *testing.T, method, path string, body any, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(middleware.WithSession(req.Context(), session.FromUser(user)))
	}
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals a response body into T.
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

// apiError is the decoded error envelope.
type apiError struct {
	Error struct {
		Kind    string            `json:"kind"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

// createPost creates a post as user and returns it.
func (e *testEnv) createPost(t *testing.T, user *models.User, body map[string]any) models.Post {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/posts", body, user)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[models.Post](t, rr)
}

// createCategory creates a category as the editor and returns it.
func (e *testEnv) createCategory(t *testing.T, name string) models.Category {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/categories", map[string]any{"name": name}, e.erin)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[models.Category](t, rr)
}
