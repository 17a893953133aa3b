// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blogtest

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"quillpress/internal/session"
)

// Sessions is an in-memory session store with the same cookie contract
// as session.Store.
type Sessions struct {
	mu   sync.Mutex
	next int
	data map[string]session.Data
}

// NewSessions returns an empty Sessions.
func NewSessions() *Sessions {
	return &Sessions{data: make(map[string]session.Data)}
}

// Create stores data and sets the session cookie.
func (s *Sessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := fmt.Sprintf("test-session-%d", s.next)
	data.CreatedAt = time.Now().UTC()
	s.data[id] = *data
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: id, Path: "/", HttpOnly: true})
	return id, nil
}

// Get returns the session named by the request cookie, or nil.
func (s *Sessions) Get(_ context.Context, r *http.Request) (*session.Data, error) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data[cookie.Value]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// Destroy forgets the request's session and expires the cookie.
func (s *Sessions) Destroy(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	delete(s.data, cookie.Value)
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1})
	return nil
}

// Len reports how many sessions are live.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
