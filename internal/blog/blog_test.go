// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"quillpress/internal/blog"
	"quillpress/internal/blog/blogtest"
	"quillpress/internal/events"
	"quillpress/internal/models"
)

// recorder collects published events and the state of the context each
// one arrived with.
type recorder struct {
	mu      sync.Mutex
	events  []events.Event
	ctxErrs []error
}

func (r *recorder) Publish(ctx context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
}

func (r *recorder) last(t *testing.T) events.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events, "no events published")
	return r.events[len(r.events)-1]
}

type fixture struct {
	mem    *blogtest.Memory
	svc    *blog.Service
	events *recorder

	author *blog.Actor
	other  *blog.Actor
	editor *blog.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := blogtest.New()
	rec := &recorder{}
	deps := mem.Deps()
	deps.Events = rec

	actor := func(u *models.User) *blog.Actor { return &blog.Actor{UserID: u.ID, Role: u.Role} }
	return &fixture{
		mem:    mem,
		svc:    blog.NewService(deps),
		events: rec,
		author: actor(mem.AddUser("alice", "password-alice", models.RoleAuthor)),
		other:  actor(mem.AddUser("bob", "password-bob", models.RoleAuthor)),
		editor: actor(mem.AddUser("erin", "password-erin", models.RoleEditor)),
	}
}

func ptr[T any](v T) *T { return &v }
