// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"

	"quillpress/internal/events"
)

// Invalidator drops cached responses made stale by content events.
type Invalidator struct {
	cache *ResponseCache
}

// NewInvalidator returns a subscriber that invalidates c.
func NewInvalidator(c *ResponseCache) *Invalidator {
	return &Invalidator{cache: c}
}

// Handle implements events.Subscriber.
func (inv *Invalidator) Handle(ctx context.Context, e events.Event) {
	switch e.Type {
	case events.PostCreated, events.PostUpdated, events.PostDeleted:
		keys := make([]string, 0, len(e.Slugs))
		for _, s := range e.Slugs {
			keys = append(keys, PostKey(s))
		}
		inv.cache.Invalidate(ctx, keys...)
		// Post counts shown in category listings move with posts.
		inv.cache.InvalidatePrefix(ctx, CategoryPrefix)

	case events.CategoryCreated, events.CategoryUpdated, events.CategoryDeleted:
		inv.cache.InvalidatePrefix(ctx, CategoryPrefix)
		// Posts embed category names and slugs.
		inv.cache.InvalidatePrefix(ctx, PostPrefix)

	case events.TagCreated, events.TagDeleted:
		inv.cache.InvalidatePrefix(ctx, TagPrefix)
		inv.cache.InvalidatePrefix(ctx, PostPrefix)
	}
}
