// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package events carries content-change notifications from the blog
// service to interested components such as the response cache. Delivery
// is synchronous and in subscription order.
package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Type names what happened.
type Type string

const (
	PostCreated     Type = "post.created"
	PostUpdated     Type = "post.updated"
	PostDeleted     Type = "post.deleted"
	CategoryCreated Type = "category.created"
	CategoryUpdated Type = "category.updated"
	CategoryDeleted Type = "category.deleted"
	TagCreated      Type = "tag.created"
	TagDeleted      Type = "tag.deleted"
	CommentCreated  Type = "comment.created"
	CommentDeleted  Type = "comment.deleted"
)

// Event describes a committed change. Slugs lists every slug the change
// may have made stale, including a post's previous slug after a rename.
type Event struct {
	Seq         uint64
	Type        Type
	ID          uuid.UUID
	Slugs       []string
	CategoryIDs []uuid.UUID
	At          time.Time
}

// Subscriber receives events. Handle must not block for long: publishers
// wait for every subscriber before returning.
type Subscriber interface {
	Handle(ctx context.Context, e Event)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, e Event)

// Handle calls f(ctx, e).
func (f SubscriberFunc) Handle(ctx context.Context, e Event) { f(ctx, e) }

// Publisher is the sending side of a Bus.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Bus fans events out to subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	sequence    atomic.Uint64
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers s for every subsequent event.
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	b.subscribers = append(b.subscribers, s)
	b.mu.Unlock()
}

// Publish stamps e with a sequence number and time, then hands it to each
// subscriber in registration order. A panicking subscriber is logged and
// skipped so one bad listener cannot fail the request that published.
func (b *Bus) Publish(ctx context.Context, e Event) {
	e.Seq = b.sequence.Add(1)
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, s := range subs {
		deliver(ctx, s, e)
	}
}

func deliver(ctx context.Context, s Subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event subscriber panicked", "type", e.Type, "seq", e.Seq, "panic", r)
		}
	}()
	s.Handle(ctx, e)
}
