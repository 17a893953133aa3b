// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blog implements QuillPress's use cases on top of the stores:
// input validation, authorization, slug derivation, Markdown rendering,
// and publishing change events. Handlers talk to a *Service and never to
// a store directly.
package blog

import (
	"context"

	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/events"
	"quillpress/internal/markdown"
	"quillpress/internal/models"
	"quillpress/internal/store"
)

// Actor is the authenticated user performing an operation. A nil *Actor
// is an anonymous visitor.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

// canEdit reports whether the actor may change content owned by ownerID.
func (a *Actor) canEdit(ownerID uuid.UUID) bool {
	return a != nil && (a.UserID == ownerID || a.Role.CanModerate())
}

func requireActor(a *Actor) error {
	if a == nil {
		return apperr.Unauthorized("authentication required")
	}
	return nil
}

func requireModerator(a *Actor) error {
	if err := requireActor(a); err != nil {
		return err
	}
	if !a.Role.CanModerate() {
		return apperr.Forbidden("editor or admin role required")
	}
	return nil
}

// PostRepository is the post persistence the service needs.
type PostRepository interface {
	List(ctx context.Context, f store.PostFilter) ([]models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Create(ctx context.Context, in store.NewPost) (*models.Post, error)
	Update(ctx context.Context, id uuid.UUID, patch store.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Post, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository is the category persistence the service needs.
type CategoryRepository interface {
	List(ctx context.Context, search string) ([]models.Category, error)
	Tree(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, items []store.ReorderItem) error
	NextSortOrder(ctx context.Context, parentID *uuid.UUID) (int, error)
}

// TagRepository is the tag persistence the service needs.
type TagRepository interface {
	List(ctx context.Context, search string) ([]models.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
	Create(ctx context.Context, name, slug string) (*models.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommentRepository is the comment persistence the service needs.
type CommentRepository interface {
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository is the account lookup the service needs.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// Deps wires a Service. Events and Render are optional.
type Deps struct {
	Posts      PostRepository
	Categories CategoryRepository
	Tags       TagRepository
	Comments   CommentRepository
	Users      UserRepository
	Events     events.Publisher
	Render     func(source string) (string, error)
}

// Service holds the blog's operations.
type Service struct {
	posts      PostRepository
	categories CategoryRepository
	tags       TagRepository
	comments   CommentRepository
	users      UserRepository
	events     events.Publisher
	render     func(string) (string, error)
}

// NewService returns a Service over d.
func NewService(d Deps) *Service {
	s := &Service{
		posts:      d.Posts,
		categories: d.Categories,
		tags:       d.Tags,
		comments:   d.Comments,
		users:      d.Users,
		events:     d.Events,
		render:     d.Render,
	}
	if s.events == nil {
		s.events = events.NewBus()
	}
	if s.render == nil {
		s.render = markdown.ToHTML
	}
	return s
}

// publish runs after the write has committed, so subscribers get a
// context that outlives a cancelled request.
func (s *Service) publish(ctx context.Context, e events.Event) {
	s.events.Publish(context.WithoutCancel(ctx), e)
}
