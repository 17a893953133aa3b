// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"context"

	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/events"
	"quillpress/internal/models"
	"quillpress/internal/slug"
	"quillpress/internal/store"
	"quillpress/internal/validate"
)

// ListPosts returns a page of posts, newest first. Anonymous visitors only
// ever see published posts. Signed-in users also see their own drafts, and
// editors see every draft.
func (s *Service) ListPosts(ctx context.Context, actor *Actor, in ListPostsInput) ([]models.Post, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	f := store.PostFilter{
		Search:     in.Search,
		CategoryID: in.CategoryID,
		Published:  in.Published,
		AuthorID:   in.AuthorID,
		Featured:   in.Featured,
		Limit:      store.DefaultLimit,
	}
	if in.Limit != nil {
		f.Limit = *in.Limit
	}
	if in.Offset != nil {
		f.Offset = *in.Offset
	}
	if actor == nil {
		if f.Published != nil && !*f.Published {
			return []models.Post{}, nil
		}
		published := true
		f.Published = &published
	} else if !actor.Role.CanModerate() {
		f.VisibleTo = &actor.UserID
	}

	return s.posts.List(ctx, f)
}

// GetPostBySlug returns a post with its rendered HTML. Drafts are visible
// only to their author and to editors.
func (s *Service) GetPostBySlug(ctx context.Context, actor *Actor, postSlug string) (*models.Post, error) {
	if err := validate.Slug(postSlug); err != nil {
		return nil, apperr.NotFound("post %q not found", postSlug)
	}
	p, err := s.posts.FindBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if !p.Published && !actor.canEdit(p.AuthorID) {
		return nil, apperr.NotFound("post %q not found", postSlug)
	}

	html, err := s.render(p.Content)
	if err != nil {
		return nil, apperr.Infrastructure("failed to render post", err)
	}
	p.ContentHTML = html
	return p, nil
}

// CreatePost creates a post owned by the actor. The slug comes from the
// title.
func (s *Service) CreatePost(ctx context.Context, actor *Actor, in CreatePostInput) (*models.Post, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	postSlug, err := titleSlug(in.Title)
	if err != nil {
		return nil, err
	}

	p, err := s.posts.Create(ctx, store.NewPost{
		Title:       in.Title,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		Slug:        postSlug,
		Published:   deref(in.Published),
		Featured:    deref(in.Featured),
		AuthorID:    actor.UserID,
		CategoryIDs: in.CategoryIDs,
		TagIDs:      in.TagIDs,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.PostCreated,
		ID:          p.ID,
		Slugs:       []string{p.Slug},
		CategoryIDs: p.CategoryIDs(),
	})
	return p, nil
}

// UpdatePost applies a partial update. Only the author or an editor may
// update a post. A new title regenerates the slug.
func (s *Service) UpdatePost(ctx context.Context, actor *Actor, id uuid.UUID, in UpdatePostInput) (*models.Post, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	current, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canEdit(current.AuthorID) {
		return nil, apperr.Forbidden("only the author or an editor may update this post")
	}

	patch := store.PostPatch{
		Title:       in.Title,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		Published:   in.Published,
		Featured:    in.Featured,
		CategoryIDs: in.CategoryIDs,
		TagIDs:      in.TagIDs,
	}
	if in.Title != nil {
		postSlug, err := titleSlug(*in.Title)
		if err != nil {
			return nil, err
		}
		patch.Slug = &postSlug
	}

	p, err := s.posts.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	slugs := []string{p.Slug}
	if current.Slug != p.Slug {
		slugs = append(slugs, current.Slug)
	}
	s.publish(ctx, events.Event{
		Type:        events.PostUpdated,
		ID:          p.ID,
		Slugs:       slugs,
		CategoryIDs: unionIDs(current.CategoryIDs(), p.CategoryIDs()),
	})
	return p, nil
}

// DeletePost removes a post and returns it. Only the author or an editor
// may delete a post.
func (s *Service) DeletePost(ctx context.Context, actor *Actor, id uuid.UUID) (*models.Post, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	current, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canEdit(current.AuthorID) {
		return nil, apperr.Forbidden("only the author or an editor may delete this post")
	}

	p, err := s.posts.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.PostDeleted,
		ID:          p.ID,
		Slugs:       []string{p.Slug},
		CategoryIDs: p.CategoryIDs(),
	})
	return p, nil
}

// RecordView counts one view of a post.
func (s *Service) RecordView(ctx context.Context, id uuid.UUID) error {
	return s.posts.IncrementViews(ctx, id)
}

// titleSlug derives a slug from a title, rejecting titles with no letters
// or digits.
func titleSlug(title string) (string, error) {
	sl := slug.Generate(title)
	if sl == "" {
		return "", apperr.Field("title", "must contain at least one letter or digit")
	}
	return sl, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func unionIDs(a, b []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(a)+len(b))
	out := make([]uuid.UUID, 0, len(a)+len(b))
	for _, id := range append(append([]uuid.UUID{}, a...), b...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
