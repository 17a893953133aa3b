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
	"quillpress/internal/validate"
)

// ListTags returns tags by name. A non-empty search narrows by name,
// ignoring case.
func (s *Service) ListTags(ctx context.Context, search string) ([]models.Tag, error) {
	if len(search) > 200 {
		return nil, apperr.Field("search", "must be at most 200 characters")
	}
	return s.tags.List(ctx, search)
}

// GetTag returns a tag by slug.
func (s *Service) GetTag(ctx context.Context, tagSlug string) (*models.Tag, error) {
	if err := validate.Slug(tagSlug); err != nil {
		return nil, apperr.NotFound("tag %q not found", tagSlug)
	}
	return s.tags.FindBySlug(ctx, tagSlug)
}

// CreateTag adds a tag.
func (s *Service) CreateTag(ctx context.Context, actor *Actor, in CreateTagInput) (*models.Tag, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	tagSlug := slug.Generate(in.Name)
	if tagSlug == "" {
		return nil, apperr.Field("name", "must contain at least one letter or digit")
	}

	t, err := s.tags.Create(ctx, in.Name, tagSlug)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{Type: events.TagCreated, ID: t.ID, Slugs: []string{t.Slug}})
	return t, nil
}

// DeleteTag removes a tag and its post links.
func (s *Service) DeleteTag(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := requireModerator(actor); err != nil {
		return err
	}
	if err := s.tags.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.Event{Type: events.TagDeleted, ID: id})
	return nil
}
