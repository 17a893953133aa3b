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

// ListCategories returns all categories with post counts. A non-empty
// search narrows by name, ignoring case.
func (s *Service) ListCategories(ctx context.Context, search string) ([]models.Category, error) {
	if len(search) > 200 {
		return nil, apperr.Field("search", "must be at most 200 characters")
	}
	return s.categories.List(ctx, search)
}

// CategoryTree returns the categories nested under their parents.
func (s *Service) CategoryTree(ctx context.Context) ([]models.Category, error) {
	return s.categories.Tree(ctx)
}

// GetCategory returns a category by slug.
func (s *Service) GetCategory(ctx context.Context, categorySlug string) (*models.Category, error) {
	if err := validate.Slug(categorySlug); err != nil {
		return nil, apperr.NotFound("category %q not found", categorySlug)
	}
	return s.categories.FindBySlug(ctx, categorySlug)
}

// CreateCategory adds a category. New categories go after their siblings
// unless a sort order is given.
func (s *Service) CreateCategory(ctx context.Context, actor *Actor, in CreateCategoryInput) (*models.Category, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	catSlug, err := nameSlug(in.Name)
	if err != nil {
		return nil, err
	}

	order := 0
	if in.SortOrder != nil {
		order = *in.SortOrder
	} else if order, err = s.categories.NextSortOrder(ctx, in.ParentID); err != nil {
		return nil, err
	}

	c, err := s.categories.Create(ctx, &models.Category{
		Name:        in.Name,
		Slug:        catSlug,
		Description: in.Description,
		ParentID:    in.ParentID,
		SortOrder:   order,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{Type: events.CategoryCreated, ID: c.ID, Slugs: []string{c.Slug}})
	return c, nil
}

// UpdateCategory applies a partial update. A new name regenerates the slug.
func (s *Service) UpdateCategory(ctx context.Context, actor *Actor, id uuid.UUID, in UpdateCategoryInput) (*models.Category, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	current, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *current
	if in.Name != nil {
		catSlug, err := nameSlug(*in.Name)
		if err != nil {
			return nil, err
		}
		next.Name, next.Slug = *in.Name, catSlug
	}
	if in.Description != nil {
		next.Description = in.Description
		if *in.Description == "" {
			next.Description = nil
		}
	}
	if in.ParentID.Set {
		next.ParentID = in.ParentID.Value
	}
	if in.SortOrder != nil {
		next.SortOrder = *in.SortOrder
	}

	c, err := s.categories.Update(ctx, &next)
	if err != nil {
		return nil, err
	}
	slugs := []string{c.Slug}
	if current.Slug != c.Slug {
		slugs = append(slugs, current.Slug)
	}
	s.publish(ctx, events.Event{Type: events.CategoryUpdated, ID: c.ID, Slugs: slugs})
	return c, nil
}

// DeleteCategory removes a category. Posts stay; child categories move to
// the root.
func (s *Service) DeleteCategory(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := requireModerator(actor); err != nil {
		return err
	}
	current, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.Event{Type: events.CategoryDeleted, ID: id, Slugs: []string{current.Slug}})
	return nil
}

// ReorderCategories moves and reorders categories in one step.
func (s *Service) ReorderCategories(ctx context.Context, actor *Actor, items []store.ReorderItem) error {
	if err := requireModerator(actor); err != nil {
		return err
	}
	if len(items) == 0 {
		return apperr.Field("items", "is required")
	}
	for _, item := range items {
		if err := validate.Struct(item); err != nil {
			return err
		}
	}
	if err := s.categories.Reorder(ctx, items); err != nil {
		return err
	}
	s.publish(ctx, events.Event{Type: events.CategoryUpdated})
	return nil
}

func nameSlug(name string) (string, error) {
	sl := slug.Generate(name)
	if sl == "" {
		return "", apperr.Field("name", "must contain at least one letter or digit")
	}
	return sl, nil
}
