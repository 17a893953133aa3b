// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blogtest

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
	"quillpress/internal/store"
)

// Categories is an in-memory blog.CategoryRepository.
type Categories struct{ m *Memory }

// postCount counts the posts linked to a category. Caller holds the lock.
func (m *Memory) postCount(id uuid.UUID) int {
	n := 0
	for _, ids := range m.postCats {
		if containsID(ids, id) {
			n++
		}
	}
	return n
}

func (m *Memory) categoryCopy(c *models.Category) models.Category {
	out := *c
	out.PostCount = m.postCount(c.ID)
	out.Children = nil
	return out
}

func (m *Memory) sortedCategories() []models.Category {
	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, m.categoryCopy(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (m *Memory) parentMap() map[uuid.UUID]*uuid.UUID {
	parents := make(map[uuid.UUID]*uuid.UUID, len(m.categories))
	for id, c := range m.categories {
		parents[id] = c.ParentID
	}
	return parents
}

func (m *Memory) checkCategoryUnique(c *models.Category) error {
	for id, other := range m.categories {
		if id == c.ID {
			continue
		}
		if other.Name == c.Name {
			return apperr.Conflict("a category named %q already exists", c.Name)
		}
		if other.Slug == c.Slug {
			return apperr.Conflict("a category with slug %q already exists", c.Slug)
		}
	}
	return nil
}

// List implements blog.CategoryRepository.
func (r *Categories) List(_ context.Context, search string) ([]models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Category{}
	for _, c := range r.m.sortedCategories() {
		if search == "" || containsFold(c.Name, search) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Tree implements blog.CategoryRepository.
func (r *Categories) Tree(_ context.Context) ([]models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	tree := store.BuildTree(r.m.sortedCategories(), nil, 0)
	if tree == nil {
		tree = []models.Category{}
	}
	return tree, nil
}

// FindByID implements blog.CategoryRepository.
func (r *Categories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.categories[id]
	if !ok {
		return nil, apperr.NotFound("category not found")
	}
	out := r.m.categoryCopy(c)
	return &out, nil
}

// FindBySlug implements blog.CategoryRepository.
func (r *Categories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.categories {
		if c.Slug == slug {
			out := r.m.categoryCopy(c)
			return &out, nil
		}
	}
	return nil, apperr.NotFound("category %q not found", slug)
}

// Create implements blog.CategoryRepository.
func (r *Categories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if c.ParentID != nil {
		if err := store.CheckParentChain(r.m.parentMap(), uuid.Nil, c.ParentID); err != nil {
			return nil, err
		}
	}
	stored := *c
	stored.ID = uuid.New()
	if err := r.m.checkCategoryUnique(&stored); err != nil {
		return nil, err
	}
	now := r.m.now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.m.categories[stored.ID] = &stored

	out := r.m.categoryCopy(&stored)
	return &out, nil
}

// Update implements blog.CategoryRepository.
func (r *Categories) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	existing, ok := r.m.categories[c.ID]
	if !ok {
		return nil, apperr.NotFound("category not found")
	}
	if c.ParentID != nil {
		if err := store.CheckParentChain(r.m.parentMap(), c.ID, c.ParentID); err != nil {
			return nil, err
		}
	}
	if err := r.m.checkCategoryUnique(c); err != nil {
		return nil, err
	}
	existing.Name = c.Name
	existing.Slug = c.Slug
	existing.Description = c.Description
	existing.ParentID = c.ParentID
	existing.SortOrder = c.SortOrder
	existing.UpdatedAt = r.m.now()

	out := r.m.categoryCopy(existing)
	return &out, nil
}

// Delete implements blog.CategoryRepository. Children move to the root
// and post links are dropped.
func (r *Categories) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.categories[id]; !ok {
		return apperr.NotFound("category not found")
	}
	delete(r.m.categories, id)
	for _, c := range r.m.categories {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
		}
	}
	for pid, ids := range r.m.postCats {
		kept := ids[:0:0]
		for _, cid := range ids {
			if cid != id {
				kept = append(kept, cid)
			}
		}
		r.m.postCats[pid] = kept
	}
	return nil
}

// Reorder implements blog.CategoryRepository.
func (r *Categories) Reorder(_ context.Context, items []store.ReorderItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	parents := r.m.parentMap()
	for _, item := range items {
		if _, ok := parents[item.ID]; !ok {
			return apperr.NotFound("category %s not found", item.ID)
		}
		parents[item.ID] = item.ParentID
	}
	for _, item := range items {
		if err := store.CheckParentChain(parents, item.ID, item.ParentID); err != nil {
			return err
		}
	}
	now := r.m.now()
	for _, item := range items {
		c := r.m.categories[item.ID]
		c.ParentID = item.ParentID
		c.SortOrder = item.Order
		c.UpdatedAt = now
	}
	return nil
}

// NextSortOrder implements blog.CategoryRepository.
func (r *Categories) NextSortOrder(_ context.Context, parentID *uuid.UUID) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	next := 0
	for _, c := range r.m.categories {
		sameParent := (c.ParentID == nil && parentID == nil) ||
			(c.ParentID != nil && parentID != nil && *c.ParentID == *parentID)
		if sameParent && c.SortOrder+1 > next {
			next = c.SortOrder + 1
		}
	}
	return next, nil
}

// Tags is an in-memory blog.TagRepository.
type Tags struct{ m *Memory }

// List implements blog.TagRepository.
func (r *Tags) List(_ context.Context, search string) ([]models.Tag, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []models.Tag{}
	for _, t := range r.m.tags {
		if search == "" || containsFold(t.Name, search) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// FindBySlug implements blog.TagRepository.
func (r *Tags) FindBySlug(_ context.Context, slug string) (*models.Tag, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, t := range r.m.tags {
		if t.Slug == slug {
			out := *t
			return &out, nil
		}
	}
	return nil, apperr.NotFound("tag %q not found", slug)
}

// Create implements blog.TagRepository.
func (r *Tags) Create(_ context.Context, name, slug string) (*models.Tag, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, t := range r.m.tags {
		if t.Name == name {
			return nil, apperr.Conflict("a tag named %q already exists", name)
		}
		if t.Slug == slug {
			return nil, apperr.Conflict("a tag with slug %q already exists", slug)
		}
	}
	t := &models.Tag{ID: uuid.New(), Name: name, Slug: slug, CreatedAt: r.m.now()}
	r.m.tags[t.ID] = t
	out := *t
	return &out, nil
}

// Delete implements blog.TagRepository.
func (r *Tags) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.tags[id]; !ok {
		return apperr.NotFound("tag not found")
	}
	delete(r.m.tags, id)
	for pid, ids := range r.m.postTags {
		kept := ids[:0:0]
		for _, tid := range ids {
			if tid != id {
				kept = append(kept, tid)
			}
		}
		r.m.postTags[pid] = kept
	}
	return nil
}
