// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blogtest provides in-memory repositories for exercising the blog
// service and the HTTP handlers without PostgreSQL. They enforce the same
// uniqueness, reference, and replace-all rules as the SQL stores.
package blogtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quillpress/internal/apperr"
	"quillpress/internal/blog"
	"quillpress/internal/models"
	"quillpress/internal/store"
)

// Memory holds every table. Its repositories share one lock.
type Memory struct {
	mu         sync.Mutex
	clock      time.Time
	users      map[uuid.UUID]*models.User
	posts      map[uuid.UUID]*models.Post
	postCats   map[uuid.UUID][]uuid.UUID
	postTags   map[uuid.UUID][]uuid.UUID
	categories map[uuid.UUID]*models.Category
	tags       map[uuid.UUID]*models.Tag
	comments   map[uuid.UUID]*models.Comment
}

// New returns an empty Memory.
func New() *Memory {
	return &Memory{
		clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users:      make(map[uuid.UUID]*models.User),
		posts:      make(map[uuid.UUID]*models.Post),
		postCats:   make(map[uuid.UUID][]uuid.UUID),
		postTags:   make(map[uuid.UUID][]uuid.UUID),
		categories: make(map[uuid.UUID]*models.Category),
		tags:       make(map[uuid.UUID]*models.Tag),
		comments:   make(map[uuid.UUID]*models.Comment),
	}
}

// now advances the fake clock so every write gets a distinct timestamp.
func (m *Memory) now() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// AddUser creates an active account with the given password.
func (m *Memory) AddUser(username, password string, role models.Role) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("blogtest: hash password: %v", err))
	}
	now := m.now()
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.test",
		PasswordHash: string(hash),
		DisplayName:  username,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	cp := *u
	return &cp
}

// SetActive enables or disables an account.
func (m *Memory) SetActive(id uuid.UUID, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.IsActive = active
	}
}

// Posts returns the post repository.
func (m *Memory) Posts() *Posts { return &Posts{m} }

// Categories returns the category repository.
func (m *Memory) Categories() *Categories { return &Categories{m} }

// Tags returns the tag repository.
func (m *Memory) Tags() *Tags { return &Tags{m} }

// Comments returns the comment repository.
func (m *Memory) Comments() *Comments { return &Comments{m} }

// Users returns the user repository.
func (m *Memory) Users() *Users { return &Users{m} }

// containsFold reports whether s contains substr, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Posts
// ---------------------------------------------------------------------------

// Posts is an in-memory blog.PostRepository.
type Posts struct{ m *Memory }

// materialize copies a stored post and attaches its categories and tags.
// Caller holds the lock.
func (m *Memory) materialize(p *models.Post) models.Post {
	out := *p
	out.Categories = []models.CategoryRef{}
	for _, cid := range m.postCats[p.ID] {
		if c, ok := m.categories[cid]; ok {
			out.Categories = append(out.Categories, models.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug})
		}
	}
	out.Tags = []models.TagRef{}
	for _, tid := range m.postTags[p.ID] {
		if t, ok := m.tags[tid]; ok {
			out.Tags = append(out.Tags, models.TagRef{ID: t.ID, Name: t.Name, Slug: t.Slug})
		}
	}
	return out
}

func (m *Memory) checkLinks(categoryIDs, tagIDs []uuid.UUID) error {
	for _, id := range categoryIDs {
		if _, ok := m.categories[id]; !ok {
			return apperr.DependencyMissing("category not found")
		}
	}
	for _, id := range tagIDs {
		if _, ok := m.tags[id]; !ok {
			return apperr.DependencyMissing("tag not found")
		}
	}
	return nil
}

func (m *Memory) slugTaken(slug string, except uuid.UUID) bool {
	for id, p := range m.posts {
		if p.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// List implements blog.PostRepository.
func (r *Posts) List(_ context.Context, f store.PostFilter) ([]models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var matched []*models.Post
	for _, p := range r.m.posts {
		if f.Search != nil && *f.Search != "" && !containsFold(p.Title, *f.Search) {
			continue
		}
		if f.CategoryID != nil && !containsID(r.m.postCats[p.ID], *f.CategoryID) {
			continue
		}
		if f.Published != nil && p.Published != *f.Published {
			continue
		}
		if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
			continue
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		if f.VisibleTo != nil && !p.Published && p.AuthorID != *f.VisibleTo {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	limit := f.Limit
	if limit <= 0 {
		limit = store.DefaultLimit
	}
	if limit > store.MaxLimit {
		limit = store.MaxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	out := []models.Post{}
	for i := offset; i < len(matched) && len(out) < limit; i++ {
		out = append(out, r.m.materialize(matched[i]))
	}
	return out, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// FindBySlug implements blog.PostRepository.
func (r *Posts) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.posts {
		if p.Slug == slug {
			out := r.m.materialize(p)
			return &out, nil
		}
	}
	return nil, apperr.NotFound("post not found")
}

// FindByID implements blog.PostRepository.
func (r *Posts) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.posts[id]
	if !ok {
		return nil, apperr.NotFound("post not found")
	}
	out := r.m.materialize(p)
	return &out, nil
}

// Create implements blog.PostRepository.
func (r *Posts) Create(_ context.Context, in store.NewPost) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.slugTaken(in.Slug, uuid.Nil) {
		return nil, apperr.Conflict("a post with slug %q already exists", in.Slug)
	}
	if _, ok := r.m.users[in.AuthorID]; !ok {
		return nil, apperr.DependencyMissing("author not found")
	}
	cats, tags := uniqueIDs(in.CategoryIDs), uniqueIDs(in.TagIDs)
	if err := r.m.checkLinks(cats, tags); err != nil {
		return nil, err
	}

	now := r.m.now()
	p := &models.Post{
		ID:        uuid.New(),
		Title:     in.Title,
		Content:   in.Content,
		Excerpt:   nullIfEmpty(in.Excerpt),
		Slug:      in.Slug,
		Published: in.Published,
		Featured:  in.Featured,
		AuthorID:  in.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Published {
		p.PublishedAt = &now
	}
	r.m.posts[p.ID] = p
	r.m.postCats[p.ID] = cats
	r.m.postTags[p.ID] = tags

	out := r.m.materialize(p)
	return &out, nil
}

// Update implements blog.PostRepository. Nothing changes unless every
// check passes.
func (r *Posts) Update(_ context.Context, id uuid.UUID, patch store.PostPatch) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	p, ok := r.m.posts[id]
	if !ok {
		return nil, apperr.NotFound("post not found")
	}
	if patch.Slug != nil && r.m.slugTaken(*patch.Slug, id) {
		return nil, apperr.Conflict("a post with slug %q already exists", *patch.Slug)
	}
	var cats, tags []uuid.UUID
	if patch.CategoryIDs != nil {
		cats = uniqueIDs(*patch.CategoryIDs)
	}
	if patch.TagIDs != nil {
		tags = uniqueIDs(*patch.TagIDs)
	}
	if err := r.m.checkLinks(cats, tags); err != nil {
		return nil, err
	}

	next := *p
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Slug != nil {
		next.Slug = *patch.Slug
	}
	if patch.Content != nil {
		next.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		next.Excerpt = nullIfEmpty(patch.Excerpt)
	}
	if patch.Featured != nil {
		next.Featured = *patch.Featured
	}
	now := r.m.now()
	if patch.Published != nil {
		next.Published = *patch.Published
		if next.Published && next.PublishedAt == nil {
			next.PublishedAt = &now
		}
	}
	next.UpdatedAt = now

	*p = next
	if patch.CategoryIDs != nil {
		r.m.postCats[id] = cats
	}
	if patch.TagIDs != nil {
		r.m.postTags[id] = tags
	}
	out := r.m.materialize(p)
	return &out, nil
}

// Delete implements blog.PostRepository.
func (r *Posts) Delete(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	p, ok := r.m.posts[id]
	if !ok {
		return nil, apperr.NotFound("post not found")
	}
	out := r.m.materialize(p)
	delete(r.m.posts, id)
	delete(r.m.postCats, id)
	delete(r.m.postTags, id)
	for cid, c := range r.m.comments {
		if c.PostID == id {
			delete(r.m.comments, cid)
		}
	}
	return &out, nil
}

// IncrementViews implements blog.PostRepository.
func (r *Posts) IncrementViews(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.posts[id]
	if !ok {
		return apperr.NotFound("post not found")
	}
	p.ViewCount++
	return nil
}

// CategoryLinks returns the category ids linked to a post, in link order.
func (r *Posts) CategoryLinks(id uuid.UUID) []uuid.UUID {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]uuid.UUID{}, r.m.postCats[id]...)
}

// Deps returns blog.Deps backed by m.
func (m *Memory) Deps() blog.Deps {
	return blog.Deps{
		Posts:      m.Posts(),
		Categories: m.Categories(),
		Tags:       m.Tags(),
		Comments:   m.Comments(),
		Users:      m.Users(),
	}
}
