// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blogtest

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
	"quillpress/internal/store"
)

// Comments is an in-memory blog.CommentRepository.
type Comments struct{ m *Memory }

// ListByPost implements blog.CommentRepository.
func (r *Comments) ListByPost(_ context.Context, postID uuid.UUID) ([]models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var flat []models.Comment
	for _, c := range r.m.comments {
		if c.PostID == postID {
			flat = append(flat, *c)
		}
	}
	sort.Slice(flat, func(i, j int) bool {
		if !flat[i].CreatedAt.Equal(flat[j].CreatedAt) {
			return flat[i].CreatedAt.Before(flat[j].CreatedAt)
		}
		return flat[i].ID.String() < flat[j].ID.String()
	})
	return store.BuildCommentTree(flat), nil
}

// FindByID implements blog.CommentRepository.
func (r *Comments) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.comments[id]
	if !ok {
		return nil, apperr.NotFound("comment not found")
	}
	out := *c
	return &out, nil
}

// Create implements blog.CommentRepository.
func (r *Comments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.posts[c.PostID]; !ok {
		return nil, apperr.DependencyMissing("post not found")
	}
	if _, ok := r.m.users[c.AuthorID]; !ok {
		return nil, apperr.DependencyMissing("author not found")
	}
	if c.ParentID != nil {
		if _, ok := r.m.comments[*c.ParentID]; !ok {
			return nil, apperr.DependencyMissing("parent comment not found")
		}
	}
	stored := *c
	stored.ID = uuid.New()
	now := r.m.now()
	stored.CreatedAt, stored.UpdatedAt = now, now
	stored.Replies = nil
	r.m.comments[stored.ID] = &stored
	out := stored
	return &out, nil
}

// Delete implements blog.CommentRepository. Replies go with their parent.
func (r *Comments) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.comments[id]; !ok {
		return apperr.NotFound("comment not found")
	}
	r.m.deleteComment(id)
	return nil
}

func (m *Memory) deleteComment(id uuid.UUID) {
	delete(m.comments, id)
	for cid, c := range m.comments {
		if c.ParentID != nil && *c.ParentID == id {
			m.deleteComment(cid)
		}
	}
}

// Users is an in-memory blog.UserRepository.
type Users struct{ m *Memory }

func (r *Users) find(match func(*models.User) bool) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

// FindByID implements blog.UserRepository.
func (r *Users) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

// FindByEmail implements blog.UserRepository.
func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

// FindByUsername implements blog.UserRepository.
func (r *Users) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

// CheckPassword implements blog.UserRepository.
func (r *Users) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
