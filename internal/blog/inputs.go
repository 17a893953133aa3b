// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Nullable distinguishes a JSON field that is absent (Set false) from one
// that is explicitly null (Set true, Value nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler. It only runs for keys present
// in the input.
func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// ListPostsInput filters a post listing. Nil fields do not filter.
type ListPostsInput struct {
	Search     *string    `json:"search" validate:"omitempty,max=200"`
	CategoryID *uuid.UUID `json:"category_id"`
	Published  *bool      `json:"published"`
	AuthorID   *uuid.UUID `json:"author_id"`
	Featured   *bool      `json:"featured"`
	Limit      *int       `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset     *int       `json:"offset" validate:"omitempty,min=0"`
}

// CreatePostInput is the body of a post creation request.
type CreatePostInput struct {
	Title       string      `json:"title" validate:"required,notblank,min=3,max=300"`
	Content     string      `json:"content" validate:"required,notblank,max=100000"`
	Excerpt     *string     `json:"excerpt" validate:"omitempty,max=1000"`
	Published   *bool       `json:"published"`
	Featured    *bool       `json:"featured"`
	CategoryIDs []uuid.UUID `json:"category_ids" validate:"omitempty,max=20,unique"`
	TagIDs      []uuid.UUID `json:"tag_ids" validate:"omitempty,max=20,unique"`
}

// UpdatePostInput is a partial post update. A present category_ids or
// tag_ids, even an empty list, replaces the existing links.
type UpdatePostInput struct {
	Title       *string      `json:"title" validate:"omitempty,notblank,min=3,max=300"`
	Content     *string      `json:"content" validate:"omitempty,notblank,max=100000"`
	Excerpt     *string      `json:"excerpt" validate:"omitempty,max=1000"`
	Published   *bool        `json:"published"`
	Featured    *bool        `json:"featured"`
	CategoryIDs *[]uuid.UUID `json:"category_ids" validate:"omitempty,max=20,unique"`
	TagIDs      *[]uuid.UUID `json:"tag_ids" validate:"omitempty,max=20,unique"`
}

// CreateCategoryInput is the body of a category creation request.
type CreateCategoryInput struct {
	Name        string     `json:"name" validate:"required,notblank,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   *int       `json:"sort_order" validate:"omitempty,min=0"`
}

// UpdateCategoryInput is a partial category update. A null parent_id moves
// the category to the root.
type UpdateCategoryInput struct {
	Name        *string             `json:"name" validate:"omitempty,notblank,max=100"`
	Description *string             `json:"description" validate:"omitempty,max=1000"`
	ParentID    Nullable[uuid.UUID] `json:"parent_id"`
	SortOrder   *int                `json:"sort_order" validate:"omitempty,min=0"`
}

// CreateTagInput is the body of a tag creation request.
type CreateTagInput struct {
	Name string `json:"name" validate:"required,notblank,max=50"`
}

// CreateCommentInput is the body of a comment creation request.
type CreateCommentInput struct {
	Content  string     `json:"content" validate:"required,notblank,max=2000"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// LoginInput is the body of a login request. Login is a username or an
// email address.
type LoginInput struct {
	Login    string `json:"login" validate:"required,notblank,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}
