// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog post together with the categories and tags attached to
// it. Categories are listed in the order they were attached.
type Post struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Content     string     `json:"content" db:"content"`
	Excerpt     *string    `json:"excerpt,omitempty" db:"excerpt"`
	Slug        string     `json:"slug" db:"slug"`
	Published   bool       `json:"published" db:"published"`
	Featured    bool       `json:"featured" db:"featured"`
	ViewCount   int64      `json:"view_count" db:"view_count"`
	AuthorID    uuid.UUID  `json:"author_id" db:"author_id"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	Categories []CategoryRef `json:"categories" db:"-"`
	Tags       []TagRef      `json:"tags" db:"-"`

	// ContentHTML is the sanitized rendering of Content, filled in for
	// single-post reads only.
	ContentHTML string `json:"content_html,omitempty" db:"-"`
}

// CategoryIDs returns the ids of the post's categories in order.
func (p *Post) CategoryIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}
	return ids
}
