// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"strings"

	"github.com/google/uuid"
)

// Pagination bounds for post listings.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// PostFilter selects a page of posts. Nil fields do not filter.
type PostFilter struct {
	Search     *string
	CategoryID *uuid.UUID
	Published  *bool
	AuthorID   *uuid.UUID
	Featured   *bool
	// VisibleTo hides drafts not written by this user.
	VisibleTo *uuid.UUID
	Limit     int
	Offset    int
}

// normalized clamps pagination into range. Callers validate first, so
// this only fills in defaults for zero values.
func (f PostFilter) normalized() PostFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into an ILIKE pattern matching it as
// a literal substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// buildPostPageQuery returns the statement selecting one page of post ids,
// newest first, with bindvars in '?' form. The category filter is an
// EXISTS subquery so it narrows posts without narrowing their categories.
func buildPostPageQuery(f PostFilter) (string, []any) {
	f = f.normalized()

	var (
		where []string
		args  []any
	)
	if f.Search != nil && *f.Search != "" {
		where = append(where, `p.title ILIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(*f.Search))
	}
	if f.CategoryID != nil {
		where = append(where, `EXISTS (SELECT 1 FROM post_categories pc WHERE pc.post_id = p.id AND pc.category_id = ?)`)
		args = append(args, *f.CategoryID)
	}
	if f.Published != nil {
		where = append(where, `p.published = ?`)
		args = append(args, *f.Published)
	}
	if f.AuthorID != nil {
		where = append(where, `p.author_id = ?`)
		args = append(args, *f.AuthorID)
	}
	if f.Featured != nil {
		where = append(where, `p.featured = ?`)
		args = append(args, *f.Featured)
	}
	if f.VisibleTo != nil {
		where = append(where, `(p.published = TRUE OR p.author_id = ?)`)
		args = append(args, *f.VisibleTo)
	}

	var b strings.Builder
	b.WriteString(`SELECT p.id FROM posts p`)
	if len(where) > 0 {
		b.WriteString(` WHERE `)
		b.WriteString(strings.Join(where, ` AND `))
	}
	b.WriteString(` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`)
	args = append(args, f.Limit, f.Offset)

	return b.String(), args
}

const postColumns = `p.id, p.title, p.content, p.excerpt, p.slug, p.published, p.featured,
	p.view_count, p.author_id, p.published_at, p.created_at, p.updated_at`

// postRowsQuery returns the post×category join restricted by cond. Rows
// come out in listing order with each post's categories in attach order.
func postRowsQuery(cond string) string {
	return `SELECT ` + postColumns + `,
		c.id AS category_id, c.name AS category_name, c.slug AS category_slug
	FROM posts p
	LEFT JOIN post_categories pc ON pc.post_id = p.id
	LEFT JOIN categories c ON c.id = pc.category_id
	WHERE ` + cond + `
	ORDER BY p.created_at DESC, p.id DESC, pc.created_at, pc.id`
}

const postTagsQuery = `SELECT pt.post_id, t.id, t.name, t.slug
	FROM post_tags pt
	JOIN tags t ON t.id = pt.tag_id
	WHERE pt.post_id IN (?)
	ORDER BY pt.created_at, t.name`
