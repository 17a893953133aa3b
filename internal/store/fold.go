// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"github.com/google/uuid"

	"quillpress/internal/models"
)

// postCategoryRow is one row of the post×category join. The category
// columns are NULL for posts without categories.
type postCategoryRow struct {
	models.Post
	CategoryID   *uuid.UUID `db:"category_id"`
	CategoryName *string    `db:"category_name"`
	CategorySlug *string    `db:"category_slug"`
}

// foldPostRows collapses joined rows into one post per id, in order of
// first appearance. Each post lists its distinct categories in row order.
func foldPostRows(rows []postCategoryRow) []models.Post {
	posts := make([]models.Post, 0)
	index := make(map[uuid.UUID]int)
	attached := make(map[uuid.UUID]map[uuid.UUID]struct{})

	for _, r := range rows {
		i, ok := index[r.ID]
		if !ok {
			p := r.Post
			p.Categories = []models.CategoryRef{}
			p.Tags = []models.TagRef{}
			i = len(posts)
			index[p.ID] = i
			attached[p.ID] = make(map[uuid.UUID]struct{})
			posts = append(posts, p)
		}

		if r.CategoryID == nil {
			continue
		}
		if _, dup := attached[r.ID][*r.CategoryID]; dup {
			continue
		}
		attached[r.ID][*r.CategoryID] = struct{}{}
		posts[i].Categories = append(posts[i].Categories, models.CategoryRef{
			ID:   *r.CategoryID,
			Name: deref(r.CategoryName),
			Slug: deref(r.CategorySlug),
		})
	}
	return posts
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
