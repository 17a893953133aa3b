// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
)

// TagStore manages tags.
type TagStore struct {
	db *sqlx.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

const tagColumns = `id, name, slug, created_at`

// List returns tags ordered by name. A non-empty search matches names
// case-insensitively.
func (s *TagStore) List(ctx context.Context, search string) ([]models.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags`
	var args []any
	if search != "" {
		query += ` WHERE name ILIKE $1 ESCAPE '\'`
		args = append(args, containsPattern(search))
	}
	query += ` ORDER BY name`

	tags := []models.Tag{}
	if err := s.db.SelectContext(ctx, &tags, query, args...); err != nil {
		return nil, apperr.Infrastructure("failed to fetch tags", fmt.Errorf("list tags: %w", err))
	}
	return tags, nil
}

// FindBySlug retrieves a tag by slug.
func (s *TagStore) FindBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.GetContext(ctx, &t, `SELECT `+tagColumns+` FROM tags WHERE slug = $1`, slug)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("tag %q not found", slug)
	}
	if err != nil {
		return nil, apperr.Infrastructure("failed to fetch tag", fmt.Errorf("find tag by slug: %w", err))
	}
	return &t, nil
}

// Create inserts a tag.
func (s *TagStore) Create(ctx context.Context, name, slug string) (*models.Tag, error) {
	var t models.Tag
	err := s.db.GetContext(ctx, &t, `
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		RETURNING `+tagColumns, name, slug)
	if err != nil {
		return nil, apperr.FromDB(fmt.Errorf("create tag: %w", err), "failed to create tag", apperr.ConstraintMessages{
			"tags_name_key": fmt.Sprintf("a tag named %q already exists", name),
			"tags_slug_key": fmt.Sprintf("a tag with slug %q already exists", slug),
		})
	}
	return &t, nil
}

// Delete removes a tag. Its post links cascade.
func (s *TagStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return apperr.Infrastructure("failed to delete tag", fmt.Errorf("delete tag: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Infrastructure("failed to delete tag", err)
	}
	if n == 0 {
		return apperr.NotFound("tag not found")
	}
	return nil
}
