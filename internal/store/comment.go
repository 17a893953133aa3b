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

// CommentStore manages post comments.
type CommentStore struct {
	db *sqlx.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sqlx.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, post_id, author_id, parent_id, content, created_at, updated_at`

var commentConstraints = apperr.ConstraintMessages{
	"comments_post_id_fkey":   "post not found",
	"comments_author_id_fkey": "author not found",
	"comments_parent_id_fkey": "parent comment not found",
	"comments_content_check":  "content must be between 1 and 2000 characters",
}

// ListByPost returns the comments of a post as a thread: top-level
// comments oldest first, each with its replies nested.
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	var flat []models.Comment
	err := s.db.SelectContext(ctx, &flat, `
		SELECT `+commentColumns+` FROM comments
		WHERE post_id = $1
		ORDER BY created_at, id`, postID)
	if err != nil {
		return nil, apperr.Infrastructure("failed to fetch comments", fmt.Errorf("list comments: %w", err))
	}
	return BuildCommentTree(flat), nil
}

// BuildCommentTree nests replies under their parents, keeping the input
// order at every level. Comments whose parent is missing from flat are
// treated as top-level.
func BuildCommentTree(flat []models.Comment) []models.Comment {
	present := make(map[uuid.UUID]bool, len(flat))
	for _, c := range flat {
		present[c.ID] = true
	}
	children := make(map[uuid.UUID][]models.Comment)
	roots := []models.Comment{}
	for _, c := range flat {
		if c.ParentID != nil && present[*c.ParentID] {
			children[*c.ParentID] = append(children[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	var attach func(cs []models.Comment) []models.Comment
	attach = func(cs []models.Comment) []models.Comment {
		for i := range cs {
			if replies, ok := children[cs[i].ID]; ok {
				delete(children, cs[i].ID)
				cs[i].Replies = attach(replies)
			}
		}
		return cs
	}
	return attach(roots)
}

// FindByID retrieves a single comment without its replies.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	err := s.db.GetContext(ctx, &c, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("comment not found")
	}
	if err != nil {
		return nil, apperr.Infrastructure("failed to fetch comment", fmt.Errorf("find comment: %w", err))
	}
	return &c, nil
}

// Create inserts a comment and returns it.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	var result models.Comment
	err := s.db.GetContext(ctx, &result, `
		INSERT INTO comments (post_id, author_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+commentColumns,
		c.PostID, c.AuthorID, c.ParentID, c.Content,
	)
	if err != nil {
		return nil, apperr.FromDB(fmt.Errorf("create comment: %w", err), "failed to create comment", commentConstraints)
	}
	return &result, nil
}

// Delete removes a comment and, by cascade, its replies.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return apperr.Infrastructure("failed to delete comment", fmt.Errorf("delete comment: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Infrastructure("failed to delete comment", err)
	}
	if n == 0 {
		return apperr.NotFound("comment not found")
	}
	return nil
}

