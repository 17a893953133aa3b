// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
)

// PostStore manages posts and their category and tag links.
type PostStore struct {
	db *sqlx.DB
}

// NewPostStore returns a new PostStore.
func NewPostStore(db *sqlx.DB) *PostStore {
	return &PostStore{db: db}
}

// NewPost holds the fields of a post to insert. Slug is derived by the
// caller. An empty excerpt is stored as NULL, here and in PostPatch.
type NewPost struct {
	Title       string
	Content     string
	Excerpt     *string
	Slug        string
	Published   bool
	Featured    bool
	AuthorID    uuid.UUID
	CategoryIDs []uuid.UUID
	TagIDs      []uuid.UUID
}

// PostPatch holds a partial post update. Nil fields are left unchanged; a
// non-nil CategoryIDs or TagIDs, even an empty one, replaces all links.
type PostPatch struct {
	Title       *string
	Slug        *string
	Content     *string
	Excerpt     *string
	Published   *bool
	Featured    *bool
	CategoryIDs *[]uuid.UUID
	TagIDs      *[]uuid.UUID
}

func postErr(err error, slug, fallback string) error {
	return apperr.FromDB(err, fallback, apperr.ConstraintMessages{
		"posts_slug_key":                          fmt.Sprintf("a post with slug %q already exists", slug),
		"posts_author_id_fkey":                    "author not found",
		"posts_title_check":                       "title must be at least 3 characters",
		"post_categories_category_id_fkey":        "category not found",
		"post_categories_post_id_category_id_key": "category listed more than once",
		"post_tags_tag_id_fkey":                   "tag not found",
	})
}

// List returns one page of posts matching f, newest first. The page is
// selected by post id before categories are joined, so Limit counts posts.
func (s *PostStore) List(ctx context.Context, f PostFilter) ([]models.Post, error) {
	query, args := buildPostPageQuery(f)

	var ids []uuid.UUID
	if err := s.db.SelectContext(ctx, &ids, s.db.Rebind(query), args...); err != nil {
		return nil, apperr.Infrastructure("failed to fetch posts", fmt.Errorf("list post ids: %w", err))
	}
	if len(ids) == 0 {
		return []models.Post{}, nil
	}

	posts, err := loadPosts(ctx, s.db, ids)
	if err != nil {
		return nil, apperr.Infrastructure("failed to fetch posts", err)
	}
	return posts, nil
}

// FindBySlug returns the post with the given slug.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return findPost(ctx, s.db, "p.slug = ?", slug)
}

// FindByID returns the post with the given id.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return findPost(ctx, s.db, "p.id = ?", id)
}

// Create inserts a post with its category and tag links and recounts the
// linked categories, all in one transaction.
func (s *PostStore) Create(ctx context.Context, in NewPost) (*models.Post, error) {
	var publishedAt *time.Time
	if in.Published {
		now := time.Now().UTC()
		publishedAt = &now
	}

	var post *models.Post
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var id uuid.UUID
		err := tx.GetContext(ctx, &id, `
			INSERT INTO posts (title, content, excerpt, slug, published, featured, author_id, published_at)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
			RETURNING id`,
			in.Title, in.Content, in.Excerpt, in.Slug, in.Published, in.Featured, in.AuthorID, publishedAt,
		)
		if err != nil {
			return fmt.Errorf("insert post: %w", err)
		}

		categoryIDs := uniqueIDs(in.CategoryIDs)
		if err := insertPostCategories(ctx, tx, id, categoryIDs); err != nil {
			return err
		}
		if err := recountCategories(ctx, tx, categoryIDs); err != nil {
			return err
		}
		if err := insertPostTags(ctx, tx, id, uniqueIDs(in.TagIDs)); err != nil {
			return err
		}

		post, err = findPost(ctx, tx, "p.id = ?", id)
		return err
	})
	if err != nil {
		return nil, postErr(err, in.Slug, "failed to create post")
	}
	return post, nil
}

// Update applies patch to the post with the given id. Category links are
// replaced with delete-then-insert and both the old and new categories are
// recounted inside the same transaction.
func (s *PostStore) Update(ctx context.Context, id uuid.UUID, patch PostPatch) (*models.Post, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Slug != nil {
		sets = append(sets, "slug = ?")
		args = append(args, *patch.Slug)
	}
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.Excerpt != nil {
		sets = append(sets, "excerpt = NULLIF(?, '')")
		args = append(args, *patch.Excerpt)
	}
	if patch.Featured != nil {
		sets = append(sets, "featured = ?")
		args = append(args, *patch.Featured)
	}
	if patch.Published != nil {
		sets = append(sets, "published = ?")
		args = append(args, *patch.Published)
		if *patch.Published {
			sets = append(sets, "published_at = COALESCE(published_at, ?)")
			args = append(args, time.Now().UTC())
		}
	}
	args = append(args, id)
	update := `UPDATE posts SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`

	var post *models.Post
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(update), args...)
		if err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update post rows: %w", err)
		} else if n == 0 {
			return apperr.NotFound("post not found")
		}

		if patch.CategoryIDs != nil {
			if err := replacePostCategories(ctx, tx, id, *patch.CategoryIDs); err != nil {
				return err
			}
		}
		if patch.TagIDs != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, id); err != nil {
				return fmt.Errorf("clear post tags: %w", err)
			}
			if err := insertPostTags(ctx, tx, id, uniqueIDs(*patch.TagIDs)); err != nil {
				return err
			}
		}

		post, err = findPost(ctx, tx, "p.id = ?", id)
		return err
	})
	if err != nil {
		slug := ""
		if patch.Slug != nil {
			slug = *patch.Slug
		}
		return nil, postErr(err, slug, "failed to update post")
	}
	return post, nil
}

// Delete removes the post and returns it as it was. Its junction rows
// cascade and the categories it was filed under are recounted.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post *models.Post
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var locked uuid.UUID
		if err := tx.GetContext(ctx, &locked, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, id); err != nil {
			return apperr.FromDB(err, "failed to delete post", nil)
		}

		var err error
		post, err = findPost(ctx, tx, "p.id = ?", id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return recountCategories(ctx, tx, post.CategoryIDs())
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.NotFound("post not found")
		}
		return nil, postErr(err, "", "failed to delete post")
	}
	return post, nil
}

// IncrementViews bumps the view counter of a post by one.
func (s *PostStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return apperr.Infrastructure("failed to record view", fmt.Errorf("increment views: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Infrastructure("failed to record view", err)
	}
	if n == 0 {
		return apperr.NotFound("post not found")
	}
	return nil
}

// findPost loads a single post matching cond.
func findPost(ctx context.Context, q sqlx.ExtContext, cond string, arg any) (*models.Post, error) {
	var rows []postCategoryRow
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(postRowsQuery(cond)), arg); err != nil {
		return nil, apperr.Infrastructure("failed to fetch post", fmt.Errorf("select post: %w", err))
	}
	posts := foldPostRows(rows)
	if len(posts) == 0 {
		return nil, apperr.NotFound("post not found")
	}
	if err := attachTags(ctx, q, posts); err != nil {
		return nil, apperr.Infrastructure("failed to fetch post", err)
	}
	return &posts[0], nil
}

// loadPosts fetches the given posts with their categories and tags, in
// listing order.
func loadPosts(ctx context.Context, q sqlx.ExtContext, ids []uuid.UUID) ([]models.Post, error) {
	query, args, err := sqlx.In(postRowsQuery("p.id IN (?)"), ids)
	if err != nil {
		return nil, fmt.Errorf("expand post ids: %w", err)
	}

	var rows []postCategoryRow
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	posts := foldPostRows(rows)
	if err := attachTags(ctx, q, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

type postTagRow struct {
	PostID uuid.UUID `db:"post_id"`
	models.TagRef
}

// attachTags fills in the Tags of each post with one query.
func attachTags(ctx context.Context, q sqlx.ExtContext, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(posts))
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		index[p.ID] = i
		ids[i] = p.ID
	}

	query, args, err := sqlx.In(postTagsQuery, ids)
	if err != nil {
		return fmt.Errorf("expand tag post ids: %w", err)
	}
	var rows []postTagRow
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return fmt.Errorf("select post tags: %w", err)
	}
	for _, r := range rows {
		if i, ok := index[r.PostID]; ok {
			posts[i].Tags = append(posts[i].Tags, r.TagRef)
		}
	}
	return nil
}

func insertPostCategories(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID, categoryIDs []uuid.UUID) error {
	for _, cid := range categoryIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)`, postID, cid,
		); err != nil {
			return fmt.Errorf("link category %s: %w", cid, err)
		}
	}
	return nil
}

// replacePostCategories swaps the post's category links for categoryIDs
// and recounts every category that was or now is linked.
func replacePostCategories(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID, categoryIDs []uuid.UUID) error {
	var previous []uuid.UUID
	if err := tx.SelectContext(ctx, &previous,
		`SELECT category_id FROM post_categories WHERE post_id = $1`, postID,
	); err != nil {
		return fmt.Errorf("select post categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post categories: %w", err)
	}

	next := uniqueIDs(categoryIDs)
	if err := insertPostCategories(ctx, tx, postID, next); err != nil {
		return err
	}
	return recountCategories(ctx, tx, unionIDs(previous, next))
}

func insertPostTags(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID, tagIDs []uuid.UUID) error {
	for _, tid := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`, postID, tid,
		); err != nil {
			return fmt.Errorf("link tag %s: %w", tid, err)
		}
	}
	return nil
}

// recountCategories sets post_count of each category from the junction
// table.
func recountCategories(ctx context.Context, tx *sqlx.Tx, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`
		UPDATE categories c
		SET post_count = (SELECT COUNT(*) FROM post_categories pc WHERE pc.category_id = c.id)
		WHERE c.id IN (?)`, categoryIDs)
	if err != nil {
		return fmt.Errorf("expand category ids: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("recount categories: %w", err)
	}
	return nil
}
