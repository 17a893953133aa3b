// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
)

// maxCategoryDepth bounds how many levels a category tree may nest.
const maxCategoryDepth = 8

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sqlx.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sqlx.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, sort_order, post_count, created_at, updated_at`

func categoryErr(err error, c *models.Category, fallback string) error {
	return apperr.FromDB(err, fallback, apperr.ConstraintMessages{
		"categories_name_key":        fmt.Sprintf("a category named %q already exists", c.Name),
		"categories_slug_key":        fmt.Sprintf("a category with slug %q already exists", c.Slug),
		"categories_parent_id_fkey":  "parent category not found",
		"categories_parent_id_check": "a category cannot be its own parent",
	})
}

// List returns categories ordered by sort_order then name, with their
// post counts. A non-empty search matches names case-insensitively.
func (s *CategoryStore) List(ctx context.Context, search string) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []any
	if search != "" {
		query += ` WHERE name ILIKE $1 ESCAPE '\'`
		args = append(args, containsPattern(search))
	}
	query += ` ORDER BY sort_order, name`

	items := []models.Category{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, apperr.Infrastructure("failed to fetch categories", fmt.Errorf("list categories: %w", err))
	}
	return items, nil
}

// Tree returns categories as a nested tree structure.
func (s *CategoryStore) Tree(ctx context.Context) ([]models.Category, error) {
	flat, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	tree := BuildTree(flat, nil, 0)
	if tree == nil {
		tree = []models.Category{}
	}
	return tree, nil
}

// BuildTree recursively builds a tree from a flat list. Parent links are
// kept acyclic on write, so the recursion terminates.
func BuildTree(flat []models.Category, parentID *uuid.UUID, depth int) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if ptrEqual(c.ParentID, parentID) {
			c.Depth = depth
			c.Children = BuildTree(flat, &c.ID, depth+1)
			result = append(result, c)
		}
	}
	return result
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// FindByID retrieves a category by ID.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	err := s.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("category not found")
	}
	if err != nil {
		return nil, apperr.Infrastructure("failed to fetch category", fmt.Errorf("find category by id: %w", err))
	}
	return &c, nil
}

// FindBySlug retrieves a category by slug.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := s.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("category %q not found", slug)
	}
	if err != nil {
		return nil, apperr.Infrastructure("failed to fetch category", fmt.Errorf("find category by slug: %w", err))
	}
	return &c, nil
}

// Create inserts a new category and returns it. The parent chain is
// checked inside the transaction.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	var result models.Category
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := checkParent(ctx, tx, uuid.Nil, c.ParentID); err != nil {
			return err
		}
		return tx.GetContext(ctx, &result, `
			INSERT INTO categories (name, slug, description, parent_id, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+categoryColumns,
			c.Name, c.Slug, c.Description, c.ParentID, c.SortOrder,
		)
	})
	if err != nil {
		return nil, categoryErr(err, c, "failed to create category")
	}
	return &result, nil
}

// Update modifies an existing category and returns the stored row.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	var result models.Category
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := checkParent(ctx, tx, c.ID, c.ParentID); err != nil {
			return err
		}
		err := tx.GetContext(ctx, &result, `
			UPDATE categories SET
				name = $1, slug = $2, description = $3, parent_id = $4,
				sort_order = $5, updated_at = NOW()
			WHERE id = $6
			RETURNING `+categoryColumns,
			c.Name, c.Slug, c.Description, c.ParentID, c.SortOrder, c.ID,
		)
		if err == sql.ErrNoRows {
			return apperr.NotFound("category not found")
		}
		return err
	})
	if err != nil {
		return nil, categoryErr(err, c, "failed to update category")
	}
	return &result, nil
}

// Delete removes a category by ID. Its post links cascade and its
// children are re-parented to the root (ON DELETE SET NULL).
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return apperr.Infrastructure("failed to delete category", fmt.Errorf("delete category: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Infrastructure("failed to delete category", err)
	}
	if n == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}

// ReorderItem represents a single item in a reorder request.
type ReorderItem struct {
	ID       uuid.UUID  `json:"id" validate:"required"`
	ParentID *uuid.UUID `json:"parent_id"`
	Order    int        `json:"order" validate:"gte=0"`
}

// Reorder updates sort_order and parent_id for multiple categories in a
// transaction. The resulting hierarchy is checked before any row changes.
func (s *CategoryStore) Reorder(ctx context.Context, items []ReorderItem) error {
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		parents, err := loadParents(ctx, tx)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, ok := parents[item.ID]; !ok {
				return apperr.NotFound("category %s not found", item.ID)
			}
			parents[item.ID] = item.ParentID
		}
		for _, item := range items {
			if err := CheckParentChain(parents, item.ID, item.ParentID); err != nil {
				return err
			}
		}

		stmt, err := tx.PreparexContext(ctx, `
			UPDATE categories SET parent_id = $1, sort_order = $2, updated_at = $3
			WHERE id = $4`)
		if err != nil {
			return fmt.Errorf("prepare reorder: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, item := range items {
			if _, err := stmt.ExecContext(ctx, item.ParentID, item.Order, now, item.ID); err != nil {
				return fmt.Errorf("reorder category %s: %w", item.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return apperr.FromDB(err, "failed to reorder categories", nil)
	}
	return nil
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CategoryStore) NextSortOrder(ctx context.Context, parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.GetContext(ctx, &maxOrder, `SELECT MAX(sort_order) FROM categories WHERE parent_id IS NULL`)
	} else {
		err = s.db.GetContext(ctx, &maxOrder, `SELECT MAX(sort_order) FROM categories WHERE parent_id = $1`, *parentID)
	}
	if err != nil {
		return 0, apperr.Infrastructure("failed to fetch categories", fmt.Errorf("next sort order: %w", err))
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}

type categoryParent struct {
	ID       uuid.UUID  `db:"id"`
	ParentID *uuid.UUID `db:"parent_id"`
}

// loadParents returns every category's parent link. Rows are locked so
// concurrent re-parenting cannot race the cycle check.
func loadParents(ctx context.Context, tx *sqlx.Tx) (map[uuid.UUID]*uuid.UUID, error) {
	var rows []categoryParent
	if err := tx.SelectContext(ctx, &rows, `SELECT id, parent_id FROM categories FOR UPDATE`); err != nil {
		return nil, fmt.Errorf("load category parents: %w", err)
	}
	parents := make(map[uuid.UUID]*uuid.UUID, len(rows))
	for _, r := range rows {
		parents[r.ID] = r.ParentID
	}
	return parents, nil
}

func checkParent(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	parents, err := loadParents(ctx, tx)
	if err != nil {
		return err
	}
	if id != uuid.Nil {
		if _, ok := parents[id]; !ok {
			return apperr.NotFound("category not found")
		}
	}
	return CheckParentChain(parents, id, parentID)
}

// CheckParentChain reports whether giving category id the parent parentID
// keeps the hierarchy acyclic and at most maxCategoryDepth levels deep,
// counting the subtree already hanging below id. A new category passes
// uuid.Nil as id.
func CheckParentChain(parents map[uuid.UUID]*uuid.UUID, id uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return apperr.Field("parent_id", "a category cannot be its own parent")
	}
	if _, ok := parents[*parentID]; !ok {
		return apperr.Field("parent_id", "parent category not found")
	}

	ancestors := 0
	for cur := parentID; cur != nil; cur = parents[*cur] {
		if *cur == id {
			return apperr.Field("parent_id", "parent would create a cycle")
		}
		ancestors++
		if ancestors >= maxCategoryDepth {
			return apperr.Field("parent_id", fmt.Sprintf("categories cannot nest more than %d levels", maxCategoryDepth))
		}
	}

	below := 0
	if id != uuid.Nil {
		below = subtreeHeight(parents, id)
	}
	if ancestors+1+below > maxCategoryDepth {
		return apperr.Field("parent_id", fmt.Sprintf("categories cannot nest more than %d levels", maxCategoryDepth))
	}
	return nil
}

// subtreeHeight returns how many levels of descendants id has. The walk
// stops at maxCategoryDepth so corrupt data cannot loop it.
func subtreeHeight(parents map[uuid.UUID]*uuid.UUID, id uuid.UUID) int {
	children := make(map[uuid.UUID][]uuid.UUID)
	for child, parent := range parents {
		if parent != nil {
			children[*parent] = append(children[*parent], child)
		}
	}

	height := 0
	level := []uuid.UUID{id}
	for len(level) > 0 && height <= maxCategoryDepth {
		var next []uuid.UUID
		for _, n := range level {
			next = append(next, children[n]...)
		}
		if len(next) == 0 {
			break
		}
		height++
		level = next
	}
	return height
}
