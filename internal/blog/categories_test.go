// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quillpress/internal/apperr"
	"quillpress/internal/blog"
	"quillpress/internal/events"
	"quillpress/internal/store"
)

func TestCreateCategoryRequiresModerator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateCategory(ctx, nil, blog.CreateCategoryInput{Name: "Tech"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = f.svc.CreateCategory(ctx, f.author, blog.CreateCategoryInput{Name: "Tech"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCreateCategorySortOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.category(t, "First")
	second := f.category(t, "Second")
	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)

	child, err := f.svc.CreateCategory(ctx, f.editor, blog.CreateCategoryInput{Name: "Child", ParentID: &first.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, child.SortOrder, "sort order counts siblings only")

	pinned, err := f.svc.CreateCategory(ctx, f.editor, blog.CreateCategoryInput{Name: "Pinned", SortOrder: ptr(7)})
	require.NoError(t, err)
	assert.Equal(t, 7, pinned.SortOrder)

	_, err = f.svc.CreateCategory(ctx, f.editor, blog.CreateCategoryInput{Name: "first"})
	assert.ErrorIs(t, err, apperr.ErrConflict, "slug collides with First")
}

func TestUpdateCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	parent := f.category(t, "Parent")
	c, err := f.svc.CreateCategory(ctx, f.editor, blog.CreateCategoryInput{
		Name:        "Golang",
		Description: ptr("All about Go"),
		ParentID:    &parent.ID,
	})
	require.NoError(t, err)

	t.Run("rename regenerates slug and keeps parent", func(t *testing.T) {
		got, err := f.svc.UpdateCategory(ctx, f.editor, c.ID, blog.UpdateCategoryInput{Name: ptr("Go Language")})
		require.NoError(t, err)
		assert.Equal(t, "go-language", got.Slug)
		require.NotNil(t, got.ParentID)
		assert.Equal(t, parent.ID, *got.ParentID)

		e := f.events.last(t)
		assert.Equal(t, events.CategoryUpdated, e.Type)
		assert.ElementsMatch(t, []string{"go-language", "golang"}, e.Slugs)
	})

	t.Run("empty description clears it", func(t *testing.T) {
		got, err := f.svc.UpdateCategory(ctx, f.editor, c.ID, blog.UpdateCategoryInput{Description: ptr("")})
		require.NoError(t, err)
		assert.Nil(t, got.Description)
	})

	t.Run("null parent moves to root", func(t *testing.T) {
		var in blog.UpdateCategoryInput
		require.NoError(t, json.Unmarshal([]byte(`{"parent_id": null}`), &in))
		got, err := f.svc.UpdateCategory(ctx, f.editor, c.ID, in)
		require.NoError(t, err)
		assert.Nil(t, got.ParentID)
	})

	t.Run("own parent", func(t *testing.T) {
		_, err := f.svc.UpdateCategory(ctx, f.editor, c.ID, blog.UpdateCategoryInput{
			ParentID: blog.Nullable[uuid.UUID]{Set: true, Value: &c.ID},
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := f.svc.UpdateCategory(ctx, f.editor, uuid.New(), blog.UpdateCategoryInput{Name: ptr("Nope")})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestUpdateCategoryRejectsCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.category(t, "A")
	b, err := f.svc.CreateCategory(ctx, f.editor, blog.CreateCategoryInput{Name: "B", ParentID: &a.ID})
	require.NoError(t, err)

	_, err = f.svc.UpdateCategory(ctx, f.editor, a.ID, blog.UpdateCategoryInput{
		ParentID: blog.Nullable[uuid.UUID]{Set: true, Value: &b.ID},
	})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "parent_id")
}

func TestNullableDistinguishesAbsentFromNull(t *testing.T) {
	var absent, null, set blog.UpdateCategoryInput
	id := uuid.New()

	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"parent_id": null}`), &null))
	require.NoError(t, json.Unmarshal([]byte(`{"parent_id": "`+id.String()+`"}`), &set))

	assert.False(t, absent.ParentID.Set)
	assert.True(t, null.ParentID.Set)
	assert.Nil(t, null.ParentID.Value)
	assert.True(t, set.ParentID.Set)
	require.NotNil(t, set.ParentID.Value)
	assert.Equal(t, id, *set.ParentID.Value)
}

func TestCategoryTreeAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := f.category(t, "Root")
	child, err := f.svc.CreateCategory(ctx, f.editor, blog.CreateCategoryInput{Name: "Child", ParentID: &root.ID})
	require.NoError(t, err)
	p := f.post(t, f.author, "Tagged Post", true, root.ID, child.ID)

	tree, err := f.svc.CategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "child", tree[0].Children[0].Slug)
	assert.Equal(t, 1, tree[0].Children[0].Depth)

	err = f.svc.DeleteCategory(ctx, f.author, root.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, f.svc.DeleteCategory(ctx, f.editor, root.ID))
	assert.Equal(t, events.CategoryDeleted, f.events.last(t).Type)

	got, err := f.svc.GetCategory(ctx, "child")
	require.NoError(t, err)
	assert.Nil(t, got.ParentID, "children move to the root")

	post, err := f.svc.GetPostBySlug(ctx, nil, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{child.ID}, post.CategoryIDs())

	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, f.editor, root.ID), apperr.ErrNotFound)
}

func TestListCategoriesSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.category(t, "Golang")
	f.category(t, "Rust")

	got, err := f.svc.ListCategories(ctx, "GO")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Golang", got[0].Name)

	all, err := f.svc.ListCategories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReorderCategories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, b := f.category(t, "A"), f.category(t, "B")

	err := f.svc.ReorderCategories(ctx, f.author, []store.ReorderItem{{ID: a.ID, Order: 1}})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = f.svc.ReorderCategories(ctx, f.editor, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = f.svc.ReorderCategories(ctx, f.editor, []store.ReorderItem{{ID: a.ID, Order: -1}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = f.svc.ReorderCategories(ctx, f.editor, []store.ReorderItem{
		{ID: a.ID, ParentID: &b.ID, Order: 0},
		{ID: b.ID, ParentID: &a.ID, Order: 0},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation, "swapping parents creates a cycle")

	require.NoError(t, f.svc.ReorderCategories(ctx, f.editor, []store.ReorderItem{
		{ID: b.ID, Order: 0},
		{ID: a.ID, ParentID: &b.ID, Order: 3},
	}))
	got, err := f.svc.GetCategory(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, b.ID, *got.ParentID)
	assert.Equal(t, 3, got.SortOrder)
}
