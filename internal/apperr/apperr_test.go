// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsByKind(t *testing.T) {
	err := NotFound("post %q not found", "hello")
	wrapped := fmt.Errorf("get post: %w", err)

	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrConflict)
	assert.Equal(t, `post "hello" not found`, err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"classified", Conflict("dup"), KindConflict},
		{"wrapped classified", fmt.Errorf("ctx: %w", Forbidden("no")), KindForbidden},
		{"plain error", errors.New("boom"), KindInfrastructure},
		{"validation", Field("title", "required"), KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestFromDB(t *testing.T) {
	msgs := ConstraintMessages{
		"posts_slug_key":      "a post with this slug already exists",
		"posts_author_id_fkey": "author not found",
	}

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, FromDB(nil, "x", msgs))
	})

	t.Run("unique violation becomes conflict", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "posts_slug_key"}
		err := FromDB(fmt.Errorf("insert: %w", pgErr), "failed to create post", msgs)

		var ae *Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, KindConflict, ae.Kind)
		assert.Equal(t, "a post with this slug already exists", ae.Message)
		assert.ErrorIs(t, err, pgErr)
	})

	t.Run("foreign key violation becomes dependency missing", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "posts_author_id_fkey"}
		err := FromDB(pgErr, "failed to create post", msgs)
		assert.Equal(t, KindDependencyMissing, KindOf(err))
		assert.Contains(t, err.Error(), "author not found")
	})

	t.Run("unknown constraint gets generic message", func(t *testing.T) {
		err := FromDB(&pgconn.PgError{Code: "23505", ConstraintName: "other"}, "f", msgs)
		var ae *Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "resource already exists", ae.Message)
	})

	t.Run("check violation names the column", func(t *testing.T) {
		err := FromDB(&pgconn.PgError{Code: "23514", ConstraintName: "posts_view_count_check"}, "f", nil)
		var ae *Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, KindValidation, ae.Kind)
		assert.Contains(t, ae.Fields, "view_count")
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		assert.ErrorIs(t, FromDB(sql.ErrNoRows, "f", nil), ErrNotFound)
	})

	t.Run("other errors become infrastructure", func(t *testing.T) {
		err := FromDB(errors.New("connection refused"), "failed to fetch posts", nil)
		var ae *Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, KindInfrastructure, ae.Kind)
		assert.Equal(t, "failed to fetch posts", ae.Message)
	})

	t.Run("classified errors pass through", func(t *testing.T) {
		orig := NotFound("post not found")
		assert.Same(t, orig, FromDB(orig, "f", nil))
	})
}
