// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access for QuillPress posts, categories,
// tags, comments, and users. Each store struct wraps a *sqlx.DB, takes a
// context on every call, and returns errors classified by apperr.
package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// withTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back on every other exit path, including panics.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// uniqueIDs drops repeated ids and keeps first-seen order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// unionIDs returns the distinct ids of a followed by those of b.
func unionIDs(a, b []uuid.UUID) []uuid.UUID {
	all := make([]uuid.UUID, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return uniqueIDs(all)
}
