// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"quillpress/internal/slug"
)

// defaultCategories are created on first seed so a fresh install has
// something to file posts under.
var defaultCategories = []string{"General", "Tech & Science", "Life"}

// Seed populates the database with initial development data.
// It creates a default admin user and a handful of categories if the
// users table is empty.
func Seed(ctx context.Context, db *sqlx.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users"); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, display_name, role, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, "admin", "admin@quillpress.local", string(hash), "Admin", "admin", true)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	for i, name := range defaultCategories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (name, slug, sort_order)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
		`, name, slug.Generate(name), i)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@quillpress.local",
		"password", "admin",
		"categories", len(defaultCategories),
	)

	return nil
}
