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
	"golang.org/x/crypto/bcrypt"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, email, password_hash, display_name, bio, avatar_url,
	role, is_active, is_verified, created_at, updated_at`

// NewUser holds the fields of an account to create. Password is plaintext
// and is hashed before storage.
type NewUser struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Role        models.Role
}

func (s *UserStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Infrastructure("failed to fetch user", fmt.Errorf("find user: %w", err))
	}
	return &u, nil
}

// FindByEmail retrieves a user by their email address, ignoring case.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `LOWER(email) = LOWER($1)`, email)
}

// FindByUsername retrieves a user by their username.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, `username = $1`, username)
}

// FindByID retrieves a user by their UUID.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findOne(ctx, `id = $1`, id)
}

// Create inserts a new user with a bcrypt-hashed password.
func (s *UserStore) Create(ctx context.Context, in NewUser) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var u models.User
	err = s.db.GetContext(ctx, &u, `
		INSERT INTO users (username, email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		in.Username, in.Email, string(hash), in.DisplayName, in.Role,
	)
	if err != nil {
		return nil, apperr.FromDB(fmt.Errorf("create user: %w", err), "failed to create user", apperr.ConstraintMessages{
			"users_username_key": fmt.Sprintf("username %q is taken", in.Username),
			"users_email_key":    fmt.Sprintf("email %q is already registered", in.Email),
			"users_role_check":   "role must be admin, editor, or author",
		})
	}
	return &u, nil
}

// Delete removes a user by ID. Their posts and comments cascade, and the
// categories those posts were filed under are recounted.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var affected []uuid.UUID
		if err := tx.SelectContext(ctx, &affected, `
			SELECT DISTINCT pc.category_id
			FROM post_categories pc
			JOIN posts p ON p.id = pc.post_id
			WHERE p.author_id = $1`, id,
		); err != nil {
			return fmt.Errorf("select user categories: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("delete user rows: %w", err)
		} else if n == 0 {
			return apperr.NotFound("user not found")
		}
		return recountCategories(ctx, tx, affected)
	})
	if err != nil {
		return apperr.FromDB(err, "failed to delete user", nil)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
