// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error taxonomy shared by the store, service,
// and HTTP layers. Every error that reaches a handler is either an *Error
// or is treated as an infrastructure failure.
package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies an error by what the caller can do about it.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindDependencyMissing Kind = "dependency_missing"
	KindValidation        Kind = "validation"
	KindForbidden         Kind = "forbidden"
	KindUnauthorized      Kind = "unauthorized"
	KindInfrastructure    Kind = "infrastructure"
)

// Postgres SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Error is a classified application error. Message is safe to show to
// end users; Err holds the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so callers can
// write errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons by kind.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrDependencyMissing = &Error{Kind: KindDependencyMissing}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrInfrastructure    = &Error{Kind: KindInfrastructure}
)

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func DependencyMissing(format string, args ...any) *Error {
	return &Error{Kind: KindDependencyMissing, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Validation returns a validation error carrying per-field messages.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Field is shorthand for a validation error on a single field.
func Field(field, message string) *Error {
	return Validation("invalid input", map[string]string{field: message})
}

// Infrastructure wraps an unexpected failure with a generic message.
func Infrastructure(message string, err error) *Error {
	return &Error{Kind: KindInfrastructure, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInfrastructure for errors that
// were never classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// ConstraintMessages maps a Postgres constraint name to the user-facing
// message used when that constraint is violated.
type ConstraintMessages map[string]string

// FromDB classifies a database error. Unique violations become conflicts,
// foreign-key violations become missing dependencies, sql.ErrNoRows becomes
// not-found, and everything else is an infrastructure failure described by
// fallback. Already-classified errors pass through untouched.
func FromDB(err error, fallback string, messages ConstraintMessages) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Kind: KindNotFound, Message: "not found", Err: err}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return Infrastructure(fallback, err)
	}

	msg := messages[pgErr.ConstraintName]
	switch pgErr.Code {
	case pgUniqueViolation:
		if msg == "" {
			msg = "resource already exists"
		}
		return &Error{Kind: KindConflict, Message: msg, Err: err}
	case pgForeignKeyViolation:
		if msg == "" {
			msg = "referenced resource does not exist"
		}
		return &Error{Kind: KindDependencyMissing, Message: msg, Err: err}
	case pgCheckViolation:
		if msg == "" {
			msg = "value violates a constraint"
		}
		return &Error{Kind: KindValidation, Message: msg, Fields: map[string]string{constraintField(pgErr.ConstraintName): msg}, Err: err}
	}
	return Infrastructure(fallback, err)
}

// constraintField guesses the column name from constraint names of the
// form <table>_<column>_check.
func constraintField(name string) string {
	name = strings.TrimSuffix(name, "_check")
	if i := strings.Index(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}
