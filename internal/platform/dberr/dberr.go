// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Why constraint mapping matters
//
// Registration checks username/email uniqueness with two sequential reads,
// which leaves a race window between concurrent registrations. The unique
// indexes in the schema are the authority; this package turns their 23505
// violations into the same typed conflicts the pre-checks produce, so the
// client sees one consistent error either way.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidora/vidora/internal/platform/apperr"
)

// Unique constraint names declared in data/migrations. The mapping below
// must stay in sync with the DDL.
const (
	ConstraintAccountUsername = "account_username_key"
	ConstraintAccountEmail    = "account_email_key"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique violations map to the registration conflict taxonomy.
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation {
		switch pgError.ConstraintName {
		case ConstraintAccountUsername:
			return apperr.Conflict("Username already registered.")
		case ConstraintAccountEmail:
			return apperr.Conflict("Email already registered.")
		default:
			return apperr.Conflict("Resource already exists")
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}
