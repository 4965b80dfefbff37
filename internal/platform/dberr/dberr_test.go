// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/apperr"
	"github.com/vidora/vidora/internal/platform/dberr"
)

/*
TestWrap_UniqueViolation verifies that 23505 violations on the account table
surface as the same conflicts the registration pre-checks produce.
*/
func TestWrap_UniqueViolation(t *testing.T) {
	tests := []struct {
		name        string
		constraint  string
		wantMessage string
	}{
		{"username_conflict", dberr.ConstraintAccountUsername, "Username already registered."},
		{"email_conflict", dberr.ConstraintAccountEmail, "Email already registered."},
		{"unknown_constraint", "some_other_key", "Resource already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pgError := &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: tt.constraint,
			}

			wrapped := dberr.Wrap(fmt.Errorf("exec failed: %w", pgError))
			ae := apperr.As(wrapped)
			require.NotNil(t, ae)

			assert.Equal(t, "CONFLICT", ae.Code)
			assert.Equal(t, http.StatusConflict, ae.HTTPStatus)
			assert.Equal(t, tt.wantMessage, ae.Message)
		})
	}
}

/*
TestWrap_Classification covers the no-rows and fallback paths.
*/
func TestWrap_Classification(t *testing.T) {
	assert.Nil(t, dberr.Wrap(nil))

	notFound := apperr.As(dberr.Wrap(pgx.ErrNoRows))
	require.NotNil(t, notFound)
	assert.Equal(t, "NOT_FOUND", notFound.Code)

	internal := apperr.As(dberr.Wrap(errors.New("connection reset")))
	require.NotNil(t, internal)
	assert.Equal(t, "INTERNAL_ERROR", internal.Code)
	// The driver detail stays server-side.
	assert.NotContains(t, internal.Message, "connection reset")
}
