// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

// PostgreSQL implementation of the auth storage contracts.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, unique violations) are mapped to
// domain-friendly [apperr.AppError] values through [dberr.Wrap] so the
// service layer never sees driver details. The unique indexes on username
// and email are the authoritative uniqueness check; the service's pre-checks
// only exist to produce friendlier, earlier failures.
package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidora/vidora/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// userColumns is the canonical SELECT list for hydrating a User entity.
// refreshtoken is nullable; COALESCE keeps the scan target a plain string.
const userColumns = `
	id, username, email, passwordhash, fullname, avatarurl,
	COALESCE(refreshtoken, ''), createdat, updatedat`

// scanUser hydrates a User from a row following the userColumns order.
func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.AvatarURL,
		&user.RefreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err)
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are
initialized if not provided. Duplicate username/email surfaces as a
client-safe Conflict via the named unique constraints.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict on 23505, or wrapped persistence failures
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, fullname, avatarurl, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return dberr.Wrap(err)
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or wrapped execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE id = $1`
	return scanUser(repository.pool.QueryRow(context, query, id))
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or wrapped execution errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE email = $1`
	return scanUser(repository.pool.QueryRow(context, query, email))
}

/*
FindByUsername retrieves a user record by their unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or wrapped execution errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users.account WHERE username = $1`
	return scanUser(repository.pool.QueryRow(context, query, username))
}

/*
Update persists changes to a user's mutable profile fields.

Description: Synchronizes full name and email with the database, refreshing
the updatedat timestamp. The email unique constraint still applies.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.Conflict on duplicate email, or wrapped update failures
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET fullname = $2, email = $3, updatedat = $4
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.FullName,
		user.Email,
		user.UpdatedAt,
	)

	return dberr.Wrap(err)
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Wrapped execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	return dberr.Wrap(err)
}

/*
UpdateAvatar updates only the avatar URL for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - avatarURL: string

Returns:
  - error: Wrapped execution errors
*/
func (repository *PostgresUserRepository) UpdateAvatar(context context.Context, userID, avatarURL string) error {
	const query = `
		UPDATE users.account
		SET avatarurl = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, avatarURL, time.Now())
	return dberr.Wrap(err)
}

/*
SetRefreshToken stores the account's single currently-valid refresh token.

Description: Rotation-by-overwrite. The previous token value is gone after
this UPDATE, which is exactly what invalidates it.

Parameters:
  - context: context.Context
  - userID: string
  - refreshToken: string

Returns:
  - error: Wrapped execution errors
*/
func (repository *PostgresUserRepository) SetRefreshToken(context context.Context, userID, refreshToken string) error {
	const query = "UPDATE users.account SET refreshtoken = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, refreshToken)
	return dberr.Wrap(err)
}

/*
ClearRefreshToken removes the account's stored refresh token.

Description: Revocation. Clearing an already-NULL token succeeds, which keeps
logout idempotent.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Wrapped execution errors
*/
func (repository *PostgresUserRepository) ClearRefreshToken(context context.Context, userID string) error {
	const query = "UPDATE users.account SET refreshtoken = NULL WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID)
	return dberr.Wrap(err)
}
